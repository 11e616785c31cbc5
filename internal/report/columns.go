package report

import (
	"fmt"

	"PillarReport/internal/calculator"
	"PillarReport/internal/model"
)

// OrderColumns returns the five-year column order for a series: annual
// dates oldest to newest, then TTM. Dates are compared as parsed fiscal
// dates and returned in FiscalDateLayout form.
//
// The provider lists annual dates newest first followed by TTM. That list
// is taken, its last entry dropped, the remainder reversed and TTM appended.
func OrderColumns(series model.AmountSeries) ([]string, error) {
	dates, err := calculator.SortDatesDesc(series.Dates())
	if err != nil {
		return nil, fmt.Errorf("order columns: %w", err)
	}
	natural := append(dates, model.TTMKey)

	cols := make([]string, 0, len(natural))
	for i := len(natural) - 2; i >= 0; i-- {
		cols = append(cols, natural[i])
	}
	return append(cols, model.TTMKey), nil
}
