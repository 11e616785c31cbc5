package calculator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"PillarReport/internal/model"
)

// ValueFunc extracts an integer amount from one period.
type ValueFunc func(p model.StatementPeriod) (int64, error)

// fieldError is returned by value functions and enriched with ticker and
// statement kind by CalculateSeries.
type fieldError struct {
	field string
	value string
	err   error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("field %s (%q): %v", e.field, e.value, e.err)
}

func (e *fieldError) Unwrap() error { return e.err }

// ParseAmount converts a provider amount string to an integer.
func ParseAmount(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// Field reads one named integer field.
func Field(name string) ValueFunc {
	return func(p model.StatementPeriod) (int64, error) {
		raw, ok := p.Field(name)
		if !ok {
			return 0, &fieldError{field: name, err: model.ErrFieldMissing}
		}
		v, err := ParseAmount(raw)
		if err != nil {
			return 0, &fieldError{field: name, value: raw, err: err}
		}
		return v, nil
	}
}

// SumFields reads several named integer fields and adds them.
func SumFields(names ...string) ValueFunc {
	return func(p model.StatementPeriod) (int64, error) {
		var sum int64
		for _, name := range names {
			v, err := Field(name)(p)
			if err != nil {
				return 0, err
			}
			sum += v
		}
		return sum, nil
	}
}

// CalculateSeries builds an AmountSeries with one entry per distinct annual
// fiscal date plus a TTM entry computed from the quarterly periods.
// Keys are normalized to FiscalDateLayout. When an annual date repeats, the
// later period wins.
func CalculateSeries(bundle *model.StatementBundle, value ValueFunc) (model.AmountSeries, error) {
	series := make(model.AmountSeries, len(bundle.Annual)+1)
	for _, p := range bundle.Annual {
		d, err := ParseFiscalDate(p.FiscalDateEnding)
		if err != nil {
			return nil, wrapParse(bundle, "fiscalDateEnding", p.FiscalDateEnding, err)
		}
		v, err := value(p)
		if err != nil {
			return nil, wrapField(bundle, err)
		}
		series[d.Format(FiscalDateLayout)] = v
	}

	ttm, err := CalculateTTM(bundle.Quarterly, value)
	if err != nil {
		return nil, wrapField(bundle, err)
	}
	series[model.TTMKey] = ttm
	return series, nil
}

func wrapField(bundle *model.StatementBundle, err error) error {
	var fe *fieldError
	if errors.As(err, &fe) {
		return wrapParse(bundle, fe.field, fe.value, fe.err)
	}
	return wrapParse(bundle, "fiscalDateEnding", "", err)
}

func wrapParse(bundle *model.StatementBundle, field, value string, err error) error {
	return &model.ParseError{
		Ticker: bundle.Ticker,
		Kind:   bundle.Kind,
		Field:  field,
		Value:  value,
		Err:    err,
	}
}
