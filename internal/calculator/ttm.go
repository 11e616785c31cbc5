package calculator

import (
	"sort"
	"time"

	"PillarReport/internal/model"
)

// TrailingQuarters is the number of quarterly periods summed into a TTM value.
const TrailingQuarters = 4

type datedPeriod struct {
	date   time.Time
	period model.StatementPeriod
}

// SortPeriodsDesc returns a copy of periods ordered by fiscal date, newest
// first. The input slice is left untouched.
func SortPeriodsDesc(periods []model.StatementPeriod) ([]model.StatementPeriod, error) {
	dated := make([]datedPeriod, len(periods))
	for i, p := range periods {
		d, err := ParseFiscalDate(p.FiscalDateEnding)
		if err != nil {
			return nil, &fieldError{field: "fiscalDateEnding", value: p.FiscalDateEnding, err: err}
		}
		dated[i] = datedPeriod{date: d, period: p}
	}
	sort.SliceStable(dated, func(i, j int) bool { return dated[i].date.After(dated[j].date) })

	sorted := make([]model.StatementPeriod, len(dated))
	for i, d := range dated {
		sorted[i] = d.period
	}
	return sorted, nil
}

// TrailingPeriods returns up to n of the most recent periods by fiscal date.
// Fewer than n periods is not an error.
func TrailingPeriods(periods []model.StatementPeriod, n int) ([]model.StatementPeriod, error) {
	sorted, err := SortPeriodsDesc(periods)
	if err != nil {
		return nil, err
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted, nil
}

// CalculateTTM sums value over the four most recent quarterly periods.
func CalculateTTM(quarterly []model.StatementPeriod, value ValueFunc) (int64, error) {
	trailing, err := TrailingPeriods(quarterly, TrailingQuarters)
	if err != nil {
		return 0, err
	}
	var sum int64
	for _, p := range trailing {
		v, err := value(p)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}
