package model

// TTMKey is the series key of the trailing-twelve-month entry.
const TTMKey = "ttm"

// AmountSeries maps a fiscal date (or TTMKey) to an integer amount.
type AmountSeries map[string]int64

// RatioSeries maps a fiscal date (or TTMKey) to a ratio.
type RatioSeries map[string]float64

// Dates returns the non-TTM keys of the series in no particular order.
func (s AmountSeries) Dates() []string {
	dates := make([]string, 0, len(s))
	for k := range s {
		if k != TTMKey {
			dates = append(dates, k)
		}
	}
	return dates
}
