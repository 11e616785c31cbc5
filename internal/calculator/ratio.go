package calculator

import (
	"errors"

	"PillarReport/internal/model"
)

// ErrDivisionByZero is returned by Divide for a zero denominator.
var ErrDivisionByZero = errors.New("division by zero")

// Divide returns num/den, refusing a zero denominator instead of producing
// an infinity.
func Divide(num, den float64) (float64, error) {
	if den == 0 {
		return 0, ErrDivisionByZero
	}
	return num / den, nil
}

// CalculateRatioSeries divides num by den for every key of num. A key absent
// from den is a KeyMismatchError; a zero denominator is a DivisionError.
func CalculateRatioSeries(ticker, metric string, num, den model.AmountSeries) (model.RatioSeries, error) {
	out := make(model.RatioSeries, len(num))
	for key, n := range num {
		d, ok := den[key]
		if !ok {
			return nil, &model.KeyMismatchError{Ticker: ticker, Metric: metric, Key: key}
		}
		r, err := Divide(float64(n), float64(d))
		if err != nil {
			return nil, &model.DivisionError{Ticker: ticker, Metric: metric, Key: key}
		}
		out[key] = r
	}
	return out, nil
}
