package model

import "time"

// OHLCV represents a single daily bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PriceSeries holds the full daily price history for a symbol, newest first.
type PriceSeries struct {
	Symbol        string
	LastRefreshed string
	Bars          []OHLCV
}
