package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds raw price data for one symbol.
type PriceSeries struct {
	Symbol    string
	Ticker    string // symbol with the market suffix applied
	Bars      []OHLCV
	FetchedAt time.Time
}

// Last returns the most recent bar, or false when the series is empty.
func (s PriceSeries) Last() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Window describes the slice of history requested from a data source.
// Range takes precedence over Start when both are set.
type Window struct {
	Range    string    // e.g. "2d", "1y", "max"
	Start    time.Time // used when Range is empty
	Interval string    // e.g. "1d", "1wk", "1mo"
}

// MaxHistory is the window used to find the all-time high close.
func MaxHistory() Window {
	return Window{Range: "max", Interval: "1d"}
}
