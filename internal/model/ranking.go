package model

// MetricKind selects the formula used to score a symbol.
type MetricKind string

const (
	MetricReturn MetricKind = "return" // percent change first -> last close
	MetricChange MetricKind = "change" // percent change previous -> last close
	MetricATH    MetricKind = "ath"    // last close / all-time-high close
)

// Valid reports whether k is a known metric kind.
func (k MetricKind) Valid() bool {
	switch k {
	case MetricReturn, MetricChange, MetricATH:
		return true
	}
	return false
}

// Metric is the score a symbol is ranked by.
type Metric struct {
	Kind  MetricKind
	Value float64
	Peak  float64 // all-time-high close, MetricATH only
}

// Percent returns the value as a percentage regardless of kind.
func (m Metric) Percent() float64 {
	if m.Kind == MetricATH {
		return m.Value * 100
	}
	return m.Value
}

// RankedEntry is one successfully processed symbol of a run.
type RankedEntry struct {
	Rank   int // 1-based, 0 until ranked
	Symbol string
	Metric Metric
	Series PriceSeries
}
