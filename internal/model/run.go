package model

import "time"

// RunSummary describes the latest completed pipeline run.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Market     string
	Metric     MetricKind
	OutputDir  string
	Symbols    int // loaded from the input file
	Skipped    int
	Entries    []RankedEntry
	Err        error // non-nil when the run stopped early
}
