package output

import (
	"fmt"
	"io"

	"StockRanker/internal/model"
)

// SummaryLine is the console line for one ranked entry.
func SummaryLine(e model.RankedEntry) string {
	switch e.Metric.Kind {
	case model.MetricChange:
		return fmt.Sprintf("%d. %s: %.2f%% change", e.Rank, e.Symbol, e.Metric.Percent())
	case model.MetricATH:
		return fmt.Sprintf("%d. %s: Trading at %.2f%% of its All-Time High", e.Rank, e.Symbol, e.Metric.Percent())
	default:
		return fmt.Sprintf("%d. %s: %.2f%% return", e.Rank, e.Symbol, e.Metric.Percent())
	}
}

// PrintSummary writes one line per entry in rank order.
func PrintSummary(w io.Writer, entries []model.RankedEntry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, SummaryLine(e)); err != nil {
			return err
		}
	}
	return nil
}
