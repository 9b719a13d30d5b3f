package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockRanker/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// FormatRanking renders the first top entries of a run as an HTML message.
func FormatRanking(run *model.RunSummary, top int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 <b>%s ranking</b> | %s | %s\n\n",
		html.EscapeString(strings.ToUpper(run.Market)), metricLabel(run.Metric), run.FinishedAt.Format("2006-01-02"))

	if len(run.Entries) == 0 {
		b.WriteString("No symbols could be ranked.\n")
		return b.String()
	}

	n := len(run.Entries)
	if top > 0 && top < n {
		n = top
	}
	for _, e := range run.Entries[:n] {
		fmt.Fprintf(&b, "%d. <b>%s</b> %s\n", e.Rank, html.EscapeString(e.Symbol), formatValue(e.Metric))
	}
	if n < len(run.Entries) {
		fmt.Fprintf(&b, "… %d more\n", len(run.Entries)-n)
	}
	fmt.Fprintf(&b, "\nRanked %d of %d symbols", len(run.Entries), run.Symbols)
	if run.Skipped > 0 {
		fmt.Fprintf(&b, " (%d skipped)", run.Skipped)
	}
	b.WriteString("\n")
	return b.String()
}

// FormatStatus describes the last run and the schedule.
func FormatStatus(run *model.RunSummary, running bool, next time.Time) string {
	var b strings.Builder
	b.WriteString("📦 <b>Ranker status</b>\n\n")
	if running {
		b.WriteString("A run is in progress.\n")
	}
	if run == nil {
		b.WriteString("No run has completed yet.\n")
	} else {
		fmt.Fprintf(&b, "Last run: %s\n", html.EscapeString(run.RunID))
		fmt.Fprintf(&b, "Finished: %s (%s)\n", run.FinishedAt.Format(timeLayout),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
		fmt.Fprintf(&b, "Market: %s | Metric: %s\n", html.EscapeString(run.Market), metricLabel(run.Metric))
		fmt.Fprintf(&b, "Ranked: %d / %d (skipped %d)\n", len(run.Entries), run.Symbols, run.Skipped)
		if run.Err != nil {
			fmt.Fprintf(&b, "Error: %s\n", html.EscapeString(run.Err.Error()))
		}
	}
	if !next.IsZero() {
		fmt.Fprintf(&b, "Next run: %s\n", next.Format(timeLayout))
	}
	return b.String()
}

func metricLabel(k model.MetricKind) string {
	switch k {
	case model.MetricChange:
		return "daily change"
	case model.MetricATH:
		return "% of all-time high"
	default:
		return "return"
	}
}

func formatValue(m model.Metric) string {
	if m.Kind == model.MetricATH {
		return fmt.Sprintf("%.2f%% of ATH %.2f", m.Percent(), m.Peak)
	}
	return fmt.Sprintf("%+.2f%%", m.Percent())
}
