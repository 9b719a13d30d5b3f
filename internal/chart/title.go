package chart

import (
	"fmt"

	"StockRanker/internal/model"
)

// Title is the chart heading for a ranked entry.
func Title(e model.RankedEntry) string {
	switch e.Metric.Kind {
	case model.MetricChange:
		return fmt.Sprintf("%s - Change: %.2f%%", e.Symbol, e.Metric.Percent())
	case model.MetricATH:
		return fmt.Sprintf("%s - Trading at %.2f%% of its All-Time High (ATH: %.2f)",
			e.Symbol, e.Metric.Percent(), e.Metric.Peak)
	default:
		return fmt.Sprintf("%s - Return: %.2f%%", e.Symbol, e.Metric.Percent())
	}
}

// FileName is the image name for a ranked entry, e.g. "3.png".
func FileName(e model.RankedEntry) string {
	return fmt.Sprintf("%d.png", e.Rank)
}

// CandleTitle is the heading of a single-symbol one-year candlestick chart.
func CandleTitle(symbol string) string {
	return fmt.Sprintf("%s - 1 Year Candlestick Chart", symbol)
}

// CandleFileName is the image name of a single-symbol candlestick chart.
func CandleFileName(symbol string) string {
	return symbol + "_candlestick.png"
}
