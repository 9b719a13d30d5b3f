package output

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"StockRanker/internal/calculator"
	"StockRanker/internal/model"
)

// ReportFile is the CSV written next to the charts.
const ReportFile = "ranking.csv"

var reportHeader = []string{"rank", "symbol", "ticker", "metric", "peak", "last_close", "rsi14", "image"}

// WriteReport writes the ranking as CSV. images maps a rank to its chart file
// name; ranks without an image leave the column empty.
func WriteReport(dir string, entries []model.RankedEntry, images map[int]string) (string, error) {
	path := filepath.Join(dir, ReportFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return "", fmt.Errorf("write report header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write(reportRow(e, images[e.Rank])); err != nil {
			return "", fmt.Errorf("write report row %d: %w", e.Rank, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}
	return path, f.Close()
}

func reportRow(e model.RankedEntry, image string) []string {
	var peak, last, rsi string
	if e.Metric.Kind == model.MetricATH {
		peak = fixed(e.Metric.Peak, 2)
	}
	if bar, ok := e.Series.Last(); ok {
		last = fixed(bar.Close, 2)
	}
	if v, err := calculator.CalculateRSI(e.Series.Bars, calculator.RSIPeriod); err == nil {
		rsi = fixed(v, 2)
	}
	return []string{
		strconv.Itoa(e.Rank),
		e.Symbol,
		e.Series.Ticker,
		fixed(e.Metric.Percent(), 2),
		peak,
		last,
		rsi,
		image,
	}
}

// fixed formats v with the given decimal places; non-finite values are blank.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}
