package chart

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gonum.org/v1/plot/vg"

	"StockRanker/internal/model"
)

func testSeries(closes ...float64) model.PriceSeries {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:  start.AddDate(0, 0, i),
			Open:  c - 1,
			High:  c + 2,
			Low:   c - 2,
			Close: c,
		}
	}
	return model.PriceSeries{Symbol: "TEST", Ticker: "TEST", Bars: bars}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		entry model.RankedEntry
		want  string
	}{
		{
			name:  "return",
			entry: model.RankedEntry{Symbol: "AAPL", Metric: model.Metric{Kind: model.MetricReturn, Value: 12.345}},
			want:  "AAPL - Return: 12.35%",
		},
		{
			name:  "change",
			entry: model.RankedEntry{Symbol: "MSFT", Metric: model.Metric{Kind: model.MetricChange, Value: -1.5}},
			want:  "MSFT - Change: -1.50%",
		},
		{
			name:  "ath",
			entry: model.RankedEntry{Symbol: "TCS", Metric: model.Metric{Kind: model.MetricATH, Value: 0.95, Peak: 123.45}},
			want:  "TCS - Trading at 95.00% of its All-Time High (ATH: 123.45)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.entry); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(model.RankedEntry{Rank: 3, Symbol: "AAPL"}); got != "3.png" {
		t.Errorf("FileName() = %q, want 3.png", got)
	}
}

func TestCandleNames(t *testing.T) {
	if got := CandleTitle("AAPL"); got != "AAPL - 1 Year Candlestick Chart" {
		t.Errorf("CandleTitle() = %q", got)
	}
	if got := CandleFileName("AAPL"); got != "AAPL_candlestick.png" {
		t.Errorf("CandleFileName() = %q", got)
	}
}

func TestRenderWritesPNG(t *testing.T) {
	series := testSeries(10, 11, 10.5, 12, 13, 12.5, 14, 15, 14.2, 16)

	for _, style := range []string{StyleLine, StyleCandle} {
		t.Run(style, func(t *testing.T) {
			r := NewPlotRenderer(Options{
				Style:          style,
				MovingAverages: []int{3, 5, 50},
				Width:          4 * vg.Inch,
				Height:         2 * vg.Inch,
				DPI:            50,
			})
			path := filepath.Join(t.TempDir(), "1.png")
			if err := r.Render(series, "TEST - Return: 60.00%", path); err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read image: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("\x89PNG")) {
				t.Errorf("output is not a PNG")
			}
		})
	}
}

func TestRenderSingleBar(t *testing.T) {
	r := NewPlotRenderer(Options{Style: StyleCandle, DPI: 40})
	path := filepath.Join(t.TempDir(), "1.png")
	if err := r.Render(testSeries(10), "one", path); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()

	r := NewPlotRenderer(Options{})
	if err := r.Render(model.PriceSeries{Symbol: "EMPTY"}, "x", filepath.Join(dir, "1.png")); !errors.Is(err, ErrNoData) {
		t.Errorf("empty series error = %v, want ErrNoData", err)
	}

	bad := NewPlotRenderer(Options{Style: "bars"})
	if err := bad.Render(testSeries(1, 2), "x", filepath.Join(dir, "2.png")); err == nil {
		t.Error("expected error for unknown style")
	}

	if err := r.Render(testSeries(1, 2), "x", filepath.Join(dir, "missing", "3.png")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestCandlesDataRange(t *testing.T) {
	s := testSeries(10, 20)
	c := &candles{bars: s.Bars}
	xmin, xmax, ymin, ymax := c.DataRange()
	if xmin != unix(s.Bars[0]) || xmax != unix(s.Bars[1]) {
		t.Errorf("x range = [%v, %v]", xmin, xmax)
	}
	if ymin != 8 || ymax != 22 {
		t.Errorf("y range = [%v, %v], want [8, 22]", ymin, ymax)
	}
}
