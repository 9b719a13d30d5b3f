package collector

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"StockRanker/internal/calculator"
	"StockRanker/internal/model"
)

func TestCollector_Return(t *testing.T) {
	f := &MockFetcher{Series: map[string][]model.OHLCV{
		"TCS.NS": BarsFromCloses(100, 110, 121),
	}}
	c := NewCollector(f, ".NS", model.Window{Range: "1y", Interval: "1d"}, model.MetricReturn)

	entry, err := c.Collect(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Symbol != "TCS" || entry.Series.Ticker != "TCS.NS" {
		t.Errorf("unexpected symbol/ticker: %s/%s", entry.Symbol, entry.Series.Ticker)
	}
	if math.Abs(entry.Metric.Value-21) > 1e-9 {
		t.Errorf("expected 21, got %.4f", entry.Metric.Value)
	}
	if entry.Rank != 0 {
		t.Errorf("collected entry must not be ranked, got %d", entry.Rank)
	}
}

func TestCollector_ATHFetchesHistory(t *testing.T) {
	f := &MockFetcher{
		Series:  map[string][]model.OHLCV{"AAPL": BarsFromCloses(90, 95)},
		History: map[string][]model.OHLCV{"AAPL": BarsFromCloses(50, 190, 95)},
	}
	c := NewCollector(f, "", model.Window{Range: "6mo", Interval: "1d"}, model.MetricATH)

	entry, err := c.Collect(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Metric.Peak != 190 || math.Abs(entry.Metric.Value-0.5) > 1e-9 {
		t.Errorf("unexpected metric %+v", entry.Metric)
	}
	if len(f.Calls) != 2 {
		t.Errorf("expected chart + history fetch, got %v", f.Calls)
	}
}

func TestCollector_Failures(t *testing.T) {
	boom := errors.New("boom")
	f := &MockFetcher{
		Series: map[string][]model.OHLCV{
			"EMPTY": nil,
			"ONE":   BarsFromCloses(10),
			"ZERO":  BarsFromCloses(0, 10),
		},
		Errors: map[string]error{"DOWN": boom},
	}
	c := NewCollector(f, "", model.Window{Range: "1y", Interval: "1d"}, model.MetricReturn)

	tests := []struct {
		symbol string
		want   error
	}{
		{"EMPTY", ErrInsufficientData},
		{"ONE", ErrInsufficientData},
		{"ZERO", calculator.ErrZeroBase},
		{"DOWN", boom},
	}
	for _, tt := range tests {
		if _, err := c.Collect(context.Background(), tt.symbol); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.symbol, tt.want, err)
		}
	}
}

func TestRangeStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		rng  string
		want time.Time
		days int
	}{
		{"2d", now.AddDate(0, 0, -2), 2},
		{"3wk", now.AddDate(0, 0, -21), 0},
		{"6mo", now.AddDate(0, -6, 0), 0},
		{"2y", now.AddDate(-2, 0, 0), 0},
		{"ytd", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{"max", EarliestHistory, 0},
	}
	for _, tt := range tests {
		got, days, err := rangeStart(tt.rng, now)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.rng, err)
		}
		if !got.Equal(tt.want) || days != tt.days {
			t.Errorf("%s: got %v/%d, want %v/%d", tt.rng, got, days, tt.want, tt.days)
		}
	}
	if _, _, err := rangeStart("soon", now); err == nil {
		t.Error("expected error for unsupported range")
	}
}

func TestAlpacaTimeFrame(t *testing.T) {
	tf, err := alpacaTimeFrame("1wk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tf != marketdata.NewTimeFrame(1, marketdata.Week) {
		t.Errorf("unexpected time frame %v", tf)
	}
	if _, err := alpacaTimeFrame("90m"); err == nil {
		t.Error("expected error for unsupported interval")
	}
}

func TestFromAlpacaBars(t *testing.T) {
	ts := time.Date(2025, 1, 2, 5, 0, 0, 0, time.UTC)
	got := fromAlpacaBars([]marketdata.Bar{{Timestamp: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 42}})
	if len(got) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(got))
	}
	if got[0].Close != 1.5 || got[0].Volume != 42 || !got[0].Time.Equal(ts) {
		t.Errorf("unexpected bar %+v", got[0])
	}
}
