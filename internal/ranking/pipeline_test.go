package ranking

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"StockRanker/internal/collector"
	"StockRanker/internal/model"
	"StockRanker/internal/symbols"
)

type staticSource []string

func (s staticSource) Load() ([]string, error) { return s, nil }

type metricCollector map[string]float64

func (m metricCollector) Collect(_ context.Context, sym string) (*model.RankedEntry, error) {
	v, ok := m[sym]
	if !ok {
		return nil, errors.New("no data")
	}
	return &model.RankedEntry{Symbol: sym, Metric: model.Metric{Kind: model.MetricReturn, Value: v}}, nil
}

func symbolsOf(entries []model.RankedEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out
}

func TestRank_Scenario(t *testing.T) {
	in := []model.RankedEntry{
		{Symbol: "A", Metric: model.Metric{Value: 5}},
		{Symbol: "B", Metric: model.Metric{Value: -2}},
		{Symbol: "C", Metric: model.Metric{Value: 10}},
	}
	got := Rank(in)
	if want := []string{"C", "A", "B"}; !reflect.DeepEqual(symbolsOf(got), want) {
		t.Fatalf("expected %v, got %v", want, symbolsOf(got))
	}
	for i, e := range got {
		if e.Rank != i+1 {
			t.Errorf("entry %s: expected rank %d, got %d", e.Symbol, i+1, e.Rank)
		}
	}
	if in[0].Rank != 0 {
		t.Error("Rank must not modify its input")
	}
}

func TestRank_OrderAndLabels(t *testing.T) {
	values := []float64{3, 3, -1, 7.5, 0, 3, 12, -40, 7.5}
	in := make([]model.RankedEntry, len(values))
	for i, v := range values {
		in[i] = model.RankedEntry{Symbol: string(rune('a' + i)), Metric: model.Metric{Value: v}}
	}
	got := Rank(in)
	for i := 0; i+1 < len(got); i++ {
		if got[i].Metric.Value < got[i+1].Metric.Value {
			t.Errorf("not non-increasing at %d: %.2f < %.2f", i, got[i].Metric.Value, got[i+1].Metric.Value)
		}
	}
	seen := map[int]bool{}
	for _, e := range got {
		if e.Rank < 1 || e.Rank > len(got) || seen[e.Rank] {
			t.Errorf("bad rank label %d", e.Rank)
		}
		seen[e.Rank] = true
	}
	// ties keep input order: a, b, f all have 3
	var ties []string
	for _, e := range got {
		if e.Metric.Value == 3 {
			ties = append(ties, e.Symbol)
		}
	}
	if !reflect.DeepEqual(ties, []string{"a", "b", "f"}) {
		t.Errorf("ties not stable: %v", ties)
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestPipeline_SkipsFailuresAndNonFinite(t *testing.T) {
	col := metricCollector{"A": 5, "B": -2, "C": 10, "NAN": math.NaN(), "INF": math.Inf(1)}
	p := NewPipeline(staticSource{"A", "MISSING", "B", "NAN", "C", "INF"}, col, nil)

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"C", "A", "B"}; !reflect.DeepEqual(symbolsOf(res.Entries), want) {
		t.Errorf("expected %v, got %v", want, symbolsOf(res.Entries))
	}
	if want := []string{"MISSING", "NAN", "INF"}; !reflect.DeepEqual(res.Skipped, want) {
		t.Errorf("expected skipped %v, got %v", want, res.Skipped)
	}
	if res.Symbols != 6 {
		t.Errorf("expected 6 symbols, got %d", res.Symbols)
	}
}

func TestPipeline_EmptySeriesLogsOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f := &collector.MockFetcher{Series: map[string][]model.OHLCV{
		"GOOD":  collector.BarsFromCloses(100, 110, 121),
		"EMPTY": {},
	}}
	col := collector.NewCollector(f, "", model.Window{Range: "1y", Interval: "1d"}, model.MetricReturn)
	p := NewPipeline(staticSource{"GOOD", "EMPTY"}, col, zap.New(core))

	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Symbol != "GOOD" {
		t.Fatalf("expected only GOOD ranked, got %v", symbolsOf(res.Entries))
	}
	if math.Abs(res.Entries[0].Metric.Value-21) > 1e-9 {
		t.Errorf("expected 21%% return, got %.4f", res.Entries[0].Metric.Value)
	}

	skipped := logs.FilterMessage("skipping symbol").FilterField(zap.String("symbol", "EMPTY"))
	if skipped.Len() != 1 {
		t.Errorf("expected exactly one log line for EMPTY, got %d", skipped.Len())
	}
	if logs.FilterField(zap.String("symbol", "GOOD")).Len() != 0 {
		t.Error("unexpected warning for GOOD")
	}
}

func TestPipeline_LoaderFailureHalts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	writeFile(t, path, "Ticker\nAAPL\n")

	f := &collector.MockFetcher{Price: 100}
	col := collector.NewCollector(f, "", model.Window{Range: "1y", Interval: "1d"}, model.MetricReturn)
	p := NewPipeline(symbols.NewLoader(path, 0), col, nil)

	res, err := p.Run(context.Background())
	if !errors.Is(err, symbols.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("expected empty result, got %d entries", len(res.Entries))
	}
	if len(f.Calls) != 0 {
		t.Errorf("data source must not be contacted, got calls %v", f.Calls)
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPipeline(staticSource{"A"}, metricCollector{"A": 1}, nil)
	if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
