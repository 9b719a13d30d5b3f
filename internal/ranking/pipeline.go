// Package ranking runs the load -> fetch -> score -> sort pipeline.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"StockRanker/internal/model"
)

// SymbolSource yields the symbols of one run.
type SymbolSource interface {
	Load() ([]string, error)
}

// EntryCollector fetches and scores one symbol.
type EntryCollector interface {
	Collect(ctx context.Context, symbol string) (*model.RankedEntry, error)
}

// Pipeline ranks every symbol of Source by the metric Collector computes.
type Pipeline struct {
	Source    SymbolSource
	Collector EntryCollector
	Log       *zap.Logger
}

// NewPipeline creates a Pipeline. A nil logger discards output.
func NewPipeline(src SymbolSource, col EntryCollector, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{Source: src, Collector: col, Log: log}
}

// Result is the outcome of one pipeline pass.
type Result struct {
	Symbols int                 // symbols loaded
	Skipped []string            // symbols dropped by fetch or metric failures
	Entries []model.RankedEntry // ranked, best first
}

// Run loads the symbols and processes them one at a time. A loader failure
// returns an error before any symbol is fetched. Per-symbol failures are
// logged once and the symbol is dropped.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	symbols, err := p.Source.Load()
	if err != nil {
		p.Log.Error("load symbols failed", zap.Error(err))
		return &Result{}, fmt.Errorf("load symbols: %w", err)
	}
	p.Log.Info("symbols loaded", zap.Int("count", len(symbols)))

	res := &Result{Symbols: len(symbols)}
	collected := make([]model.RankedEntry, 0, len(symbols))
	for i, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p.Log.Debug("processing symbol", zap.String("symbol", sym), zap.Int("n", i+1), zap.Int("of", len(symbols)))

		entry, err := p.Collector.Collect(ctx, sym)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			p.Log.Warn("skipping symbol", zap.String("symbol", sym), zap.Error(err))
			res.Skipped = append(res.Skipped, sym)
			continue
		}
		if !isFinite(entry.Metric.Value) {
			p.Log.Warn("skipping symbol", zap.String("symbol", sym), zap.Float64("metric", entry.Metric.Value))
			res.Skipped = append(res.Skipped, sym)
			continue
		}
		collected = append(collected, *entry)
	}

	res.Entries = Rank(collected)
	p.Log.Info("ranking complete",
		zap.Int("ranked", len(res.Entries)),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// Rank stable-sorts entries by metric, highest first, and numbers them from 1.
// Entries with equal metrics keep their input order. The input is not modified.
func Rank(entries []model.RankedEntry) []model.RankedEntry {
	ranked := make([]model.RankedEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metric.Value > ranked[j].Metric.Value
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
