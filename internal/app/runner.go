// Package app wires configuration, data source, ranking and output into a run.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"StockRanker/internal/chart"
	"StockRanker/internal/collector"
	"StockRanker/internal/config"
	"StockRanker/internal/model"
	"StockRanker/internal/notifier"
	"StockRanker/internal/output"
	"StockRanker/internal/ranking"
	"StockRanker/internal/symbols"
)

// Notifier delivers the ranking summary.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Runner performs complete ranking runs for one configuration.
type Runner struct {
	Config   *config.Config
	Fetcher  collector.Fetcher
	Renderer chart.Renderer
	Notifier Notifier                   // optional
	Telegram *notifier.TelegramNotifier // set when Telegram is configured; also polls commands
	Opener   output.Opener
	Stdout   io.Writer
	Log      *zap.Logger

	now func() time.Time
}

// New builds a Runner from cfg, choosing the data provider and renderer it
// names. The Telegram notifier is attached when credentials are configured.
func New(cfg *config.Config, log *zap.Logger) (*Runner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		Config:   cfg,
		Fetcher:  fetcher,
		Renderer: NewRenderer(cfg.Chart),
		Opener:   output.DefaultOpener,
		Stdout:   os.Stdout,
		Log:      log,
		now:      time.Now,
	}
	if cfg.Telegram.BotToken != "" {
		r.Telegram = NewTelegram(cfg, log)
		r.Notifier = r.Telegram
	}
	return r, nil
}

// NewFetcher returns the market-data source selected by cfg.
func NewFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(ds.BaseURL, cfg.Proxy), nil
	case "alpaca":
		return collector.NewAlpacaFetcher(ds.Alpaca.APIKey, ds.Alpaca.APISecret, ds.BaseURL, ds.Alpaca.Feed, cfg.Proxy), nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", ds.Provider)
	}
}

// NewRenderer returns a chart renderer for the chart settings.
func NewRenderer(c config.ChartConfig) *chart.PlotRenderer {
	return chart.NewPlotRenderer(chart.Options{
		Style:          c.Style,
		MovingAverages: c.MovingAverages,
		Width:          vg.Length(c.Width) * vg.Inch,
		Height:         vg.Length(c.Height) * vg.Inch,
		DPI:            c.DPI,
	})
}

// NewTelegram returns the Telegram notifier configured in cfg.
func NewTelegram(cfg *config.Config, log *zap.Logger) *notifier.TelegramNotifier {
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log.Named("telegram"))
}

// Run executes one ranking run. When the symbol list cannot be loaded the
// run stops before the output directory is touched or any data is fetched,
// and the returned summary carries the error.
func (r *Runner) Run(ctx context.Context) (*model.RunSummary, error) {
	cfg := r.Config
	summary := &model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
		Market:    cfg.Market,
		Metric:    model.MetricKind(cfg.Metric),
		OutputDir: cfg.ResolveOutputDir(),
	}
	log := r.Log.With(zap.String("run_id", summary.RunID))
	fail := func(err error) (*model.RunSummary, error) {
		summary.Err = err
		summary.FinishedAt = r.now()
		return summary, err
	}

	window, err := cfg.ResolveWindow(summary.StartedAt)
	if err != nil {
		return fail(err)
	}
	market := cfg.SelectedMarket()
	log.Info("starting run",
		zap.String("market", cfg.Market),
		zap.String("metric", cfg.Metric),
		zap.String("provider", r.Fetcher.Name()),
		zap.String("symbols_file", market.SymbolsFile),
		zap.String("output_dir", summary.OutputDir))

	pipeline := ranking.NewPipeline(
		symbols.NewLoader(market.SymbolsFile, cfg.MaxSymbols),
		collector.NewCollector(r.Fetcher, market.Suffix, window, summary.Metric),
		log,
	)
	res, err := pipeline.Run(ctx)
	summary.Symbols = res.Symbols
	summary.Skipped = len(res.Skipped)
	if err != nil {
		return fail(err)
	}
	summary.Entries = res.Entries

	if err := output.Prepare(summary.OutputDir, market.SymbolsFile); err != nil {
		return fail(err)
	}
	images := r.renderAll(summary.OutputDir, res.Entries, log)

	if err := output.PrintSummary(r.Stdout, res.Entries); err != nil {
		log.Warn("print summary failed", zap.Error(err))
	}
	if _, err := output.WriteReport(summary.OutputDir, res.Entries, images); err != nil {
		log.Warn("write report failed", zap.Error(err))
	}
	summary.FinishedAt = r.now()
	if _, err := output.WriteManifest(summary.OutputDir, manifest(summary, cfg, window, r.Fetcher.Name(), res.Skipped, len(images))); err != nil {
		log.Warn("write manifest failed", zap.Error(err))
	}

	if r.Notifier != nil {
		if err := r.Notifier.SendWithRetry(ctx, notifier.FormatRanking(summary, cfg.Telegram.Top), 3); err != nil {
			log.Error("send ranking failed", zap.Error(err))
		}
	}
	if cfg.OpenFolder {
		if err := output.Open(summary.OutputDir, r.Opener); err != nil {
			log.Warn("open output folder failed", zap.Error(err))
		}
	}

	log.Info("run finished",
		zap.Int("ranked", len(summary.Entries)),
		zap.Int("images", len(images)),
		zap.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)))
	return summary, nil
}

// renderAll draws one chart per entry and returns the written file names by
// rank. A failed render leaves that rank without an image.
func (r *Runner) renderAll(dir string, entries []model.RankedEntry, log *zap.Logger) map[int]string {
	images := make(map[int]string, len(entries))
	for _, e := range entries {
		name := chart.FileName(e)
		if err := r.Renderer.Render(e.Series, chart.Title(e), filepath.Join(dir, name)); err != nil {
			log.Warn("render chart failed", zap.String("symbol", e.Symbol), zap.Int("rank", e.Rank), zap.Error(err))
			continue
		}
		images[e.Rank] = name
	}
	return images
}

func manifest(s *model.RunSummary, cfg *config.Config, w model.Window, provider string, skipped []string, images int) output.Manifest {
	m := output.Manifest{
		RunID:      s.RunID,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Market:     s.Market,
		Metric:     string(s.Metric),
		Provider:   provider,
		Range:      w.Range,
		Interval:   w.Interval,
		Symbols:    s.Symbols,
		Ranked:     len(s.Entries),
		Skipped:    skipped,
		Images:     images,
	}
	if !w.Start.IsZero() {
		m.Start = w.Start.Format("2006-01-02")
	}
	return m
}
