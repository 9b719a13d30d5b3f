// ranker downloads price history for a list of symbols, ranks them by a
// performance metric and renders one chart per symbol.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockRanker/internal/app"
	"StockRanker/internal/chart"
	"StockRanker/internal/collector"
	"StockRanker/internal/config"
	"StockRanker/internal/logger"
	"StockRanker/internal/model"
	"StockRanker/internal/scheduler"
	"StockRanker/internal/symbols"
)

var version = "0.1.0"

// overrides holds CLI flags that take precedence over file and environment.
type overrides struct {
	configPath string
	market     string
	metric     string
	interval   string
	rng        string
	start      string
	weeks      int
	months     int
	output     string
	maxSymbols int
	chart      string
	open       bool
	provider   string
	logLevel   string
}

func main() {
	var o overrides
	if err := newRootCmd(&o).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(o *overrides) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ranker",
		Short: "Rank stocks by return, daily change or distance from all-time high",
		Long: `ranker reads a list of symbols, downloads their price history, ranks them
by the selected metric and writes one chart per symbol into an output folder,
together with ranking.csv and manifest.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, o)
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVarP(&o.configPath, "config", "c", "", "config file (defaults to CONFIG_PATH or configs/config.yaml)")
	f.StringVarP(&o.market, "market", "m", "", "market to rank, e.g. us or india")
	f.StringVar(&o.metric, "metric", "", "ranking metric: return, change or ath")
	f.StringVarP(&o.interval, "interval", "i", "", "bar interval, e.g. 1d, 1wk, 1h")
	f.StringVarP(&o.rng, "range", "r", "", "lookback range, e.g. 1mo, 6mo, 1y, ytd, max")
	f.StringVar(&o.start, "start", "", "window start date (YYYY-MM-DD)")
	f.IntVar(&o.weeks, "weeks", 0, "lookback in weeks")
	f.IntVar(&o.months, "months", 0, "lookback in months")
	f.StringVarP(&o.output, "output", "o", "", "output directory (derived from the window when empty)")
	f.IntVar(&o.maxSymbols, "max-symbols", 0, "maximum symbols to process, 0 for all")
	f.StringVar(&o.chart, "chart", "", "chart style: line or candle")
	f.BoolVar(&o.open, "open", false, "open the output folder when done")
	f.StringVar(&o.provider, "provider", "", "market data provider: yahoo or alpaca")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(rankCmd(o))
	rootCmd.AddCommand(watchCmd(o))
	rootCmd.AddCommand(symbolsCmd(o))
	rootCmd.AddCommand(chartCmd(o))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ranker version %s\n", version)
		},
	}
}

func rankCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "rank",
		Short: "Run the ranking once (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, o)
		},
	}
}

func watchCmd(o *overrides) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the ranking on the configured cron schedule",
		Long: `watch keeps running and ranks on schedule.cron. When Telegram is configured
the ranking is posted after each run and the chat accepts /rank, /top and /status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, o, runNow)
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", os.Getenv("RUN_ON_START") == "true", "run once immediately on start")
	return cmd
}

func symbolsCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "Print the tickers the selected market would fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			market := cfg.SelectedMarket()
			list, err := symbols.NewLoader(market.SymbolsFile, cfg.MaxSymbols).Load()
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Fprintln(cmd.OutOrStdout(), s+market.Suffix)
			}
			return nil
		},
	}
}

func chartCmd(o *overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "chart <symbol>",
		Short: "Draw a one-year daily candlestick chart of a single symbol",
		Long: `chart fetches one year of daily bars for symbol (with the selected market's
suffix) and writes <symbol>_candlestick.png into --output, or the current
directory when no output directory is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			fetcher, err := app.NewFetcher(cfg)
			if err != nil {
				return err
			}
			style := cfg.Chart
			style.Style = chart.StyleCandle

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dir := cfg.OutputDir
			if dir == "" {
				dir = "."
			}
			path, err := renderCandleChart(ctx, fetcher, app.NewRenderer(style), cfg.SelectedMarket().Suffix, args[0], dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Candlestick chart saved as %s\n", path)
			return nil
		},
	}
}

// renderCandleChart fetches one year of daily bars for symbol and draws them
// into dir. It returns the image path.
func renderCandleChart(ctx context.Context, fetcher collector.Fetcher, renderer chart.Renderer, suffix, symbol, dir string) (string, error) {
	window := model.Window{Range: "1y", Interval: "1d"}
	ticker := collector.NewCollector(fetcher, suffix, window, model.MetricReturn).Ticker(symbol)

	bars, err := fetcher.FetchSeries(ctx, ticker, window)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return "", fmt.Errorf("no data found for %s", ticker)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, chart.CandleFileName(symbol))
	series := model.PriceSeries{Symbol: symbol, Ticker: ticker, Bars: bars, FetchedAt: time.Now()}
	if err := renderer.Render(series, chart.CandleTitle(symbol), path); err != nil {
		return "", fmt.Errorf("render %s: %w", ticker, err)
	}
	return path, nil
}

func runRank(cmd *cobra.Command, o *overrides) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	runner.Stdout = cmd.OutOrStdout()
	_, err = runner.Run(ctx)
	return err
}

func runWatch(cmd *cobra.Command, o *overrides, runNow bool) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	runner.Stdout = cmd.OutOrStdout()

	var sender scheduler.Sender
	if runner.Notifier != nil {
		sender = runner.Notifier
	}
	sched := scheduler.NewScheduler(ctx, runner, sender, cfg.Telegram.Top, log.Named("scheduler"))
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if runner.Telegram != nil {
		go runner.Telegram.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	if runNow {
		log.Info("running immediately on start")
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Error("startup run failed", zap.Error(err))
			}
		}()
	}

	log.Info("ranker is watching, press Ctrl+C to stop", zap.String("cron", cfg.Schedule.Cron))
	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
	return nil
}

// loadConfig reads .env, the config file and environment, then applies the
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command, o *overrides) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	path := o.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	set := func(name string) bool { return flags.Changed(name) }
	if set("market") {
		cfg.Market = o.market
	}
	if set("metric") {
		cfg.Metric = o.metric
	}
	if set("interval") {
		cfg.Window.Interval = o.interval
	}
	if set("range") || set("start") || set("weeks") || set("months") {
		cfg.Window.Range, cfg.Window.Start, cfg.Window.Weeks, cfg.Window.Months = o.rng, o.start, o.weeks, o.months
		if set("weeks") && o.weeks <= 0 || set("months") && o.months <= 0 {
			return nil, fmt.Errorf("--weeks and --months must be positive")
		}
	}
	if set("output") {
		cfg.OutputDir = o.output
	}
	if set("max-symbols") {
		cfg.MaxSymbols = o.maxSymbols
	}
	if set("chart") {
		cfg.Chart.Style = o.chart
	}
	if set("open") {
		cfg.OpenFolder = o.open
	}
	if set("provider") {
		cfg.DataSource.Provider = o.provider
	}
	if set("log-level") {
		cfg.Log.Level = o.logLevel
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}
