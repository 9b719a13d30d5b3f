package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"StockRanker/internal/collector"
	"StockRanker/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Market     string                  `yaml:"market"`
	Markets    map[string]MarketConfig `yaml:"markets"`
	Metric     string                  `yaml:"metric"`
	Window     WindowConfig            `yaml:"window"`
	OutputDir  string                  `yaml:"output_dir"`
	MaxSymbols int                     `yaml:"max_symbols"`
	Chart      ChartConfig             `yaml:"chart"`
	OpenFolder bool                    `yaml:"open_folder"`
	DataSource struct {
		Provider string `yaml:"provider"` // "yahoo" or "alpaca"
		BaseURL  string `yaml:"base_url"`
		Alpaca   struct {
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
			Feed      string `yaml:"feed"`
		} `yaml:"alpaca"`
	} `yaml:"data_source"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Top      int    `yaml:"top"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Log   LogConfig `yaml:"log"`
	Proxy string    `yaml:"proxy"`
}

// MarketConfig maps a market name to its ticker suffix and symbol list.
type MarketConfig struct {
	Suffix      string `yaml:"suffix"`
	SymbolsFile string `yaml:"symbols_file"`
}

// WindowConfig selects the chart data window. Exactly one of Range, Start,
// Weeks or Months is used, in that order of precedence.
type WindowConfig struct {
	Range    string `yaml:"range"`
	Start    string `yaml:"start"` // YYYY-MM-DD
	Weeks    int    `yaml:"weeks"`
	Months   int    `yaml:"months"`
	Interval string `yaml:"interval"`
}

// ChartConfig controls image rendering.
type ChartConfig struct {
	Style          string  `yaml:"style"` // "line" or "candle"
	MovingAverages []int   `yaml:"moving_averages"`
	Width          float64 `yaml:"width"`  // inches
	Height         float64 `yaml:"height"` // inches
	DPI            int     `yaml:"dpi"`
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level      string `yaml:"level"`       // "debug", "info", "warn", "error"
	Format     string `yaml:"format"`      // "console" or "json"
	OutputFile string `yaml:"output_file"` // optional rotated log file
}

const dateLayout = "2006-01-02"

// DefaultMaxSymbols caps the symbol list when max_symbols is absent. 0 disables the cap.
const DefaultMaxSymbols = 500

var (
	validIntervals = map[string]bool{
		"1m": true, "2m": true, "5m": true, "15m": true, "30m": true, "60m": true, "90m": true,
		"1h": true, "1d": true, "5d": true, "1wk": true, "1mo": true, "3mo": true,
	}
	rangePattern = regexp.MustCompile(`^(\d+(d|wk|mo|y)|ytd|max)$`)
)

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{MaxSymbols: DefaultMaxSymbols}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("RANKER_MARKET"); v != "" {
		cfg.Market = v
	}
	if v := os.Getenv("RANKER_METRIC"); v != "" {
		cfg.Metric = v
	}
	if v := os.Getenv("RANKER_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("RANKER_MAX_SYMBOLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxSymbols = n
		}
	}
	if v := os.Getenv("RANKER_RANGE"); v != "" {
		cfg.Window.Range = v
	}
	if v := os.Getenv("RANKER_INTERVAL"); v != "" {
		cfg.Window.Interval = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.DataSource.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.DataSource.Alpaca.APISecret = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if len(cfg.Markets) == 0 {
		cfg.Markets = map[string]MarketConfig{
			"us":    {Suffix: "", SymbolsFile: "data/us.csv"},
			"india": {Suffix: ".NS", SymbolsFile: "data/india.csv"},
		}
	}
	if cfg.Market == "" {
		cfg.Market = "us"
	}
	cfg.Market = strings.ToLower(cfg.Market)
	if cfg.Metric == "" {
		cfg.Metric = string(model.MetricReturn)
	}
	w := &cfg.Window
	if w.Range == "" && w.Start == "" && w.Weeks == 0 && w.Months == 0 {
		w.Range = "1y"
	}
	if w.Interval == "" {
		w.Interval = "1d"
	}
	if cfg.Chart.Style == "" {
		cfg.Chart.Style = "line"
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 12
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 6
	}
	if cfg.Chart.DPI == 0 {
		cfg.Chart.DPI = 150
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Alpaca.Feed == "" {
		cfg.DataSource.Alpaca.Feed = "iex"
	}
	if cfg.Telegram.Top == 0 {
		cfg.Telegram.Top = 10
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 30 16 * * 1-5"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Normalize fills unset fields with defaults again, for callers that edit a
// loaded Config.
func (c *Config) Normalize() {
	applyDefaults(c)
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if _, ok := c.Markets[c.Market]; !ok {
		return fmt.Errorf("unknown market %q (configured: %s)", c.Market, strings.Join(c.MarketNames(), ", "))
	}
	if !model.MetricKind(c.Metric).Valid() {
		return fmt.Errorf("metric must be one of return, change, ath; got %q", c.Metric)
	}
	w := c.Window
	if !validIntervals[w.Interval] {
		return fmt.Errorf("invalid interval %q", w.Interval)
	}
	if w.Range != "" && !rangePattern.MatchString(w.Range) {
		return fmt.Errorf("invalid range %q", w.Range)
	}
	if w.Start != "" {
		if _, err := time.Parse(dateLayout, w.Start); err != nil {
			return fmt.Errorf("window.start must be YYYY-MM-DD: %w", err)
		}
	}
	if w.Weeks < 0 || w.Months < 0 {
		return fmt.Errorf("window duration must be positive")
	}
	if c.MaxSymbols < 0 {
		return fmt.Errorf("max_symbols must not be negative")
	}
	if c.Chart.Style != "line" && c.Chart.Style != "candle" {
		return fmt.Errorf("chart.style must be line or candle; got %q", c.Chart.Style)
	}
	for _, p := range c.Chart.MovingAverages {
		if p <= 1 {
			return fmt.Errorf("chart.moving_averages periods must be > 1; got %d", p)
		}
	}
	switch c.DataSource.Provider {
	case "yahoo":
	case "alpaca":
		if c.DataSource.Alpaca.APIKey == "" || c.DataSource.Alpaca.APISecret == "" {
			return fmt.Errorf("data_source.alpaca api_key and api_secret are required")
		}
		if !collector.AlpacaSupports(w.Interval) {
			return fmt.Errorf("interval %q is not available from alpaca", w.Interval)
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// MarketNames lists the configured markets in sorted order.
func (c *Config) MarketNames() []string {
	names := make([]string, 0, len(c.Markets))
	for name := range c.Markets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectedMarket returns the active market settings.
func (c *Config) SelectedMarket() MarketConfig {
	return c.Markets[c.Market]
}

// ResolveWindow turns the window settings into a concrete fetch window.
// Month lookbacks count 30 days per month.
func (c *Config) ResolveWindow(now time.Time) (model.Window, error) {
	w := c.Window
	out := model.Window{Interval: w.Interval}
	switch {
	case w.Range != "":
		out.Range = w.Range
	case w.Start != "":
		start, err := time.Parse(dateLayout, w.Start)
		if err != nil {
			return model.Window{}, fmt.Errorf("parse window.start: %w", err)
		}
		out.Start = start
	case w.Weeks > 0:
		out.Start = now.AddDate(0, 0, -7*w.Weeks)
	case w.Months > 0:
		out.Start = now.AddDate(0, 0, -30*w.Months)
	default:
		return model.Window{}, fmt.Errorf("no data window configured")
	}
	return out, nil
}

// ResolveOutputDir returns the configured output directory, or a name derived
// from the window when none is set.
func (c *Config) ResolveOutputDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	w := c.Window
	switch {
	case w.Range != "":
		return "graph" + w.Range
	case w.Start != "":
		return "graph_custom"
	case w.Weeks > 0:
		return fmt.Sprintf("%dweeks%s", w.Weeks, w.Interval)
	default:
		return fmt.Sprintf("%dmonths%s", w.Months, w.Interval)
	}
}
