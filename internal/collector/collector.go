package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockRanker/internal/calculator"
	"StockRanker/internal/model"
)

// ErrInsufficientData is returned when a source yields fewer than two bars.
var ErrInsufficientData = errors.New("insufficient data")

// Collector fetches one symbol's bars and scores them.
type Collector struct {
	Fetcher Fetcher
	Suffix  string // appended to every symbol, e.g. ".NS"
	Window  model.Window
	Metric  model.MetricKind
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, suffix string, w model.Window, metric model.MetricKind) *Collector {
	return &Collector{Fetcher: fetcher, Suffix: suffix, Window: w, Metric: metric}
}

// Ticker returns the data-source identifier for symbol.
func (c *Collector) Ticker(symbol string) string {
	return symbol + c.Suffix
}

// Collect fetches the chart window for symbol and computes its metric.
// The returned entry is not ranked yet.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.RankedEntry, error) {
	ticker := c.Ticker(symbol)
	bars, err := c.Fetcher.FetchSeries(ctx, ticker, c.Window)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if len(bars) < 2 {
		return nil, fmt.Errorf("%s: %w (%d bars)", ticker, ErrInsufficientData, len(bars))
	}

	metric, err := c.measure(ctx, ticker, bars)
	if err != nil {
		return nil, err
	}

	return &model.RankedEntry{
		Symbol: symbol,
		Metric: metric,
		Series: model.PriceSeries{
			Symbol:    symbol,
			Ticker:    ticker,
			Bars:      bars,
			FetchedAt: time.Now(),
		},
	}, nil
}

func (c *Collector) measure(ctx context.Context, ticker string, bars []model.OHLCV) (model.Metric, error) {
	m := model.Metric{Kind: c.Metric}
	var err error
	switch c.Metric {
	case model.MetricReturn:
		m.Value, err = calculator.CalculateReturn(bars)
	case model.MetricChange:
		m.Value, err = calculator.CalculateChange(bars)
	case model.MetricATH:
		var history []model.OHLCV
		history, err = c.Fetcher.FetchSeries(ctx, ticker, model.MaxHistory())
		if err != nil {
			return m, fmt.Errorf("fetch %s history: %w", ticker, err)
		}
		m.Value, m.Peak, err = calculator.CalculatePeakRatio(bars, history)
	default:
		return m, fmt.Errorf("unknown metric %q", c.Metric)
	}
	if err != nil {
		return m, fmt.Errorf("%s %s: %w", ticker, c.Metric, err)
	}
	return m, nil
}
