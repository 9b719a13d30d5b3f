package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"StockRanker/internal/model"
)

// alpacaTimeFrames maps Yahoo-style intervals onto Alpaca time frames.
var alpacaTimeFrames = map[string]marketdata.TimeFrame{
	"1m":  marketdata.NewTimeFrame(1, marketdata.Min),
	"2m":  marketdata.NewTimeFrame(2, marketdata.Min),
	"5m":  marketdata.NewTimeFrame(5, marketdata.Min),
	"15m": marketdata.NewTimeFrame(15, marketdata.Min),
	"30m": marketdata.NewTimeFrame(30, marketdata.Min),
	"60m": marketdata.NewTimeFrame(1, marketdata.Hour),
	"1h":  marketdata.NewTimeFrame(1, marketdata.Hour),
	"1d":  marketdata.NewTimeFrame(1, marketdata.Day),
	"1wk": marketdata.NewTimeFrame(1, marketdata.Week),
	"1mo": marketdata.NewTimeFrame(1, marketdata.Month),
	"3mo": marketdata.NewTimeFrame(3, marketdata.Month),
}

// AlpacaSupports reports whether interval can be requested from Alpaca.
func AlpacaSupports(interval string) bool {
	_, ok := alpacaTimeFrames[interval]
	return ok
}

// AlpacaFetcher implements Fetcher using Alpaca's historical bars endpoint.
// Only US listings are available.
type AlpacaFetcher struct {
	Client *marketdata.Client
	Feed   string
	now    func() time.Time
}

// NewAlpacaFetcher creates a fetcher for the given credentials. An empty
// baseURL keeps the SDK default.
func NewAlpacaFetcher(apiKey, apiSecret, baseURL, feed, proxyURL string) *AlpacaFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		Feed:      marketdata.Feed(feed),
		// The SDK takes no context, so the client timeout bounds each call.
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
	if baseURL != "" {
		opts.BaseURL = baseURL
	}
	return &AlpacaFetcher{
		Client: marketdata.NewClient(opts),
		Feed:   feed,
		now:    time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func alpacaTimeFrame(interval string) (marketdata.TimeFrame, error) {
	tf, ok := alpacaTimeFrames[interval]
	if !ok {
		return marketdata.TimeFrame{}, fmt.Errorf("alpaca: unsupported interval %q", interval)
	}
	return tf, nil
}

// FetchSeries downloads split-adjusted bars of ticker within w. A cancelled
// ctx returns immediately; the abandoned request ends at the client timeout.
func (f *AlpacaFetcher) FetchSeries(ctx context.Context, ticker string, w model.Window) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tf, err := alpacaTimeFrame(w.Interval)
	if err != nil {
		return nil, err
	}

	now := f.now()
	start, keepLast := w.Start, 0
	if w.Range != "" {
		var days int
		start, days, err = rangeStart(w.Range, now)
		if err != nil {
			return nil, fmt.Errorf("alpaca: %w", err)
		}
		if days > 0 && w.Interval == "1d" {
			// "Nd" means N sessions; reach back past weekends and holidays.
			start = now.AddDate(0, 0, -(days + 7))
			keepLast = days
		}
	}

	type result struct {
		bars []marketdata.Bar
		err  error
	}
	done := make(chan result, 1)
	go func() {
		bars, err := f.Client.GetBars(ticker, marketdata.GetBarsRequest{
			TimeFrame:  tf,
			Adjustment: marketdata.Split,
			Start:      start,
			End:        now,
			Feed:       marketdata.Feed(f.Feed),
		})
		done <- result{bars, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("alpaca fetch: %w", res.err)
	}

	out := fromAlpacaBars(res.bars)
	if keepLast > 0 && len(out) > keepLast {
		out = out[len(out)-keepLast:]
	}
	return out, nil
}

func fromAlpacaBars(bars []marketdata.Bar) []model.OHLCV {
	out := make([]model.OHLCV, len(bars))
	for i, b := range bars {
		out[i] = model.OHLCV{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}
	return out
}
