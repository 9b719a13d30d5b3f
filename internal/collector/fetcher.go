package collector

import (
	"context"

	"StockRanker/internal/model"
)

// Fetcher defines the interface for fetching market data.
// Bars are returned in ascending time order.
type Fetcher interface {
	FetchSeries(ctx context.Context, ticker string, w model.Window) ([]model.OHLCV, error)
	Name() string
}
