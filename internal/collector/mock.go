package collector

import (
	"context"
	"time"

	"StockRanker/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Tickers without an entry in Series get generated bars around Price.
type MockFetcher struct {
	Price   float64
	Count   int
	Series  map[string][]model.OHLCV // chart window, by ticker
	History map[string][]model.OHLCV // "max" window, by ticker
	Errors  map[string]error
	Calls   []string // tickers requested, in order
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, ticker string, w model.Window) ([]model.OHLCV, error) {
	m.Calls = append(m.Calls, ticker)
	if err, ok := m.Errors[ticker]; ok {
		return nil, err
	}
	if w.Range == "max" {
		if bars, ok := m.History[ticker]; ok {
			return bars, nil
		}
	}
	if bars, ok := m.Series[ticker]; ok {
		return bars, nil
	}
	count := m.Count
	if count == 0 {
		count = 30
	}
	return generateMockBars(m.Price, count), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// BarsFromCloses builds daily bars with the given closes, for tests and demos.
func BarsFromCloses(closes ...float64) []model.OHLCV {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}
