package calculator

import (
	"math"

	"StockRanker/internal/model"
)

// CalculateCloseRange returns the highest and lowest valid close in bars.
func CalculateCloseRange(bars []model.OHLCV) (high, low float64, err error) {
	closes := validCloses(bars)
	if len(closes) == 0 {
		return 0, 0, ErrInsufficientData
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range closes {
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}
	return high, low, nil
}

// validCloses drops NaN and infinite closes, keeping order.
func validCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			continue
		}
		closes = append(closes, b.Close)
	}
	return closes
}
