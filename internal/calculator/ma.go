package calculator

import (
	"errors"

	"StockRanker/internal/model"
)

// CalculateSMASeries returns the rolling SMA of bar closes.
// Element i is the average ending at bars[i+period-1].
func CalculateSMASeries(bars []model.OHLCV, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	closes := extractCloses(bars)
	if len(closes) < period {
		return nil, errors.New("not enough data for SMA calculation")
	}
	out := make([]float64, 0, len(closes)-period+1)
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out = append(out, sum/float64(period))
		}
	}
	return out, nil
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
