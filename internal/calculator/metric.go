package calculator

import (
	"errors"
	"math"

	"StockRanker/internal/model"
)

var (
	ErrInsufficientData = errors.New("fewer than two valid closes")
	ErrZeroBase         = errors.New("base close is zero")
	ErrNonFinite        = errors.New("metric is not finite")
)

// CalculateReturn returns the percent change from the first to the last valid close.
func CalculateReturn(bars []model.OHLCV) (float64, error) {
	closes := validCloses(bars)
	if len(closes) < 2 {
		return 0, ErrInsufficientData
	}
	return percentChange(closes[0], closes[len(closes)-1])
}

// CalculateChange returns the percent change between the last two valid closes.
func CalculateChange(bars []model.OHLCV) (float64, error) {
	closes := validCloses(bars)
	if len(closes) < 2 {
		return 0, ErrInsufficientData
	}
	return percentChange(closes[len(closes)-2], closes[len(closes)-1])
}

// CalculatePeakRatio divides the last valid close of bars by the highest close in history.
// The returned peak is that highest close.
func CalculatePeakRatio(bars, history []model.OHLCV) (ratio, peak float64, err error) {
	closes := validCloses(bars)
	if len(closes) < 2 {
		return 0, 0, ErrInsufficientData
	}
	peak, _, err = CalculateCloseRange(history)
	if err != nil {
		return 0, 0, err
	}
	if peak == 0 {
		return 0, 0, ErrZeroBase
	}
	ratio = closes[len(closes)-1] / peak
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0, 0, ErrNonFinite
	}
	return ratio, peak, nil
}

func percentChange(from, to float64) (float64, error) {
	if from == 0 {
		return 0, ErrZeroBase
	}
	pct := (to - from) / from * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, ErrNonFinite
	}
	return pct, nil
}
