package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockRanker/internal/model"
)

func barsFromCloses(closes ...float64) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

func TestCalculateReturn_Scenario(t *testing.T) {
	got, err := CalculateReturn(barsFromCloses(100, 110, 121))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-21.0) > 1e-9 {
		t.Errorf("expected 21.0, got %.6f", got)
	}
}

func TestCalculateReturn_MatchesFormula(t *testing.T) {
	tests := []struct {
		closes []float64
	}{
		{[]float64{50, 25}},
		{[]float64{3.5, 7, 1, 9.25}},
		{[]float64{-10, 5}},
		{[]float64{1000, 999.99}},
	}
	for _, tt := range tests {
		got, err := CalculateReturn(barsFromCloses(tt.closes...))
		if err != nil {
			t.Fatalf("closes %v: unexpected error: %v", tt.closes, err)
		}
		p0, pN := tt.closes[0], tt.closes[len(tt.closes)-1]
		want := (pN - p0) / p0 * 100
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("closes %v: expected %.6f, got %.6f", tt.closes, want, got)
		}
	}
}

func TestMetrics_NoMetric(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		closes []float64
		want   error
	}{
		{"empty", nil, ErrInsufficientData},
		{"single", []float64{10}, ErrInsufficientData},
		{"one valid close", []float64{nan, 10, math.Inf(1)}, ErrInsufficientData},
		{"zero base", []float64{0, 10}, ErrZeroBase},
	}
	for _, tt := range tests {
		bars := barsFromCloses(tt.closes...)
		if _, err := CalculateReturn(bars); !errors.Is(err, tt.want) {
			t.Errorf("%s: CalculateReturn error = %v, want %v", tt.name, err, tt.want)
		}
		if _, _, err := CalculatePeakRatio(bars, barsFromCloses(20)); tt.want == ErrInsufficientData && !errors.Is(err, tt.want) {
			t.Errorf("%s: CalculatePeakRatio error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestCalculateReturn_SkipsInvalidCloses(t *testing.T) {
	got, err := CalculateReturn(barsFromCloses(math.NaN(), 100, math.NaN(), 150))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 50 {
		t.Errorf("expected 50, got %.4f", got)
	}
}

func TestCalculateChange(t *testing.T) {
	got, err := CalculateChange(barsFromCloses(90, 200, 210))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-5.0) > 1e-9 {
		t.Errorf("expected 5.0, got %.6f", got)
	}
	if _, err := CalculateChange(barsFromCloses(1, 0, 5)); !errors.Is(err, ErrZeroBase) {
		t.Errorf("expected ErrZeroBase, got %v", err)
	}
}

func TestCalculatePeakRatio(t *testing.T) {
	ratio, peak, err := CalculatePeakRatio(barsFromCloses(80, 90), barsFromCloses(50, 120, 100, 90))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak != 120 {
		t.Errorf("expected peak 120, got %.2f", peak)
	}
	if math.Abs(ratio-0.75) > 1e-9 {
		t.Errorf("expected ratio 0.75, got %.6f", ratio)
	}

	if _, _, err := CalculatePeakRatio(barsFromCloses(1, 2), nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty history: expected ErrInsufficientData, got %v", err)
	}
	if _, _, err := CalculatePeakRatio(barsFromCloses(1, 2), barsFromCloses(0, 0)); !errors.Is(err, ErrZeroBase) {
		t.Errorf("zero peak: expected ErrZeroBase, got %v", err)
	}
}

func TestCalculateSMASeries(t *testing.T) {
	got, err := CalculateSMASeries(barsFromCloses(1, 2, 3, 4, 5), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("point %d: expected %.2f, got %.2f", i, want[i], got[i])
		}
	}
	if _, err := CalculateSMASeries(barsFromCloses(1, 2), 3); err == nil {
		t.Error("expected error for short series")
	}
}

func TestCalculateRSI(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	rsi, err := CalculateRSI(barsFromCloses(rising...), RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 100 {
		t.Errorf("expected RSI 100 for a strictly rising series, got %.2f", rsi)
	}
	if _, err := CalculateRSI(barsFromCloses(1, 2, 3), RSIPeriod); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}
