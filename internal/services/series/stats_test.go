package series

import (
	"math"
	"testing"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

func pts(values ...float64) []models.SeriesPoint {
	out := make([]models.SeriesPoint, len(values))
	for i, v := range values {
		out[i] = models.SeriesPoint{Period: 2020 + i, Value: v}
	}
	return out
}

func TestGrowthRates(t *testing.T) {
	got := GrowthRates(pts(100, 110, 121))
	if len(got) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(got))
	}
	for _, r := range got {
		if math.Abs(r-0.10) > 1e-9 {
			t.Fatalf("unexpected rate %v", r)
		}
	}
}

func TestGrowthRatesShortSeries(t *testing.T) {
	if got := GrowthRates(pts(100)); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestGrowthRatesZeroBase(t *testing.T) {
	got := GrowthRates(pts(0, 100))
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("zero base must yield zero rate, got %v", got)
	}
}

func TestMeanGrowth(t *testing.T) {
	got := MeanGrowth(pts(100, 120, 120))
	if math.Abs(got-0.10) > 1e-9 {
		t.Fatalf("expected 0.10, got %v", got)
	}
}

func TestCAGR(t *testing.T) {
	got := CAGR(pts(100, 0, 0, 0, 146.41))
	if math.Abs(got-0.10) > 1e-6 {
		t.Fatalf("expected ~0.10, got %v", got)
	}
}

func TestCAGRInvalid(t *testing.T) {
	if got := CAGR(pts(-100, 100)); got != 0 {
		t.Fatalf("expected 0 for negative base, got %v", got)
	}
	if got := CAGR(pts(100)); got != 0 {
		t.Fatalf("expected 0 for short series, got %v", got)
	}
}
