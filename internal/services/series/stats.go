package series

import (
	"math"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

// GrowthRates computes period-over-period growth g_t = v_t/v_{t-1} - 1.
// It returns a slice of length len(points)-1, or nil if insufficient data.
func GrowthRates(points []models.SeriesPoint) []float64 {
	if len(points) < 2 {
		return nil
	}
	out := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value
		cur := points[i].Value
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, cur/prev-1)
	}
	return out
}

// MeanGrowth returns the average period-over-period growth rate.
func MeanGrowth(points []models.SeriesPoint) float64 {
	rates := GrowthRates(points)
	if len(rates) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rates {
		sum += r
	}
	return sum / float64(len(rates))
}

// CAGR computes the compound annual growth rate between the first and last
// points, or 0 when the series is too short or crosses zero.
func CAGR(points []models.SeriesPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	first := points[0].Value
	last := points[len(points)-1].Value
	periods := points[len(points)-1].Period - points[0].Period
	if periods <= 0 || first <= 0 || last <= 0 {
		return 0
	}
	return math.Pow(last/first, 1/float64(periods)) - 1
}
