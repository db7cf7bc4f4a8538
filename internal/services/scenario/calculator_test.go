package scenario

import (
	"math"
	"strings"
	"testing"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

func baseline(values ...float64) models.ForecastResult {
	points := make([]models.ForecastPoint, len(values))
	for i, v := range values {
		points[i] = models.ForecastPoint{Period: 2026 + i, Value: v, Lower: v * 0.9, Upper: v * 1.1}
	}
	return models.ForecastResult{
		Ticker:     "AAPL",
		Metric:     "revenue",
		Model:      models.ModelARIMA,
		Horizon:    len(values),
		Points:     points,
		Confidence: 0.8,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyVolumeScalesRevenue(t *testing.T) {
	base := baseline(100, 110, 121)
	params := []models.ScenarioParameter{
		{Kind: models.KindVolume, Magnitude: 0.10, Unit: models.UnitPercentOfBase},
	}

	adjusted, rows, warnings := Apply(base, params)

	want := []float64{110, 121, 133.1}
	for i, p := range adjusted.Points {
		if !almostEqual(p.Value, want[i]) {
			t.Fatalf("point %d: got %v, want %v", i, p.Value, want[i])
		}
	}
	if len(rows) != 1 || !almostEqual(rows[0].RevenueEffect, 0.10) {
		t.Fatalf("unexpected breakdown %+v", rows)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestApplyPreservesBoundsRatioAndConfidence(t *testing.T) {
	base := baseline(100)
	params := []models.ScenarioParameter{
		{Kind: models.KindPrice, Magnitude: 0.20, Unit: models.UnitPercentOfBase},
	}

	adjusted, _, _ := Apply(base, params)

	p := adjusted.Points[0]
	if !almostEqual(p.Value, 120) || !almostEqual(p.Lower, 108) || !almostEqual(p.Upper, 132) {
		t.Fatalf("bounds not scaled uniformly: %+v", p)
	}
	if adjusted.Confidence != base.Confidence {
		t.Fatalf("confidence must not be recomputed: got %v", adjusted.Confidence)
	}
	// baseline untouched
	if base.Points[0].Value != 100 {
		t.Fatalf("baseline mutated: %v", base.Points[0].Value)
	}
}

func TestApplyMarketingSpendSplitsEffect(t *testing.T) {
	base := baseline(100)
	params := []models.ScenarioParameter{
		{Kind: models.KindMarketingSpend, Magnitude: 0.20, Unit: models.UnitPercentOfBase},
	}

	adjusted, rows, _ := Apply(base, params)

	// +20% marketing spend: +5% revenue, -2pp margin.
	if !almostEqual(adjusted.Points[0].Value, 105) {
		t.Fatalf("unexpected value %v", adjusted.Points[0].Value)
	}
	if !almostEqual(rows[0].RevenueEffect, 0.05) {
		t.Fatalf("unexpected revenue effect %v", rows[0].RevenueEffect)
	}
	if !almostEqual(rows[0].MarginEffect, -0.02) {
		t.Fatalf("unexpected margin effect %v", rows[0].MarginEffect)
	}
}

func TestApplyCompoundsMultiplicatively(t *testing.T) {
	base := baseline(100)
	params := []models.ScenarioParameter{
		{Kind: models.KindVolume, Magnitude: 0.10, Unit: models.UnitPercentOfBase},
		{Kind: models.KindPrice, Magnitude: -0.05, Unit: models.UnitPercentOfBase},
	}

	adjusted, _, _ := Apply(base, params)

	// 1.10 * 0.95 = 1.045, never 1.05.
	if !almostEqual(adjusted.Points[0].Value, 104.5) {
		t.Fatalf("expected 104.5, got %v", adjusted.Points[0].Value)
	}
}

func TestApplyOrderIndependent(t *testing.T) {
	base := baseline(100)
	a := []models.ScenarioParameter{
		{Kind: models.KindVolume, Magnitude: 0.10, Unit: models.UnitPercentOfBase},
		{Kind: models.KindGDP, Magnitude: 0.02, Unit: models.UnitPercentOfBase},
	}
	b := []models.ScenarioParameter{a[1], a[0]}

	ra, _, _ := Apply(base, a)
	rb, _, _ := Apply(base, b)
	if !almostEqual(ra.Points[0].Value, rb.Points[0].Value) {
		t.Fatalf("order dependent: %v vs %v", ra.Points[0].Value, rb.Points[0].Value)
	}
}

func TestApplyCOGSHitsMarginOnly(t *testing.T) {
	base := baseline(100)
	params := []models.ScenarioParameter{
		{Kind: models.KindCOGS, Magnitude: 0.10, Unit: models.UnitPercentOfBase},
	}

	adjusted, rows, _ := Apply(base, params)

	if !almostEqual(adjusted.Points[0].Value, 100) {
		t.Fatalf("COGS must not move revenue: %v", adjusted.Points[0].Value)
	}
	if !almostEqual(rows[0].MarginEffect, -0.05) {
		t.Fatalf("unexpected margin effect %v", rows[0].MarginEffect)
	}
}

func TestApplyIdentityKindStillAppearsInBreakdown(t *testing.T) {
	base := baseline(100)
	params := []models.ScenarioParameter{
		{Kind: models.KindInterestRate, Magnitude: 0.01, Unit: models.UnitPercentagePoints},
	}

	adjusted, rows, _ := Apply(base, params)

	if !almostEqual(adjusted.Points[0].Value, 100) {
		t.Fatalf("identity kind must not move revenue: %v", adjusted.Points[0].Value)
	}
	if len(rows) != 1 || rows[0].Kind != models.KindInterestRate {
		t.Fatalf("identity kind missing from breakdown: %+v", rows)
	}
	if rows[0].RevenueEffect != 0 || rows[0].MarginEffect != 0 {
		t.Fatalf("identity kind must carry zero effects: %+v", rows[0])
	}
}

func TestApplySanityBoundWarning(t *testing.T) {
	base := baseline(100)
	params := []models.ScenarioParameter{
		{Kind: models.KindCOGS, Magnitude: 0.80, Unit: models.UnitPercentOfBase},
	}

	adjusted, _, warnings := Apply(base, params)

	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "cogs") {
		t.Fatalf("warning should name the kind: %q", warnings[0])
	}
	// Warning is advisory: the calculation still ran.
	if !almostEqual(adjusted.Points[0].Value, 100) {
		t.Fatalf("calculation should still run: %v", adjusted.Points[0].Value)
	}
}

func TestCombinedMultiplier(t *testing.T) {
	params := []models.ScenarioParameter{
		{Kind: models.KindVolume, Magnitude: 0.10, Unit: models.UnitPercentOfBase},
		{Kind: models.KindMarketingSpend, Magnitude: 0.20, Unit: models.UnitPercentOfBase},
	}
	mult, margin := CombinedMultiplier(params)
	if !almostEqual(mult, 1.10*1.05) {
		t.Fatalf("unexpected multiplier %v", mult)
	}
	if !almostEqual(margin, -0.02) {
		t.Fatalf("unexpected margin shift %v", margin)
	}
}
