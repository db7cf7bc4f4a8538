// Package scenario computes the quantitative impact of what-if assumptions
// on a baseline forecast. Revenue drivers compound multiplicatively, margin
// shifts add in percentage points.
package scenario

import (
	"fmt"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

// impact holds the fixed per-kind multipliers. revenueScale is applied to the
// magnitude before entering the (1+effect) product; marginScale before the
// additive margin shift. Kinds absent from this table parse and validate but
// carry no effect: the breakdown still records them.
type impact struct {
	revenueScale float64
	marginScale  float64
}

var impactTable = map[models.ParameterKind]impact{
	models.KindRevenueGrowth:  {revenueScale: 1.0},
	models.KindVolume:         {revenueScale: 1.0},
	models.KindPrice:          {revenueScale: 1.0},
	models.KindCOGS:           {marginScale: -0.5},
	models.KindMargin:         {revenueScale: 0.3, marginScale: 1.0},
	models.KindMarketingSpend: {revenueScale: 0.25, marginScale: -0.1},
	models.KindGDP:            {revenueScale: 0.5},
}

// sanityBounds are advisory per-kind magnitude limits. Violations produce
// warnings, never block calculation.
var sanityBounds = map[models.ParameterKind]float64{
	models.KindRevenueGrowth: 1.00,
	models.KindPrice:         0.50,
	models.KindCOGS:          0.50,
	models.KindMargin:        0.20,
	models.KindInterestRate:  0.05,
	models.KindTaxRate:       0.15,
	models.KindMarketShare:   0.10,
}

// Apply adjusts a baseline forecast by the given scenario parameters.
//
// Revenue effects from different kinds compound multiplicatively:
// volume +10% and price -5% combine to 1.10 * 0.95, not 1.05. Margin
// effects sum. Every period is scaled uniformly, the period structure is
// preserved, and confidence is deliberately not recomputed: a scenario
// result carries lower implicit trust and the breakdown must travel with
// the numbers.
func Apply(baseline models.ForecastResult, params []models.ScenarioParameter) (models.ForecastResult, []models.ImpactRow, []string) {
	multiplier := 1.0
	marginShift := 0.0
	rows := make([]models.ImpactRow, 0, len(params))
	var warnings []string

	for _, p := range params {
		eff := impactTable[p.Kind]
		row := models.ImpactRow{
			Kind:          p.Kind,
			RevenueEffect: eff.revenueScale * p.Magnitude,
			MarginEffect:  eff.marginScale * p.Magnitude,
		}
		multiplier *= 1 + row.RevenueEffect
		marginShift += row.MarginEffect
		rows = append(rows, row)

		if w := checkBound(p); w != "" {
			warnings = append(warnings, w)
		}
	}

	adjusted := baseline.Clone()
	for i := range adjusted.Points {
		adjusted.Points[i].Value *= multiplier
		adjusted.Points[i].Lower *= multiplier
		adjusted.Points[i].Upper *= multiplier
	}

	return adjusted, rows, warnings
}

// CombinedMultiplier returns the compounded revenue multiplier and additive
// margin shift for a parameter set without touching a forecast.
func CombinedMultiplier(params []models.ScenarioParameter) (float64, float64) {
	multiplier := 1.0
	marginShift := 0.0
	for _, p := range params {
		eff := impactTable[p.Kind]
		multiplier *= 1 + eff.revenueScale*p.Magnitude
		marginShift += eff.marginScale * p.Magnitude
	}
	return multiplier, marginShift
}

func checkBound(p models.ScenarioParameter) string {
	bound, ok := sanityBounds[p.Kind]
	if !ok {
		return ""
	}
	mag := p.Magnitude
	if mag < 0 {
		mag = -mag
	}
	if mag <= bound {
		return ""
	}
	if p.Unit == models.UnitPercentagePoints {
		return fmt.Sprintf("%s magnitude %.1fpp exceeds sanity bound %.1fpp", p.Kind, p.Magnitude*100, bound*100)
	}
	return fmt.Sprintf("%s magnitude %.0f%% exceeds sanity bound %.0f%%", p.Kind, p.Magnitude*100, bound*100)
}
