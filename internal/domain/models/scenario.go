package models

// ParameterKind is the closed set of scenario assumption kinds the parser
// can extract from a what-if clause.
type ParameterKind string

const (
	KindRevenueGrowth  ParameterKind = "revenue_growth"
	KindVolume         ParameterKind = "volume"
	KindCOGS           ParameterKind = "cogs"
	KindMargin         ParameterKind = "margin"
	KindMarketingSpend ParameterKind = "marketing_spend"
	KindGDP            ParameterKind = "gdp"
	KindPrice          ParameterKind = "price"
	KindInterestRate   ParameterKind = "interest_rate"
	KindTaxRate        ParameterKind = "tax_rate"
	KindMarketShare    ParameterKind = "market_share"
)

// MagnitudeUnit distinguishes percent-of-base moves from percentage-point
// shifts. Magnitudes are stored as fractions in both units (15% -> 0.15,
// 2pp -> 0.02).
type MagnitudeUnit string

const (
	UnitPercentOfBase    MagnitudeUnit = "percent"
	UnitPercentagePoints MagnitudeUnit = "pp"
)

// ScenarioParameter is one typed, signed assumption extracted from free text,
// always expressed relative to the current active baseline.
type ScenarioParameter struct {
	Kind      ParameterKind `json:"kind"`
	Magnitude float64       `json:"magnitude"`
	Unit      MagnitudeUnit `json:"unit"`
}

// ImpactRow is one line of the human-auditable scenario breakdown: the
// per-kind revenue effect (as a fraction of baseline revenue) and margin
// effect (in fractional percentage points).
type ImpactRow struct {
	Kind          ParameterKind `json:"kind"`
	RevenueEffect float64       `json:"revenue_effect"`
	MarginEffect  float64       `json:"margin_effect"`
}
