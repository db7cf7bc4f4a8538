package models

// InteractionType tags how a follow-up turn was classified. Fresh forecast
// requests (no classification match) carry InteractionForecast.
type InteractionType string

const (
	InteractionForecast        InteractionType = "forecast"
	InteractionSave            InteractionType = "save"
	InteractionCompare         InteractionType = "compare"
	InteractionModelSwitch     InteractionType = "model_switch"
	InteractionParameterAdjust InteractionType = "parameter_adjust"
	InteractionScenario        InteractionType = "scenario"
	InteractionConfidence      InteractionType = "confidence"
	InteractionExplainability  InteractionType = "explainability"
)

// ExplainPayload carries driver attributions for the active forecast.
// Limited is set when the model returned no attribution, so the renderer can
// say so instead of failing.
type ExplainPayload struct {
	Drivers     map[string]float64 `json:"drivers,omitempty"`
	Performance map[string]float64 `json:"performance,omitempty"`
	Limited     bool               `json:"limited"`
}

// IntervalWidth is the confidence band of one forecast period.
type IntervalWidth struct {
	Period int     `json:"period"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Width  float64 `json:"width"`
}

// ConfidencePayload carries the scalar model confidence plus per-period
// interval widths.
type ConfidencePayload struct {
	Score     float64         `json:"score"`
	Intervals []IntervalWidth `json:"intervals"`
}

// ComparisonRow is one period of a side-by-side forecast comparison.
// Delta = Other - Base.
type ComparisonRow struct {
	Period int     `json:"period"`
	Base   float64 `json:"base"`
	Other  float64 `json:"other"`
	Delta  float64 `json:"delta"`
}

// ComparisonPayload is a per-period comparison of two forecasts, used by
// model switches, horizon changes, and compare-to-named requests.
type ComparisonPayload struct {
	BaseLabel       string          `json:"base_label"`
	OtherLabel      string          `json:"other_label"`
	BaseConfidence  float64         `json:"base_confidence"`
	OtherConfidence float64         `json:"other_confidence"`
	Rows            []ComparisonRow `json:"rows"`
}

// ScenarioPayload is the auditable outcome of a scenario application. The
// breakdown is always surfaced alongside the adjusted numbers.
type ScenarioPayload struct {
	Breakdown         []ImpactRow `json:"breakdown"`
	RevenueMultiplier float64     `json:"revenue_multiplier"`
	MarginShift       float64     `json:"margin_shift"`
}

// SavePayload reports a named save. Durable is false when the in-memory save
// succeeded but the durable mirror failed.
type SavePayload struct {
	Name    string `json:"name"`
	Durable bool   `json:"durable"`
}

// TurnOutcome is the structured result of one conversation turn, handed to
// the response renderer. Exactly the sections relevant to Type are set; the
// engine never emits prose.
type TurnOutcome struct {
	ConversationID string             `json:"conversation_id"`
	Type           InteractionType    `json:"type"`
	Forecast       *ForecastResult    `json:"forecast,omitempty"`
	Explain        *ExplainPayload    `json:"explain,omitempty"`
	Confidence     *ConfidencePayload `json:"confidence,omitempty"`
	Comparison     *ComparisonPayload `json:"comparison,omitempty"`
	Scenario       *ScenarioPayload   `json:"scenario,omitempty"`
	Save           *SavePayload       `json:"save,omitempty"`
	KnownNames     []string           `json:"known_names,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
}
