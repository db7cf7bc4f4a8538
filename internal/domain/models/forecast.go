package models

import "time"

// ModelKind identifies a forecasting backend. New backends implement the
// service.ForecastModel contract and register a kind here.
type ModelKind string

const (
	ModelARIMA       ModelKind = "arima"
	ModelETS         ModelKind = "ets"
	ModelProphet     ModelKind = "prophet"
	ModelLSTM        ModelKind = "lstm"
	ModelTransformer ModelKind = "transformer"
	ModelEnsemble    ModelKind = "ensemble"
)

// ModelKinds lists every supported backend kind.
func ModelKinds() []ModelKind {
	return []ModelKind{ModelARIMA, ModelETS, ModelProphet, ModelLSTM, ModelTransformer, ModelEnsemble}
}

// IsValidModelKind returns true if k is a supported backend kind.
func IsValidModelKind(k ModelKind) bool {
	switch k {
	case ModelARIMA, ModelETS, ModelProphet, ModelLSTM, ModelTransformer, ModelEnsemble:
		return true
	default:
		return false
	}
}

// DefaultModelKind returns the backend used when a request names none.
func DefaultModelKind() ModelKind { return ModelARIMA }

// SeriesPoint is one historical observation of a company metric,
// keyed by fiscal period (year).
type SeriesPoint struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
}

// ForecastPoint is one forecast period with confidence bounds.
type ForecastPoint struct {
	Period int     `json:"period"`
	Value  float64 `json:"value"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// ForecastResult is the output of a ForecastModel call. It is immutable:
// scenario adjustments and regenerations always build a new value.
type ForecastResult struct {
	Ticker      string             `json:"ticker"`
	Metric      string             `json:"metric"`
	Model       ModelKind          `json:"model"`
	Horizon     int                `json:"horizon"`
	Points      []ForecastPoint    `json:"points"`
	Confidence  float64            `json:"confidence"`
	Drivers     map[string]float64 `json:"drivers,omitempty"`
	Performance map[string]float64 `json:"performance,omitempty"`
}

// Clone returns a deep copy so callers can hold a ForecastResult without
// sharing slices or maps with the original.
func (r ForecastResult) Clone() ForecastResult {
	out := r
	out.Points = make([]ForecastPoint, len(r.Points))
	copy(out.Points, r.Points)
	if r.Drivers != nil {
		out.Drivers = make(map[string]float64, len(r.Drivers))
		for k, v := range r.Drivers {
			out.Drivers[k] = v
		}
	}
	if r.Performance != nil {
		out.Performance = make(map[string]float64, len(r.Performance))
		for k, v := range r.Performance {
			out.Performance[k] = v
		}
	}
	return out
}

// HasDrivers reports whether the model returned attribution weights.
func (r ForecastResult) HasDrivers() bool { return len(r.Drivers) > 0 }

// GenerationParams are the knobs a forecast was generated with. They travel
// with the ActiveForecast so follow-ups can regenerate with one knob changed.
type GenerationParams struct {
	Model           ModelKind `json:"model"`
	Horizon         int       `json:"horizon"`
	ExcludedPeriods []int     `json:"excluded_periods,omitempty"`
}

// Clone returns a copy with an independent ExcludedPeriods slice.
func (p GenerationParams) Clone() GenerationParams {
	out := p
	if p.ExcludedPeriods != nil {
		out.ExcludedPeriods = make([]int, len(p.ExcludedPeriods))
		copy(out.ExcludedPeriods, p.ExcludedPeriods)
	}
	return out
}

// ActiveForecast is the forecast a conversation is currently talking about:
// a ForecastResult plus the scenario parameters applied to reach it (empty if
// it is a model baseline) and the generation parameters that produced it.
// It is replaced wholesale on every regeneration, never partially mutated.
type ActiveForecast struct {
	Result    ForecastResult      `json:"result"`
	Applied   []ScenarioParameter `json:"applied,omitempty"`
	Params    GenerationParams    `json:"params"`
	CreatedAt time.Time           `json:"created_at"`
}

// Clone returns a deep copy of the active forecast.
func (a ActiveForecast) Clone() ActiveForecast {
	out := a
	out.Result = a.Result.Clone()
	out.Params = a.Params.Clone()
	if a.Applied != nil {
		out.Applied = make([]ScenarioParameter, len(a.Applied))
		copy(out.Applied, a.Applied)
	}
	return out
}

// IsScenario reports whether this forecast was derived by scenario adjustment
// rather than produced directly by a model.
func (a ActiveForecast) IsScenario() bool { return len(a.Applied) > 0 }
