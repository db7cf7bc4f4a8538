package forecaster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	domsvc "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/service"
	icache "github.com/haniae/Team2-CBA-Project-sub004/internal/service/cache"
	"github.com/haniae/Team2-CBA-Project-sub004/internal/services/series"
	"github.com/haniae/Team2-CBA-Project-sub004/pkg/config"
)

// HTTPForecastModel implements the ForecastModel contract against the model
// service. One endpoint serves every model kind; the kind travels in the
// payload.
type HTTPForecastModel struct {
	base  *HTTPServiceBase
	cache icache.BytesCache
	ttl   config.ForecasterCacheTTL
}

func NewHTTPForecastModel(cfg *config.Config) *HTTPForecastModel {
	return &HTTPForecastModel{base: NewHTTPServiceBase(cfg), ttl: cfg.Forecaster.CacheTTL}
}

// SetCache enables response caching keyed by generation parameters.
func (f *HTTPForecastModel) SetCache(c icache.BytesCache) { f.cache = c }

type generateReq struct {
	Ticker   string               `json:"ticker"`
	Metric   string               `json:"metric"`
	Model    string               `json:"model"`
	Horizon  int                  `json:"horizon"`
	Series   []models.SeriesPoint `json:"series"`
	Features map[string]float64   `json:"features,omitempty"`
}

type generateResp struct {
	Points      []models.ForecastPoint `json:"points"`
	Confidence  float64                `json:"confidence"`
	Drivers     map[string]float64     `json:"drivers"`
	Performance map[string]float64     `json:"performance"`
	Model       string                 `json:"model"`
}

func (f *HTTPForecastModel) Generate(ctx context.Context, ticker, metric string, kind models.ModelKind, horizon int, history []models.SeriesPoint) (models.ForecastResult, error) {
	var result models.ForecastResult

	key := cacheKey(ticker, metric, kind, horizon, history)
	if f.cache != nil {
		if b, ok, _ := f.cache.GetBytes(key); ok {
			if err := json.Unmarshal(b, &result); err == nil {
				return result, nil
			}
		}
	}

	req := generateReq{
		Ticker:  ticker,
		Metric:  metric,
		Model:   string(kind),
		Horizon: horizon,
		Series:  history,
		Features: map[string]float64{
			"mean_growth": series.MeanGrowth(history),
			"cagr":        series.CAGR(history),
		},
	}

	var gr generateResp
	if err := f.base.PostJSONWithRetry(ctx, "/forecast", req, &gr, 2); err != nil {
		return result, fmt.Errorf("generate %s/%s: %w", ticker, metric, err)
	}
	if err := validateResp(&gr, horizon); err != nil {
		return result, fmt.Errorf("generate %s/%s: %w", ticker, metric, err)
	}

	result = models.ForecastResult{
		Ticker:      ticker,
		Metric:      metric,
		Model:       kind,
		Horizon:     horizon,
		Points:      gr.Points,
		Confidence:  gr.Confidence,
		Drivers:     gr.Drivers,
		Performance: gr.Performance,
	}

	if f.cache != nil {
		if b, err := json.Marshal(result); err == nil {
			_ = f.cache.SetBytes(key, b, f.ttl.Generate)
		}
	}
	return result, nil
}

// validateResp enforces the collaborator contract: confidence in [0,1] and
// one point per horizon period.
func validateResp(gr *generateResp, horizon int) error {
	if gr.Confidence < 0 || gr.Confidence > 1 {
		return fmt.Errorf("confidence %.3f out of [0,1]", gr.Confidence)
	}
	if len(gr.Points) != horizon {
		return fmt.Errorf("got %d points, want %d", len(gr.Points), horizon)
	}
	return nil
}

func cacheKey(ticker, metric string, kind models.ModelKind, horizon int, history []models.SeriesPoint) string {
	last := 0
	if len(history) > 0 {
		last = history[len(history)-1].Period
	}
	return fmt.Sprintf("forecast:%s:%s:%s:%d:%d:%d", ticker, metric, kind, horizon, len(history), last)
}

var _ domsvc.ForecastModel = (*HTTPForecastModel)(nil)
