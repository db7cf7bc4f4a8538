package service

import (
	"context"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

// ForecastModel produces forecasts from a historical series. Implementations
// wrap concrete backends (statistical or neural) selected by kind; the engine
// treats them as a single synchronous unit of work per turn.
//
// Contract: on success the result carries confidence in [0,1] and one
// (point, lower, upper) triple per horizon period. Drivers and Performance
// are optional and may be nil.
type ForecastModel interface {
	Generate(ctx context.Context, ticker, metric string, kind models.ModelKind, horizon int, history []models.SeriesPoint) (models.ForecastResult, error)
}
