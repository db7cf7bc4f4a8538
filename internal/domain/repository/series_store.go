package repository

import (
	"context"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

// SeriesStore provides read-only access to historical metric series for
// forecasting. Points come back ordered by period ascending.
type SeriesStore interface {
	GetSeries(ctx context.Context, ticker, metric string, fromPeriod, toPeriod int) ([]models.SeriesPoint, error)
	GetLatestNPeriods(ctx context.Context, ticker, metric string, n int) ([]models.SeriesPoint, error)
}
