package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	domrepo "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/repository"
	pkgch "github.com/haniae/Team2-CBA-Project-sub004/pkg/clickhouse"
	applogger "github.com/haniae/Team2-CBA-Project-sub004/pkg/logger"
)

// CHSeriesStore implements SeriesStore backed by ClickHouse. Periods are
// fiscal years derived from observation timestamps; the latest observation
// within a period wins.
type CHSeriesStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSeriesStore(ch *pkgch.Client, table string) *CHSeriesStore {
	return &CHSeriesStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSeriesStore) GetSeries(ctx context.Context, ticker, metric string, fromPeriod, toPeriod int) ([]models.SeriesPoint, error) {
	start := time.Now()
	const qtpl = `
        SELECT toYear(ts) AS period, argMax(value, ts) AS value
        FROM %s
        WHERE ticker = ? AND metric = ?
        GROUP BY period
        HAVING period >= ? AND period <= ?
        ORDER BY period ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, ticker, metric, fromPeriod, toPeriod)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_series query error",
				applogger.String("ticker", ticker),
				applogger.String("metric", metric),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	out := make([]models.SeriesPoint, 0, 32)
	for rows.Next() {
		var p models.SeriesPoint
		if err := rows.Scan(&p.Period, &p.Value); err != nil {
			return nil, fmt.Errorf("scan series point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_series ok",
			applogger.String("ticker", ticker),
			applogger.String("metric", metric),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHSeriesStore) GetLatestNPeriods(ctx context.Context, ticker, metric string, n int) ([]models.SeriesPoint, error) {
	start := time.Now()
	const qtpl = `
        SELECT toYear(ts) AS period, argMax(value, ts) AS value
        FROM %s
        WHERE ticker = ? AND metric = ?
        GROUP BY period
        ORDER BY period DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, ticker, metric, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_periods query error",
				applogger.String("ticker", ticker),
				applogger.String("metric", metric),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest periods: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.SeriesPoint, 0, n)
	for rows.Next() {
		var p models.SeriesPoint
		if err := rows.Scan(&p.Period, &p.Value); err != nil {
			return nil, fmt.Errorf("scan series point: %w", err)
		}
		tmp = append(tmp, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_periods ok",
			applogger.String("ticker", ticker),
			applogger.String("metric", metric),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

var _ domrepo.SeriesStore = (*CHSeriesStore)(nil)
