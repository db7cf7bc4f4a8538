package repository

import (
	"context"
	"time"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Observation, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, o *models.Observation) error
	PublishBatch(ctx context.Context, obs []*models.Observation) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, o *models.Observation) error
	StoreBatch(ctx context.Context, obs []*models.Observation) error
	Query(ctx context.Context, ticker, metric string, from, to time.Time, limit int) ([]*models.Observation, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// PersistenceGateway mirrors named forecasts durably, keyed by conversation.
// (conversation_id, name) is unique with overwrite-on-conflict; names are
// matched case-insensitively.
type PersistenceGateway interface {
	Save(ctx context.Context, conversationID, name string, f models.ActiveForecast) error
	Load(ctx context.Context, conversationID, name string) (models.ActiveForecast, bool, error)
	List(ctx context.Context, conversationID string) ([]string, error)
}

type Metrics interface {
	RecordTurn(interaction string)
	RecordMessageSent(backend, ticker string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
