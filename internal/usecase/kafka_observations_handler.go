package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/haniae/Team2-CBA-Project-sub004/internal/domain/models"
	domrepo "github.com/haniae/Team2-CBA-Project-sub004/internal/domain/repository"
	pkgkafka "github.com/haniae/Team2-CBA-Project-sub004/pkg/kafka"
)

// KafkaObservationsHandler consumes Kafka messages and writes to storage.
type KafkaObservationsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaObservationsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaObservationsHandler {
	return &KafkaObservationsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

// incoming message schema: {ticker, metric, t, v}
func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Ticker string  `json:"ticker"`
		Metric string  `json:"metric"`
		T      int64   `json:"t"`
		V      float64 `json:"v"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Observation{
		Ticker:    m.Ticker,
		Metric:    m.Metric,
		Timestamp: m.T,
		Value:     m.V,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Ticker)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
