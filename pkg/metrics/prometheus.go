package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registerOnce sync.Once
	turnsTotal   *prometheus.CounterVec
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
)

func initMetricsOnce() {
	registerOnce.Do(func() {
		turnsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_turns_total",
				Help: "Total number of conversation turns by interaction type",
			},
			[]string{"interaction"},
		)
		messagesSent = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_messages_sent_total",
				Help: "Total number of observations sent to backend",
			},
			[]string{"backend", "ticker"},
		)
		errorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fincast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		)
		latency = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fincast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)
	})
}

// Recorder implements domain.repository.Metrics using Prometheus. Collectors
// are registered once per process; every Recorder shares them.
type Recorder struct {
	turnsTotal   *prometheus.CounterVec
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder over the shared collectors.
func New() *Recorder {
	initMetricsOnce()
	return &Recorder{
		turnsTotal:   turnsTotal,
		messagesSent: messagesSent,
		errorsTotal:  errorsTotal,
		latency:      latency,
	}
}

// RecordTurn records one handled conversation turn.
func (r *Recorder) RecordTurn(interaction string) {
	r.turnsTotal.WithLabelValues(interaction).Inc()
}

// RecordMessageSent records an observation sent to a backend.
func (r *Recorder) RecordMessageSent(backend, ticker string) {
	r.messagesSent.WithLabelValues(backend, ticker).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
