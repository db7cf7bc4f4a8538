package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	TurnLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fincast",
			Subsystem: "conversation",
			Name:      "latency_seconds",
			Help:      "Latency of conversation endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	TurnErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fincast",
			Subsystem: "conversation",
			Name:      "errors_total",
			Help:      "Errors by conversation endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(TurnLatency, TurnErrors)
	})
}
