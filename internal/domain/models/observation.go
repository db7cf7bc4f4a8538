package models

// Observation is one raw metric data point flowing through the ingestion
// pipeline (stream -> kafka/clickhouse). Timestamp is unix seconds.
type Observation struct {
	Ticker    string
	Metric    string
	Timestamp int64
	Value     float64
}
