package repository

// Metric names the company metrics the service forecasts.
type Metric string

const (
	MetricRevenue   Metric = "revenue"
	MetricEPS       Metric = "eps"
	MetricNetIncome Metric = "net_income"
	MetricFCF       Metric = "fcf"
)

// IsValidMetric returns true if m is a supported metric.
func IsValidMetric(m Metric) bool {
	switch m {
	case MetricRevenue, MetricEPS, MetricNetIncome, MetricFCF:
		return true
	default:
		return false
	}
}

// DefaultMetric returns the metric assumed when a request names none.
func DefaultMetric() Metric { return MetricRevenue }

// NormalizeMetric converts raw string to a valid metric (or default).
func NormalizeMetric(s string) Metric {
	if s == "" {
		return DefaultMetric()
	}
	m := Metric(s)
	if IsValidMetric(m) {
		return m
	}
	return DefaultMetric()
}
