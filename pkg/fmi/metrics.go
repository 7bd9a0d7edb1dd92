package fmi

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors for upstream requests.
type Metrics struct {
	Requests        *prometheus.CounterVec   // labels: query={observation,forecast}, outcome={success,client_fault,server_fault,no_data,transport_error}
	RequestDuration *prometheus.HistogramVec // labels: query
	DecodeErrors    prometheus.Counter
	BreakerOpen     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// uses the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fmi_weather",
			Name:      "upstream_requests_total",
			Help:      "FMI stored query requests by query and classified outcome.",
		}, []string{"query", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fmi_weather",
			Name:      "upstream_request_duration_seconds",
			Help:      "FMI stored query round trip duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"query"}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fmi_weather",
			Name:      "decode_errors_total",
			Help:      "Responses that did not match the coverage document structure.",
		}),
		BreakerOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fmi_weather",
			Name:      "circuit_breaker_open",
			Help:      "1 while the upstream circuit breaker is open, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.DecodeErrors,
		m.BreakerOpen,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
