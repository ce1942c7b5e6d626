package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	scoringDuration prometheus.Histogram
}

// NewMetrics creates and registers the collectors on a fresh registry, so
// tests can build isolated instances.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flipscope",
			Name:      "http_requests_total",
			Help:      "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flipscope",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flipscope",
			Name:      "scoring_duration_seconds",
			Help:      "Time spent in uncached scoring runs.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}

	reg.MustRegister(m.requests, m.requestDuration, m.scoringDuration)
	return m
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(path, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(path, method, statusLabel(status)).Inc()
	m.requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// ObserveScoring records one uncached engine run.
func (m *Metrics) ObserveScoring(elapsed time.Duration) {
	m.scoringDuration.Observe(elapsed.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}
