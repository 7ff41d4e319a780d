package metrics

import (
	"strconv"
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks HTTP requests.
//
// Metrics:
//   - chatrelay_http_requests_total: Requests by route, method and status
//   - chatrelay_http_request_duration_seconds: Request duration by route
//   - chatrelay_rate_limited_total: Chat requests rejected by the per-client limiter
//
// Routes are mux patterns, not raw paths, which keeps label cardinality bounded.
type RequestMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rateLimited *prometheus.CounterVec
}

// NewRequestMetrics creates and registers HTTP request metrics.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds, including streamed bodies",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"route"},
		),

		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rate_limited_total",
				Help:      "Chat requests rejected by the per-client rate limiter",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(rm.requests, rm.duration, rm.rateLimited)

	return rm
}

// Record records one request.
func (rm *RequestMetrics) Record(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	rm.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	rm.duration.WithLabelValues(route).Observe(duration.Seconds())
}
