package metrics

import (
	"github.com/Wartem/llm-chat-lite/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ChatMetrics tracks chat requests.
//
// Metrics:
//   - chatrelay_chat_requests_total: Chat requests by final status
//   - chatrelay_chat_duration_seconds: Chat request duration by final status
//   - chatrelay_stream_chunks_total: Chunks relayed to clients
//   - chatrelay_sessions: Sessions held in memory
type ChatMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	chunks   prometheus.Counter
	sessions prometheus.Gauge
}

// NewChatMetrics creates and registers chat metrics.
func NewChatMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ChatMetrics {
	cm := &ChatMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "chat_requests_total",
				Help:      "Total number of chat requests by final status",
			},
			[]string{"status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "chat_duration_seconds",
				Help:      "Chat request duration in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"status"},
		),

		chunks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "stream_chunks_total",
				Help:      "Total number of reply chunks relayed to clients",
			},
		),

		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "sessions",
				Help:      "Number of chat sessions held in memory",
			},
		),
	}

	registry.MustRegister(cm.requests, cm.duration, cm.chunks, cm.sessions)

	return cm
}
