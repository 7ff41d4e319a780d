package metrics

import (
	"github.com/Wartem/llm-chat-lite/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// TranslationMetrics tracks translation gateway calls.
//
// Metrics:
//   - chatrelay_translations_total: Calls by operation and result
//     (success, fallback, skipped, cached)
type TranslationMetrics struct {
	calls *prometheus.CounterVec
}

// NewTranslationMetrics creates and registers translation metrics.
func NewTranslationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TranslationMetrics {
	tm := &TranslationMetrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "translations_total",
				Help:      "Total number of translation gateway calls by operation and result",
			},
			[]string{"op", "result"},
		),
	}

	registry.MustRegister(tm.calls)

	return tm
}
