package metrics

import (
	"github.com/Wartem/llm-chat-lite/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks cache performance.
//
// Metrics:
//   - chatrelay_cache_hits_total: Cache hits by cache name ("models", "detections")
//   - chatrelay_cache_misses_total: Cache misses by cache name
type CacheMetrics struct {
	hitsTotal   *prometheus.CounterVec
	missesTotal *prometheus.CounterVec
}

// NewCacheMetrics creates and registers cache metrics.
func NewCacheMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),

		missesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(cm.hitsTotal, cm.missesTotal)

	return cm
}

// Record records a hit or miss on the named cache.
func (cm *CacheMetrics) Record(cache string, hit bool) {
	if hit {
		cm.hitsTotal.WithLabelValues(cache).Inc()
	} else {
		cm.missesTotal.WithLabelValues(cache).Inc()
	}
}
