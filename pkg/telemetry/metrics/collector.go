package metrics

import (
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric of the relay. It satisfies the
// recorder interfaces of the failover, translation and chat packages, so a
// single instance is passed to all of them.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry
	enabled  bool

	instanceMetrics    *InstanceMetrics
	chatMetrics        *ChatMetrics
	translationMetrics *TranslationMetrics
	cacheMetrics       *CacheMetrics
	requestMetrics     *RequestMetrics
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one.
//
// Example:
//
//	cfg := &config.MetricsConfig{Namespace: "chatrelay"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		enabled:            cfg.IsEnabled(),
		instanceMetrics:    NewInstanceMetrics(cfg, registry),
		chatMetrics:        NewChatMetrics(cfg, registry),
		translationMetrics: NewTranslationMetrics(cfg, registry),
		cacheMetrics:       NewCacheMetrics(cfg, registry),
		requestMetrics:     NewRequestMetrics(cfg, registry),
	}
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordProbe records one instance health probe.
func (c *Collector) RecordProbe(instance string, healthy bool, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.instanceMetrics.RecordProbe(instance, healthy, duration)
}

// RecordSelection records which instance served a request and why.
func (c *Collector) RecordSelection(instance, reason string) {
	if !c.enabled {
		return
	}
	c.instanceMetrics.selections.WithLabelValues(instance, reason).Inc()
}

// SetInstanceHealth sets the health gauge of an instance (1=healthy, 0=unhealthy).
func (c *Collector) SetInstanceHealth(instance string, healthy bool) {
	if !c.enabled {
		return
	}
	c.instanceMetrics.health.WithLabelValues(instance).Set(boolToFloat(healthy))
}

// SetQuarantined sets the number of quarantined instances.
func (c *Collector) SetQuarantined(count int) {
	if !c.enabled {
		return
	}
	c.instanceMetrics.quarantined.Set(float64(count))
}

// RecordModelCache records a model cache lookup.
func (c *Collector) RecordModelCache(hit bool) {
	if !c.enabled {
		return
	}
	c.cacheMetrics.Record("models", hit)
}

// RecordTranslation records a translation gateway call.
func (c *Collector) RecordTranslation(op, result string) {
	if !c.enabled {
		return
	}
	c.translationMetrics.calls.WithLabelValues(op, result).Inc()
	if result == "cached" {
		c.cacheMetrics.Record("detections", true)
	} else if op == "detect" {
		c.cacheMetrics.Record("detections", false)
	}
}

// RecordChat records a finished chat request.
func (c *Collector) RecordChat(status string, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.chatMetrics.requests.WithLabelValues(status).Inc()
	c.chatMetrics.duration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordStreamChunk counts one relayed stream chunk.
func (c *Collector) RecordStreamChunk() {
	if !c.enabled {
		return
	}
	c.chatMetrics.chunks.Inc()
}

// SetSessions sets the number of known sessions.
func (c *Collector) SetSessions(count int) {
	if !c.enabled {
		return
	}
	c.chatMetrics.sessions.Set(float64(count))
}

// RecordHTTPRequest records one HTTP request by route pattern.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.requestMetrics.Record(route, method, status, duration)
}

// RecordRateLimited counts one rejected chat request.
func (c *Collector) RecordRateLimited(reason string) {
	if !c.enabled {
		return
	}
	c.requestMetrics.rateLimited.WithLabelValues(reason).Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
