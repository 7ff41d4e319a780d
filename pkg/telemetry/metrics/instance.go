package metrics

import (
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// InstanceMetrics tracks backend instance health and selection.
//
// Metrics:
//   - chatrelay_instance_probes_total: Probes by instance and result
//   - chatrelay_instance_probe_duration_seconds: Probe latency
//   - chatrelay_instance_healthy: Last probe outcome (1=healthy, 0=unhealthy)
//   - chatrelay_quarantined_instances: Instances currently quarantined
//   - chatrelay_instance_selections_total: Selections by instance and reason
type InstanceMetrics struct {
	probes        *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	health        *prometheus.GaugeVec
	quarantined   prometheus.Gauge
	selections    *prometheus.CounterVec
}

// NewInstanceMetrics creates and registers instance metrics.
func NewInstanceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *InstanceMetrics {
	im := &InstanceMetrics{
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "instance_probes_total",
				Help:      "Total number of instance health probes",
			},
			[]string{"instance", "result"},
		),

		probeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "instance_probe_duration_seconds",
				Help:      "Instance health probe latency in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"instance"},
		),

		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "instance_healthy",
				Help:      "Instance health from the last probe (1=healthy, 0=unhealthy)",
			},
			[]string{"instance"},
		),

		quarantined: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "quarantined_instances",
				Help:      "Number of instances currently quarantined",
			},
		),

		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "instance_selections_total",
				Help:      "Total number of instance selections by reason",
			},
			[]string{"instance", "reason"},
		),
	}

	registry.MustRegister(
		im.probes,
		im.probeDuration,
		im.health,
		im.quarantined,
		im.selections,
	)

	return im
}

// RecordProbe records a probe outcome and latency.
func (im *InstanceMetrics) RecordProbe(instance string, healthy bool, duration time.Duration) {
	result := "success"
	if !healthy {
		result = "failure"
	}
	im.probes.WithLabelValues(instance, result).Inc()
	im.probeDuration.WithLabelValues(instance).Observe(duration.Seconds())
}
