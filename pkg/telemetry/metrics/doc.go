// Package metrics provides Prometheus metrics for the chat relay.
//
// # Metrics Categories
//
//   - Instance Metrics: probe outcomes and latency, health gauges,
//     quarantine size and selection reasons
//   - Chat Metrics: request outcomes, duration, relayed chunks and sessions
//   - Translation Metrics: gateway calls by operation and result
//   - Cache Metrics: model listing and language detection cache hits
//   - Request Metrics: HTTP requests by route pattern
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	manager := failover.NewManager(registry, client, failover.Options{
//		Recorder: collector,
//	})
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A collector whose configuration disables metrics still registers its
// metric vectors but drops every recording.
package metrics
