// Package tracing wires OpenTelemetry tracing into the relay.
//
// New installs a global tracer provider exporting over OTLP gRPC. Packages
// start spans through otel.Tracer(tracing.InstrumentationName), so spans
// are noops until tracing is enabled:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4317
//	    insecure: true
//	    sampler: ratio
//	    sample_ratio: 0.1
//
// HTTPMiddleware continues W3C traceparent headers from callers, and the
// backend and translation clients inject the current context into their
// outgoing requests, so a chat request forms one trace spanning the relay,
// the Ollama instance and the translation provider.
package tracing
