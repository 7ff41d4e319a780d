// Package failover selects the backend instance that serves chat traffic.
//
// # Selection
//
// Instances are tried in ascending priority order. The current instance is
// reused without a probe while its last check is within the freshness window
// (30s by default). Otherwise quarantined instances are skipped and each
// remaining instance with a stale record is probed (GET /api/tags, 2s). The
// first instance that passes becomes current. A failed probe quarantines the
// instance for 60s. When a pass finds nothing, the previous current instance
// is returned even if stale; with no previous instance the caller gets a
// NoBackendError.
//
// # Shared state
//
// The health cache, quarantine set, model cache and current instance are
// separate objects, each behind its own mutex. Locks are never held across
// network calls, so concurrent requests may probe the same instance twice;
// the later result simply overwrites the earlier one.
//
// # Model listing
//
// Every successful selection probe refreshes the single process-wide model
// cache. AvailableModels serves the cache for 30s, then lists the current
// instance again, falling back to the last good listing on failure.
// EnsureModel returns the first listed model, or asks the instance to pull
// the configured default model when nothing is listed.
package failover
