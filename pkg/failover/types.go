package failover

import "time"

// Instance is one backend server. Lower Priority values are preferred.
type Instance struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Priority int    `json:"priority"`
}

// Health states reported by Status.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// InstanceStatus is the result of a fresh probe of one instance.
type InstanceStatus struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Priority int      `json:"priority"`
	Status   string   `json:"status"`
	Current  bool     `json:"current"`
	Models   []string `json:"models,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Selection reasons passed to the metrics recorder.
const (
	ReasonSticky   = "sticky"
	ReasonFresh    = "fresh"
	ReasonProbed   = "probed"
	ReasonFallback = "fallback"
)

// Options configures a Manager.
type Options struct {
	// Freshness is how long a health check result is trusted.
	Freshness time.Duration

	// Quarantine is how long a failed instance is skipped.
	Quarantine time.Duration

	// ModelCacheTTL is how long a model listing is served from cache.
	ModelCacheTTL time.Duration

	// DefaultModel is pulled when the instance lists no models.
	DefaultModel string

	// PullOnEmpty enables the pull of DefaultModel.
	PullOnEmpty bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Recorder receives selection and probe metrics. Optional.
	Recorder Recorder
}
