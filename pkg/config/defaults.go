package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "0.0.0.0:5012"
	DefaultReadTimeout     = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRateLimitIdle   = 10 * time.Minute
	DefaultTLSMinVersion   = "1.2"

	// Health defaults
	DefaultProbeTimeout = 2 * time.Second
	DefaultFreshness    = 30 * time.Second
	DefaultQuarantine   = 60 * time.Second

	// Model defaults
	DefaultModelCacheTTL = 30 * time.Second
	DefaultModel         = "llama2"
	DefaultPullTimeout   = 2 * time.Second

	// Chat defaults
	DefaultHistoryLimit  = 20
	DefaultSessionID     = "default"
	DefaultStreamTimeout = 5 * time.Minute

	// Translation defaults
	DefaultTranslationURL     = "http://127.0.0.1:5000"
	DefaultTranslationTimeout = 10 * time.Second
	DefaultTranslationTries   = 3
	DefaultTranslationDelay   = 1 * time.Second
	DefaultDetectCacheSize    = 100

	// Theme defaults
	DefaultThemePath = "config.json"

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "chatrelay"
	DefaultTracingSampler   = "ratio"
	DefaultSampleRatio      = 0.1
	DefaultOTLPEndpoint     = "localhost:4317"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultServiceName      = "chatrelay"
	DefaultLivenessPath     = "/health"
	DefaultReadinessPath    = "/ready"
	DefaultCheckTimeout     = 5 * time.Second
)

// DefaultCollapsePrefixes are the base languages reported without region.
var DefaultCollapsePrefixes = []string{"sv"}

// DefaultDurationBuckets are chat duration histogram buckets in seconds.
var DefaultDurationBuckets = []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// ApplyDefaults fills zero-valued fields with their defaults.
// Boolean switches stored as pointers are left nil; their accessors treat nil as enabled.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyHealthDefaults(&cfg.Health)
	applyModelsDefaults(&cfg.Models)
	applyChatDefaults(&cfg.Chat)
	applyTranslationDefaults(&cfg.Translation)

	if cfg.Theme.Path == "" {
		cfg.Theme.Path = DefaultThemePath
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(s.CORS.AllowedOrigins) == 0 {
		s.CORS.AllowedOrigins = []string{"*"}
	}
	if s.RateLimit.Burst == 0 {
		s.RateLimit.Burst = s.RateLimit.RequestsPerMinute
	}
	if s.RateLimit.IdleTTL == 0 {
		s.RateLimit.IdleTTL = DefaultRateLimitIdle
	}
	if s.TLS.Enabled() && s.TLS.MinVersion == "" {
		s.TLS.MinVersion = DefaultTLSMinVersion
	}
}

func applyHealthDefaults(h *HealthConfig) {
	if h.ProbeTimeout == 0 {
		h.ProbeTimeout = DefaultProbeTimeout
	}
	if h.Freshness == 0 {
		h.Freshness = DefaultFreshness
	}
	if h.Quarantine == 0 {
		h.Quarantine = DefaultQuarantine
	}
}

func applyModelsDefaults(m *ModelsConfig) {
	if m.CacheTTL == 0 {
		m.CacheTTL = DefaultModelCacheTTL
	}
	if m.DefaultModel == "" {
		m.DefaultModel = DefaultModel
	}
	if m.PullTimeout == 0 {
		m.PullTimeout = DefaultPullTimeout
	}
}

func applyChatDefaults(c *ChatConfig) {
	if c.HistoryLimit == 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.DefaultSession == "" {
		c.DefaultSession = DefaultSessionID
	}
	if c.StreamTimeout == 0 {
		c.StreamTimeout = DefaultStreamTimeout
	}
}

func applyTranslationDefaults(t *TranslationConfig) {
	if t.ProviderURL == "" {
		t.ProviderURL = DefaultTranslationURL
	}
	if t.RequestTimeout == 0 {
		t.RequestTimeout = DefaultTranslationTimeout
	}
	if t.MaxAttempts == 0 {
		t.MaxAttempts = DefaultTranslationTries
	}
	if t.RetryDelay == 0 {
		t.RetryDelay = DefaultTranslationDelay
	}
	if t.DetectCacheSize == 0 {
		t.DetectCacheSize = DefaultDetectCacheSize
	}
	if t.CollapsePrefixes == nil {
		t.CollapsePrefixes = append([]string(nil), DefaultCollapsePrefixes...)
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLogLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLogFormat
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.Sampler == DefaultTracingSampler && t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultSampleRatio
	}
	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = DefaultOTLPEndpoint
	}
	if t.Tracing.Timeout == 0 {
		t.Tracing.Timeout = DefaultTracingTimeout
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultServiceName
	}
	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultReadinessPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultCheckTimeout
	}
}
