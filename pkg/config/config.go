package config

import "time"

// Config is the root configuration structure for the chat relay.
// It contains all configuration sections for the different subsystems.
type Config struct {
	// Server contains HTTP listener configuration.
	Server ServerConfig `yaml:"server"`

	// Instances is the inline backend registry. Each entry names one
	// Ollama-compatible server and its selection priority.
	Instances []InstanceConfig `yaml:"instances"`

	// InstancesFile optionally points at a JSON registry in the
	// {"ollama_instances": [...]} layout. Entries are appended to Instances.
	// Relative paths are resolved against the configuration file directory.
	InstancesFile string `yaml:"instances_file"`

	// Health controls probing, stickiness and quarantine of instances.
	Health HealthConfig `yaml:"health"`

	// Models controls the model listing cache and model pulls.
	Models ModelsConfig `yaml:"models"`

	// Chat controls session history and streaming.
	Chat ChatConfig `yaml:"chat"`

	// Translation configures the translation gateway.
	Translation TranslationConfig `yaml:"translation"`

	// Theme configures the UI theme store.
	Theme ThemeConfig `yaml:"theme"`

	// Telemetry contains logging, metrics and health endpoint settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// ListenAddress is the host:port to listen on.
	// Default: "0.0.0.0:5012"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Zero disables the timeout, which long-lived event streams need.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on keep-alive connections.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// StaticDir, when set, is served at "/".
	StaticDir string `yaml:"static_dir"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// RateLimit bounds chat requests per client address.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// TLS serves HTTPS when a certificate is configured.
	TLS TLSConfig `yaml:"tls"`
}

// RateLimitConfig limits chat requests per client address. Zero values
// disable the corresponding limit.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained chat request rate per client.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Burst is the number of requests a client may make at once.
	// Default: RequestsPerMinute
	Burst int `yaml:"burst"`

	// MaxConcurrent bounds open chat streams per client.
	MaxConcurrent int `yaml:"max_concurrent"`

	// IdleTTL is how long an idle client's state is kept.
	// Default: 10m
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// TLSConfig configures HTTPS.
type TLSConfig struct {
	// CertFile and KeyFile are PEM files. Both empty serves plain HTTP.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// MinVersion is "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// Watch reloads the certificate when either file changes.
	// Default: true
	Watch *bool `yaml:"watch"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are written.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists origins allowed to call the API. "*" allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// InstanceConfig describes one backend instance.
type InstanceConfig struct {
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Priority int    `yaml:"priority" json:"priority"`
}

// HealthConfig controls instance health checking.
type HealthConfig struct {
	// ProbeTimeout bounds every liveness probe.
	// Default: 2s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// Freshness is how long a health check result is trusted. The current
	// instance is reused without a probe inside this window.
	// Default: 30s
	Freshness time.Duration `yaml:"freshness"`

	// Quarantine is how long a failed instance is skipped.
	// Default: 60s
	Quarantine time.Duration `yaml:"quarantine"`

	// SweepSchedule is an optional cron expression for background probing.
	// Empty disables the sweep. Example: "@every 30s"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// ModelsConfig controls model discovery.
type ModelsConfig struct {
	// CacheTTL is how long a model listing is served from cache.
	// Default: 30s
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// DefaultModel is pulled when an instance lists no models.
	// Default: "llama2"
	DefaultModel string `yaml:"default_model"`

	// PullOnEmpty enables the pull of DefaultModel.
	// Default: true
	PullOnEmpty *bool `yaml:"pull_on_empty"`

	// PullTimeout bounds the pull request.
	// Default: 2s
	PullTimeout time.Duration `yaml:"pull_timeout"`
}

// ChatConfig controls the chat orchestrator.
type ChatConfig struct {
	// HistoryLimit is the number of messages kept per session.
	// Default: 20
	HistoryLimit int `yaml:"history_limit"`

	// DefaultSession is used when a request carries no session id.
	// Default: "default"
	DefaultSession string `yaml:"default_session"`

	// StreamTimeout bounds one backend chat stream.
	// Default: 5m
	StreamTimeout time.Duration `yaml:"stream_timeout"`
}

// TranslationConfig configures the translation gateway.
type TranslationConfig struct {
	// Enabled turns translation on. When false, every message is treated as English.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// ProviderURL is the base URL of a LibreTranslate-compatible service.
	// Default: "http://127.0.0.1:5000"
	ProviderURL string `yaml:"provider_url"`

	// APIKey is sent to the provider when set.
	APIKey string `yaml:"api_key"`

	// RequestTimeout bounds each provider call.
	// Default: 10s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxAttempts is the number of attempts per translation.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// RetryDelay is the fixed delay between attempts.
	// Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay"`

	// DetectCacheSize bounds the language detection memo.
	// Default: 100
	DetectCacheSize int `yaml:"detect_cache_size"`

	// CollapsePrefixes lists base languages whose regional variants are
	// reported as the bare code (e.g. "sv-FI" becomes "sv").
	// Default: ["sv"]
	CollapsePrefixes []string `yaml:"collapse_prefixes"`
}

// ThemeConfig configures the theme store.
type ThemeConfig struct {
	// Path is the JSON theme file.
	// Default: "config.json"
	Path string `yaml:"path"`

	// Watch reloads the file when it changes on disk.
	// Default: true
	Watch *bool `yaml:"watch"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig     `yaml:"logging"`
	Metrics MetricsConfig     `yaml:"metrics"`
	Tracing TracingConfig     `yaml:"tracing"`
	Health  HealthCheckConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource adds file:line to log records.
	AddSource bool `yaml:"add_source"`

	// RedactPII masks API keys, emails and bearer tokens in log values.
	// Default: true
	RedactPII *bool `yaml:"redact_pii"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "chatrelay"
	Namespace string `yaml:"namespace"`

	// DurationBuckets are the histogram buckets for chat duration in seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled turns on span export.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is "always", "never" or "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of root traces sampled when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address (host:port).
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "chatrelay"
	ServiceName string `yaml:"service_name"`
}

// HealthCheckConfig contains health endpoint configuration.
type HealthCheckConfig struct {
	// LivenessPath default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// PullEnabled reports whether empty instances get a model pull.
func (m ModelsConfig) PullEnabled() bool {
	return m.PullOnEmpty == nil || *m.PullOnEmpty
}

// IsEnabled reports whether translation is enabled.
func (t TranslationConfig) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// WatchEnabled reports whether the theme file is watched.
func (t ThemeConfig) WatchEnabled() bool {
	return t.Watch == nil || *t.Watch
}

// RedactEnabled reports whether PII redaction is on.
func (l LoggingConfig) RedactEnabled() bool {
	return l.RedactPII == nil || *l.RedactPII
}

// Enabled reports whether any rate limit is configured.
func (r RateLimitConfig) Enabled() bool {
	return r.RequestsPerMinute > 0 || r.MaxConcurrent > 0
}

// Enabled reports whether HTTPS is configured.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" || t.KeyFile != ""
}

// WatchEnabled reports whether certificate files are watched.
func (t TLSConfig) WatchEnabled() bool {
	return t.Watch == nil || *t.Watch
}

// IsEnabled reports whether metrics are exposed.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}
