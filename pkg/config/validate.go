package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateInstances(cfg.Instances)...)
	errs = append(errs, validateHealth(&cfg.Health)...)
	errs = append(errs, validateModels(&cfg.Models)...)
	errs = append(errs, validateChat(&cfg.Chat)...)
	errs = append(errs, validateTranslation(&cfg.Translation)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "must not be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "must not be negative"})
	}

	rl := cfg.RateLimit
	if rl.RequestsPerMinute < 0 {
		errs = append(errs, FieldError{Field: "server.rate_limit.requests_per_minute", Message: "must not be negative"})
	}
	if rl.Burst < 0 || (rl.RequestsPerMinute > 0 && rl.Burst == 0) {
		errs = append(errs, FieldError{Field: "server.rate_limit.burst", Message: "must be positive when a rate is set"})
	}
	if rl.MaxConcurrent < 0 {
		errs = append(errs, FieldError{Field: "server.rate_limit.max_concurrent", Message: "must not be negative"})
	}

	if cfg.TLS.Enabled() {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{Field: "server.tls", Message: "cert_file and key_file must be set together"})
		}
		switch cfg.TLS.MinVersion {
		case "1.2", "1.3":
		default:
			errs = append(errs, FieldError{
				Field:   "server.tls.min_version",
				Message: fmt.Sprintf("invalid TLS version %q: must be '1.2' or '1.3'", cfg.TLS.MinVersion),
			})
		}
	}

	return errs
}

func validateInstances(instances []InstanceConfig) []FieldError {
	var errs []FieldError

	if len(instances) == 0 {
		return []FieldError{{
			Field:   "instances",
			Message: "at least one instance is required",
		}}
	}

	seen := make(map[string]bool, len(instances))
	for i, inst := range instances {
		prefix := fmt.Sprintf("instances[%d]", i)

		if inst.Name == "" {
			errs = append(errs, FieldError{Field: prefix + ".name", Message: "name is required"})
		} else if seen[inst.Name] {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate instance name %q", inst.Name),
			})
		}
		seen[inst.Name] = true

		u, err := url.Parse(inst.URL)
		if inst.URL == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".url",
				Message: fmt.Sprintf("invalid URL %q: must be an absolute http or https URL", inst.URL),
			})
		}
	}

	return errs
}

func validateHealth(cfg *HealthConfig) []FieldError {
	var errs []FieldError

	if cfg.ProbeTimeout <= 0 {
		errs = append(errs, FieldError{Field: "health.probe_timeout", Message: "must be positive"})
	}
	if cfg.Freshness <= 0 {
		errs = append(errs, FieldError{Field: "health.freshness", Message: "must be positive"})
	}
	if cfg.Quarantine <= 0 {
		errs = append(errs, FieldError{Field: "health.quarantine", Message: "must be positive"})
	}
	if cfg.SweepSchedule != "" {
		if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "health.sweep_schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.SweepSchedule, err),
			})
		}
	}

	return errs
}

func validateModels(cfg *ModelsConfig) []FieldError {
	var errs []FieldError

	if cfg.CacheTTL <= 0 {
		errs = append(errs, FieldError{Field: "models.cache_ttl", Message: "must be positive"})
	}
	if cfg.PullEnabled() && cfg.DefaultModel == "" {
		errs = append(errs, FieldError{
			Field:   "models.default_model",
			Message: "default model is required when pull_on_empty is enabled",
		})
	}

	return errs
}

func validateChat(cfg *ChatConfig) []FieldError {
	var errs []FieldError

	if cfg.HistoryLimit < 2 {
		errs = append(errs, FieldError{
			Field:   "chat.history_limit",
			Message: fmt.Sprintf("history limit %d is too small: must hold at least one exchange", cfg.HistoryLimit),
		})
	}
	if cfg.StreamTimeout <= 0 {
		errs = append(errs, FieldError{Field: "chat.stream_timeout", Message: "must be positive"})
	}

	return errs
}

func validateTranslation(cfg *TranslationConfig) []FieldError {
	var errs []FieldError

	if !cfg.IsEnabled() {
		return nil
	}

	if u, err := url.Parse(cfg.ProviderURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "translation.provider_url",
			Message: fmt.Sprintf("invalid URL %q", cfg.ProviderURL),
		})
	}
	if cfg.MaxAttempts < 1 {
		errs = append(errs, FieldError{Field: "translation.max_attempts", Message: "must be at least 1"})
	}
	if cfg.RetryDelay < 0 {
		errs = append(errs, FieldError{Field: "translation.retry_delay", Message: "must not be negative"})
	}
	if cfg.DetectCacheSize < 0 {
		errs = append(errs, FieldError{Field: "translation.detect_cache_size", Message: "must not be negative"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.IsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with '/'",
		})
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "must be between 0.0 and 1.0",
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "endpoint is required when tracing is enabled",
			})
		}
	}

	return errs
}
