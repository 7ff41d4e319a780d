package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It merges the optional instances file, applies default values, validates
// the configuration, and returns any errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if cfg.InstancesFile != "" {
		file := cfg.InstancesFile
		if !filepath.IsAbs(file) {
			file = filepath.Join(filepath.Dir(path), file)
		}
		instances, err := LoadInstancesFile(file)
		if err != nil {
			return nil, err
		}
		cfg.Instances = append(cfg.Instances, instances...)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// instancesDocument is the JSON registry layout shared with older deployments.
type instancesDocument struct {
	Instances []InstanceConfig `json:"ollama_instances"`
}

// LoadInstancesFile reads a JSON instance registry of the form
// {"ollama_instances": [{"name": ..., "url": ..., "priority": ...}]}.
func LoadInstancesFile(path string) ([]InstanceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instances file %q: %w", path, err)
	}

	var doc instancesDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse instances file %q: %w", path, err)
	}

	return doc.Instances, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CHATRELAY_SECTION_FIELD (e.g., CHATRELAY_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg, filepath.Dir(path)); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config, baseDir string) error {
	if val := os.Getenv("CHATRELAY_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("CHATRELAY_SERVER_STATIC_DIR"); val != "" {
		cfg.Server.StaticDir = val
	}

	// The instances file replaces the registry entirely when overridden.
	if val := os.Getenv("CHATRELAY_INSTANCES_FILE"); val != "" {
		if !filepath.IsAbs(val) {
			val = filepath.Join(baseDir, val)
		}
		instances, err := LoadInstancesFile(val)
		if err != nil {
			return err
		}
		cfg.InstancesFile = val
		cfg.Instances = instances
	}

	if val := os.Getenv("CHATRELAY_HEALTH_PROBE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Health.ProbeTimeout = d
		}
	}
	if val := os.Getenv("CHATRELAY_HEALTH_SWEEP_SCHEDULE"); val != "" {
		cfg.Health.SweepSchedule = val
	}

	if val := os.Getenv("CHATRELAY_MODELS_DEFAULT_MODEL"); val != "" {
		cfg.Models.DefaultModel = val
	}

	if val := os.Getenv("CHATRELAY_TRANSLATION_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Translation.Enabled = &b
		}
	}
	if val := os.Getenv("CHATRELAY_TRANSLATION_PROVIDER_URL"); val != "" {
		cfg.Translation.ProviderURL = val
	}
	if val := os.Getenv("CHATRELAY_TRANSLATION_API_KEY"); val != "" {
		cfg.Translation.APIKey = val
	}

	if val := os.Getenv("CHATRELAY_THEME_PATH"); val != "" {
		cfg.Theme.Path = val
	}

	if val := os.Getenv("CHATRELAY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CHATRELAY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CHATRELAY_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}

	return nil
}
