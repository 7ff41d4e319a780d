package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  listen_address: "127.0.0.1:9000"
  read_timeout: "60s"

instances:
  - name: backup
    url: http://backup:11434
    priority: 2
  - name: local
    url: http://localhost:11434
    priority: 1

health:
  probe_timeout: "1s"
  sweep_schedule: "@every 30s"

translation:
  provider_url: "http://translate:5000"
  max_attempts: 5

telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:9000" {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, "127.0.0.1:9000")
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 60*time.Second)
	}
	if len(cfg.Instances) != 2 {
		t.Fatalf("len(Instances) = %d, want 2", len(cfg.Instances))
	}
	if cfg.Health.ProbeTimeout != time.Second {
		t.Errorf("ProbeTimeout = %v, want 1s", cfg.Health.ProbeTimeout)
	}
	if cfg.Translation.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Translation.MaxAttempts)
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want text", cfg.Telemetry.Logging.Format)
	}

	// Unset fields fall back to defaults.
	if cfg.Health.Quarantine != DefaultQuarantine {
		t.Errorf("Quarantine = %v, want %v", cfg.Health.Quarantine, DefaultQuarantine)
	}
	if cfg.Chat.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("HistoryLimit = %d, want %d", cfg.Chat.HistoryLimit, DefaultHistoryLimit)
	}
	if cfg.Models.DefaultModel != "llama2" {
		t.Errorf("DefaultModel = %q, want llama2", cfg.Models.DefaultModel)
	}
	if !cfg.Models.PullEnabled() || !cfg.Translation.IsEnabled() || !cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("nil switches should default to enabled")
	}
	if got := cfg.Translation.CollapsePrefixes; len(got) != 1 || got[0] != "sv" {
		t.Errorf("CollapsePrefixes = %v, want [sv]", got)
	}
}

func TestLoadConfig_InstancesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ollama_config.json", `{
  "ollama_instances": [
    {"name": "gpu", "url": "http://gpu:11434", "priority": 1},
    {"name": "cpu", "url": "http://cpu:11434", "priority": 3}
  ]
}`)
	path := writeFile(t, dir, "config.yaml", `
instances:
  - name: inline
    url: http://inline:11434
    priority: 2
instances_file: ollama_config.json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	var names []string
	for _, inst := range cfg.Instances {
		names = append(names, inst.Name)
	}
	if got := strings.Join(names, ","); got != "inline,gpu,cpu" {
		t.Errorf("instance names = %q, want %q", got, "inline,gpu,cpu")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "no instances",
			content: "server:\n  listen_address: \"0.0.0.0:5012\"\n",
			field:   "instances",
		},
		{
			name:    "relative instance url",
			content: "instances:\n  - name: a\n    url: localhost:11434\n",
			field:   "instances[0].url",
		},
		{
			name:    "duplicate names",
			content: "instances:\n  - name: a\n    url: http://a\n  - name: a\n    url: http://b\n",
			field:   "instances[1].name",
		},
		{
			name:    "bad sweep schedule",
			content: "instances:\n  - name: a\n    url: http://a\nhealth:\n  sweep_schedule: \"every now and then\"\n",
			field:   "health.sweep_schedule",
		},
		{
			name:    "bad log level",
			content: "instances:\n  - name: a\n    url: http://a\ntelemetry:\n  logging:\n    level: loud\n",
			field:   "telemetry.logging.level",
		},
		{
			name:    "bad tracing ratio",
			content: "instances:\n  - name: a\n    url: http://a\ntelemetry:\n  tracing:\n    enabled: true\n    sample_ratio: 1.5\n",
			field:   "telemetry.tracing.sample_ratio",
		},
		{
			name:    "negative rate limit",
			content: "instances:\n  - name: a\n    url: http://a\nserver:\n  rate_limit:\n    max_concurrent: -1\n",
			field:   "server.rate_limit.max_concurrent",
		},
		{
			name:    "tls key without cert",
			content: "instances:\n  - name: a\n    url: http://a\nserver:\n  tls:\n    key_file: key.pem\n",
			field:   "server.tls",
		},
		{
			name:    "bad tls version",
			content: "instances:\n  - name: a\n    url: http://a\nserver:\n  tls:\n    cert_file: c.pem\n    key_file: k.pem\n    min_version: \"1.1\"\n",
			field:   "server.tls.min_version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.content)

			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "other.json", `{"ollama_instances": [{"name": "env", "url": "http://env:11434", "priority": 1}]}`)
	path := writeFile(t, dir, "config.yaml", "instances:\n  - name: a\n    url: http://a\n")

	t.Setenv("CHATRELAY_SERVER_LISTEN_ADDRESS", "127.0.0.1:7000")
	t.Setenv("CHATRELAY_INSTANCES_FILE", "other.json")
	t.Setenv("CHATRELAY_TRANSLATION_ENABLED", "false")
	t.Setenv("CHATRELAY_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7000" {
		t.Errorf("ListenAddress = %q, want 127.0.0.1:7000", cfg.Server.ListenAddress)
	}
	if len(cfg.Instances) != 1 || cfg.Instances[0].Name != "env" {
		t.Errorf("Instances = %+v, want only env", cfg.Instances)
	}
	if cfg.Translation.IsEnabled() {
		t.Error("translation should be disabled by env override")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
}
