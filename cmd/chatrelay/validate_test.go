package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Wartem/llm-chat-lite/pkg/cli"
)

func TestValidate_Valid(t *testing.T) {
	path := writeConfig(t, "http://127.0.0.1:11434", "http://127.0.0.1:11435")

	out, err := execute(t, "validate", "--config", path)
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, out)
	}

	for _, want := range []string{"is valid", "instances:      2", "node1", "http://127.0.0.1:11435"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidate_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "instances:\n  - name: a\n    url: localhost:11434\n  - name: a\n    url: http://b\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "validate", "--config", path)
	if err == nil {
		t.Fatalf("expected validation failure, got:\n%s", out)
	}
	if cli.ExitCode(err) != 1 {
		t.Errorf("ExitCode() = %d, want 1", cli.ExitCode(err))
	}

	for _, want := range []string{"2 problem(s)", "instances[0].url", "instances[1].name"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))

	if err == nil {
		t.Fatal("expected error for missing file")
	}
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %T: %v", err, err)
	}
}
