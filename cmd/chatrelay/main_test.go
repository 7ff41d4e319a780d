package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig writes a config file listing the given instance URLs in
// priority order and returns its path.
func writeConfig(t *testing.T, urls ...string) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("server:\n  listen_address: 127.0.0.1:0\n")
	sb.WriteString("instances:\n")
	for i, u := range urls {
		fmt.Fprintf(&sb, "  - name: node%d\n    url: %s\n    priority: %d\n", i+1, u, i+1)
	}
	sb.WriteString("translation:\n  enabled: false\n")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}
