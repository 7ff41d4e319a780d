// Chatrelay is a multilingual chat relay in front of Ollama-compatible
// model servers.
//
// It accepts chat messages in any language, translates them to English,
// streams the reply from the highest-priority healthy backend instance and
// translates the finished reply back to the user's language:
//   - Priority failover with health caching and quarantine
//   - Per-session history and language
//   - Server-Sent Events and websocket streaming
//   - Prometheus metrics, health endpoints and OpenTelemetry tracing
//
// Usage:
//
//	# Start the relay
//	chatrelay run --config config.yaml
//
//	# Probe every backend instance
//	chatrelay status
//
//	# Check a configuration file
//	chatrelay validate --config config.yaml
//
//	# Show version information
//	chatrelay version
package main

import (
	"os"

	"github.com/Wartem/llm-chat-lite/pkg/cli"
)

func main() {
	os.Exit(cli.ExitCode(Execute()))
}
