// Package backend is the HTTP client for Ollama-compatible model servers.
//
// Three endpoints are used:
//
//   - GET  /api/tags  liveness probe and model listing
//   - POST /api/pull  fire-and-forget model download
//   - POST /api/chat  streaming chat completion (newline-delimited JSON)
//
// Streaming follows the channel pattern used throughout the relay: the
// client starts a goroutine that decodes the response line by line and
// sends StreamChunk values until the stream ends, fails, or the caller's
// context is cancelled. The channel is always closed and the connection is
// always released when the goroutine exits.
package backend
