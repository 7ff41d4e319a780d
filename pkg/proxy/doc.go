// Package proxy holds the request and response helpers shared by the HTTP
// handlers of the chat relay.
//
// The relay exposes a small browser-facing API in front of one or more
// Ollama-compatible backends. Replies are streamed to the browser as
// Server-Sent Events, one JSON object per event:
//
//	data: {"chunk":"Hello"}
//
//	data: {"translation":"Hej"}
//
//	data: {"done":true}
//
// Non-streaming errors are written as {"error": "..."} with a matching
// HTTP status code.
//
// # Subpackages
//
//   - handlers: the API endpoints (chat, websocket chat, models, status, theme)
//   - middleware: request ids, access logging, CORS and panic recovery
package proxy
