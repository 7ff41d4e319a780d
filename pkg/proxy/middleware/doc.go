// Package middleware provides the HTTP middleware of the chat relay.
//
// The server chains them as:
//
//	handler = Recovery(Logging(RequestID(Tracing(CORS(mux)))))
//
// Recovery is outermost so a panic anywhere below still produces a JSON 500.
// Logging sees the request id set by RequestID through the request context,
// and every log record written while serving the request carries it.
//
// Streaming responses pass through unchanged: the wrapped ResponseWriter
// used by Logging forwards Flush and Hijack, so Server-Sent Events and
// websocket upgrades keep working.
//
// RateLimit is not part of the global chain. The server applies it to the
// chat routes only, so health checks and static files are never limited.
package middleware
