package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Wartem/llm-chat-lite/pkg/proxy"
)

// RecoveryMiddleware turns a handler panic into a 500 {"error": ...}
// response and logs the stack. http.ErrAbortHandler is re-raised so the
// server can abort the connection quietly.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			slog.ErrorContext(r.Context(), "panic in handler",
				"error", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			_ = proxy.WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
