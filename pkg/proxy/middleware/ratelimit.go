package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/Wartem/llm-chat-lite/pkg/proxy"
	"github.com/Wartem/llm-chat-lite/pkg/ratelimit"
)

// RateLimitRecorder counts rejected requests.
type RateLimitRecorder interface {
	RecordRateLimited(reason string)
}

// RateLimitMiddleware admits requests through limiter, keyed by client IP.
// Rejected requests get 429 with a Retry-After header for rate rejections.
// The concurrency slot is held until the wrapped handler returns, so for
// a websocket it covers the whole connection. recorder may be nil.
func RateLimitMiddleware(limiter *ratelimit.Limiter, recorder RateLimitRecorder) func(http.Handler) http.Handler {
	logger := slog.Default().With("component", "ratelimit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			d := limiter.Allow(key)
			if !d.Allowed {
				if recorder != nil {
					recorder.RecordRateLimited(d.Reason)
				}
				logger.WarnContext(r.Context(), "request rate limited",
					"client", key,
					"reason", d.Reason,
					"path", r.URL.Path,
				)
				if d.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				}
				_ = proxy.WriteJSONError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			defer limiter.Release(key)

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey is the remote IP, or the raw remote address when it has no port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
