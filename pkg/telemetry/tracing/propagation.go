package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader carries the trace ID of a request back to the caller.
const TraceIDHeader = "X-Trace-ID"

// Extract returns ctx carrying the W3C trace context found in headers.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into outgoing request headers.
func Inject(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// RouteFunc names the route of a request for span names. It returns "" when
// the request matched no route.
type RouteFunc func(r *http.Request) string

// HTTPMiddleware starts a server span per request, continuing any trace the
// caller propagated, and reports the trace ID in the X-Trace-ID header.
func HTTPMiddleware(route RouteFunc) func(http.Handler) http.Handler {
	tracer := otel.Tracer(InstrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := Extract(r.Context(), r.Header)

			name := r.Method
			if route != nil {
				if pattern := route(r); pattern != "" {
					name = pattern
				}
			}

			ctx, span := tracer.Start(ctx, fmt.Sprintf("HTTP %s", name),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(HTTPAttributes(r)...),
			)
			defer span.End()

			if sc := span.SpanContext(); sc.IsValid() {
				w.Header().Set(TraceIDHeader, sc.TraceID().String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
