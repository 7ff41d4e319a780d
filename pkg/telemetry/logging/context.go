package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SessionKey is the context key for chat session identifiers.
	SessionKey contextKey = "session"

	// InstanceKey is the context key for backend instance names.
	InstanceKey contextKey = "instance"

	// ModelKey is the context key for model names.
	ModelKey contextKey = "model"
)

// fieldOrder fixes the order context fields appear in a record.
var fieldOrder = []contextKey{RequestIDKey, SessionKey, InstanceKey, ModelKey}

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return getString(ctx, RequestIDKey)
}

// WithSession adds a session identifier to the context.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession retrieves the session identifier from the context.
func GetSession(ctx context.Context) string {
	return getString(ctx, SessionKey)
}

// WithInstance adds a backend instance name to the context.
func WithInstance(ctx context.Context, instance string) context.Context {
	return context.WithValue(ctx, InstanceKey, instance)
}

// GetInstance retrieves the backend instance name from the context.
func GetInstance(ctx context.Context) string {
	return getString(ctx, InstanceKey)
}

// WithModel adds a model name to the context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// GetModel retrieves the model name from the context.
func GetModel(ctx context.Context) string {
	return getString(ctx, ModelKey)
}

func getString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextAttrs returns the non-empty request-scoped fields of ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range fieldOrder {
		if v := getString(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
