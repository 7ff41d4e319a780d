package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Relay-specific keys live under "chatrelay.".
const (
	AttrSession         = "chatrelay.session"
	AttrLanguage        = "chatrelay.language"
	AttrInstance        = "chatrelay.instance"
	AttrInstanceURL     = "chatrelay.instance.url"
	AttrModel           = "chatrelay.model"
	AttrSelectionReason = "chatrelay.selection.reason"
	AttrHealthy         = "chatrelay.instance.healthy"
	AttrTranslationOp   = "chatrelay.translation.op"
	AttrTranslationTry  = "chatrelay.translation.attempts"
	AttrChunks          = "chatrelay.stream.chunks"
	AttrReplyChars      = "chatrelay.reply.chars"
	AttrChatStatus      = "chatrelay.chat.status"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPPath   = "url.path"
)

// HTTPAttributes returns the request attributes of a server span.
func HTTPAttributes(r *http.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, r.Method),
		attribute.String(AttrHTTPPath, r.URL.Path),
	}
}

// SetInstanceAttributes records the backend instance handling a span.
func SetInstanceAttributes(span trace.Span, name, url string) {
	span.SetAttributes(
		attribute.String(AttrInstance, name),
		attribute.String(AttrInstanceURL, url),
	)
}

// SetChatAttributes records the session and its language.
func SetChatAttributes(span trace.Span, session, language string) {
	attrs := []attribute.KeyValue{attribute.String(AttrSession, session)}
	if language != "" {
		attrs = append(attrs, attribute.String(AttrLanguage, language))
	}
	span.SetAttributes(attrs...)
}
