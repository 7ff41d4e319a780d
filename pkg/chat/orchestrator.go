package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/backend"
	"github.com/Wartem/llm-chat-lite/pkg/failover"
	"github.com/Wartem/llm-chat-lite/pkg/session"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/logging"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/tracing"
	"github.com/Wartem/llm-chat-lite/pkg/translation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Chat request outcomes passed to the Recorder.
const (
	StatusSuccess     = "success"
	StatusUnavailable = "unavailable"
	StatusBackend     = "backend_error"
	StatusTimeout     = "timeout"
	StatusCancelled   = "cancelled"
	StatusInternal    = "internal_error"
)

// Selector resolves the backend instance and model for a request.
type Selector interface {
	HealthyInstance(ctx context.Context) (failover.Instance, error)
	EnsureModel(ctx context.Context) (string, error)
}

// Streamer opens a streaming chat call on an instance.
type Streamer interface {
	StreamChat(ctx context.Context, baseURL string, req backend.ChatRequest) (<-chan backend.StreamChunk, error)
}

// Translator converts between the session language and English.
type Translator interface {
	ToEnglish(ctx context.Context, text string) (string, string)
	FromEnglish(ctx context.Context, text, dest string) string
}

// Recorder receives chat metrics.
type Recorder interface {
	RecordChat(status string, duration time.Duration)
	RecordStreamChunk()
	SetSessions(count int)
}

type nopRecorder struct{}

func (nopRecorder) RecordChat(string, time.Duration) {}
func (nopRecorder) RecordStreamChunk() {}
func (nopRecorder) SetSessions(int) {}

// Options configures an Orchestrator.
type Options struct {
	// DefaultSession is used for requests without a session id. Default: "default"
	DefaultSession string

	// StreamTimeout bounds one backend stream. Default: 5m
	StreamTimeout time.Duration

	// Recorder receives metrics. Optional.
	Recorder Recorder
}

// Orchestrator runs chat requests.
type Orchestrator struct {
	selector   Selector
	streamer   Streamer
	translator Translator
	sessions   *session.Store
	opts       Options
	recorder   Recorder
	logger     *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(selector Selector, streamer Streamer, translator Translator, sessions *session.Store, opts Options) *Orchestrator {
	if opts.DefaultSession == "" {
		opts.DefaultSession = "default"
	}
	if opts.StreamTimeout <= 0 {
		opts.StreamTimeout = 5 * time.Minute
	}
	var recorder Recorder = nopRecorder{}
	if opts.Recorder != nil {
		recorder = opts.Recorder
	}

	return &Orchestrator{
		selector:   selector,
		streamer:   streamer,
		translator: translator,
		sessions:   sessions,
		opts:       opts,
		recorder:   recorder,
		logger:     slog.Default().With("component", "chat"),
	}
}

// Sessions returns the session store.
func (o *Orchestrator) Sessions() *session.Store {
	return o.sessions
}

// SessionID returns id, or the default session id when id is empty.
func (o *Orchestrator) SessionID(id string) string {
	if id == "" {
		return o.opts.DefaultSession
	}
	return id
}

// Chat starts a chat request. A blank message is rejected with a
// *ValidationError. Otherwise the returned channel yields the reply events
// and is closed after the terminal event or when ctx ends.
func (o *Orchestrator) Chat(ctx context.Context, sessionID, message string) (<-chan Event, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &ValidationError{Field: "message", Message: "No message provided"}
	}
	sessionID = o.SessionID(sessionID)

	events := make(chan Event, 16)
	go o.run(ctx, sessionID, message, events)
	return events, nil
}

// run executes one request and owns events.
func (o *Orchestrator) run(ctx context.Context, sessionID, message string, events chan<- Event) {
	defer close(events)

	ctx = logging.WithSession(ctx, sessionID)
	ctx, span := otel.Tracer(tracing.InstrumentationName).Start(ctx, "chat.request")
	defer span.End()

	started := time.Now()
	status := StatusInternal
	defer func() {
		span.SetAttributes(attribute.String(tracing.AttrChatStatus, status))
		o.recorder.RecordChat(status, time.Since(started))
	}()

	emit := func(e Event) bool {
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(s, msg string) {
		status = s
		emit(ErrorEvent(msg))
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.ErrorContext(ctx, "panic in chat request", "panic", r)
			fail(StatusInternal, msgInternal)
		}
	}()

	// TRANSLATING_IN
	english, detected := o.translator.ToEnglish(ctx, message)
	lang := o.sessions.SetLanguageOnce(sessionID, detected)
	o.recorder.SetSessions(o.sessions.Len())
	tracing.SetChatAttributes(span, sessionID, lang)
	o.logger.InfoContext(ctx, "received message", "detected_language", detected, "session_language", lang)

	// DISPATCHING
	inst, err := o.selector.HealthyInstance(ctx)
	if err != nil {
		if ctx.Err() != nil {
			status = StatusCancelled
			return
		}
		tracing.SetError(span, err)
		o.logger.ErrorContext(ctx, "no backend for chat", "error", err)
		fail(StatusUnavailable, msgNoBackend)
		return
	}
	ctx = logging.WithInstance(ctx, inst.Name)
	tracing.SetInstanceAttributes(span, inst.Name, inst.URL)

	model, err := o.selector.EnsureModel(ctx)
	if err != nil {
		if ctx.Err() != nil {
			status = StatusCancelled
			return
		}
		tracing.SetError(span, err)
		o.logger.ErrorContext(ctx, "no model for chat", "error", err)
		if errors.Is(err, failover.ErrNoBackendAvailable) {
			fail(StatusUnavailable, msgNoBackend)
		} else {
			fail(StatusUnavailable, msgNoModel)
		}
		return
	}

	ctx = logging.WithModel(ctx, model)
	span.SetAttributes(attribute.String(tracing.AttrModel, model))

	// STREAMING
	userTurn := backend.Message{Role: backend.RoleUser, Content: english}
	messages := append(o.sessions.Get(sessionID).Messages, userTurn)

	streamCtx, cancel := context.WithTimeout(ctx, o.opts.StreamTimeout)
	defer cancel()

	chunks, err := o.streamer.StreamChat(streamCtx, inst.URL, backend.ChatRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		if ctx.Err() != nil {
			status = StatusCancelled
			return
		}
		tracing.SetError(span, err)
		o.logger.ErrorContext(ctx, "failed to open backend stream", "error", err)
		fail(StatusBackend, fmt.Sprintf("%s: %v", msgStreamFailed, err))
		return
	}

	var full strings.Builder
	count := 0
	for chunk := range chunks {
		if chunk.Err != nil {
			tracing.SetError(span, chunk.Err)
			o.logger.ErrorContext(ctx, "backend stream failed", "error", chunk.Err)
			fail(StatusBackend, fmt.Sprintf("%s: %v", msgStreamFailed, chunk.Err))
			return
		}
		if count == 0 {
			tracing.AddEvent(span, "first_chunk")
		}
		full.WriteString(chunk.Content)
		count++
		o.recorder.RecordStreamChunk()
		if !emit(ChunkEvent(chunk.Content)) {
			break
		}
	}

	span.SetAttributes(attribute.Int(tracing.AttrChunks, count))

	if ctx.Err() != nil {
		status = StatusCancelled
		o.logger.InfoContext(ctx, "chat abandoned by client", "received_chars", full.Len())
		return
	}
	if streamCtx.Err() != nil {
		tracing.SetError(span, streamCtx.Err())
		o.logger.ErrorContext(ctx, "backend stream timed out", "timeout", o.opts.StreamTimeout)
		fail(StatusTimeout, msgTimeout)
		return
	}

	// TRANSLATING_OUT
	reply := full.String()
	if reply != "" && lang != translation.English {
		translated := o.translator.FromEnglish(ctx, reply, lang)
		tracing.AddEvent(span, "reply_translated", attribute.String(tracing.AttrLanguage, lang))
		if !emit(TranslationEvent(translated)) {
			status = StatusCancelled
			return
		}
	}

	// COMPLETE
	o.sessions.Append(sessionID, userTurn, backend.Message{Role: backend.RoleAssistant, Content: reply})
	status = StatusSuccess
	emit(DoneEvent())

	span.SetAttributes(attribute.Int(tracing.AttrReplyChars, len(reply)))
	o.logger.InfoContext(ctx, "chat completed",
		"reply_chars", len(reply),
		"duration", time.Since(started),
	)
}

// Reset clears the history of a session and keeps its language.
func (o *Orchestrator) Reset(sessionID string) {
	o.sessions.Reset(o.SessionID(sessionID))
}
