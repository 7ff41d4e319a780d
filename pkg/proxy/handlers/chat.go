package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Wartem/llm-chat-lite/pkg/chat"
	"github.com/Wartem/llm-chat-lite/pkg/proxy"
)

// ChatHandler streams chat replies as Server-Sent Events.
type ChatHandler struct {
	chat   ChatService
	logger *slog.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{
		chat:   svc,
		logger: slog.Default().With("component", "handlers.chat"),
	}
}

// ServeHTTP handles GET and POST /api/chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := proxy.ParseChatRequest(r)
	if err != nil {
		_ = proxy.WriteJSONError(w, proxy.StatusCode(err), err.Error())
		return
	}

	// Cancelling stops the orchestrator if the client goes away mid-stream.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, err := h.chat.Chat(ctx, req.SessionID, req.Message)
	if err != nil {
		writeChatError(w, err)
		return
	}

	sse := proxy.NewSSEWriter(w)
	for event := range events {
		if err := sse.WriteEvent(event); err != nil {
			h.logger.DebugContext(ctx, "client stream closed", "error", err)
			return
		}
	}
}

// writeChatError answers a request the orchestrator refused.
func writeChatError(w http.ResponseWriter, err error) {
	status, body := chatErrorBody(err)
	_ = proxy.WriteJSONResponse(w, status, body)
}

// chatErrorBody maps a refused chat request to a status and error body.
func chatErrorBody(err error) (int, map[string]string) {
	var valErr *chat.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, map[string]string{"error": valErr.Message}
	}
	return http.StatusInternalServerError, map[string]string{"error": err.Error()}
}
