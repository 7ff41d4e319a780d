package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Wartem/llm-chat-lite/pkg/proxy"
)

const (
	// wsWriteWait bounds a single frame write.
	wsWriteWait = 10 * time.Second

	// wsPongWait is how long the peer may stay silent before the
	// connection is considered dead.
	wsPongWait = 60 * time.Second
)

// WebSocketHandler serves chat over a websocket. Each text frame from the
// client is a {"message", "session_id"} object; the server answers with the
// same JSON events as the SSE endpoint, one per frame. Requests on one
// connection run one after another.
type WebSocketHandler struct {
	chat     ChatService
	upgrader websocket.Upgrader
	pongWait time.Duration
	logger   *slog.Logger
}

// NewWebSocketHandler creates a WebSocketHandler. allowedOrigins follows the
// CORS setting: "*" accepts any origin, an empty list accepts same-origin
// requests only.
func NewWebSocketHandler(svc ChatService, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		chat: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		pongWait: wsPongWait,
		logger: slog.Default().With("component", "handlers.websocket"),
	}
}

// frame is one decoded client message.
type frame struct {
	req proxy.ChatRequest
	err error
}

// ServeHTTP upgrades the connection and serves chat requests until the
// client disconnects.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(proxy.MaxRequestBodySize)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	frames := make(chan frame)
	go h.readLoop(ctx, cancel, conn, frames)
	go pingLoop(ctx, conn, h.pongWait*9/10)

	h.logger.DebugContext(ctx, "websocket connected", "remote_addr", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if f.err != nil {
				if err := h.write(conn, map[string]string{"error": f.err.Error()}); err != nil {
					return
				}
				continue
			}
			if err := h.serve(ctx, conn, f.req); err != nil {
				h.logger.DebugContext(ctx, "websocket write failed", "error", err)
				return
			}
		}
	}
}

// readLoop decodes client frames until the connection fails. It cancels
// ctx on exit so a running chat stops with the connection.
func (h *WebSocketHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, frames chan<- frame) {
	defer cancel()
	defer close(frames)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.DebugContext(ctx, "websocket closed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))

		var f frame
		if err := json.Unmarshal(data, &f.req); err != nil {
			f.err = &proxy.RequestError{Status: http.StatusBadRequest, Message: "invalid JSON", Err: err}
		}

		select {
		case frames <- f:
		case <-ctx.Done():
			return
		}
		// Pongs that arrived while the previous reply streamed are only
		// read by the next ReadMessage.
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
}

// pingLoop pings the peer every period so its pongs extend the read
// deadline. WriteControl may run concurrently with the writer.
func pingLoop(ctx context.Context, conn *websocket.Conn, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// serve runs one chat request and relays its events.
func (h *WebSocketHandler) serve(ctx context.Context, conn *websocket.Conn, req proxy.ChatRequest) error {
	events, err := h.chat.Chat(ctx, req.SessionID, req.Message)
	if err != nil {
		_, body := chatErrorBody(err)
		return h.write(conn, body)
	}

	for event := range events {
		if err := h.write(conn, event); err != nil {
			return err
		}
	}
	return nil
}

func (h *WebSocketHandler) write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// originChecker builds the upgrader's origin policy.
func originChecker(allowed []string) func(*http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}
