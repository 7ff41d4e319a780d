package proxy

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// MaxRequestBodySize is the maximum accepted JSON body size (1MB).
const MaxRequestBodySize = 1 << 20

// ChatRequest is the body of POST /api/chat and of a websocket frame.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// SessionRequest is the body of POST /api/reset.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// ParseChatRequest reads a chat request. GET requests use the "message" and
// "session_id" query parameters; other methods use a JSON body. A missing
// message is not an error here; the orchestrator rejects it.
func ParseChatRequest(r *http.Request) (ChatRequest, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		return ChatRequest{Message: q.Get("message"), SessionID: q.Get("session_id")}, nil
	}

	var req ChatRequest
	if err := DecodeJSON(r, &req); err != nil {
		return ChatRequest{}, err
	}
	return req, nil
}

// DecodeJSON decodes a JSON request body into v. An empty body leaves v
// untouched. Oversized or malformed bodies yield a *RequestError.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return &RequestError{Status: http.StatusBadRequest, Message: "failed to read request body", Err: err}
	}
	if len(body) > MaxRequestBodySize {
		return &RequestError{Status: http.StatusRequestEntityTooLarge, Message: "request body exceeds 1MB", Err: ErrBodyTooLarge}
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return &RequestError{Status: http.StatusBadRequest, Message: "invalid JSON", Err: err}
		}
		return &RequestError{Status: http.StatusBadRequest, Message: "invalid request body", Err: err}
	}
	return nil
}
