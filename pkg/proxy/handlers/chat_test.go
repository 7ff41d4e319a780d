package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/chat"
)

// fakeChat replays a fixed event sequence for every request.
type fakeChat struct {
	mu       sync.Mutex
	events   []chat.Event
	calls    []string
	resets   []string
	blocking bool
	delay    time.Duration
}

func (f *fakeChat) Chat(ctx context.Context, sessionID, message string) (<-chan chat.Event, error) {
	if strings.TrimSpace(message) == "" {
		return nil, &chat.ValidationError{Field: "message", Message: "No message provided"}
	}

	f.mu.Lock()
	f.calls = append(f.calls, sessionID+":"+message)
	events := append([]chat.Event(nil), f.events...)
	blocking := f.blocking
	delay := f.delay
	f.mu.Unlock()

	out := make(chan chat.Event)
	go func() {
		defer close(out)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
		for _, e := range events {
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
		if blocking {
			<-ctx.Done()
		}
	}()
	return out, nil
}

func (f *fakeChat) Reset(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, sessionID)
}

// readEvents parses an SSE body into its JSON payloads.
func readEvents(t *testing.T, body string) []map[string]any {
	t.Helper()

	var events []map[string]any
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			t.Fatalf("unexpected SSE line %q", line)
		}
		var event map[string]any
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			t.Fatalf("invalid event JSON %q: %v", payload, err)
		}
		events = append(events, event)
	}
	return events
}

func TestChatHandler(t *testing.T) {
	svc := &fakeChat{events: []chat.Event{
		chat.ChunkEvent("I am "),
		chat.ChunkEvent("fine"),
		chat.TranslationEvent("Jag mår bra"),
		chat.DoneEvent(),
	}}
	handler := NewChatHandler(svc)

	tests := []struct {
		name     string
		req      *http.Request
		wantCall string
	}{
		{
			name:     "GET query",
			req:      httptest.NewRequest(http.MethodGet, "/api/chat?message=Hej&session_id=s1", nil),
			wantCall: "s1:Hej",
		},
		{
			name:     "POST JSON",
			req:      httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"Hej","session_id":"s2"}`)),
			wantCall: "s2:Hej",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, tt.req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
				t.Errorf("Content-Type = %q", ct)
			}

			events := readEvents(t, w.Body.String())
			if len(events) != 4 {
				t.Fatalf("got %d events, want 4: %v", len(events), events)
			}
			if events[0]["chunk"] != "I am " || events[1]["chunk"] != "fine" {
				t.Errorf("chunks = %v %v", events[0], events[1])
			}
			if events[2]["translation"] != "Jag mår bra" {
				t.Errorf("translation = %v", events[2])
			}
			if events[3]["done"] != true {
				t.Errorf("last event = %v", events[3])
			}

			svc.mu.Lock()
			last := svc.calls[len(svc.calls)-1]
			svc.mu.Unlock()
			if last != tt.wantCall {
				t.Errorf("call = %q, want %q", last, tt.wantCall)
			}
		})
	}
}

func TestChatHandler_Errors(t *testing.T) {
	handler := NewChatHandler(&fakeChat{})

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing message",
			req:        httptest.NewRequest(http.MethodGet, "/api/chat", nil),
			wantStatus: http.StatusBadRequest,
			wantError:  "No message provided",
		},
		{
			name:       "blank message",
			req:        httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"   "}`)),
			wantStatus: http.StatusBadRequest,
			wantError:  "No message provided",
		},
		{
			name:       "malformed body",
			req:        httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{`)),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, tt.req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("expected error message")
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestChatHandler_ClientDisconnectStopsChat(t *testing.T) {
	svc := &fakeChat{events: []chat.Event{chat.ChunkEvent("partial")}, blocking: true}

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/chat?message=hi", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewChatHandler(svc).ServeHTTP(w, req)
	}()

	cancel()
	<-done
}
