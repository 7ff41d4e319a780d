package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()

	if err := WriteJSONError(rec, http.StatusBadRequest, "No message provided"); err != nil {
		t.Fatalf("WriteJSONError() error = %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["error"] != "No message provided" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestSSEWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sse := NewSSEWriter(rec)

	if err := sse.WriteEvent(map[string]string{"chunk": "Hello"}); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}
	if err := sse.WriteEvent(map[string]bool{"done": true}); err != nil {
		t.Fatalf("WriteEvent() error = %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !rec.Flushed {
		t.Error("expected response to be flushed")
	}

	want := "data: {\"chunk\":\"Hello\"}\n\ndata: {\"done\":true}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

type plainWriter struct {
	header http.Header
}

func (p *plainWriter) Header() http.Header { return p.header }
func (p *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (p *plainWriter) WriteHeader(int) {}

func TestSSEWriter_NoFlusher(t *testing.T) {
	sse := NewSSEWriter(&plainWriter{header: http.Header{}})

	if err := sse.WriteEvent(map[string]string{"chunk": "x"}); err != ErrStreamingUnsupported {
		t.Errorf("WriteEvent() error = %v, want ErrStreamingUnsupported", err)
	}
}
