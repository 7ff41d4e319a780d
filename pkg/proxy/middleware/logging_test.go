package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordedRequest struct {
	route, method string
	status        int
}

type fakeRecorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(route, method string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, recordedRequest{route, method, status})
}

func TestLoggingMiddleware_RecordsStatusAndRoute(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/models", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	route := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	}

	rec := &fakeRecorder{}
	wrapped := LoggingMiddleware(rec, route)(mux)

	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/models", nil))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if len(rec.reqs) != 2 {
		t.Fatalf("recorded %d requests, want 2", len(rec.reqs))
	}
	if got := rec.reqs[0]; got != (recordedRequest{"GET /api/models", "GET", http.StatusTeapot}) {
		t.Errorf("first request = %+v", got)
	}
	if got := rec.reqs[1]; got.route != "" || got.status != http.StatusNotFound {
		t.Errorf("unmatched request = %+v", got)
	}
}

func TestLoggingMiddleware_ForwardsFlush(t *testing.T) {
	wrapped := LoggingMiddleware(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data: {}\n\n"))
		if err := http.NewResponseController(w).Flush(); err != nil {
			t.Errorf("Flush() error = %v", err)
		}
	}))

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	if !w.Flushed {
		t.Error("expected underlying recorder to be flushed")
	}
}

func TestLoggingMiddleware_DefaultStatus(t *testing.T) {
	rec := &fakeRecorder{}
	wrapped := LoggingMiddleware(rec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/reset", nil))

	if len(rec.reqs) != 1 || rec.reqs[0].status != http.StatusOK {
		t.Errorf("recorded %+v, want one 200", rec.reqs)
	}
}
