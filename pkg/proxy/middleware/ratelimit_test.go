package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Wartem/llm-chat-lite/pkg/ratelimit"
)

type fakeRateRecorder struct {
	reasons []string
}

func (f *fakeRateRecorder) RecordRateLimited(reason string) {
	f.reasons = append(f.reasons, reason)
}

func TestRateLimitMiddleware_Rate(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{RequestsPerMinute: 1, Burst: 1})
	recorder := &fakeRateRecorder{}
	handler := RateLimitMiddleware(limiter, recorder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := send("10.0.0.1:5000"); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec := send("10.0.0.1:5001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	if rec := send("10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}

	if len(recorder.reasons) != 1 || recorder.reasons[0] != ratelimit.ReasonRate {
		t.Errorf("recorded reasons = %v", recorder.reasons)
	}
}

func TestRateLimitMiddleware_ConcurrentSlotHeldDuringHandler(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{MaxConcurrent: 1})

	var inner int
	var handler http.Handler
	handler = RateLimitMiddleware(limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/outer" {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/inner", nil)
			req.RemoteAddr = r.RemoteAddr
			handler.ServeHTTP(rec, req)
			inner = rec.Code
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/outer", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("outer status = %d, want 200", rec.Code)
	}
	if inner != http.StatusTooManyRequests {
		t.Errorf("nested request status = %d, want 429", inner)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/after", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("request after release status = %d, want 200", rec.Code)
	}
}
