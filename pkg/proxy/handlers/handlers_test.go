package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Wartem/llm-chat-lite/pkg/failover"
	"github.com/Wartem/llm-chat-lite/pkg/theme"
)

type fakeModels []string

func (f fakeModels) AvailableModels(context.Context) []string { return f }

type fakeStatus []failover.InstanceStatus

func (f fakeStatus) Status(context.Context) []failover.InstanceStatus { return f }

type fakeTheme struct {
	current string
	err     error
}

func (f *fakeTheme) Current() string { return f.current }

func (f *fakeTheme) Stylesheet() string { return "/static/" + f.current + ".css" }

func (f *fakeTheme) Set(name string) error {
	if name != theme.Dark && name != theme.Bright {
		return theme.ErrUnknownTheme
	}
	if f.err != nil {
		return f.err
	}
	f.current = name
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return body
}

func TestModelsHandler(t *testing.T) {
	tests := []struct {
		name   string
		models fakeModels
		want   string
	}{
		{name: "models", models: fakeModels{"llama2", "mistral"}, want: `{"models":["llama2","mistral"]}`},
		{name: "none", models: nil, want: `{"models":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ModelsHandler(tt.models)(w, httptest.NewRequest(http.MethodGet, "/api/models", nil))

			if got := strings.TrimSpace(w.Body.String()); got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	reporter := fakeStatus{
		{Name: "primary", URL: "http://a:11434", Priority: 1, Status: failover.StatusUnhealthy},
		{Name: "backup", URL: "http://b:11434", Priority: 2, Status: failover.StatusHealthy, Current: true},
	}

	w := httptest.NewRecorder()
	StatusHandler(reporter)(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Instances) != 2 {
		t.Fatalf("got %d instances", len(resp.Instances))
	}
	if resp.Instances[0].Status != "unhealthy" || resp.Instances[1].Status != "healthy" {
		t.Errorf("statuses = %+v", resp.Instances)
	}
}

func TestResetHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantReset string
	}{
		{name: "named session", body: `{"session_id":"abc"}`, wantReset: "abc"},
		{name: "empty body", body: "", wantReset: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeChat{}
			w := httptest.NewRecorder()
			ResetHandler(svc)(w, httptest.NewRequest(http.MethodPost, "/api/reset", strings.NewReader(tt.body)))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if body := decode(t, w); body["status"] != "success" {
				t.Errorf("body = %v", body)
			}
			if len(svc.resets) != 1 || svc.resets[0] != tt.wantReset {
				t.Errorf("resets = %v, want [%q]", svc.resets, tt.wantReset)
			}
		})
	}
}

func TestThemeHandlers(t *testing.T) {
	store := &fakeTheme{current: theme.Dark}

	mux := http.NewServeMux()
	mux.Handle("GET /api/theme", GetThemeHandler(store))
	mux.Handle("POST /api/theme/{name}", SetThemeHandler(store))

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/theme", nil))

		if got := strings.TrimSpace(w.Body.String()); got != `{"theme":"dark","stylesheet":"/static/dark.css"}` {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("set valid", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/theme/bright", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := decode(t, w)
		if body["success"] != true || body["theme"] != "bright" || body["stylesheet"] != "/static/bright.css" {
			t.Errorf("body = %v", body)
		}
		if store.current != theme.Bright {
			t.Errorf("current = %q", store.current)
		}
	})

	t.Run("set invalid", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/theme/neon", nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
		body := decode(t, w)
		if body["success"] != false || body["error"] != theme.ErrUnknownTheme.Error() {
			t.Errorf("body = %v", body)
		}
		if store.current != theme.Bright {
			t.Errorf("theme changed to %q", store.current)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		failing := &fakeTheme{current: theme.Dark, err: errors.New("disk full")}
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/theme/bright", nil)
		r.SetPathValue("name", "bright")
		SetThemeHandler(failing)(w, r)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})
}
