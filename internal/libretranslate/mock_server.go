package libretranslate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockServer is a fake LibreTranslate-compatible service for tests.
// Languages are detected from a phrase table and translations are looked
// up by exact text; unknown text is echoed back.
type MockServer struct {
	server *httptest.Server

	mu           sync.Mutex
	detections   map[string]string
	translations map[string]string
	failures     int
	status       int
	failTargets  map[string]int
	counts       map[string]int
}

// NewMockServer starts an empty service.
func NewMockServer() *MockServer {
	ms := &MockServer{
		detections:   make(map[string]string),
		translations: make(map[string]string),
		status:       http.StatusServiceUnavailable,
		failTargets:  make(map[string]int),
		counts:       make(map[string]int),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the service base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the service down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// AddDetection makes text detect as lang.
func (ms *MockServer) AddDetection(text, lang string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.detections[text] = lang
}

// AddTranslation registers the translation of text into target.
func (ms *MockServer) AddTranslation(text, target, translated string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.translations[target+"|"+text] = translated
}

// FailNext makes the next n requests fail with status.
func (ms *MockServer) FailNext(n, status int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.failures = n
	ms.status = status
}

// FailTarget makes every translation into target fail with status.
func (ms *MockServer) FailTarget(target string, status int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.failTargets[target] = status
}

// RequestCount returns how many requests hit path.
func (ms *MockServer) RequestCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.counts[path]
}

type request struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	ms.mu.Lock()
	ms.counts[r.URL.Path]++
	if ms.failures > 0 {
		ms.failures--
		status := ms.status
		ms.mu.Unlock()
		writeJSON(w, status, map[string]string{"error": "temporarily unavailable"})
		return
	}
	if status, ok := ms.failTargets[req.Target]; ok && r.URL.Path == "/translate" {
		ms.mu.Unlock()
		writeJSON(w, status, map[string]string{"error": "temporarily unavailable"})
		return
	}
	detected, ok := ms.detections[req.Q]
	if !ok {
		detected = "en"
	}
	translated, ok := ms.translations[req.Target+"|"+req.Q]
	if !ok {
		translated = req.Q
	}
	ms.mu.Unlock()

	switch r.URL.Path {
	case "/detect":
		writeJSON(w, http.StatusOK, []map[string]any{{"language": detected, "confidence": 90.0}})
	case "/translate":
		if strings.TrimSpace(req.Target) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target is required"})
			return
		}
		source := req.Source
		if source == "auto" {
			source = detected
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"translatedText":   translated,
			"detectedLanguage": map[string]any{"language": source, "confidence": 90.0},
		})
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
