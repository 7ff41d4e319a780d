package ollama

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a fake Ollama instance for tests. It answers /api/tags,
// /api/pull and /api/chat and records what it receives.
type MockServer struct {
	server *httptest.Server

	mu           sync.Mutex
	tagsStatus   int
	tagsDelay    time.Duration
	models       []string
	omitModels   bool
	pullStatus   int
	chatStatus   int
	chatChunks   []string
	chunkDelay   time.Duration
	counts       map[string]int
	chatRequests []ChatRequest
	pulls        []string
	disconnects  int
}

// ChatRequest is the body received on /api/chat.
type ChatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Stream bool `json:"stream"`
}

// NewMockServer starts a healthy instance listing models.
func NewMockServer(models ...string) *MockServer {
	ms := &MockServer{
		tagsStatus: http.StatusOK,
		pullStatus: http.StatusOK,
		chatStatus: http.StatusOK,
		models:     models,
		counts:     make(map[string]int),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the instance base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the instance down. Later probes fail with a connection error.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetHealthy switches /api/tags between 200 and 503.
func (ms *MockServer) SetHealthy(healthy bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if healthy {
		ms.tagsStatus = http.StatusOK
	} else {
		ms.tagsStatus = http.StatusServiceUnavailable
	}
}

// SetTagsDelay delays /api/tags responses.
func (ms *MockServer) SetTagsDelay(d time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.tagsDelay = d
}

// SetModels replaces the model listing.
func (ms *MockServer) SetModels(models ...string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.models = models
	ms.omitModels = false
}

// OmitModels makes /api/tags answer 200 without a "models" field.
func (ms *MockServer) OmitModels() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.omitModels = true
}

// SetPullStatus sets the /api/pull status code.
func (ms *MockServer) SetPullStatus(status int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.pullStatus = status
}

// SetChatStatus sets the /api/chat status code.
func (ms *MockServer) SetChatStatus(status int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.chatStatus = status
}

// SetChatChunks sets the content pieces streamed by /api/chat.
func (ms *MockServer) SetChatChunks(chunks ...string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.chatChunks = chunks
}

// SetChunkDelay sets the pause before each streamed chunk.
func (ms *MockServer) SetChunkDelay(d time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.chunkDelay = d
}

// RequestCount returns how many requests hit path.
func (ms *MockServer) RequestCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.counts[path]
}

// ChatRequests returns the chat bodies received so far.
func (ms *MockServer) ChatRequests() []ChatRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]ChatRequest(nil), ms.chatRequests...)
}

// Pulls returns the model names pulled so far.
func (ms *MockServer) Pulls() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.pulls...)
}

// Disconnects returns how many chat streams the client abandoned.
func (ms *MockServer) Disconnects() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.disconnects
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	ms.counts[r.URL.Path]++
	ms.mu.Unlock()

	switch r.URL.Path {
	case "/api/tags":
		ms.handleTags(w, r)
	case "/api/pull":
		ms.handlePull(w, r)
	case "/api/chat":
		ms.handleChat(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (ms *MockServer) handleTags(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	status, delay, omit := ms.tagsStatus, ms.tagsDelay, ms.omitModels
	models := append([]string(nil), ms.models...)
	ms.mu.Unlock()

	if !sleep(r, delay) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
		return
	}
	if omit {
		_, _ = w.Write([]byte(`{}`))
		return
	}

	type model struct {
		Name string `json:"name"`
	}
	list := make([]model, 0, len(models))
	for _, name := range models {
		list = append(list, model{Name: name})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"models": list})
}

func (ms *MockServer) handlePull(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	ms.mu.Lock()
	status := ms.pullStatus
	if status == http.StatusOK {
		ms.pulls = append(ms.pulls, body.Name)
	}
	ms.mu.Unlock()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = w.Write([]byte(`{"error":"pull rejected"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"pulling manifest"}` + "\n"))
	_, _ = w.Write([]byte(`{"status":"success"}` + "\n"))
}

func (ms *MockServer) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		return
	}

	ms.mu.Lock()
	ms.chatRequests = append(ms.chatRequests, req)
	status, delay := ms.chatStatus, ms.chunkDelay
	chunks := append([]string(nil), ms.chatChunks...)
	ms.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, `{"error":"model not loaded"}`, status)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	enc := json.NewEncoder(w)
	for _, chunk := range chunks {
		if !sleep(r, delay) {
			ms.mu.Lock()
			ms.disconnects++
			ms.mu.Unlock()
			return
		}
		_ = enc.Encode(map[string]any{
			"model":   req.Model,
			"message": map[string]string{"role": "assistant", "content": chunk},
			"done":    false,
		})
		if flusher != nil {
			flusher.Flush()
		}
	}
	_ = enc.Encode(map[string]any{
		"model":   req.Model,
		"message": map[string]string{"role": "assistant", "content": ""},
		"done":    true,
	})
}

// sleep waits for d unless the client goes away first.
func sleep(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-r.Context().Done():
		return false
	}
}
