package server

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Wartem/llm-chat-lite/internal/libretranslate"
	"github.com/Wartem/llm-chat-lite/internal/ollama"
	"github.com/Wartem/llm-chat-lite/internal/testcerts"
	"github.com/Wartem/llm-chat-lite/pkg/backend"
	"github.com/Wartem/llm-chat-lite/pkg/chat"
	"github.com/Wartem/llm-chat-lite/pkg/config"
	"github.com/Wartem/llm-chat-lite/pkg/failover"
	"github.com/Wartem/llm-chat-lite/pkg/session"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/health"
	"github.com/Wartem/llm-chat-lite/pkg/telemetry/metrics"
	"github.com/Wartem/llm-chat-lite/pkg/theme"
	"github.com/Wartem/llm-chat-lite/pkg/translation"
)

type relay struct {
	server       *httptest.Server
	orchestrator *chat.Orchestrator
	collector    *metrics.Collector
	themes       *theme.Store
}

// newRelay wires the full stack against the given backend instances.
func newRelay(t *testing.T, translator *libretranslate.MockServer, instances ...*ollama.MockServer) *relay {
	t.Helper()

	cfg := &config.Config{}
	for i, inst := range instances {
		cfg.Instances = append(cfg.Instances, config.InstanceConfig{
			Name:     "instance-" + string(rune('a'+i)),
			URL:      inst.URL(),
			Priority: i + 1,
		})
	}
	cfg.Theme.Path = filepath.Join(t.TempDir(), "config.json")
	config.ApplyDefaults(cfg)

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	client := backend.NewClient(backend.Options{ProbeTimeout: time.Second})
	manager := failover.NewManager(failover.RegistryFromConfig(cfg.Instances), client, failover.Options{
		Freshness:     cfg.Health.Freshness,
		Quarantine:    cfg.Health.Quarantine,
		ModelCacheTTL: cfg.Models.CacheTTL,
		DefaultModel:  cfg.Models.DefaultModel,
		Recorder:      collector,
	})

	factory := translation.PassthroughFactory()
	if translator != nil {
		factory = translation.LibreTranslateFactory(translator.URL(), "", time.Second)
	}
	gateway := translation.NewGateway(factory, translation.Options{
		MaxAttempts:      2,
		RetryDelay:       time.Millisecond,
		DetectCacheSize:  cfg.Translation.DetectCacheSize,
		CollapsePrefixes: cfg.Translation.CollapsePrefixes,
		Recorder:         collector,
	})

	orchestrator := chat.NewOrchestrator(manager, client, gateway, session.NewStore(cfg.Chat.HistoryLimit), chat.Options{
		StreamTimeout: 5 * time.Second,
		Recorder:      collector,
	})

	themes, err := theme.Open(cfg.Theme.Path)
	if err != nil {
		t.Fatalf("theme.Open: %v", err)
	}

	checker := health.New(time.Second)
	checker.RegisterCheck("backend", manager.Ready)

	srv := New(cfg, Dependencies{
		Chat:    orchestrator,
		Models:  manager,
		Status:  manager,
		Theme:   themes,
		Health:  checker,
		Metrics: collector,
		Version: "test",
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &relay{server: ts, orchestrator: orchestrator, collector: collector, themes: themes}
}

func (r *relay) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(r.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (r *relay) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(r.server.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// events reads every SSE payload from resp.
func events(t *testing.T, resp *http.Response) []map[string]any {
	t.Helper()

	var out []map[string]any
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		payload, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var event map[string]any
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			t.Fatalf("invalid event %q: %v", payload, err)
		}
		out = append(out, event)
	}
	return out
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestServer_SwedishChatRoundTrip(t *testing.T) {
	lt := libretranslate.NewMockServer()
	defer lt.Close()
	lt.AddDetection("Hej, hur mår du?", "sv")
	lt.AddTranslation("Hej, hur mår du?", "en", "Hi, how are you?")
	lt.AddTranslation("I am fine, thanks!", "sv", "Jag mår bra, tack!")

	backendA := ollama.NewMockServer("llama2")
	defer backendA.Close()
	backendA.SetChatChunks("I am fine", ", thanks!")

	r := newRelay(t, lt, backendA)

	query := url.Values{"message": {"Hej, hur mår du?"}, "session_id": {"s1"}}
	resp := r.get(t, "/api/chat?"+query.Encode())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	got := events(t, resp)
	if len(got) != 4 {
		t.Fatalf("got %d events: %v", len(got), got)
	}
	if got[0]["chunk"] != "I am fine" || got[1]["chunk"] != ", thanks!" {
		t.Errorf("chunks = %v, %v", got[0], got[1])
	}
	if got[2]["translation"] != "Jag mår bra, tack!" {
		t.Errorf("translation = %v", got[2])
	}
	if got[3]["done"] != true {
		t.Errorf("last = %v", got[3])
	}

	reqs := backendA.ChatRequests()
	if len(reqs) != 1 || reqs[0].Messages[0].Content != "Hi, how are you?" {
		t.Errorf("backend received %+v", reqs)
	}

	s := r.orchestrator.Sessions().Get("s1")
	if s.Language != "sv" || len(s.Messages) != 2 {
		t.Errorf("session = %+v", s)
	}
}

func TestServer_ReplyTranslationFailureKeepsEnglish(t *testing.T) {
	lt := libretranslate.NewMockServer()
	defer lt.Close()
	lt.AddDetection("Hej, hur mår du?", "sv")
	lt.AddTranslation("Hej, hur mår du?", "en", "Hi, how are you?")
	lt.FailTarget("sv", http.StatusBadGateway)

	backendA := ollama.NewMockServer("llama2")
	defer backendA.Close()
	backendA.SetChatChunks("I am fine", ", thanks!")

	r := newRelay(t, lt, backendA)

	query := url.Values{"message": {"Hej, hur mår du?"}, "session_id": {"s1"}}
	resp := r.get(t, "/api/chat?"+query.Encode())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	got := events(t, resp)
	if len(got) != 4 {
		t.Fatalf("got %d events: %v", len(got), got)
	}
	if got[0]["chunk"] != "I am fine" || got[1]["chunk"] != ", thanks!" {
		t.Errorf("chunks = %v, %v", got[0], got[1])
	}
	if got[2]["translation"] != "I am fine, thanks!" {
		t.Errorf("translation = %v, want English reply", got[2])
	}
	if got[3]["done"] != true {
		t.Errorf("last = %v", got[3])
	}

	s := r.orchestrator.Sessions().Get("s1")
	if s.Language != "sv" || len(s.Messages) != 2 {
		t.Errorf("session = %+v", s)
	}
}

func TestServer_FailoverToBackup(t *testing.T) {
	primary := ollama.NewMockServer("llama2")
	primary.Close()

	backup := ollama.NewMockServer("mistral")
	defer backup.Close()
	backup.SetChatChunks("Hello")

	r := newRelay(t, nil, primary, backup)

	resp := r.post(t, "/api/chat", `{"message":"Hello there"}`)
	got := events(t, resp)
	if len(got) != 2 || got[0]["chunk"] != "Hello" || got[1]["done"] != true {
		t.Fatalf("events = %v", got)
	}

	reqs := backup.ChatRequests()
	if len(reqs) != 1 || reqs[0].Model != "mistral" {
		t.Errorf("backup received %+v", reqs)
	}

	var status struct {
		Instances []failover.InstanceStatus `json:"instances"`
	}
	decodeBody(t, r.get(t, "/api/status"), &status)
	if len(status.Instances) != 2 {
		t.Fatalf("instances = %+v", status.Instances)
	}
	if status.Instances[0].Status != "unhealthy" || status.Instances[1].Status != "healthy" {
		t.Errorf("statuses = %+v", status.Instances)
	}
}

func TestServer_AllInstancesDown(t *testing.T) {
	a := ollama.NewMockServer("llama2")
	a.Close()
	b := ollama.NewMockServer("llama2")
	b.SetHealthy(false)
	defer b.Close()

	r := newRelay(t, nil, a, b)

	got := events(t, r.get(t, "/api/chat?message=hi"))
	if len(got) != 1 || got[0]["error"] == nil {
		t.Fatalf("events = %v, want one error event", got)
	}

	var models struct {
		Models []string `json:"models"`
	}
	decodeBody(t, r.get(t, "/api/models"), &models)
	if models.Models == nil || len(models.Models) != 0 {
		t.Errorf("models = %#v, want empty list", models.Models)
	}

	if resp := r.get(t, "/ready"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("/ready status = %d, want 503", resp.StatusCode)
	}
	if resp := r.get(t, "/health"); resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_MissingMessage(t *testing.T) {
	backendA := ollama.NewMockServer("llama2")
	defer backendA.Close()
	r := newRelay(t, nil, backendA)

	resp := r.post(t, "/api/chat", `{"session_id":"x"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["error"] != "No message provided" {
		t.Errorf("body = %v", body)
	}
	if backendA.RequestCount("/api/chat") != 0 {
		t.Error("backend contacted for invalid request")
	}
}

func TestServer_ResetKeepsLanguage(t *testing.T) {
	lt := libretranslate.NewMockServer()
	defer lt.Close()
	lt.AddDetection("Hej, hur mår du?", "sv")

	backendA := ollama.NewMockServer("llama2")
	defer backendA.Close()
	backendA.SetChatChunks("Fine")

	r := newRelay(t, lt, backendA)

	events(t, r.post(t, "/api/chat", `{"message":"Hej, hur mår du?","session_id":"s"}`))
	if n := len(r.orchestrator.Sessions().Get("s").Messages); n != 2 {
		t.Fatalf("history = %d messages, want 2", n)
	}

	var body map[string]string
	decodeBody(t, r.post(t, "/api/reset", `{"session_id":"s"}`), &body)
	if body["status"] != "success" {
		t.Errorf("reset body = %v", body)
	}

	s := r.orchestrator.Sessions().Get("s")
	if len(s.Messages) != 0 || s.Language != "sv" {
		t.Errorf("session after reset = %+v", s)
	}
}

func TestServer_Theme(t *testing.T) {
	backendA := ollama.NewMockServer("llama2")
	defer backendA.Close()
	r := newRelay(t, nil, backendA)

	var current map[string]string
	decodeBody(t, r.get(t, "/api/theme"), &current)
	if current["theme"] != theme.Dark || current["stylesheet"] != "/static/style.css" {
		t.Errorf("theme = %v", current)
	}

	resp := r.post(t, "/api/theme/bright", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if r.themes.Current() != theme.Bright {
		t.Errorf("store theme = %q", r.themes.Current())
	}
	decodeBody(t, r.get(t, "/api/theme"), &current)
	if current["stylesheet"] != "/static/bright_style.css" {
		t.Errorf("stylesheet = %v, want bright stylesheet", current)
	}

	if resp := r.post(t, "/api/theme/neon", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d, want 400", resp.StatusCode)
	}
}

func TestServer_Metrics(t *testing.T) {
	backendA := ollama.NewMockServer("llama2")
	defer backendA.Close()
	backendA.SetChatChunks("Hi")
	r := newRelay(t, nil, backendA)

	events(t, r.get(t, "/api/chat?message=hello"))

	resp := r.get(t, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	var found bool
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), `chatrelay_chat_requests_total{status="success"} 1`) {
			found = true
		}
	}
	if !found {
		t.Error("chat request metric not exposed")
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second

	srv := New(cfg, Dependencies{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Addr() == nil {
		t.Fatal("server did not start")
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false after start")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start() returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

type stubChat struct{}

func (stubChat) Chat(context.Context, string, string) (<-chan chat.Event, error) {
	return nil, errors.New("backend down")
}

func (stubChat) Reset(string) {}

func TestServer_ChatRateLimit(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.RateLimit.RequestsPerMinute = 1
	config.ApplyDefaults(cfg)

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	ts := httptest.NewServer(New(cfg, Dependencies{Chat: stubChat{}, Metrics: collector}).Handler())
	defer ts.Close()

	post := func() *http.Response {
		resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"Hello"}`))
		if err != nil {
			t.Fatalf("POST /api/chat: %v", err)
		}
		resp.Body.Close()
		return resp
	}

	if resp := post(); resp.StatusCode == http.StatusTooManyRequests {
		t.Fatal("first request was rate limited")
	}
	resp := post()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	mresp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer mresp.Body.Close()
	data, _ := io.ReadAll(mresp.Body)
	body := string(data)
	if !strings.Contains(body, `chatrelay_rate_limited_total{reason="rate"} 1`) {
		t.Errorf("metrics missing rate limit counter:\n%s", body)
	}
}

func TestServer_StartTLS(t *testing.T) {
	certFile, keyFile, err := testcerts.Write(t.TempDir(), "relay", time.Now().Add(-time.Hour), time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Server.TLS.CertFile = certFile
	cfg.Server.TLS.KeyFile = keyFile
	config.ApplyDefaults(cfg)
	cfg.Server.ListenAddress = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second

	srv := New(cfg, Dependencies{Health: health.New(time.Second)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Addr() == nil {
		t.Fatal("server did not start")
	}

	client := &http.Client{
		Timeout: 2 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402 -- self-signed test certificate
		},
	}
	resp, err := client.Get("https://" + srv.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health over TLS: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.TLS == nil || resp.TLS.Version < tls.VersionTLS12 {
		t.Errorf("unexpected TLS state: %+v", resp.TLS)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Start() returned %v", err)
	}
}
