package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Wartem/llm-chat-lite/internal/ollama"
)

func TestClient_Probe(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(ms *ollama.MockServer)
		wantErr    bool
		wantListed bool
		wantModels []string
	}{
		{
			name:       "healthy with models",
			setup:      func(ms *ollama.MockServer) { ms.SetModels("llama3:8b", "mistral") },
			wantListed: true,
			wantModels: []string{"llama3:8b", "mistral"},
		},
		{
			name:       "healthy with empty listing",
			setup:      func(ms *ollama.MockServer) { ms.SetModels() },
			wantListed: true,
			wantModels: []string{},
		},
		{
			name:       "healthy without models field",
			setup:      func(ms *ollama.MockServer) { ms.OmitModels() },
			wantListed: false,
		},
		{
			name:    "unhealthy status",
			setup:   func(ms *ollama.MockServer) { ms.SetHealthy(false) },
			wantErr: true,
		},
		{
			name:    "probe timeout",
			setup:   func(ms *ollama.MockServer) { ms.SetTagsDelay(500 * time.Millisecond) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := ollama.NewMockServer()
			defer ms.Close()
			tt.setup(ms)

			client := NewClient(Options{ProbeTimeout: 100 * time.Millisecond})
			result, err := client.Probe(context.Background(), ms.URL())

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrTransient) {
					t.Errorf("expected ErrTransient, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Listed != tt.wantListed {
				t.Errorf("Listed = %v, want %v", result.Listed, tt.wantListed)
			}
			if strings.Join(result.Models, ",") != strings.Join(tt.wantModels, ",") {
				t.Errorf("Models = %v, want %v", result.Models, tt.wantModels)
			}
		})
	}
}

func TestClient_ProbeConnectionRefused(t *testing.T) {
	ms := ollama.NewMockServer("llama2")
	url := ms.URL()
	ms.Close()

	client := NewClient(Options{ProbeTimeout: 100 * time.Millisecond})
	_, err := client.Probe(context.Background(), url)

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *BackendError, got %T: %v", err, err)
	}
	if backendErr.Op != "probe" || backendErr.StatusCode != 0 {
		t.Errorf("BackendError = %+v, want probe without status", backendErr)
	}
}

func TestClient_StreamChat(t *testing.T) {
	ms := ollama.NewMockServer("llama2")
	defer ms.Close()
	ms.SetChatChunks("Hello", ", ", "world")

	client := NewClient(Options{})
	chunks, err := client.StreamChat(context.Background(), ms.URL()+"/", ChatRequest{
		Model:    "llama2",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}

	var sb strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("unexpected chunk error: %v", chunk.Err)
		}
		sb.WriteString(chunk.Content)
	}
	if sb.String() != "Hello, world" {
		t.Errorf("content = %q, want %q", sb.String(), "Hello, world")
	}

	reqs := ms.ChatRequests()
	if len(reqs) != 1 {
		t.Fatalf("chat requests = %d, want 1", len(reqs))
	}
	if !reqs[0].Stream || reqs[0].Model != "llama2" || len(reqs[0].Messages) != 1 {
		t.Errorf("chat request = %+v", reqs[0])
	}
}

func TestClient_StreamChatStatusError(t *testing.T) {
	ms := ollama.NewMockServer("llama2")
	defer ms.Close()
	ms.SetChatStatus(http.StatusNotFound)

	client := NewClient(Options{})
	_, err := client.StreamChat(context.Background(), ms.URL(), ChatRequest{Model: "llama2"})

	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected *BackendError, got %v", err)
	}
	if backendErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", backendErr.StatusCode)
	}
}

func TestClient_StreamChatCancel(t *testing.T) {
	ms := ollama.NewMockServer("llama2")
	defer ms.Close()
	ms.SetChatChunks("a", "b", "c", "d")
	ms.SetChunkDelay(200 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(Options{})
	chunks, err := client.StreamChat(ctx, ms.URL(), ChatRequest{Model: "llama2"})
	if err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}

	first := <-chunks
	if first.Content != "a" {
		t.Fatalf("first chunk = %+v, want a", first)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		for range chunks {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream channel not closed after cancel")
	}

	deadline := time.Now().Add(2 * time.Second)
	for ms.Disconnects() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if ms.Disconnects() == 0 {
		t.Error("backend did not observe the disconnect")
	}
}

func TestClient_Pull(t *testing.T) {
	ms := ollama.NewMockServer()
	defer ms.Close()

	client := NewClient(Options{PullTimeout: time.Second})
	if err := client.Pull(context.Background(), ms.URL(), "llama2"); err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if pulls := ms.Pulls(); len(pulls) != 1 || pulls[0] != "llama2" {
		t.Errorf("pulls = %v, want [llama2]", pulls)
	}

	ms.SetPullStatus(http.StatusInternalServerError)
	if err := client.Pull(context.Background(), ms.URL(), "llama2"); !errors.Is(err, ErrTransient) {
		t.Errorf("Pull() error = %v, want ErrTransient", err)
	}
}

func TestClient_PullTimerFiredAfterAccept(t *testing.T) {
	ms := ollama.NewMockServer()
	defer ms.Close()

	client := NewClient(Options{PullTimeout: time.Second})
	// A timer that has already fired by the time the response arrives.
	client.afterFunc = func(d time.Duration, f func()) *time.Timer {
		timer := time.AfterFunc(time.Hour, f)
		timer.Stop()
		return timer
	}

	err := client.Pull(context.Background(), ms.URL(), "llama2")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Pull() error = %v, want context.DeadlineExceeded", err)
	}
	if !errors.Is(err, ErrTransient) {
		t.Errorf("Pull() error = %v, want ErrTransient", err)
	}
}
