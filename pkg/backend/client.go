package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/telemetry/tracing"
)

// API paths on an instance.
const (
	TagsPath = "/api/tags"
	PullPath = "/api/pull"
	ChatPath = "/api/chat"
)

// maxLineSize bounds a single line of a streamed response.
const maxLineSize = 1 << 20

// Options configures a Client.
type Options struct {
	// ProbeTimeout bounds GET /api/tags. Default: 2s
	ProbeTimeout time.Duration

	// PullTimeout bounds the wait for the pull to be accepted. Default: 2s
	PullTimeout time.Duration

	// HTTPClient is used for probes and chat. Default: a pooled client without a global timeout.
	HTTPClient *http.Client
}

// Client talks to Ollama-compatible instances. It is safe for concurrent use.
type Client struct {
	http         *http.Client
	pull         *http.Client
	probeTimeout time.Duration
	pullTimeout  time.Duration
	afterFunc    func(time.Duration, func()) *time.Timer
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 2 * time.Second
	}
	if opts.PullTimeout <= 0 {
		opts.PullTimeout = 2 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// No client-wide timeout: chat streams are bounded by the caller's context.
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}
	}

	// Pulls outlive the request that triggers them, so only connecting and
	// waiting for the response header are bounded.
	pullClient := &http.Client{
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: opts.PullTimeout}).DialContext,
			ResponseHeaderTimeout: opts.PullTimeout,
		},
	}
	if opts.HTTPClient != nil {
		pullClient = opts.HTTPClient
	}

	return &Client{
		http:         httpClient,
		pull:         pullClient,
		probeTimeout: opts.ProbeTimeout,
		pullTimeout:  opts.PullTimeout,
		afterFunc:    time.AfterFunc,
	}
}

// Probe checks that the instance at baseURL answers GET /api/tags with 200
// within the probe timeout and returns the models it lists.
func (c *Client) Probe(ctx context.Context, baseURL string) (ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(baseURL, TagsPath), nil)
	if err != nil {
		return ProbeResult{}, &BackendError{Op: "probe", URL: baseURL, Err: err}
	}
	tracing.Inject(ctx, req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return ProbeResult{}, &BackendError{Op: "probe", URL: baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ProbeResult{}, &BackendError{
			Op:         "probe",
			URL:        baseURL,
			StatusCode: resp.StatusCode,
			Message:    readSnippet(resp.Body),
		}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return ProbeResult{}, &BackendError{
			Op:      "probe",
			URL:     baseURL,
			Message: "invalid model listing",
			Err:     err,
		}
	}

	result := ProbeResult{}
	if tags.Models != nil {
		result.Listed = true
		result.Models = make([]string, 0, len(*tags.Models))
		for _, m := range *tags.Models {
			if m.Name != "" {
				result.Models = append(result.Models, m.Name)
			}
		}
	}

	return result, nil
}

// Pull asks the instance to download model. It returns once the instance has
// accepted the request; the download continues in the background and its
// outcome is only logged. A single attempt is made.
func (c *Client) Pull(ctx context.Context, baseURL, model string) error {
	body, err := json.Marshal(pullRequest{Name: model, Stream: true})
	if err != nil {
		return fmt.Errorf("failed to marshal pull request: %w", err)
	}

	// The pull must survive the caller's request, but not wait on it forever.
	pullCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	req, err := http.NewRequestWithContext(pullCtx, http.MethodPost, joinURL(baseURL, PullPath), bytes.NewReader(body))
	if err != nil {
		cancel()
		return &BackendError{Op: "pull", URL: baseURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	tracing.Inject(ctx, req.Header)

	accepted := c.afterFunc(c.pullTimeout, cancel)
	resp, err := c.pull.Do(req)
	if err != nil {
		cancel()
		return &BackendError{Op: "pull", URL: baseURL, Err: err}
	}
	if !accepted.Stop() {
		// The timer fired after the header arrived and pullCtx is gone.
		resp.Body.Close()
		cancel()
		return &BackendError{Op: "pull", URL: baseURL, Message: "not accepted in time", Err: context.DeadlineExceeded}
	}

	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer resp.Body.Close()
		return &BackendError{
			Op:         "pull",
			URL:        baseURL,
			StatusCode: resp.StatusCode,
			Message:    readSnippet(resp.Body),
		}
	}

	go func() {
		defer cancel()
		defer resp.Body.Close()
		drainPull(baseURL, model, resp.Body)
	}()

	return nil
}

// drainPull consumes pull progress until the instance closes the stream.
func drainPull(baseURL, model string, body io.Reader) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	var last pullStatus
	for scanner.Scan() {
		var status pullStatus
		if err := json.Unmarshal(scanner.Bytes(), &status); err != nil {
			continue
		}
		last = status
		if status.Error != "" {
			slog.Error("model pull failed", "instance", baseURL, "model", model, "error", status.Error)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("model pull stream interrupted", "instance", baseURL, "model", model, "error", err)
		return
	}
	slog.Info("model pull finished", "instance", baseURL, "model", model, "status", last.Status)
}

// StreamChat sends req to the instance and streams the reply. The returned
// channel yields content chunks in order and is closed when the backend
// signals completion, when an error chunk has been sent, or when ctx is
// cancelled. Cancelling ctx releases the backend connection.
func (c *Client) StreamChat(ctx context.Context, baseURL string, req ChatRequest) (<-chan StreamChunk, error) {
	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(baseURL, ChatPath), bytes.NewReader(body))
	if err != nil {
		return nil, &BackendError{Op: "chat", URL: baseURL, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")
	tracing.Inject(ctx, httpReq.Header)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &BackendError{Op: "chat", URL: baseURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, &BackendError{
			Op:         "chat",
			URL:        baseURL,
			StatusCode: resp.StatusCode,
			Message:    readSnippet(resp.Body),
		}
	}

	chunks := make(chan StreamChunk, 100)

	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		send := func(chunk StreamChunk) bool {
			select {
			case chunks <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var parsed chatLine
			if err := json.Unmarshal(line, &parsed); err != nil {
				send(StreamChunk{Err: &BackendError{
					Op:      "chat",
					URL:     baseURL,
					Message: "invalid stream line",
					Err:     err,
				}})
				return
			}

			if parsed.Error != "" {
				send(StreamChunk{Err: &BackendError{Op: "chat", URL: baseURL, Message: parsed.Error}})
				return
			}

			if parsed.Message != nil && parsed.Message.Content != "" {
				if !send(StreamChunk{Content: parsed.Message.Content}) {
					return
				}
			}

			if parsed.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			send(StreamChunk{Err: &BackendError{Op: "chat", URL: baseURL, Err: err}})
		}
	}()

	return chunks, nil
}

// joinURL appends path to base, tolerating a trailing slash on base.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// readSnippet returns the start of an error body for diagnostics.
func readSnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(data))
}
