package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/telemetry/tracing"
)

// LibreTranslate is a Translator for LibreTranslate-compatible HTTP services
// (POST /detect and POST /translate).
type LibreTranslate struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewLibreTranslate creates a client. A zero timeout leaves calls bounded
// only by the caller's context.
func NewLibreTranslate(baseURL, apiKey string, timeout time.Duration) *LibreTranslate {
	return &LibreTranslate{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// LibreTranslateFactory returns a Factory creating a fresh client, and thus
// a fresh connection pool, per call.
func LibreTranslateFactory(baseURL, apiKey string, timeout time.Duration) Factory {
	return func() (Translator, error) {
		if baseURL == "" {
			return nil, fmt.Errorf("translation provider URL is empty")
		}
		return NewLibreTranslate(baseURL, apiKey, timeout), nil
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Format string `json:"format,omitempty"`
	APIKey string `json:"api_key,omitempty"`
}

type libreDetection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

type libreTranslation struct {
	TranslatedText   string          `json:"translatedText"`
	DetectedLanguage *libreDetection `json:"detectedLanguage"`
}

type libreError struct {
	Error string `json:"error"`
}

// Detect returns the most confident language for text.
func (l *LibreTranslate) Detect(ctx context.Context, text string) (string, error) {
	var detections []libreDetection
	if err := l.post(ctx, "detect", libreRequest{Q: text, APIKey: l.apiKey}, &detections); err != nil {
		return "", err
	}

	best := libreDetection{Confidence: -1}
	for _, d := range detections {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	if best.Language == "" {
		return "", &ProviderError{Op: "detect", Message: "no language detected"}
	}
	return best.Language, nil
}

// Translate translates text from src into dest. An empty src means Auto.
func (l *LibreTranslate) Translate(ctx context.Context, text, dest, src string) (Result, error) {
	if src == "" {
		src = Auto
	}

	var out libreTranslation
	req := libreRequest{Q: text, Source: src, Target: dest, Format: "text", APIKey: l.apiKey}
	if err := l.post(ctx, "translate", req, &out); err != nil {
		return Result{}, err
	}

	result := Result{Text: out.TranslatedText, Source: src}
	if out.DetectedLanguage != nil && out.DetectedLanguage.Language != "" {
		result.Source = out.DetectedLanguage.Language
	}
	return result, nil
}

func (l *LibreTranslate) post(ctx context.Context, op string, body libreRequest, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/"+op, bytes.NewReader(data))
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	tracing.Inject(ctx, req.Header)

	resp, err := l.client.Do(req)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(raw))
		var le libreError
		if json.Unmarshal(raw, &le) == nil && le.Error != "" {
			msg = le.Error
		}
		return &ProviderError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Op: op, Message: "invalid response", Err: err}
	}
	return nil
}
