package translation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Wartem/llm-chat-lite/pkg/telemetry/tracing"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Translation outcomes passed to the Recorder.
const (
	ResultSuccess  = "success"
	ResultFallback = "fallback"
	ResultSkipped  = "skipped"
	ResultCached   = "cached"
)

// Recorder receives translation metrics.
type Recorder interface {
	RecordTranslation(op, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordTranslation(string, string) {}

// Options configures a Gateway.
type Options struct {
	// MaxAttempts per call. Default: 3
	MaxAttempts int

	// RetryDelay between attempts. Default: 1s
	RetryDelay time.Duration

	// DetectCacheSize bounds the detection memo. Zero disables it.
	DetectCacheSize int

	// CollapsePrefixes are base languages reported without region.
	CollapsePrefixes []string

	// Recorder receives metrics. Optional.
	Recorder Recorder
}

// Gateway is the fault-tolerant front of a Translator. None of its methods
// return errors: failures degrade to the input text and English.
type Gateway struct {
	factory    Factory
	opts       Options
	normalizer *Normalizer
	memo       *detectMemo
	recorder   Recorder
	logger     *slog.Logger

	mu     sync.Mutex
	handle Translator
	gen    uint64
}

// NewGateway creates a Gateway. The Translator is created on first use.
func NewGateway(factory Factory, opts Options) *Gateway {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	var recorder Recorder = nopRecorder{}
	if opts.Recorder != nil {
		recorder = opts.Recorder
	}

	return &Gateway{
		factory:    factory,
		opts:       opts,
		normalizer: NewNormalizer(opts.CollapsePrefixes),
		memo:       newDetectMemo(opts.DetectCacheSize),
		recorder:   recorder,
		logger:     slog.Default().With("component", "translation"),
	}
}

// acquire returns the current Translator, creating one if needed, and the
// generation it belongs to.
func (g *Gateway) acquire() (Translator, uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handle == nil {
		t, err := g.factory()
		if err != nil {
			return nil, g.gen, err
		}
		g.handle = t
		g.gen++
	}
	return g.handle, g.gen, nil
}

// discard drops the Translator of generation gen so the next attempt
// creates a new one. Stale generations are ignored.
func (g *Gateway) discard(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen == gen {
		g.handle = nil
	}
}

// withRetry runs fn with a fixed delay between attempts, recreating the
// Translator after each failure. Non-retryable provider errors stop early.
func withRetry[T any](ctx context.Context, g *Gateway, op string, fn func(context.Context, Translator) (T, error)) (T, error) {
	ctx, span := otel.Tracer(tracing.InstrumentationName).Start(ctx, "translation."+op)
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrTranslationOp, op))

	attempt := 0
	operation := func() (T, error) {
		attempt++
		var zero T

		t, gen, err := g.acquire()
		if err != nil {
			return zero, err
		}

		v, err := fn(ctx, t)
		if err != nil {
			g.discard(gen)
			var pe *ProviderError
			if errors.As(err, &pe) && !pe.Retryable() {
				return zero, backoff.Permanent(err)
			}
			return zero, err
		}
		return v, nil
	}

	v, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(g.opts.RetryDelay)),
		backoff.WithMaxTries(uint(g.opts.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			g.logger.Warn("translation attempt failed",
				"op", op,
				"attempt", attempt,
				"retry_in", next,
				"error", err,
			)
		}),
	)
	span.SetAttributes(attribute.Int(tracing.AttrTranslationTry, attempt))
	tracing.SetStatus(span, err)
	return v, err
}

// DetectLanguage returns the normalized language of text. Results are
// memoized by exact text. Blank text and failed detections yield English;
// failures are not memoized.
func (g *Gateway) DetectLanguage(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return English
	}

	if lang, ok := g.memo.get(text); ok {
		g.recorder.RecordTranslation("detect", ResultCached)
		return lang
	}

	raw, err := withRetry(ctx, g, "detect", func(ctx context.Context, t Translator) (string, error) {
		return t.Detect(ctx, text)
	})
	if err != nil {
		g.logger.Error("language detection failed", "attempts", g.opts.MaxAttempts, "error", err)
		g.recorder.RecordTranslation("detect", ResultFallback)
		return English
	}

	lang := g.normalizer.Normalize(raw)
	g.memo.add(text, lang)
	g.recorder.RecordTranslation("detect", ResultSuccess)
	return lang
}

// ToEnglish translates text into English and reports its source language.
// English input is returned unchanged. On failure the original text is
// returned tagged as English.
func (g *Gateway) ToEnglish(ctx context.Context, text string) (string, string) {
	if strings.TrimSpace(text) == "" {
		return text, English
	}

	lang := g.DetectLanguage(ctx, text)
	if lang == English {
		g.recorder.RecordTranslation("to_english", ResultSkipped)
		return text, English
	}

	res, err := withRetry(ctx, g, "to_english", func(ctx context.Context, t Translator) (Result, error) {
		return t.Translate(ctx, text, English, lang)
	})
	if err != nil {
		g.logger.Error("translation to English failed", "source", lang, "error", err)
		g.recorder.RecordTranslation("to_english", ResultFallback)
		return text, English
	}

	source := lang
	if res.Source != "" && res.Source != Auto {
		source = g.normalizer.Normalize(res.Source)
	}
	g.recorder.RecordTranslation("to_english", ResultSuccess)
	return res.Text, source
}

// FromEnglish translates English text into dest. Text is returned unchanged
// when dest is English, when text is blank, or when translation fails.
func (g *Gateway) FromEnglish(ctx context.Context, text, dest string) string {
	if strings.TrimSpace(text) == "" || g.normalizer.Normalize(dest) == English {
		return text
	}

	res, err := withRetry(ctx, g, "from_english", func(ctx context.Context, t Translator) (Result, error) {
		return t.Translate(ctx, text, dest, English)
	})
	if err != nil {
		g.logger.Error("translation from English failed", "dest", dest, "error", err)
		g.recorder.RecordTranslation("from_english", ResultFallback)
		return text
	}

	g.recorder.RecordTranslation("from_english", ResultSuccess)
	return res.Text
}

// CachedDetections returns the number of memoized detections.
func (g *Gateway) CachedDetections() int {
	return g.memo.len()
}
