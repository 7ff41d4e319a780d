package translation

import "context"

// English is the pivot language of the relay.
const English = "en"

// Auto asks the service to detect the source language.
const Auto = "auto"

// Result is the outcome of one translation.
type Result struct {
	// Text is the translated text.
	Text string

	// Source is the source language reported by the service, if any.
	Source string
}

// Translator is the external translation capability. Implementations may
// fail at any call; the Gateway retries them.
type Translator interface {
	// Detect returns the language code of text.
	Detect(ctx context.Context, text string) (string, error)

	// Translate translates text from src (or Auto) into dest.
	Translate(ctx context.Context, text, dest, src string) (Result, error)
}

// Factory creates a Translator. The Gateway calls it lazily and again after
// every failed attempt.
type Factory func() (Translator, error)

// Passthrough treats every text as English and never changes it. It is
// used when translation is disabled.
type Passthrough struct{}

// Detect always returns English.
func (Passthrough) Detect(context.Context, string) (string, error) {
	return English, nil
}

// Translate returns text unchanged.
func (Passthrough) Translate(_ context.Context, text, _, src string) (Result, error) {
	if src == "" || src == Auto {
		src = English
	}
	return Result{Text: text, Source: src}, nil
}

// PassthroughFactory returns a Factory producing Passthrough.
func PassthroughFactory() Factory {
	return func() (Translator, error) {
		return Passthrough{}, nil
	}
}
