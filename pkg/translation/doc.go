// Package translation wraps an external translation service behind a
// fault-tolerant gateway.
//
// The service itself is abstracted as a Translator (detect and translate).
// The Gateway adds what the chat flow needs on top:
//
//   - retries with a fixed delay, recreating the Translator after each
//     failed attempt
//   - a bounded memo of language detections keyed by exact input text
//   - language-code normalization ("sv-FI" and "sv_SE" become "sv")
//   - graceful degradation: failures fall back to the original text and
//     the "en" language tag instead of returning errors
//
// Blank input never reaches the service.
package translation
