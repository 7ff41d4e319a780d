package chat

import "encoding/json"

// EventKind identifies the payload of an Event.
type EventKind int

const (
	// EventChunk carries a piece of the English reply.
	EventChunk EventKind = iota

	// EventTranslation carries the whole reply in the session language.
	EventTranslation

	// EventDone ends a successful request.
	EventDone

	// EventError ends a failed request.
	EventError
)

// String returns the JSON key used for the kind.
func (k EventKind) String() string {
	switch k {
	case EventChunk:
		return "chunk"
	case EventTranslation:
		return "translation"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one message of the reply stream.
type Event struct {
	Kind EventKind
	Text string
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError
}

// MarshalJSON encodes the event as an object with exactly one key:
// {"chunk": ...}, {"translation": ...}, {"done": true} or {"error": ...}.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == EventDone {
		return json.Marshal(map[string]bool{"done": true})
	}
	return json.Marshal(map[string]string{e.Kind.String(): e.Text})
}

// ChunkEvent returns a chunk event.
func ChunkEvent(text string) Event { return Event{Kind: EventChunk, Text: text} }

// TranslationEvent returns a translation event.
func TranslationEvent(text string) Event { return Event{Kind: EventTranslation, Text: text} }

// DoneEvent returns the terminal success event.
func DoneEvent() Event { return Event{Kind: EventDone} }

// ErrorEvent returns a terminal error event.
func ErrorEvent(msg string) Event { return Event{Kind: EventError, Text: msg} }
