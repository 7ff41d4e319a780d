// Package session keeps per-conversation state for the lifetime of the process.
package session

import (
	"sync"

	"github.com/Wartem/llm-chat-lite/pkg/backend"
)

// Session is a snapshot of one conversation.
type Session struct {
	ID       string
	Messages []backend.Message
	Language string
}

type entry struct {
	messages []backend.Message
	language string
}

// Store maps session ids to conversations. All methods are safe for
// concurrent use and return copies, never internal slices.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	limit    int
}

// NewStore creates a store keeping at most limit messages per session.
// A non-positive limit keeps everything.
func NewStore(limit int) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		limit:    limit,
	}
}

// getOrCreate must be called with mu held.
func (s *Store) getOrCreate(id string) *entry {
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{}
		s.sessions[id] = e
	}
	return e
}

// Get returns a snapshot of session id, creating it if needed.
func (s *Store) Get(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreate(id)
	return Session{
		ID:       id,
		Messages: append([]backend.Message(nil), e.messages...),
		Language: e.language,
	}
}

// Exists reports whether id has been seen.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

// SetLanguageOnce records lang as the session language unless one is
// already set, and returns the language in effect.
func (s *Store) SetLanguageOnce(id, lang string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreate(id)
	if e.language == "" {
		e.language = lang
	}
	return e.language
}

// Append adds messages to the session and truncates the history to the
// most recent limit entries.
func (s *Store) Append(id string, msgs ...backend.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreate(id)
	e.messages = append(e.messages, msgs...)
	if s.limit > 0 && len(e.messages) > s.limit {
		e.messages = append([]backend.Message(nil), e.messages[len(e.messages)-s.limit:]...)
	}
}

// Reset clears the history of session id and keeps its language.
// Unknown ids are ignored.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[id]; ok {
		e.messages = nil
	}
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
