package handlers

import (
	"context"

	"github.com/Wartem/llm-chat-lite/pkg/chat"
	"github.com/Wartem/llm-chat-lite/pkg/failover"
)

// ChatService runs chat requests and manages sessions.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (<-chan chat.Event, error)
	Reset(sessionID string)
}

// ModelLister lists the models of the current backend instance.
type ModelLister interface {
	AvailableModels(ctx context.Context) []string
}

// StatusReporter probes every backend instance.
type StatusReporter interface {
	Status(ctx context.Context) []failover.InstanceStatus
}

// ThemeStore reads and changes the UI theme.
type ThemeStore interface {
	Current() string
	Stylesheet() string
	Set(name string) error
}
