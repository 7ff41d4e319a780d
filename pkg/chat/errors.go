package chat

import "fmt"

// ValidationError reports a request the orchestrator refuses before
// contacting any backend.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Messages sent in error events.
const (
	msgNoBackend    = "No healthy backend instance available"
	msgNoModel      = "No model available"
	msgStreamFailed = "Backend stream failed"
	msgTimeout      = "Backend stream timed out"
	msgInternal     = "Internal error"
)
