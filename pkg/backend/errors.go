package backend

import (
	"errors"
	"fmt"
)

// ErrTransient is matched by every BackendError. Transient failures cause
// the instance to be quarantined and the next candidate to be tried.
var ErrTransient = errors.New("transient backend error")

// BackendError describes a failed call to an instance: a timeout, a refused
// connection, an unexpected status or an unreadable body.
type BackendError struct {
	// Op is the operation that failed ("probe", "pull", "chat").
	Op string

	// URL is the instance base URL.
	URL string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Message is an optional detail, usually the response body.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Message != "":
		return fmt.Sprintf("backend %s %s: status %d: %s", e.Op, e.URL, e.StatusCode, e.Message)
	case e.StatusCode > 0:
		return fmt.Sprintf("backend %s %s: status %d", e.Op, e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("backend %s %s: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("backend %s %s: %s", e.Op, e.URL, e.Message)
	}
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransient.
func (e *BackendError) Is(target error) bool {
	return target == ErrTransient
}
