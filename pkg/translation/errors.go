package translation

import (
	"errors"
	"fmt"
)

// ErrUnavailable is matched by every ProviderError.
var ErrUnavailable = errors.New("translation service unavailable")

// ProviderError is a failed call to the translation service.
type ProviderError struct {
	// Op is "detect" or "translate".
	Op string

	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Message is the service's error message, if any.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("translation %s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("translation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("translation %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUnavailable.
func (e *ProviderError) Is(target error) bool {
	return target == ErrUnavailable
}

// Retryable reports whether another attempt may succeed. Client errors
// other than 408 and 429 are final.
func (e *ProviderError) Retryable() bool {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode == 408 || e.StatusCode == 429
	}
	return true
}
