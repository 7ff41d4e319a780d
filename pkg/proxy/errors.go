package proxy

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBodyTooLarge is returned when a request body exceeds MaxRequestBodySize.
var ErrBodyTooLarge = errors.New("request body too large")

// RequestError is a client error detected while reading a request.
type RequestError struct {
	// Status is the HTTP status code to answer with.
	Status int

	// Message is the text sent to the client.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for err. RequestErrors carry their own
// status; anything else maps to 500.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Status != 0 {
		return reqErr.Status
	}
	return http.StatusInternalServerError
}
