package failover

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoBackendAvailable is returned when no instance can serve requests.
	ErrNoBackendAvailable = errors.New("no healthy backend instance available")

	// ErrNoModel is returned when the selected instance has no usable model.
	ErrNoModel = errors.New("no model available")
)

// NoBackendError is returned when every candidate was quarantined or failed
// its probe and no instance was ever selected before.
type NoBackendError struct {
	// Attempted lists the instances probed during the failed pass.
	Attempted []string

	// Quarantined is the number of instances skipped due to quarantine.
	Quarantined int
}

// Error implements the error interface.
func (e *NoBackendError) Error() string {
	if len(e.Attempted) == 0 {
		return fmt.Sprintf("%s (%d quarantined)", ErrNoBackendAvailable, e.Quarantined)
	}
	return fmt.Sprintf("%s (tried: %s)", ErrNoBackendAvailable, strings.Join(e.Attempted, ", "))
}

// Is reports whether target is ErrNoBackendAvailable.
func (e *NoBackendError) Is(target error) bool {
	return target == ErrNoBackendAvailable
}
