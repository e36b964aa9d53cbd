package engine

import (
	"errors"
	"fmt"
)

// ErrNotConfigured marks the engine as reachable but not yet set up. The
// status endpoint signals this with HTTP 400; it is an application state,
// not a failure.
var ErrNotConfigured = errors.New("engine not configured")

// APIError is an engine-reported failure: the engine answered, but with an
// HTTP error body or a failure envelope. Anything else that goes wrong on a
// call (refused connection, timeout, undecodable body) surfaces as a plain
// wrapped error and is treated as a transport failure.
type APIError struct {
	StatusCode int    // HTTP status, 0 when the failure came from the envelope
	Status     string // envelope status, e.g. "failed"
	Message    string // engine-supplied detail
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("engine error: %s", e.Message)
	}
	if e.Status != "" {
		return fmt.Sprintf("engine error: status %q", e.Status)
	}
	return fmt.Sprintf("engine error: HTTP %d", e.StatusCode)
}

// IsEngineReported reports whether err carries a failure the engine itself
// produced, as opposed to a transport-level one.
func IsEngineReported(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
