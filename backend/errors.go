package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError covers everything between us and a decoded response body:
// connection failures, non-2xx statuses and unreadable JSON.
type TransportError struct {
	Action     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s: server error: status %d", e.Action, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Kind is "timeout" when the call ran out of time and "transport" otherwise.
func (e *TransportError) Kind() string {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	return "transport"
}

// APIError is a well-formed response with success=false.
type APIError struct {
	Action  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s rejected: %s", e.Action, e.Message)
}

func (e *APIError) Kind() string { return "backend_rejected" }
