// Package apperr classifies errors for logs and for the diagnostics journal.
package apperr

import (
	"context"
	"errors"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrValidation          = errors.New("validation failed")
	ErrBusy                = errors.New("operation already in progress")
	ErrInvalidTransition   = errors.New("invalid view transition")
	ErrIdentityUnavailable = errors.New("identity integration unavailable")
)

// kinder is satisfied by errors that carry their own classification,
// such as the backend client errors.
type kinder interface {
	Kind() string
}

// Kind returns a short stable label for err.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrIdentityUnavailable):
		return "identity_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
