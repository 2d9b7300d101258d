package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated indicates a missing or invalid bearer credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the principal failed a role or region gate.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a malformed or inconsistent request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState indicates the resource cannot move to the requested state.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
)

// ErrorCode returns the stable API code for a domain error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	default:
		return "INTERNAL"
	}
}

// UserSafeMessage returns the message that may be shown to API clients.
func UserSafeMessage(err error) string {
	if ErrorCode(err) == "INTERNAL" {
		return "internal error"
	}
	return err.Error()
}
