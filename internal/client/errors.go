// ABOUTME: Error taxonomy for storefront API calls
// ABOUTME: Sentinel and typed errors that callers inspect with errors.Is/As

package client

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired is returned when a protected call was rejected with 401.
	// By the time the caller sees it the session has already been cleared.
	ErrAuthExpired = errors.New("session expired")

	// ErrNotAuthenticated is returned when a protected operation is attempted
	// without a session. No request is sent.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrNotHydrated is returned when a protected call is attempted before
	// the persisted session was loaded. No request is sent.
	ErrNotHydrated = errors.New("session not loaded yet")
)

// NetworkError is a transport failure: no HTTP response was received
type NetworkError struct {
	BaseURL  string
	Canceled bool
	Timeout  bool
	Err      error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Canceled:
		return "request canceled"
	case e.Timeout:
		return "request timed out"
	default:
		return fmt.Sprintf("cannot connect to server at %s: %v", e.BaseURL, e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response other than an expired session
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// ValidationError is a client-side rejection made before any request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsStatus reports whether err is a ServerError with the given status
func IsStatus(err error, status int) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == status
}
