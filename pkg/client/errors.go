package client

import (
	"errors"
	"fmt"
)

// Sentinel failure kinds for identity resolution and authenticated calls.
// Callers branch with errors.Is; the session machine treats all of them as
// "the credential did not resolve" but logs them distinctly.
var (
	// ErrUnauthorized means the backend rejected the presented credential.
	ErrUnauthorized = errors.New("client: unauthorized")
	// ErrNetwork covers transport-level failures: connection refused, DNS,
	// timeouts.
	ErrNetwork = errors.New("client: network failure")
	// ErrMalformedResponse means the response arrived but did not carry the
	// expected envelope or fields.
	ErrMalformedResponse = errors.New("client: malformed response")
)

// APIError is a request the backend understood and rejected, carrying the
// human-readable message from the response envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%d)", e.StatusCode)
}
