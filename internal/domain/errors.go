package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the session/token lifecycle.
var (
	// ErrInvalidTokenResponse marks a token endpoint response missing
	// any of token, tokenType, or expiresIn. Nothing is stored when it
	// is returned.
	ErrInvalidTokenResponse = errors.New("invalid token response format")

	// ErrClientTokenInvalid is returned when a login is attempted
	// without a currently valid client token. The check runs before
	// any network call.
	ErrClientTokenInvalid = errors.New("client token is invalid or expired")

	// ErrSessionCleared marks a token write that lost to a concurrent
	// logout: the session generation moved on while the request was in
	// flight, so the write was discarded.
	ErrSessionCleared = errors.New("session cleared while request in flight")
)

// UpstreamError is a typed rejection from the upstream API, either an
// HTTP-level non-2xx or an application-level non-success status code.
// The composition root (the browser shell) translates it into a
// navigation or an inline message; the auth core never redirects.
type UpstreamError struct {
	Status  int
	Code    string
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream request failed with status %d", e.Status)
}

// Unauthorized reports whether the upstream rejected the credential
// itself, which obliges the caller to clear local auth state.
func (e *UpstreamError) Unauthorized() bool {
	return e.Status == 401
}

// NewUpstreamError builds an UpstreamError, falling back to a templated
// message when the server body carried none.
func NewUpstreamError(status int, code, message string) *UpstreamError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d: request rejected", status)
	}
	return &UpstreamError{Status: status, Code: code, Message: message}
}
