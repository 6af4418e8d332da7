package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRateLimited     = errors.New("rate limit exceeded")

	// Status fetch errors
	ErrAuthMissing       = errors.New("no access token available")
	ErrMalformedResponse = errors.New("malformed status response")

	// Demo session errors
	ErrAccessCodeRejected = errors.New("access code rejected")
	ErrSessionInvalid     = errors.New("invalid session token")
)

// RequestFailedError reports a non-2xx response or a transport-level
// failure from the generation backend. StatusCode is 0 when the request
// never completed.
type RequestFailedError struct {
	StatusCode int
	Detail     string
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("status request failed: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("status request failed: %s", e.Detail)
}
