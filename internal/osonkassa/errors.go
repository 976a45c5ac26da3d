package osonkassa

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the cached bearer token was rejected. The session
// is invalidated so the next run re-authenticates.
var ErrUnauthorized = errors.New("osonkassa: unauthorized")

// ErrRateLimited indicates the POS API rate limit was exceeded
var ErrRateLimited = errors.New("osonkassa: rate limit exceeded")

// ErrLoginFailed indicates the login endpoint rejected the service credentials
var ErrLoginFailed = errors.New("osonkassa: login failed")

// ServerError represents a 5xx error from the POS API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("osonkassa server error: HTTP %d", e.StatusCode)
}
