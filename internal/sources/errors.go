package sources

import (
	"errors"
	"fmt"
)

// ErrRateLimited indicates the source answered 429.
var ErrRateLimited = errors.New("content source rate limit exceeded")

// ErrNoEndpoint indicates a source has no URL configured for the requested call.
var ErrNoEndpoint = errors.New("content source endpoint not configured")

// ServerError represents a 5xx answer from a content source.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("content source server error: HTTP %d", e.StatusCode)
}

// StatusError is a non-retryable, non-2xx answer.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
