package transport

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the session token or credentials were rejected
var ErrUnauthorized = errors.New("zeeguu API rejected the credentials")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("zeeguu API rate limit exceeded")

// ServerError represents a 5xx response
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("zeeguu server error: HTTP %d", e.StatusCode)
}

// StatusError represents any other non-2xx response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return true
	}
	return errors.Is(err, errAttemptTimeout)
}

var errAttemptTimeout = errors.New("request attempt timed out")
