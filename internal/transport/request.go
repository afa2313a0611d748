// Package transport is the HTTP request capability used by the session
// orchestrator: a retrying client for the zeeguu API and an asynchronous queue
// that delivers each outcome back on the orchestrator's goroutine.
package transport

import (
	"net/url"
	"strings"
	"time"
)

// RetryPolicy controls the per-attempt timeout and how many extra attempts a
// retryable failure gets.
type RetryPolicy struct {
	Timeout    time.Duration
	MaxRetries int
}

// Request describes one API call. Path is relative to the API base URL and its
// segments must already be escaped. At most one of Form and JSON is set.
type Request struct {
	ID     string
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	JSON   any

	// Policy overrides the client's default retry policy when set.
	Policy *RetryPolicy
}

// Endpoint returns the first path segment, used as a low-cardinality label
// for logs and metrics.
func (r Request) Endpoint() string {
	p := strings.TrimPrefix(r.Path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "root"
	}
	return p
}

// PathSegment escapes a user supplied value for use as a single path segment.
func PathSegment(s string) string {
	return url.PathEscape(s)
}
