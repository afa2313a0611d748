package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/mrlokans/zeeguu/internal/metrics"
)

const (
	// DefaultBaseURL is the public zeeguu API
	DefaultBaseURL = "https://zeeguu.unibe.ch"

	defaultTimeout     = 10 * time.Second
	defaultMaxRetries  = 1
	initialRetryDelay  = 500 * time.Millisecond
	maxRetryDelay      = 10 * time.Second
	retryBackoffFactor = 2
	maxErrorBody       = 512
)

// Options configures a Client. Zero values fall back to defaults; MaxRetries
// falls back only when negative, so zero disables retries.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	HTTPClient        *http.Client
}

// Client performs requests against the zeeguu API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	policy     RetryPolicy
	limiter    *rate.Limiter
}

// NewClient creates a new API client
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		policy: RetryPolicy{
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.userAgent == "" {
		c.userAgent = "zeeguu-go/1.0"
	}
	if c.policy.Timeout <= 0 {
		c.policy.Timeout = defaultTimeout
	}
	if c.policy.MaxRetries < 0 {
		c.policy.MaxRetries = defaultMaxRetries
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends the request, retrying rate limits, server errors and attempt
// timeouts with exponential backoff, and returns the response body.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	policy := c.policy
	if req.Policy != nil {
		policy = *req.Policy
	}

	logger := log.WithFields(log.Fields{
		"request_id": req.ID,
		"endpoint":   req.Endpoint(),
	})

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			logger.Debugf("retrying in %v after: %v", delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		body, err := c.attempt(ctx, req, policy.Timeout)
		if err == nil {
			logger.Debugf("%s %s ok (%d bytes)", req.Method, req.Endpoint(), len(body))
			return body, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}
	}

	if policy.MaxRetries == 0 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) attempt(ctx context.Context, req Request, timeout time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.newHTTPRequest(attemptCtx, req)
	if err != nil {
		return nil, err
	}

	done := metrics.TrackAPIRequest(req.Endpoint())
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		done("failed")
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %v", errAttemptTimeout, timeout)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		done("client_error")
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		done("client_error")
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		done("server_error")
		return nil, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		done("client_error")
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		done("failed")
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	done("ok")
	return body, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
