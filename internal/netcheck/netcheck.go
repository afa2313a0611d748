// Package netcheck reports whether the zeeguu API host is reachable.
package netcheck

import (
	"context"
	"errors"
	"net"
	"net/url"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultDialTimeout = 2 * time.Second
	defaultTTL         = 30 * time.Second
)

var errMissingHost = errors.New("URL has no host")

// Monitor answers the network availability question asked before every
// network-bound operation.
type Monitor interface {
	Available() bool
}

// Static is a Monitor with a fixed answer.
type Static bool

// Available returns the fixed answer.
func (s Static) Available() bool { return bool(s) }

// Probe checks reachability by dialing the API host over TCP. The result is
// cached for TTL so callers can ask on every operation.
type Probe struct {
	address     string
	dialTimeout time.Duration
	ttl         time.Duration
	dial        func(ctx context.Context, network, address string) (net.Conn, error)
	now         func() time.Time

	mu        sync.Mutex
	checkedAt time.Time
	available bool
}

// NewProbe creates a probe for the host of baseURL. Zero durations fall back
// to defaults.
func NewProbe(baseURL string, dialTimeout, ttl time.Duration) (*Probe, error) {
	address, err := hostPort(baseURL)
	if err != nil {
		return nil, err
	}
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	dialer := &net.Dialer{}
	return &Probe{
		address:     address,
		dialTimeout: dialTimeout,
		ttl:         ttl,
		dial:        dialer.DialContext,
		now:         time.Now,
	}, nil
}

// Available reports whether the last dial within TTL succeeded, dialing again
// when the cached answer is stale.
func (p *Probe) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if !p.checkedAt.IsZero() && now.Sub(p.checkedAt) < p.ttl {
		return p.available
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", p.address)
	available := err == nil
	if err != nil {
		log.WithField("address", p.address).Debugf("network probe failed: %v", err)
	} else {
		conn.Close()
	}
	if available != p.available || p.checkedAt.IsZero() {
		log.WithField("available", available).Info("network availability changed")
	}

	p.available = available
	p.checkedAt = now
	return available
}

// Invalidate forces the next Available call to dial again.
func (p *Probe) Invalidate() {
	p.mu.Lock()
	p.checkedAt = time.Time{}
	p.mu.Unlock()
}

func hostPort(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", &url.Error{Op: "parse", URL: baseURL, Err: errMissingHost}
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(host, port), nil
}
