package session

import (
	"context"
	"sync"
)

// Executor runs functions on the goroutine that owns the account state.
// Response handlers and offloaded results are always delivered through it.
// Post reports false when fn was refused and will never run.
type Executor interface {
	Post(fn func()) bool
}

// Inline runs posted functions immediately on the caller's goroutine.
type Inline struct{}

// Post runs fn.
func (Inline) Post(fn func()) bool {
	fn()
	return true
}

// Loop is a single-goroutine mailbox. Posted functions run one at a time, in
// the order they were posted, on the goroutine that calls Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{}
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It never blocks, so handlers running on the loop may post
// more work. Functions posted after Run returns are dropped and Post reports
// false.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Run processes posted functions until ctx is done. Functions accepted before
// that still run before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.mu.Lock()
		l.stopped = true
		rest := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range rest {
			fn()
		}
	}()

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Call posts fn to e and blocks until it has run. It reports false without
// waiting when e refused fn. It must not be called from the executor's own
// goroutine.
func Call(e Executor, fn func()) bool {
	done := make(chan struct{})
	if !e.Post(func() {
		defer close(done)
		fn()
	}) {
		return false
	}
	<-done
	return true
}
