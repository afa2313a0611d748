package transport

import (
	"context"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Doer performs a single request synchronously.
type Doer interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// Poster runs a function on the goroutine that owns the caller's state. Post
// reports false when fn was refused and will never run.
type Poster interface {
	Post(fn func()) bool
}

// Queue dispatches requests in the background and hands each outcome to the
// Poster. For every Send at most one of onSuccess and onFailure runs, once;
// none runs when the Poster refuses the outcome.
type Queue struct {
	doer   Doer
	poster Poster
	ctx    context.Context

	wg      sync.WaitGroup
	pending atomic.Int64
}

// NewQueue creates a queue. ctx bounds every request it sends.
func NewQueue(ctx context.Context, doer Doer, poster Poster) *Queue {
	return &Queue{doer: doer, poster: poster, ctx: ctx}
}

// Send dispatches req without blocking.
func (q *Queue) Send(req Request, onSuccess func([]byte), onFailure func(error)) {
	q.wg.Add(1)
	q.pending.Add(1)

	go func() {
		body, err := q.doer.Do(q.ctx, req)
		if err != nil {
			log.WithField("endpoint", req.Endpoint()).Debugf("request failed: %v", err)
		}

		accepted := q.poster.Post(func() {
			defer q.finish()
			if err != nil {
				onFailure(err)
				return
			}
			onSuccess(body)
		})
		if !accepted {
			log.WithField("endpoint", req.Endpoint()).Warn("outcome dropped, poster stopped")
			q.finish()
		}
	}()
}

func (q *Queue) finish() {
	q.pending.Add(-1)
	q.wg.Done()
}

// Pending returns the number of requests whose outcome has not been delivered yet.
func (q *Queue) Pending() int {
	return int(q.pending.Load())
}

// Wait blocks until every dispatched request, including requests sent from
// inside outcome handlers, has been delivered.
func (q *Queue) Wait() {
	q.wg.Wait()
}
