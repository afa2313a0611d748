package session

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned when work is submitted to a closed pool.
var ErrPoolClosed = errors.New("worker pool closed")

// Offloader runs CPU-bound work away from the owner goroutine. Results go
// back through the Executor.
type Offloader interface {
	Go(fn func()) error
}

// InlineOffloader runs work on the caller's goroutine.
type InlineOffloader struct{}

// Go runs fn.
func (InlineOffloader) Go(fn func()) error {
	fn()
	return nil
}

// WorkerPool runs offloaded work on a fixed number of goroutines.
type WorkerPool struct {
	jobs    chan func()
	wg      sync.WaitGroup
	workers int
	closeMu sync.Mutex
	closed  bool
}

// NewWorkerPool creates a pool with the given number of workers and job
// queue capacity.
func NewWorkerPool(workers, queue int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &WorkerPool{
		jobs:    make(chan func(), queue),
		workers: workers,
	}
}

// Start launches the workers. They exit when ctx is done or Close is called.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					job()
				}
			}
		}()
	}
}

// Go enqueues fn, blocking while the queue is full.
func (p *WorkerPool) Go(fn func()) error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.jobs <- fn
	return nil
}

// Close stops accepting work, lets queued jobs finish and waits for the workers.
func (p *WorkerPool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.closeMu.Unlock()

	p.wg.Wait()
}
