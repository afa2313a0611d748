package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"
)

// ErrUnknownHandle is returned when a task refers to work this process does
// not hold, for example a task left over from before a restart.
var ErrUnknownHandle = errors.New("no offloaded work for handle")

// ScoreResponseTask points at a response reshaping job held in memory by the
// Offloader that enqueued it.
type ScoreResponseTask struct {
	Handle string `json:"handle"`
}

// Config returns the queue configuration for score response tasks.
func (t ScoreResponseTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "score_response",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   time.Hour,
			OnlyFailed: true,
		},
	}
}

// Offloader runs functions on backlite workers. The queue only carries a
// handle; the function itself stays in memory until a worker claims it.
type Offloader struct {
	client *Client

	mu   sync.Mutex
	jobs map[string]func()
}

// NewOffloader registers the score_response queue on client. It must be
// called before the client is started.
func NewOffloader(client *Client) *Offloader {
	o := &Offloader{client: client, jobs: make(map[string]func())}
	client.Register(backlite.NewQueue(o.process))
	return o
}

// Go enqueues fn.
func (o *Offloader) Go(fn func()) error {
	handle := uuid.NewString()

	o.mu.Lock()
	o.jobs[handle] = fn
	o.mu.Unlock()

	if _, err := o.client.Add(ScoreResponseTask{Handle: handle}).Save(); err != nil {
		o.take(handle)
		return fmt.Errorf("enqueue score response: %w", err)
	}
	return nil
}

// Pending returns the number of enqueued functions not yet run.
func (o *Offloader) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.jobs)
}

func (o *Offloader) process(ctx context.Context, task ScoreResponseTask) error {
	fn := o.take(task.Handle)
	if fn == nil {
		return fmt.Errorf("%w %s", ErrUnknownHandle, task.Handle)
	}
	fn()
	log.WithField("handle", task.Handle).Debug("Offloaded work finished")
	return nil
}

func (o *Offloader) take(handle string) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn := o.jobs[handle]
	delete(o.jobs, handle)
	return fn
}
