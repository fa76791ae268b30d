package timer

import (
	"context"
	"sync"
	"time"
)

// Scheduler fires fn every period until the returned cancel is called.
// Cancel must be safe to call more than once.
type Scheduler interface {
	Every(period time.Duration, fn func()) (cancel func())
}

// Loop is a Scheduler backed by one ticker goroutine per schedule. The
// goroutines never run fn themselves; each firing is handed to dispatch,
// which must run it on the goroutine that owns the session store.
type Loop struct {
	dispatch func(fn func())
}

func NewLoop(dispatch func(fn func())) *Loop {
	return &Loop{dispatch: dispatch}
}

func (l *Loop) Every(period time.Duration, fn func()) func() {
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.dispatch(fn)
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// Queue serializes dispatched closures onto the goroutine calling Run.
type Queue struct {
	ctx context.Context
	ch  chan func()
}

func NewQueue(ctx context.Context) *Queue {
	return &Queue{ctx: ctx, ch: make(chan func(), 16)}
}

// Dispatch enqueues fn, or drops it once the queue's context is done.
func (q *Queue) Dispatch(fn func()) {
	select {
	case q.ch <- fn:
	case <-q.ctx.Done():
	}
}

// C exposes the pending closures for event loops that select on them
// directly.
func (q *Queue) C() <-chan func() {
	return q.ch
}

// Run executes queued closures until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-q.ch:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
