package timer

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // clock strings default to Asia/Dhaka

	"github.com/hashicorp/go-hclog"
	"github.com/sadopc/studylog/internal/clock"
	"github.com/sadopc/studylog/internal/session"
)

const (
	DefaultPeriod     = time.Second
	DefaultFlushEvery = 30
	DefaultTimezone   = "Asia/Dhaka"
)

// DisplayFunc receives the new duration and its MM:SS rendering on every
// tick of a session.
type DisplayFunc func(id int64, duration int64, display string)

// activeTimer is the running state of one session. gen distinguishes it
// from earlier runs of the same session so stale firings are dropped.
type activeTimer struct {
	gen    uint64
	cancel func()
	ticks  int
}

// Engine runs a Stopped/Running state machine per session and drives a
// periodic tick for every running one.
//
// An Engine is not safe for concurrent use. Its scheduler must deliver
// ticks on the goroutine that calls Start and Stop.
type Engine struct {
	store      *session.Store
	sched      Scheduler
	clock      clock.Clock
	loc        *time.Location
	logger     hclog.Logger
	period     time.Duration
	flushEvery int

	timers    map[int64]*activeTimer
	observers map[int64]DisplayFunc
	gen       uint64
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func WithLogger(l hclog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithPeriod(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.period = d
		}
	}
}

// WithFlushEvery persists the collection every n ticks of a session; zero
// leaves durability to Stop.
func WithFlushEvery(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.flushEvery = n
		}
	}
}

// New builds an engine and registers it to cancel ticks of deleted sessions.
func New(store *session.Store, sched Scheduler, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		sched:      sched,
		clock:      clock.System{},
		loc:        time.UTC,
		logger:     hclog.NewNullLogger(),
		period:     DefaultPeriod,
		flushEvery: DefaultFlushEvery,
		timers:     make(map[int64]*activeTimer),
		observers:  make(map[int64]DisplayFunc),
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		e.loc = loc
	}
	for _, opt := range opts {
		opt(e)
	}
	store.OnDelete(e.cancel)
	return e
}

// Observe registers fn as the display callback for id, replacing any
// previous one.
func (e *Engine) Observe(id int64, fn DisplayFunc) {
	e.observers[id] = fn
}

func (e *Engine) Forget(id int64) {
	delete(e.observers, id)
}

// Start moves a stopped session to Running. Starting a running session does
// nothing.
func (e *Engine) Start(id int64) error {
	sess, ok := e.store.Find(id)
	if !ok {
		return fmt.Errorf("start %d: %w", id, session.ErrNotFound)
	}
	if sess.Running {
		return nil
	}

	now := e.now()
	err := e.store.Update(id, func(s *session.Session) {
		s.Running = true
		if s.StartTime == nil {
			s.StartTime = &now
		}
	})
	if err != nil && !errors.Is(err, session.ErrPersistence) {
		return err
	}

	e.gen++
	t := &activeTimer{gen: e.gen}
	gen := e.gen
	t.cancel = e.sched.Every(e.period, func() { e.tick(id, gen) })
	e.timers[id] = t
	e.logger.Debug("timer started", "id", id)
	return err
}

// Stop moves a running session to Stopped, stamps its end time and persists.
// Stopping a stopped session does nothing.
func (e *Engine) Stop(id int64) error {
	sess, ok := e.store.Find(id)
	if !ok {
		e.cancel(id)
		return fmt.Errorf("stop %d: %w", id, session.ErrNotFound)
	}
	if !sess.Running {
		e.cancel(id)
		return nil
	}

	e.cancel(id)
	now := e.now()
	err := e.store.Update(id, func(s *session.Session) {
		s.Running = false
		s.EndTime = &now
	})
	e.logger.Debug("timer stopped", "id", id, "duration", sess.Duration)
	return err
}

// StopAll stops every running session; used on shutdown so final durations
// reach disk.
func (e *Engine) StopAll() error {
	var errs []error
	for id := range e.timers {
		if err := e.Stop(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) Running(id int64) bool {
	_, ok := e.timers[id]
	return ok
}

// RunningCount is the number of sessions with a live tick.
func (e *Engine) RunningCount() int {
	return len(e.timers)
}

// cancel stops the tick of id. It is a no-op when nothing is scheduled.
func (e *Engine) cancel(id int64) {
	t, ok := e.timers[id]
	if !ok {
		return
	}
	t.cancel()
	delete(e.timers, id)
}

func (e *Engine) tick(id int64, gen uint64) {
	t, ok := e.timers[id]
	if !ok || t.gen != gen {
		return
	}

	d, err := e.store.AddDuration(id, 1)
	if err != nil {
		e.logger.Warn("tick for missing session, cancelling", "id", id)
		e.cancel(id)
		return
	}

	t.ticks++
	if e.flushEvery > 0 && t.ticks%e.flushEvery == 0 {
		if err := e.store.Flush(); err != nil {
			e.logger.Warn("periodic flush failed", "id", id, "error", err)
		}
	}

	if fn, ok := e.observers[id]; ok {
		fn(id, d, session.Clock(d))
	}
}

func (e *Engine) now() string {
	return e.clock.Now().In(e.loc).Format(session.ClockLayout)
}
