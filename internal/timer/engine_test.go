package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/studylog/internal/clock"
	"github.com/sadopc/studylog/internal/session"
	"github.com/sadopc/studylog/internal/store"
)

// manualScheduler fires schedules only when told to.
type manualScheduler struct {
	next      int
	fns       map[int]func()
	cancelled int
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{fns: make(map[int]func())}
}

func (m *manualScheduler) Every(_ time.Duration, fn func()) func() {
	id := m.next
	m.next++
	m.fns[id] = fn
	return func() {
		if _, ok := m.fns[id]; ok {
			m.cancelled++
		}
		delete(m.fns, id)
	}
}

// fire runs every live schedule n times.
func (m *manualScheduler) fire(n int) {
	for i := 0; i < n; i++ {
		for _, fn := range m.live() {
			fn()
		}
	}
}

func (m *manualScheduler) live() []func() {
	var out []func()
	for _, fn := range m.fns {
		out = append(out, fn)
	}
	return out
}

type countingBackend struct {
	saves int
	last  []session.Session
}

func (c *countingBackend) Load() []session.Session { return []session.Session{} }
func (c *countingBackend) Save(s []session.Session) error {
	c.saves++
	c.last = s
	return nil
}

type testRig struct {
	store   *session.Store
	backend *countingBackend
	sched   *manualScheduler
	clock   *clock.Fixed
	engine  *Engine
}

func newTestRig(t *testing.T, opts ...Option) *testRig {
	t.Helper()
	c := &clock.Fixed{T: time.Date(2024, time.March, 5, 3, 0, 0, 0, time.UTC)}
	b := &countingBackend{}
	st := session.NewStore(b, session.WithClock(c))
	sched := newManualScheduler()
	dhaka, err := time.LoadLocation("Asia/Dhaka")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	opts = append([]Option{WithClock(c), WithLocation(dhaka), WithFlushEvery(0)}, opts...)
	return &testRig{store: st, backend: b, sched: sched, clock: c, engine: New(st, sched, opts...)}
}

// ============================================================
// Start / Stop
// ============================================================

func TestStartSetsRunningAndStartTime(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")

	if err := r.engine.Start(sess.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := r.store.Find(sess.ID)
	if !got.Running {
		t.Fatal("session should be running")
	}
	// 03:00 UTC is 09:00 in Dhaka.
	if got.StartTime == nil || *got.StartTime != "09:00:00" {
		t.Fatalf("start time = %v", session.OrDash(got.StartTime))
	}
	if !r.engine.Running(sess.ID) {
		t.Fatal("engine should track the timer")
	}
	if r.backend.last[0].Running != true {
		t.Fatal("start should persist")
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")
	r.engine.Start(sess.ID)
	r.sched.fire(3)

	r.clock.Advance(time.Hour)
	saves := r.backend.saves
	if err := r.engine.Start(sess.ID); err != nil {
		t.Fatal(err)
	}

	got, _ := r.store.Find(sess.ID)
	if *got.StartTime != "09:00:00" || got.Duration != 3 {
		t.Fatalf("second start changed state: %+v", got)
	}
	if len(r.sched.fns) != 1 {
		t.Fatalf("expected a single schedule, got %d", len(r.sched.fns))
	}
	if r.backend.saves != saves {
		t.Fatal("no-op start should not persist")
	}
}

func TestStartTimeKeptAcrossRestarts(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")
	r.engine.Start(sess.ID)
	r.engine.Stop(sess.ID)

	r.clock.Advance(2 * time.Hour)
	r.engine.Start(sess.ID)
	r.engine.Stop(sess.ID)

	got, _ := r.store.Find(sess.ID)
	if *got.StartTime != "09:00:00" {
		t.Fatalf("start time overwritten: %s", *got.StartTime)
	}
	if *got.EndTime != "11:00:00" {
		t.Fatalf("end time should be from the latest stop: %s", *got.EndTime)
	}
}

func TestStopSetsEndTimeAndCancels(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")
	r.engine.Start(sess.ID)
	r.sched.fire(5)
	r.clock.Advance(5 * time.Second)

	if err := r.engine.Stop(sess.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := r.store.Find(sess.ID)
	if got.Running {
		t.Fatal("session should be stopped")
	}
	if got.EndTime == nil || *got.EndTime != "09:00:05" {
		t.Fatalf("end time = %s", session.OrDash(got.EndTime))
	}
	if len(r.sched.fns) != 0 {
		t.Fatal("tick should be cancelled")
	}
	if r.backend.last[0].Duration != 5 || r.backend.last[0].Running {
		t.Fatalf("final state not persisted: %+v", r.backend.last[0])
	}

	r.sched.fire(3)
	got, _ = r.store.Find(sess.ID)
	if got.Duration != 5 {
		t.Fatalf("duration moved after stop: %d", got.Duration)
	}
}

func TestStopStoppedIsNoop(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")

	if err := r.engine.Stop(sess.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := r.store.Find(sess.ID)
	if got.EndTime != nil {
		t.Fatal("stopping a stopped session must not set end time")
	}

	r.engine.Start(sess.ID)
	r.engine.Stop(sess.ID)
	first, _ := r.store.Find(sess.ID)

	r.clock.Advance(time.Minute)
	saves := r.backend.saves
	r.engine.Stop(sess.ID)
	second, _ := r.store.Find(sess.ID)
	if *second.EndTime != *first.EndTime {
		t.Fatal("end time changed on a no-op stop")
	}
	if r.backend.saves != saves {
		t.Fatal("no-op stop should not persist")
	}
}

func TestStartStopNotFound(t *testing.T) {
	r := newTestRig(t)
	if err := r.engine.Start(99); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Start err = %v", err)
	}
	if err := r.engine.Stop(99); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Stop err = %v", err)
	}
}

// ============================================================
// Ticks
// ============================================================

func TestTickScenario(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")

	var lastDisplay string
	var calls int
	r.engine.Observe(sess.ID, func(id int64, d int64, display string) {
		if id != sess.ID {
			t.Fatalf("observer got id %d", id)
		}
		calls++
		lastDisplay = display
	})

	r.engine.Start(sess.ID)
	r.sched.fire(125)
	r.engine.Stop(sess.ID)

	got, _ := r.store.Find(sess.ID)
	if got.Duration != 125 {
		t.Fatalf("duration = %d, want 125", got.Duration)
	}
	if lastDisplay != "02:05" || got.Display() != "02:05" {
		t.Fatalf("display = %q", lastDisplay)
	}
	if calls != 125 {
		t.Fatalf("observer calls = %d", calls)
	}
	if r.store.DailyTotal("2024-03-05") != 125 {
		t.Fatalf("daily total = %d", r.store.DailyTotal("2024-03-05"))
	}
}

func TestForgetStopsCallbacks(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")
	calls := 0
	r.engine.Observe(sess.ID, func(int64, int64, string) { calls++ })
	r.engine.Start(sess.ID)
	r.sched.fire(2)
	r.engine.Forget(sess.ID)
	r.sched.fire(2)

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	got, _ := r.store.Find(sess.ID)
	if got.Duration != 4 {
		t.Fatal("ticks continue without an observer")
	}
}

func TestTicksAreIndependentPerSession(t *testing.T) {
	r := newTestRig(t)
	a, _ := r.store.Create("2024-03-05")
	b, _ := r.store.Create("2024-03-05")

	r.engine.Start(a.ID)
	r.sched.fire(10)
	r.engine.Start(b.ID)
	r.sched.fire(5)
	r.engine.Stop(a.ID)
	r.sched.fire(1)

	ga, _ := r.store.Find(a.ID)
	gb, _ := r.store.Find(b.ID)
	if ga.Duration != 15 || gb.Duration != 6 {
		t.Fatalf("durations = %d, %d", ga.Duration, gb.Duration)
	}
	if r.store.DailyTotal("2024-03-05") != ga.Duration+gb.Duration {
		t.Fatal("daily total must equal the sum of durations")
	}
}

func TestPeriodicFlush(t *testing.T) {
	r := newTestRig(t, WithFlushEvery(10))
	sess, _ := r.store.Create("2024-03-05")
	r.engine.Start(sess.ID)
	saves := r.backend.saves

	r.sched.fire(9)
	if r.backend.saves != saves {
		t.Fatal("should not flush before 10 ticks")
	}
	r.sched.fire(1)
	if r.backend.saves != saves+1 || r.backend.last[0].Duration != 10 {
		t.Fatalf("expected flush at tick 10, saves=%d", r.backend.saves-saves)
	}
}

// ============================================================
// Deletion
// ============================================================

func TestDeleteRunningCancelsTick(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")
	r.engine.Start(sess.ID)
	r.sched.fire(3)

	// Grab the pending firing before deletion, as if already queued.
	pending := r.sched.live()

	if err := r.store.Delete(sess.ID); err != nil {
		t.Fatal(err)
	}
	if r.engine.Running(sess.ID) {
		t.Fatal("engine still tracks a deleted session")
	}
	if r.sched.cancelled != 1 {
		t.Fatalf("expected tick cancelled once, got %d", r.sched.cancelled)
	}
	for _, fn := range pending {
		fn()
	}
	if _, ok := r.store.Find(sess.ID); ok {
		t.Fatal("stale tick resurrected the session")
	}
}

func TestStaleTickAfterRestartIgnored(t *testing.T) {
	r := newTestRig(t)
	sess, _ := r.store.Create("2024-03-05")
	r.engine.Start(sess.ID)
	stale := r.sched.live()
	r.engine.Stop(sess.ID)
	r.engine.Start(sess.ID)

	for _, fn := range stale {
		fn()
	}
	got, _ := r.store.Find(sess.ID)
	if got.Duration != 0 {
		t.Fatalf("firing from an earlier run counted: %d", got.Duration)
	}
}

func TestCancelIdempotent(t *testing.T) {
	r := newTestRig(t)
	r.engine.cancel(1)
	r.engine.cancel(1)

	sess, _ := r.store.Create("2024-03-05")
	r.engine.Start(sess.ID)
	r.engine.cancel(sess.ID)
	r.engine.cancel(sess.ID)
	if r.sched.cancelled != 1 {
		t.Fatalf("cancelled = %d", r.sched.cancelled)
	}
}

func TestStopAll(t *testing.T) {
	r := newTestRig(t)
	a, _ := r.store.Create("2024-03-05")
	b, _ := r.store.Create("2024-03-05")
	r.engine.Start(a.ID)
	r.engine.Start(b.ID)
	r.sched.fire(4)

	if err := r.engine.StopAll(); err != nil {
		t.Fatal(err)
	}
	if r.engine.RunningCount() != 0 {
		t.Fatal("no timers should remain")
	}
	for _, s := range r.backend.last {
		if s.Running || s.Duration != 4 || s.EndTime == nil {
			t.Fatalf("not stopped cleanly: %+v", s)
		}
	}
}

// ============================================================
// Loop scheduler
// ============================================================

func TestLoopSchedulerDispatchesToQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(ctx)
	loop := NewLoop(q.Dispatch)

	var mu sync.Mutex
	count := 0
	stop := loop.Every(5*time.Millisecond, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	runCtx, runCancel := context.WithTimeout(ctx, 60*time.Millisecond)
	defer runCancel()
	q.Run(runCtx)

	stop()
	stop() // idempotent

	mu.Lock()
	defer mu.Unlock()
	if count == 0 {
		t.Fatal("expected at least one dispatched tick")
	}
}

func TestEngineWithLoopAndSQLite(t *testing.T) {
	kv, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()

	st := session.NewStore(session.NewLocalState(kv, session.DefaultKey, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewQueue(ctx)
	e := New(st, NewLoop(q.Dispatch), WithPeriod(2*time.Millisecond), WithFlushEvery(0))

	sess, _ := st.Create("2024-03-05")
	e.Start(sess.ID)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case fn := <-q.C():
			fn()
		case <-deadline:
			t.Fatal("timed out waiting for ticks")
		}
		if got, _ := st.Find(sess.ID); got.Duration >= 3 {
			break
		}
	}
	e.Stop(sess.ID)

	reloaded := session.NewStore(session.NewLocalState(kv, session.DefaultKey, nil))
	got, _ := reloaded.Find(sess.ID)
	if got.Duration < 3 || got.Running || got.EndTime == nil {
		t.Fatalf("stop should persist the final state: %+v", got)
	}
}
