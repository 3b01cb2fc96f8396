package kernel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
)

type slot struct {
	task    Task
	done    bool
	polls   uint32
	strikes uint16
	warned  bool
}

// Stats is a snapshot of executor counters.
type Stats struct {
	Tasks     int
	Completed int
	Cycles    uint64
	Polls     uint64
	IdleWaits uint64
	Starved   uint64
}

// Executor polls a fixed set of tasks whenever their wake tokens are set.
//
// All methods except Token must be called from the executor's own thread of
// control (the main loop or a task's Poll).
type Executor struct {
	_ [0]func() // prevent accidental copying.

	ready ReadySet
	slots [MaxTasks]slot
	count Handle

	completed int
	started   bool
	running   bool

	cx      Context
	idle    Idle
	readyFn func() bool
	log     *slog.Logger

	starveLimit uint16
	stats       Stats
}

// Option configures an Executor.
type Option func(*Executor)

// WithIdle sets the strategy used when no task is ready.
func WithIdle(idle Idle) Option {
	return func(e *Executor) { e.idle = idle }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// WithStarvationLimit enables the starvation diagnostic: a task that returns
// Pending n times in a row without registering a wake source is reported once.
// Touching cx.Waker, waiting on a Timer, Channel or Mutex, or owning a Signal
// registers one. A task woken only through a raw token from Token should call
// cx.Waker when it parks.
func WithStarvationLimit(n int) Option {
	return func(e *Executor) {
		if n < 0 {
			n = 0
		}
		if n > 0xFFFF {
			n = 0xFFFF
		}
		e.starveLimit = uint16(n)
	}
}

// New creates an executor with an empty task table.
func New(opts ...Option) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.idle == nil {
		e.idle = defaultIdle()
	}
	if e.log == nil {
		e.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e.ready.init(e.idle)
	e.readyFn = e.hasReady
	e.cx.e = e
	return e
}

// Spawn places t into the next free slot and marks it ready.
//
// Tasks can only be added before the executor starts.
func (e *Executor) Spawn(t Task) (Handle, error) {
	if t == nil {
		return 0, fmt.Errorf("spawn: %w", ErrNilTask)
	}
	if e.started {
		return 0, fmt.Errorf("spawn: %w", ErrStarted)
	}
	if int(e.count) >= MaxTasks {
		return 0, fmt.Errorf("spawn: %w", ErrFull)
	}
	h := e.count
	e.count++
	e.slots[h] = slot{task: t}
	e.ready.set(h)
	return h, nil
}

// Token returns the wake token of a spawned task, for use by interrupt handlers.
func (e *Executor) Token(h Handle) (WakeToken, error) {
	if h >= e.count {
		return WakeToken{}, fmt.Errorf("token %d: %w", h, ErrBadHandle)
	}
	return e.ready.Token(h), nil
}

// Len returns the number of spawned tasks.
func (e *Executor) Len() int { return int(e.count) }

// Done reports whether every spawned task has completed.
func (e *Executor) Done() bool { return e.completed == int(e.count) }

// Finished reports whether the task in slot h has completed.
func (e *Executor) Finished(h Handle) bool {
	return h < e.count && e.slots[h].done
}

// Ready returns a snapshot of the ready-set.
func (e *Executor) Ready() uint32 { return e.ready.Snapshot() }

// Stats returns the executor counters.
func (e *Executor) Stats() Stats {
	s := e.stats
	s.Tasks = int(e.count)
	s.Completed = e.completed
	return s
}

// Step runs one scan cycle: every task whose token was set when the cycle
// began is polled exactly once, in handle order.
func (e *Executor) Step() (polled int, err error) {
	e.started = true
	e.stats.Cycles++

	snap := e.ready.Snapshot()
	if snap == 0 {
		return 0, nil
	}
	for h := Handle(0); h < e.count; h++ {
		if snap&(uint32(1)<<h) == 0 {
			continue
		}
		if !e.ready.take(h) {
			continue
		}
		st := &e.slots[h]
		if st.done {
			continue
		}
		if err := e.poll(h, st); err != nil {
			return polled, err
		}
		polled++
	}
	return polled, nil
}

// Run polls tasks until all of them complete, idling whenever a cycle starts
// with an empty ready-set.
//
// Run returns ctx.Err() if ctx is cancelled, and a *FaultError if a task panics.
func (e *Executor) Run(ctx context.Context) error {
	return e.runUntil(ctx, e.Done)
}

func (e *Executor) runUntil(ctx context.Context, done func() bool) error {
	if e.running {
		return ErrRunning
	}
	e.running = true
	defer func() { e.running = false }()

	stop := context.AfterFunc(ctx, e.idle.Notify)
	defer stop()

	e.log.Debug("executor started", "tasks", e.count)
	for {
		if done() {
			e.log.Debug("executor finished", "cycles", e.stats.Cycles, "polls", e.stats.Polls)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := e.Step()
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		e.stats.IdleWaits++
		e.idle.Wait(e.readyFn)
	}
}

func (e *Executor) hasReady() bool { return !e.ready.Empty() }

func (e *Executor) poll(h Handle, st *slot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			info := PanicInfo{Handle: h, Task: e.taskName(h), Value: r}
			triggerPanic(&info)
			e.log.Error("task fault", "task", info.Task, "panic", r)
			st.done = true
			e.completed++
			err = &FaultError{Handle: h, Value: r, Stack: info.Stack}
		}
	}()

	e.cx.h = h
	e.cx.armed = false
	st.polls++
	e.stats.Polls++

	if st.task.Poll(&e.cx) == Complete {
		st.done = true
		st.task = nil
		e.completed++
		// A wake that raced with completion must not leave a stale bit behind.
		e.ready.take(h)
		return nil
	}

	if e.starveLimit == 0 {
		return nil
	}
	if e.cx.armed || e.ready.isSet(h) || e.ready.isBound(h) {
		st.strikes = 0
		return nil
	}
	if st.strikes < 0xFFFF {
		st.strikes++
	}
	if st.strikes >= e.starveLimit && !st.warned {
		st.warned = true
		e.stats.Starved++
		e.log.Warn("task pending without wake source",
			"task", e.taskName(h),
			"polls", st.polls,
			"strikes", st.strikes,
		)
	}
	return nil
}

func (e *Executor) taskName(h Handle) string {
	if h < e.count {
		if n, ok := e.slots[h].task.(Namer); ok {
			return n.Name()
		}
	}
	return "#" + strconv.Itoa(int(h))
}

// FaultError reports a task that panicked while being polled.
//
// The executor treats a fault as a reset condition: Run stops.
type FaultError struct {
	Handle Handle
	Value  any
	Stack  []byte
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("task %d faulted: %v", e.Handle, e.Value)
}
