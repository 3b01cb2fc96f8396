package kernel

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	order []Handle
}

// parkedTask records every poll and never completes.
func (r *recorder) parkedTask() Task {
	return TaskFunc(func(cx *Context) Status {
		r.order = append(r.order, cx.Handle())
		_ = cx.Waker()
		return Pending
	})
}

func TestSpawnErrors(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))

	_, err := e.Spawn(nil)
	require.ErrorIs(t, err, ErrNilTask)

	for i := 0; i < MaxTasks; i++ {
		h, err := e.Spawn(TaskFunc(func(*Context) Status { return Complete }))
		require.NoError(t, err)
		require.Equal(t, Handle(i), h)
	}
	_, err = e.Spawn(TaskFunc(func(*Context) Status { return Complete }))
	require.ErrorIs(t, err, ErrFull)

	_, err = e.Token(MaxTasks)
	require.ErrorIs(t, err, ErrBadHandle)
}

func TestSpawnAfterStart(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	_, err := e.Step()
	require.NoError(t, err)

	_, err = e.Spawn(TaskFunc(func(*Context) Status { return Complete }))
	require.ErrorIs(t, err, ErrStarted)
}

func TestStepPollsReadyTasksOnceInHandleOrder(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	var rec recorder
	for i := 0; i < 6; i++ {
		_, err := e.Spawn(rec.parkedTask())
		require.NoError(t, err)
	}

	n, err := e.Step()
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, []Handle{0, 1, 2, 3, 4, 5}, rec.order)

	rec.order = nil
	for _, h := range []Handle{4, 1, 3} {
		tok, err := e.Token(h)
		require.NoError(t, err)
		tok.Set()
		tok.Set()
	}
	n, err = e.Step()
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []Handle{1, 3, 4}, rec.order)
}

func TestWakeDuringCycleRunsNextCycle(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	var order []Handle
	var first WakeToken

	_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		order = append(order, cx.Handle())
		_ = cx.Waker()
		return Pending
	}))
	require.NoError(t, err)
	_, err = e.Spawn(TaskFunc(func(cx *Context) Status {
		order = append(order, cx.Handle())
		first.Set()
		return Complete
	}))
	require.NoError(t, err)
	first, err = e.Token(0)
	require.NoError(t, err)

	// Handle 0 was already polled when handle 1 wakes it.
	n, err := e.Step()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []Handle{0, 1}, order)

	order = nil
	n, err = e.Step()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []Handle{0}, order)
}

func TestCompletedTaskIsNeverPolledAgain(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	polls := 0
	h, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		polls++
		return Complete
	}))
	require.NoError(t, err)

	_, err = e.Step()
	require.NoError(t, err)
	require.True(t, e.Done())
	require.True(t, e.Finished(h))

	tok, err := e.Token(h)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		tok.Set()
		_, err = e.Step()
		require.NoError(t, err)
	}
	require.Equal(t, 1, polls)
	require.Equal(t, 1, e.Stats().Completed)
}

func TestRunReturnsWhenAllTasksComplete(t *testing.T) {
	e := New()
	left := 3
	for i := 0; i < 2; i++ {
		_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
			if left == 0 {
				return Complete
			}
			left--
			cx.Waker().Set()
			return Pending
		}))
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	st := e.Stats()
	require.Equal(t, 2, st.Tasks)
	require.Equal(t, 2, st.Completed)
	require.Equal(t, uint64(5), st.Polls)
}

func TestRunStopsOnCancel(t *testing.T) {
	e := New(WithIdle(NewEventIdle()))
	_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		_ = cx.Waker()
		return Pending
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err = e.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotZero(t, e.Stats().IdleWaits)
}

func TestRunRejectsNestedRun(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	var nested error
	_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		nested = e.Run(context.Background())
		return Complete
	}))
	require.NoError(t, err)
	require.NoError(t, e.Run(context.Background()))
	require.ErrorIs(t, nested, ErrRunning)
}

func TestRunWakesFromInterrupt(t *testing.T) {
	e := New(WithIdle(NewEventIdle()))
	var sig Signal[int]
	sum := 0
	h, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		for {
			v, ok := sig.PollTake(cx)
			if !ok {
				return Pending
			}
			sum += v
			if v == 3 {
				return Complete
			}
		}
	}))
	require.NoError(t, err)
	tok, err := e.Token(h)
	require.NoError(t, err)
	sig.Bind(tok)

	go func() {
		for i := 1; i <= 3; i++ {
			time.Sleep(5 * time.Millisecond)
			sig.Write(i)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	require.Positive(t, sum)
}

// racyIdle delivers an interrupt between the executor's empty check and
// its sleep. Waiting must still return because the wake was latched.
type racyIdle struct {
	inner *EventIdle
	tok   WakeToken
	fired bool
}

func (r *racyIdle) Notify() { r.inner.Notify() }

func (r *racyIdle) Wait(ready func() bool) {
	if ready() {
		return
	}
	if !r.fired {
		r.fired = true
		r.tok.Set()
	}
	<-r.inner.ev
}

func TestIdleWaitObservesWakeAfterEmptyCheck(t *testing.T) {
	idle := &racyIdle{inner: NewEventIdle()}
	e := New(WithIdle(idle))
	polls := 0
	h, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		polls++
		if polls == 2 {
			return Complete
		}
		_ = cx.Waker()
		return Pending
	}))
	require.NoError(t, err)
	idle.tok, err = e.Token(h)
	require.NoError(t, err)
	// Drop the notification left by Spawn.
	select {
	case <-idle.inner.ev:
	default:
	}

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("executor slept through a latched wake")
	}
	require.Equal(t, 2, polls)
	require.True(t, idle.fired)
}

func TestStarvationDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	e := New(WithIdle(SpinIdle{}), WithLogger(log), WithStarvationLimit(3))

	_, err := e.Spawn(namedTask{name: "forgetful"})
	require.NoError(t, err)
	_, err = e.Spawn(TaskFunc(func(cx *Context) Status {
		cx.Waker().Set()
		return Pending
	}))
	require.NoError(t, err)
	tok, err := e.Token(0)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		tok.Set()
		_, err := e.Step()
		require.NoError(t, err)
	}

	require.Equal(t, uint64(1), e.Stats().Starved)
	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "task pending without wake source"))
	require.Contains(t, out, "task=forgetful")
}

func TestBoundSignalOwnerIsNotStarved(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	e := New(WithIdle(SpinIdle{}), WithLogger(log), WithStarvationLimit(2))

	var sig Signal[int]
	got := 0
	h, err := e.Spawn(TaskFunc(func(*Context) Status {
		v, ok := sig.TryTake()
		if !ok {
			return Pending
		}
		got = v
		return Complete
	}))
	require.NoError(t, err)
	tok, err := e.Token(h)
	require.NoError(t, err)
	sig.Bind(tok)

	for i := 0; i < 4; i++ {
		tok.Set()
		_, err := e.Step()
		require.NoError(t, err)
	}
	require.Zero(t, e.Stats().Starved)
	require.NotContains(t, buf.String(), "task pending without wake source")

	sig.Write(7)
	_, err = e.Step()
	require.NoError(t, err)
	require.True(t, e.Done())
	require.Equal(t, 7, got)
}

type namedTask struct{ name string }

func (n namedTask) Poll(*Context) Status { return Pending }
func (n namedTask) Name() string         { return n.name }

func resetPanicState(t *testing.T) {
	t.Helper()
	latch.reset()
	t.Cleanup(latch.reset)
}

func TestTaskPanicSurfacesAsFault(t *testing.T) {
	resetPanicState(t)

	var infos []PanicInfo
	SetPanicHandler(func(info PanicInfo) { infos = append(infos, info) })

	e := New(WithIdle(SpinIdle{}))
	_, err := e.Spawn(TaskFunc(func(*Context) Status { return Complete }))
	require.NoError(t, err)
	_, err = e.Spawn(TaskFunc(func(*Context) Status { panic("boom") }))
	require.NoError(t, err)

	err = e.Run(context.Background())
	var fault *FaultError
	require.True(t, errors.As(err, &fault))
	require.Equal(t, Handle(1), fault.Handle)
	require.Equal(t, "boom", fault.Value)
	require.NotEmpty(t, fault.Stack)
	require.True(t, InPanicMode())

	e2 := New(WithIdle(SpinIdle{}))
	_, err = e2.Spawn(TaskFunc(func(*Context) Status { panic("again") }))
	require.NoError(t, err)
	require.Error(t, e2.Run(context.Background()))

	require.Len(t, infos, 1, "handler runs once")
	require.Equal(t, Handle(1), infos[0].Handle)
	require.Equal(t, "#1", infos[0].Task)

	first, ok := FirstFault()
	require.True(t, ok)
	require.Equal(t, "boom", first.Value)
}
