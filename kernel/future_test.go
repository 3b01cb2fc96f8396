package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestYieldLetsOthersRun(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	var trace []string
	var y Yield

	_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		if len(trace) == 0 {
			trace = append(trace, "a1")
		}
		if _, ok := y.Poll(cx); !ok {
			return Pending
		}
		trace = append(trace, "a2")
		return Complete
	}))
	require.NoError(t, err)
	_, err = e.Spawn(TaskFunc(func(cx *Context) Status {
		trace = append(trace, "b")
		return Complete
	}))
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background()))
	require.Equal(t, []string{"a1", "b", "a2"}, trace)
}

func TestBlockOnReturnsValue(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	var tm Timer

	background := 0
	_, err := e.Spawn(TaskFunc(func(cx *Context) Status {
		background++
		tm.Advance(1)
		cx.Waker().Set()
		return Pending
	}))
	require.NoError(t, err)

	d := tm.Delay(4)
	v, err := BlockOn[int](context.Background(), e, FutureFunc[int](func(cx *Context) (int, bool) {
		if _, ok := d.Poll(cx); !ok {
			return 0, false
		}
		return 42, true
	}))
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Positive(t, background)
	require.False(t, e.Done(), "background task is still pending")
}

func TestBlockOnAfterStart(t *testing.T) {
	e := New(WithIdle(SpinIdle{}))
	_, err := e.Step()
	require.NoError(t, err)

	_, err = BlockOn[int](context.Background(), e, FutureFunc[int](func(*Context) (int, bool) {
		return 1, true
	}))
	require.ErrorIs(t, err, ErrStarted)
}

func TestJoinKeepsValue(t *testing.T) {
	j := NewJoin[string]("greeter", FutureFunc[string](func(*Context) (string, bool) {
		return "hi", true
	}))
	e := New(WithIdle(SpinIdle{}))
	_, err := e.Spawn(j)
	require.NoError(t, err)
	require.Equal(t, "greeter", e.taskName(0))

	_, ok := j.Value()
	require.False(t, ok)
	require.NoError(t, e.Run(context.Background()))
	v, ok := j.Value()
	require.True(t, ok)
	require.Equal(t, "hi", v)
}
