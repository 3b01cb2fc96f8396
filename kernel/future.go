package kernel

import (
	"context"
	"fmt"
)

// Future is a state machine that eventually produces a value.
//
// Poll follows the Task contract: when it returns ok == false the future must
// have arranged a wake for the polling task.
type Future[T any] interface {
	Poll(cx *Context) (T, bool)
}

// FutureFunc adapts a function to the Future interface.
type FutureFunc[T any] func(cx *Context) (T, bool)

func (f FutureFunc[T]) Poll(cx *Context) (T, bool) { return f(cx) }

// Join runs a Future as a Task and keeps its output.
type Join[T any] struct {
	f    Future[T]
	name string
	val  T
	done bool
}

// NewJoin wraps f. The name is used in diagnostics.
func NewJoin[T any](name string, f Future[T]) *Join[T] {
	return &Join[T]{f: f, name: name}
}

func (j *Join[T]) Poll(cx *Context) Status {
	if j.done {
		return Complete
	}
	v, ok := j.f.Poll(cx)
	if !ok {
		return Pending
	}
	j.val, j.done = v, true
	j.f = nil
	return Complete
}

func (j *Join[T]) Name() string { return j.name }

// Value returns the future's output once it has completed.
func (j *Join[T]) Value() (T, bool) { return j.val, j.done }

// BlockOn spawns f and runs the executor until f completes, polling the
// other spawned tasks alongside it.
func BlockOn[T any](ctx context.Context, e *Executor, f Future[T]) (T, error) {
	var zero T
	j := NewJoin("block-on", f)
	h, err := e.Spawn(j)
	if err != nil {
		return zero, fmt.Errorf("block on: %w", err)
	}
	if err := e.runUntil(ctx, func() bool { return e.Finished(h) }); err != nil {
		return zero, err
	}
	v, _ := j.Value()
	return v, nil
}

// Yield gives the other ready tasks a turn. The first poll wakes the task and
// reports Pending; the next poll completes and re-arms the Yield for reuse.
type Yield struct {
	yielded bool
}

func (y *Yield) Poll(cx *Context) (struct{}, bool) {
	if y.yielded {
		y.yielded = false
		return struct{}{}, true
	}
	y.yielded = true
	cx.Waker().Set()
	return struct{}{}, false
}
