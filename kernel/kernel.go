// Package kernel is a static, interrupt-driven cooperative executor.
//
// Tasks are explicit state machines polled by a single Executor. Each task
// lives in a fixed slot for the life of the program and is identified by a
// Handle. Interrupt handlers talk to tasks only through a WakeToken or a
// Signal; everything else is owned by one task or by the Executor.
package kernel

import "errors"

// MaxTasks is the capacity of an Executor's task table.
//
// It is bounded by the width of the ready-set bitmask.
const MaxTasks = 32

// Handle identifies a task slot within an Executor.
type Handle uint8

// Status is the result of polling a task.
type Status uint8

const (
	Pending Status = iota
	Complete
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Task is a suspendable computation.
//
// Poll advances the task. A task that returns Pending must first arrange for
// its wake token to be set by some future event (an interrupt, another task,
// a timer), otherwise it is never polled again. The Context is only valid for
// the duration of the call.
type Task interface {
	Poll(cx *Context) Status
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(cx *Context) Status

func (f TaskFunc) Poll(cx *Context) Status { return f(cx) }

// Namer is implemented by tasks that want a name in diagnostics.
type Namer interface {
	Name() string
}

var (
	ErrFull      = errors.New("task table full")
	ErrStarted   = errors.New("executor already started")
	ErrRunning   = errors.New("executor already running")
	ErrNilTask   = errors.New("nil task")
	ErrBadHandle = errors.New("no such task")
)
