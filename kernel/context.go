package kernel

import "log/slog"

// Context provides task-local access to the executor during a poll.
//
// A Context must not be retained after Poll returns.
type Context struct {
	e     *Executor
	h     Handle
	armed bool
}

// Handle returns the handle of the task being polled.
func (c *Context) Handle() Handle { return c.h }

// Waker returns the current task's wake token.
//
// Calling Waker registers interest in a future wake for the starvation
// diagnostic.
func (c *Context) Waker() WakeToken {
	c.armed = true
	return c.e.ready.Token(c.h)
}

// Logger returns the executor's logger with the task attributes attached.
func (c *Context) Logger() *slog.Logger {
	return c.e.log.With("task", c.e.taskName(c.h))
}

func (c *Context) readySet() *ReadySet { return &c.e.ready }
