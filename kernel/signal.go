package kernel

import "sync/atomic"

const signalFresh = 1 << 2

// Signal is a single-slot mailbox from one interrupt handler to one task.
//
// Only the latest written value is kept. The three buffers are rotated
// through an atomic index word so a Write that preempts a reader can never
// tear the value being read. The zero value is ready to use.
type Signal[T any] struct {
	_ [0]func() // prevent accidental copying.

	buf [3]T

	// state holds the published buffer index (xor 1) and the fresh bit.
	state atomic.Uint32
	// back is owned by the writer, front (xor 2) by the reader.
	back  uint8
	front uint8

	owner      atomic.Pointer[waker]
	overwrites atomic.Uint32
}

// Bind sets the token woken by Write. The owner then counts as having a
// wake source for the starvation diagnostic.
func (s *Signal[T]) Bind(tok WakeToken) {
	s.owner.Store(tok.w)
	if tok.w != nil {
		tok.w.rs.bind(tok.w.h)
	}
}

// Write publishes v, replacing any unread value, then wakes the owner.
//
// Write must only be called from a single producer.
func (s *Signal[T]) Write(v T) {
	s.buf[s.back] = v
	old := s.state.Swap(uint32(s.back^1) | signalFresh)
	if old&signalFresh != 0 {
		s.overwrites.Add(1)
	}
	s.back = uint8(old&3) ^ 1
	if w := s.owner.Load(); w != nil {
		w.rs.set(w.h)
	}
}

// TryTake returns the freshest unread value.
func (s *Signal[T]) TryTake() (T, bool) {
	if s.state.Load()&signalFresh == 0 {
		var zero T
		return zero, false
	}
	old := s.state.Swap(uint32(s.front^2) ^ 1)
	s.front = (uint8(old&3) ^ 1) ^ 2
	return s.buf[s.front^2], true
}

// PollTake registers the polling task as the owner, then takes the freshest
// value if there is one.
func (s *Signal[T]) PollTake(cx *Context) (T, bool) {
	s.Bind(cx.Waker())
	return s.TryTake()
}

// Pending reports whether an unread value is published.
func (s *Signal[T]) Pending() bool {
	return s.state.Load()&signalFresh != 0
}

// Overwrites returns how many values were replaced before being read.
func (s *Signal[T]) Overwrites() uint32 { return s.overwrites.Load() }
