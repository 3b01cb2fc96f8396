package kernel

// ChannelSlots is the capacity of a Channel.
const ChannelSlots = 8

// Channel is a bounded FIFO between tasks of one executor.
//
// Blocked senders and receivers are recorded in wait masks and all of them
// are woken when the channel changes; each re-checks on its next poll.
// Channel is not safe for use from interrupt handlers; use Signal there.
type Channel[T any] struct {
	_ [0]func() // prevent accidental copying.

	head  uint8
	tail  uint8
	slots [ChannelSlots]T

	rs       *ReadySet
	sendWait uint32
	recvWait uint32
}

// Len returns the number of queued values.
func (c *Channel[T]) Len() int { return int(c.head - c.tail) }

// TrySend queues v if there is room.
func (c *Channel[T]) TrySend(v T) bool {
	if c.head-c.tail >= ChannelSlots {
		return false
	}
	c.slots[c.head%ChannelSlots] = v
	c.head++
	c.recvWait = c.wakeAll(c.recvWait)
	return true
}

// TryRecv dequeues the oldest value.
func (c *Channel[T]) TryRecv() (T, bool) {
	var zero T
	if c.tail == c.head {
		return zero, false
	}
	i := c.tail % ChannelSlots
	v := c.slots[i]
	c.slots[i] = zero
	c.tail++
	c.sendWait = c.wakeAll(c.sendWait)
	return v, true
}

// PollSend queues v, or registers the task to be woken when room frees up.
func (c *Channel[T]) PollSend(cx *Context, v T) bool {
	if c.TrySend(v) {
		return true
	}
	c.rs = cx.readySet()
	cx.armed = true
	c.sendWait |= 1 << cx.h
	return false
}

// PollRecv dequeues a value, or registers the task to be woken on the next send.
func (c *Channel[T]) PollRecv(cx *Context) (T, bool) {
	if v, ok := c.TryRecv(); ok {
		return v, true
	}
	c.rs = cx.readySet()
	cx.armed = true
	c.recvWait |= 1 << cx.h
	var zero T
	return zero, false
}

func (c *Channel[T]) wakeAll(mask uint32) uint32 {
	if c.rs == nil {
		return 0
	}
	for mask != 0 {
		h := lowestBit(mask)
		mask &^= 1 << h
		c.rs.set(h)
	}
	return 0
}

func lowestBit(m uint32) Handle {
	var h Handle
	for m&1 == 0 {
		m >>= 1
		h++
	}
	return h
}
