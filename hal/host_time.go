//go:build !tinygo

package hal

import "sync/atomic"

type hostTime struct {
	hz      int
	seq     uint64
	handler atomic.Pointer[func(uint64)]
}

func newHostTime(hz int) *hostTime {
	return &hostTime{hz: hz}
}

func (t *hostTime) TickHz() int { return t.hz }

func (t *hostTime) SetTickHandler(fn func(seq uint64)) {
	if fn == nil {
		t.handler.Store(nil)
		return
	}
	t.handler.Store(&fn)
}

// step raises n tick interrupts. It must only be called from one goroutine.
func (t *hostTime) step(n uint64) {
	fn := t.handler.Load()
	for i := uint64(0); i < n; i++ {
		t.seq++
		if fn != nil {
			(*fn)(t.seq)
		}
	}
}
