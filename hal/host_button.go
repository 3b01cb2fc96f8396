//go:build !tinygo

package hal

import (
	"sync"
	"sync/atomic"
	"time"
)

// hostButton raises edge interrupts from the window keyboard or from a
// synthetic periodic pulse.
type hostButton struct {
	mu      sync.Mutex
	handler atomic.Pointer[func(bool)]
	level   bool
	edges   uint64

	t0     time.Time
	now    func() time.Time
	period time.Duration
	high   time.Duration
}

func newPulseButtonWithClock(period, high time.Duration, now func() time.Time) *hostButton {
	if now == nil {
		now = time.Now
	}
	if period < 0 {
		period = 0
	}
	if high < 0 {
		high = 0
	}
	if high > period {
		high = period
	}
	return &hostButton{
		t0:     now(),
		now:    now,
		period: period,
		high:   high,
	}
}

func (b *hostButton) SetHandler(fn func(pressed bool)) {
	if fn == nil {
		b.handler.Store(nil)
		return
	}
	b.handler.Store(&fn)
}

// sample evaluates the synthetic pulse and raises an interrupt on each edge.
func (b *hostButton) sample() {
	if b.period <= 0 {
		return
	}
	elapsed := b.now().Sub(b.t0)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	b.press(elapsed%b.period < b.high)
}

// press sets the button level, raising an interrupt if it changed.
func (b *hostButton) press(level bool) {
	b.mu.Lock()
	if b.level == level {
		b.mu.Unlock()
		return
	}
	b.level = level
	b.edges++
	b.mu.Unlock()

	if fn := b.handler.Load(); fn != nil {
		(*fn)(level)
	}
}

func (b *hostButton) edgeCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.edges
}
