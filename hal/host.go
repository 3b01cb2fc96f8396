//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// HostConfig describes the simulated board.
type HostConfig struct {
	Width  int
	Height int

	// TickHz is the nominal tick interrupt rate.
	TickHz int

	// ButtonPeriod and ButtonHold drive a synthetic button: it is held for
	// ButtonHold out of every ButtonPeriod. Zero disables it.
	ButtonPeriod time.Duration
	ButtonHold   time.Duration

	// TraceLED logs every LED transition.
	TraceLED bool

	Out io.Writer
	Now func() time.Time
}

func (c *HostConfig) setDefaults() {
	if c.Width <= 0 {
		c.Width = 240
	}
	if c.Height <= 0 {
		c.Height = 240
	}
	if c.TickHz <= 0 {
		c.TickHz = 100
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	t      *hostTime
	btn    *hostButton
	i2c    *VirtualDS3231
	rtc    RTC
	fb     *hostFramebuffer
}

// New returns a host HAL implementation.
func New(cfg HostConfig) HAL {
	return newHost(cfg)
}

func newHost(cfg HostConfig) *hostHAL {
	cfg.setDefaults()
	logger := &hostLogger{w: cfg.Out}
	i2c := NewVirtualDS3231(cfg.Now)
	return &hostHAL{
		logger: logger,
		led:    &hostLED{logger: logger, trace: cfg.TraceLED},
		t:      newHostTime(cfg.TickHz),
		btn:    newPulseButtonWithClock(cfg.ButtonPeriod, cfg.ButtonHold, cfg.Now),
		i2c:    i2c,
		rtc:    NewDS3231(i2c),
		fb:     newHostFramebuffer(cfg.Width, cfg.Height),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Button() Button   { return h.btn }
func (h *hostHAL) RTC() RTC         { return h.rtc }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }

// tick raises one tick interrupt and samples the synthetic button.
func (h *hostHAL) tick() {
	h.t.step(1)
	h.btn.sample()
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostLED struct {
	mu      sync.Mutex
	on      bool
	toggles int
	trace   bool
	logger  *hostLogger
}

func (l *hostLED) High() { l.set(true) }
func (l *hostLED) Low()  { l.set(false) }

func (l *hostLED) set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.on != on {
		l.toggles++
	}
	l.on = on
	if !l.trace {
		return
	}
	if on {
		l.logger.WriteLineString("led: HIGH")
	} else {
		l.logger.WriteLineString("led: LOW")
	}
}

func (l *hostLED) state() (on bool, toggles int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on, l.toggles
}
