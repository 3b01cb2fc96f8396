//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

type tinyGoDisplay struct {
	fb Framebuffer
}

func (d tinyGoDisplay) Framebuffer() Framebuffer { return d.fb }

// tinyGoTime raises the tick handler from a ticker goroutine.
type tinyGoTime struct {
	hz  int
	seq uint64
	fn  func(uint64)
}

func newTinyGoTime(hz int) *tinyGoTime {
	if hz <= 0 {
		hz = 100
	}
	return &tinyGoTime{hz: hz}
}

func (t *tinyGoTime) TickHz() int { return t.hz }

// SetTickHandler installs fn and starts the tick source. It must be called once.
func (t *tinyGoTime) SetTickHandler(fn func(seq uint64)) {
	if fn == nil || t.fn != nil {
		return
	}
	t.fn = fn
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(t.hz))
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			t.fn(t.seq)
		}
	}()
}

type pinButton struct {
	pin machine.Pin
	fn  func(bool)
}

func newPinButton(pin machine.Pin) *pinButton {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &pinButton{pin: pin}
}

// SetHandler installs fn as the pin's edge interrupt. The pin is active low.
func (b *pinButton) SetHandler(fn func(pressed bool)) {
	b.fn = fn
	if fn == nil {
		b.pin.SetInterrupt(0, nil)
		return
	}
	b.pin.SetInterrupt(machine.PinFalling|machine.PinRising, func(p machine.Pin) {
		b.fn(!p.Get())
	})
}

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.uart.WriteByte(s[i])
	}
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	l.uart.Write(b)
	l.uart.WriteByte('\r')
	l.uart.WriteByte('\n')
}

type pinLED struct {
	pin machine.Pin
}

func (l *pinLED) High() { l.pin.High() }
func (l *pinLED) Low()  { l.pin.Low() }

type nullRTC struct{}

func (nullRTC) ReadTime() (time.Time, error)    { return time.Time{}, ErrNotImplemented }
func (nullRTC) ReadTemperature() (int32, error) { return 0, ErrNotImplemented }

type stubFramebuffer struct {
	w      int
	h      int
	format PixelFormat
}

func (f *stubFramebuffer) Width() int             { return f.w }
func (f *stubFramebuffer) Height() int            { return f.h }
func (f *stubFramebuffer) Format() PixelFormat    { return f.format }
func (f *stubFramebuffer) StrideBytes() int       { return f.w * 2 }
func (f *stubFramebuffer) Buffer() []byte         { return nil }
func (f *stubFramebuffer) ClearRGB(r, g, b uint8) {}
func (f *stubFramebuffer) Present() error         { return ErrNotImplemented }
