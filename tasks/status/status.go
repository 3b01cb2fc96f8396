// Package status draws a header and an event console on the framebuffer.
package status

import (
	"fmt"
	"image/color"

	"wakeos/hal"
	"wakeos/internal/fbdisplay"
	"wakeos/kernel"
	"wakeos/tasks/event"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyterm"
)

const (
	fontHeight = 6
	fontOffset = 5
	headerRows = 2
	headerH    = headerRows*fontHeight + 2
)

var (
	colorBG     = color.RGBA{0x00, 0x00, 0x00, 0xFF}
	colorHeader = color.RGBA{0x10, 0x30, 0x60, 0xFF}
	colorText   = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
)

// Task drains the event bus into a terminal and redraws the header every
// refresh period.
type Task struct {
	fb      hal.Framebuffer
	timer   *kernel.Timer
	bus     *event.Bus
	stats   func() kernel.Stats
	refresh uint64

	header *fbdisplay.Display
	body   *fbdisplay.Display
	term   *tinyterm.Terminal

	delay   kernel.Delay
	started bool
	lines   int
	frames  int
}

// New returns a status task. stats may be nil.
func New(fb hal.Framebuffer, timer *kernel.Timer, bus *event.Bus, stats func() kernel.Stats, refreshTicks int) *Task {
	if refreshTicks <= 0 {
		refreshTicks = 1
	}
	return &Task{fb: fb, timer: timer, bus: bus, stats: stats, refresh: uint64(refreshTicks)}
}

func (t *Task) Name() string { return "status" }

// Lines returns the number of events written to the console.
func (t *Task) Lines() int { return t.lines }

// Frames returns the number of header redraws.
func (t *Task) Frames() int { return t.frames }

func (t *Task) init() {
	t.started = true
	t.header = fbdisplay.Region(t.fb, 0, 0, t.fb.Width(), headerH)
	t.body = fbdisplay.Region(t.fb, 0, headerH, t.fb.Width(), t.fb.Height()-headerH)
	t.fb.ClearRGB(colorBG.R, colorBG.G, colorBG.B)

	t.term = tinyterm.NewTerminal(t.body)
	t.term.Configure(&tinyterm.Config{
		Font:              &tinyfont.TomThumb,
		FontHeight:        fontHeight,
		FontOffset:        fontOffset,
		UseSoftwareScroll: true,
	})
	t.drawHeader()
	t.delay = t.timer.Delay(t.refresh)
}

func (t *Task) Poll(cx *kernel.Context) kernel.Status {
	if t.fb == nil || t.fb.Buffer() == nil {
		cx.Logger().Info("no framebuffer, status console disabled")
		return kernel.Complete
	}
	if !t.started {
		t.init()
	}

	for {
		ev, ok := t.bus.PollRecv(cx)
		if !ok {
			break
		}
		fmt.Fprintf(t.term, "%s%s\x1b[0m\n", lineColor(ev), ev)
		t.lines++
	}

	for {
		if _, ok := t.delay.Poll(cx); !ok {
			break
		}
		t.drawHeader()
		if err := t.body.Display(); err != nil {
			cx.Logger().Warn("present failed", "err", err)
		}
		t.delay.Reset()
	}
	return kernel.Pending
}

// lineColor returns the SGR sequence for an event's console line.
func lineColor(ev event.Event) string {
	switch {
	case ev.Err != nil:
		return "\x1b[31m"
	case ev.Kind == event.KindButton:
		return "\x1b[33m"
	case ev.Kind == event.KindClock:
		return "\x1b[36m"
	}
	return "\x1b[39m"
}

func (t *Task) drawHeader() {
	w, _ := t.header.Size()
	_ = t.header.FillRectangle(0, 0, w, headerH, colorHeader)

	line1 := fmt.Sprintf("wakeos  tick %d", t.timer.Now())
	line2 := "no stats"
	if t.stats != nil {
		s := t.stats()
		line2 = fmt.Sprintf("tasks %d/%d  polls %d  idle %d", s.Tasks-s.Completed, s.Tasks, s.Polls, s.IdleWaits)
	}
	tinyfont.WriteLine(t.header, &tinyfont.TomThumb, 2, fontOffset+1, line1, colorText)
	tinyfont.WriteLine(t.header, &tinyfont.TomThumb, 2, fontOffset+1+fontHeight, line2, colorText)
	_ = t.header.Display()
	t.frames++
}
