package app

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"unicode/utf8"

	"wakeos/hal"
	"wakeos/internal/fbdisplay"
	"wakeos/kernel"

	"tinygo.org/x/tinyfont"
)

const (
	panicFontHeight = 6
	panicFontOffset = 5
)

func installPanicHandler(h hal.HAL, log *slog.Logger) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		log.Error("kernel panic", "task", info.Task, "handle", info.Handle, "panic", fmt.Sprint(info.Value))
		if l := h.Logger(); l != nil && len(info.Stack) > 0 {
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line == "" {
					continue
				}
				l.WriteLineString(line)
			}
		}

		disp := h.Display()
		if disp == nil {
			return
		}
		fb := disp.Framebuffer()
		if fb == nil || fb.Buffer() == nil {
			return
		}
		drawPanic(fb, info)
	})
}

func drawPanic(fb hal.Framebuffer, info kernel.PanicInfo) {
	fb.ClearRGB(255, 255, 255)

	font := &tinyfont.TomThumb
	_, outboxWidth := tinyfont.LineWidth(font, "0")
	fontWidth := int16(outboxWidth)
	if fontWidth <= 0 {
		_ = fb.Present()
		return
	}

	lines := []string{
		"wakeos panic:",
		fmt.Sprintf("task: %s (%d)", info.Task, info.Handle),
		fmt.Sprintf("panic: %v", info.Value),
	}
	if len(info.Stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(info.Stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	d := fbdisplay.New(fb)
	fg := color.RGBA{R: 0, G: 0, B: 0, A: 255}
	cols := int16(fb.Width()) / fontWidth
	if cols <= 0 {
		_ = fb.Present()
		return
	}

	y := int16(0)
	maxH := int16(fb.Height())
	for _, line := range lines {
		for line != "" {
			if y+panicFontHeight > maxH {
				_ = fb.Present()
				return
			}
			var chunk string
			chunk, line = takeRunes(line, cols)
			tinyfont.WriteLine(d, font, 0, y+panicFontOffset, chunk, fg)
			y += panicFontHeight
		}
	}
	_ = fb.Present()
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
