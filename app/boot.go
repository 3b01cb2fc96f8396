package app

import (
	"image/color"

	"wakeos/hal"
	"wakeos/internal/buildinfo"
	"wakeos/internal/fbdisplay"

	"tinygo.org/x/tinyfont"
)

// bootScreen paints a one-line splash so a board with a panel shows life
// before the status task takes over.
func bootScreen(h hal.HAL, msg string) {
	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil || fb.Buffer() == nil {
		return
	}

	fb.ClearRGB(0, 0, 0)
	d := fbdisplay.New(fb)
	fg := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	tinyfont.WriteLine(d, &tinyfont.TomThumb, 2, 8, "wakeos "+buildinfo.Short(), fg)
	tinyfont.WriteLine(d, &tinyfont.TomThumb, 2, 16, msg, fg)
	_ = fb.Present()
}
