// Package fbdisplay exposes a rectangle of a hal.Framebuffer as a TinyGo
// drivers.Displayer, so tinyfont and tinyterm can draw into it.
package fbdisplay

import (
	"image/color"

	"wakeos/hal"

	"tinygo.org/x/drivers"
)

// Display is a viewport onto a framebuffer. Coordinates are relative to
// the viewport origin and clipped to its bounds.
type Display struct {
	fb   hal.Framebuffer
	x0   int
	y0   int
	w    int
	h    int
	rot  drivers.Rotation
	dirt bool
}

// New returns a viewport covering the whole framebuffer.
func New(fb hal.Framebuffer) *Display {
	if fb == nil {
		return &Display{}
	}
	return Region(fb, 0, 0, fb.Width(), fb.Height())
}

// Region returns a viewport of w x h pixels at (x, y), clipped to fb.
func Region(fb hal.Framebuffer, x, y, w, h int) *Display {
	d := &Display{fb: fb}
	if fb == nil {
		return d
	}
	fw, fh := fb.Width(), fb.Height()
	x0 := clampInt(x, 0, fw)
	y0 := clampInt(y, 0, fh)
	d.x0, d.y0 = x0, y0
	d.w = clampInt(x+w, 0, fw) - x0
	d.h = clampInt(y+h, 0, fh) - y0
	return d
}

func (d *Display) usable() []byte {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 || d.w <= 0 || d.h <= 0 {
		return nil
	}
	return d.fb.Buffer()
}

func (d *Display) Size() (x, y int16) {
	return int16(d.w), int16(d.h)
}

func (d *Display) SetPixel(x, y int16, c color.RGBA) {
	buf := d.usable()
	if buf == nil {
		return
	}
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.w || iy < 0 || iy >= d.h {
		return
	}
	off := (d.y0+iy)*d.fb.StrideBytes() + (d.x0+ix)*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	pixel := hal.RGB565(c)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
	d.dirt = true
}

// Display presents the framebuffer if anything was drawn since the last call.
func (d *Display) Display() error {
	if d.fb == nil || !d.dirt {
		return nil
	}
	d.dirt = false
	return d.fb.Present()
}

// Dirty reports whether the viewport has unpresented pixels.
func (d *Display) Dirty() bool { return d.dirt }

func (d *Display) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	buf := d.usable()
	if buf == nil {
		return nil
	}

	x0 := clampInt(int(x), 0, d.w)
	y0 := clampInt(int(y), 0, d.h)
	x1 := clampInt(int(x)+int(width), 0, d.w)
	y1 := clampInt(int(y)+int(height), 0, d.h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := hal.RGB565(c)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := (d.y0 + py) * stride
		for px := x0; px < x1; px++ {
			off := row + (d.x0+px)*2
			if off < 0 || off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
	d.dirt = true
	return nil
}

// ScrollUp moves the viewport content up by lines pixels and clears the
// exposed rows.
func (d *Display) ScrollUp(lines int16, bg color.RGBA) error {
	buf := d.usable()
	if buf == nil || lines <= 0 {
		return nil
	}
	n := int(lines)
	if n >= d.h {
		return d.FillRectangle(0, 0, int16(d.w), int16(d.h), bg)
	}

	stride := d.fb.StrideBytes()
	rowBytes := d.w * 2
	for y := 0; y < d.h-n; y++ {
		dst := (d.y0+y)*stride + d.x0*2
		src := (d.y0+y+n)*stride + d.x0*2
		if src+rowBytes > len(buf) {
			break
		}
		copy(buf[dst:dst+rowBytes], buf[src:src+rowBytes])
	}
	return d.FillRectangle(0, int16(d.h-n), int16(d.w), int16(n), bg)
}

// SetScroll is a no-op: framebuffers have no hardware scroll, use the
// terminal's software scroll.
func (d *Display) SetScroll(line int16) {}

func (d *Display) SetRotation(rotation drivers.Rotation) error {
	d.rot = rotation
	return nil
}

func (d *Display) Rotation() drivers.Rotation { return d.rot }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
