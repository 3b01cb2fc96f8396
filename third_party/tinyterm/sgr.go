package tinyterm

import "image/color"

// SGR (Select Graphic Rendition) parameters understood by the terminal.
const (
	SGRReset = 0
	SGRBold  = 1

	SGRFgBlack        = 30
	SGRFgRed          = 31
	SGRFgGreen        = 32
	SGRFgYellow       = 33
	SGRFgBlue         = 34
	SGRFgMagenta      = 35
	SGRFgCyan         = 36
	SGRFgWhite        = 37
	SGRSetFgColor     = 38
	SGRDefaultFgColor = 39

	SGRBgBlack        = 40
	SGRBgRed          = 41
	SGRBgGreen        = 42
	SGRBgYellow       = 43
	SGRBgBlue         = 44
	SGRBgMagenta      = 45
	SGRBgCyan         = 46
	SGRBgWhite        = 47
	SGRSetBgColor     = 48
	SGRDefaultBgColor = 49
)

// Color is an index into the 16-color ANSI palette. Indexes 8-15 are the
// bright variants; larger indexes wrap around.
type Color uint8

const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

var palette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF},
	{0xCD, 0x00, 0x00, 0xFF},
	{0x00, 0xCD, 0x00, 0xFF},
	{0xCD, 0xCD, 0x00, 0xFF},
	{0x00, 0x00, 0xEE, 0xFF},
	{0xCD, 0x00, 0xCD, 0xFF},
	{0x00, 0xCD, 0xCD, 0xFF},
	{0xE5, 0xE5, 0xE5, 0xFF},
	{0x7F, 0x7F, 0x7F, 0xFF},
	{0xFF, 0x00, 0x00, 0xFF},
	{0x00, 0xFF, 0x00, 0xFF},
	{0xFF, 0xFF, 0x00, 0xFF},
	{0x5C, 0x5C, 0xFF, 0xFF},
	{0xFF, 0x00, 0xFF, 0xFF},
	{0x00, 0xFF, 0xFF, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
}

// rgba returns the palette entry for c.
func (c Color) rgba() color.RGBA { return palette[c%16] }

// sgrAttrs is the current rendition: attribute flags plus resolved colors.
type sgrAttrs struct {
	attrs byte
	fg    Color
	bg    Color
	fgcol color.RGBA
	bgcol color.RGBA
}

func (a *sgrAttrs) reset() {
	a.attrs = 0
	a.setFG(ColorWhite)
	a.setBG(ColorBlack)
}

func (a *sgrAttrs) setFG(c Color) {
	a.fg = c
	a.fgcol = c.rgba()
}

func (a *sgrAttrs) setBG(c Color) {
	a.bg = c
	a.bgcol = c.rgba()
}
