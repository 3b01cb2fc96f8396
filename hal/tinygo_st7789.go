//go:build tinygo && baremetal && st7789

package hal

import (
	"fmt"
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/st7789"
)

const (
	panelWidth  = 240
	panelHeight = 240
)

// st7789Framebuffer keeps a full RGB565 frame in RAM and streams it to the
// panel one row at a time on Present.
type st7789Framebuffer struct {
	dev st7789.Device
	buf []byte
	row []byte
}

// newPanel wires an ST7789 on SPI1: GP10 (SCK), GP11 (SDO), GP12 (RST),
// GP8 (DC), GP9 (CS), GP13 (backlight).
func newPanel() (Framebuffer, error) {
	if err := machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		Frequency: 62_500_000,
		Mode:      0,
	}); err != nil {
		return nil, fmt.Errorf("spi1: %w", err)
	}
	dev := st7789.New(machine.SPI1, machine.GP12, machine.GP8, machine.GP9, machine.GP13)
	dev.Configure(st7789.Config{
		Width:    panelWidth,
		Height:   panelHeight,
		Rotation: drivers.Rotation0,
	})
	return &st7789Framebuffer{
		dev: dev,
		buf: make([]byte, panelWidth*panelHeight*2),
		row: make([]byte, panelWidth*2),
	}, nil
}

func (f *st7789Framebuffer) Width() int          { return panelWidth }
func (f *st7789Framebuffer) Height() int         { return panelHeight }
func (f *st7789Framebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *st7789Framebuffer) StrideBytes() int    { return panelWidth * 2 }
func (f *st7789Framebuffer) Buffer() []byte      { return f.buf }

func (f *st7789Framebuffer) ClearRGB(r, g, b uint8) {
	fillRGB565(f.buf, rgb565(r, g, b))
}

func (f *st7789Framebuffer) Present() error {
	stride := panelWidth * 2
	for y := 0; y < panelHeight; y++ {
		src := f.buf[y*stride : (y+1)*stride]
		for i := 0; i+1 < len(src); i += 2 {
			f.row[i] = src[i+1]
			f.row[i+1] = src[i]
		}
		if err := f.dev.DrawRGBBitmap8(0, int16(y), f.row, panelWidth, 1); err != nil {
			return fmt.Errorf("st7789: %w", err)
		}
	}
	return nil
}
