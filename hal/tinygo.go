//go:build tinygo && baremetal

package hal

import (
	"machine"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	t      *tinyGoTime
	btn    *pinButton
	rtc    RTC
	fb     Framebuffer
}

// New returns a Pico (RP2040/RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Button: GP15 to ground, internal pull-up.
// RTC: DS3231 on I2C0, GP4 (SDA) / GP5 (SCL).
func New(tickHz int) HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	i2c := machine.I2C0
	var rtc RTC = nullRTC{}
	if err := i2c.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400 * machine.KHz,
	}); err != nil {
		logger.WriteLineString("hal: i2c0: " + err.Error())
	} else {
		rtc = NewDS3231(i2c)
	}

	fb, err := newPanel()
	if err != nil {
		logger.WriteLineString("hal: display: " + err.Error())
		fb = &stubFramebuffer{w: 240, h: 240, format: PixelFormatRGB565}
	}

	return &tinyGoHAL{
		logger: logger,
		led:    &pinLED{pin: ledPin},
		t:      newTinyGoTime(tickHz),
		btn:    newPinButton(machine.GP15),
		rtc:    rtc,
		fb:     fb,
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) Time() Time       { return h.t }
func (h *tinyGoHAL) Button() Button   { return h.btn }
func (h *tinyGoHAL) RTC() RTC         { return h.rtc }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
