package hal

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	ds3231Addr     = 0x68
	ds3231RegTime  = 0x00
	ds3231RegCtrl  = 0x0E
	ds3231RegStat  = 0x0F
	ds3231RegTemp  = 0x11
	ds3231RegCount = 0x13
)

var errNoDevice = errors.New("i2c: no device at address")

// VirtualDS3231 emulates the DS3231 register file behind drivers.I2C.
//
// Time registers follow the supplied clock plus whatever offset the last
// time write set; temperature registers hold the configured value.
type VirtualDS3231 struct {
	mu     sync.Mutex
	regs   [ds3231RegCount]byte
	now    func() time.Time
	offset time.Duration
	tempMC int32
}

// NewVirtualDS3231 creates a clock that starts at now().
func NewVirtualDS3231(now func() time.Time) *VirtualDS3231 {
	if now == nil {
		now = time.Now
	}
	return &VirtualDS3231{now: now, tempMC: 25000}
}

// SetTemperature sets the reported temperature in milli-degrees Celsius.
func (d *VirtualDS3231) SetTemperature(mc int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tempMC = mc
}

// Tx implements drivers.I2C. The first written byte selects the register;
// further written bytes are stored from there, and r is filled from there.
func (d *VirtualDS3231) Tx(addr uint16, w, r []byte) error {
	if addr != ds3231Addr {
		return fmt.Errorf("%w 0x%02x", errNoDevice, addr)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(w) == 0 {
		return nil
	}
	ptr := int(w[0])
	if ptr >= ds3231RegCount {
		return fmt.Errorf("ds3231: register 0x%02x out of range", ptr)
	}

	if len(w) > 1 {
		wroteTime := false
		for i, b := range w[1:] {
			reg := ptr + i
			if reg >= ds3231RegCount {
				break
			}
			d.regs[reg] = b
			if reg <= 6 {
				wroteTime = true
			}
		}
		if wroteTime {
			d.offset = decodeDS3231Time(d.regs[:7]).Sub(d.now())
		}
	}

	if len(r) > 0 {
		encodeDS3231Time(d.regs[:7], d.now().Add(d.offset))
		d.regs[ds3231RegTemp], d.regs[ds3231RegTemp+1] = encodeDS3231Temp(d.tempMC)
		for i := range r {
			reg := ptr + i
			if reg >= ds3231RegCount {
				r[i] = 0
				continue
			}
			r[i] = d.regs[reg]
		}
	}
	return nil
}

func toBCD(v int) byte   { return byte(v/10<<4 | v%10) }
func fromBCD(b byte) int { return int(b>>4)*10 + int(b&0x0F) }

func encodeDS3231Time(regs []byte, t time.Time) {
	t = t.UTC()
	regs[0] = toBCD(t.Second())
	regs[1] = toBCD(t.Minute())
	regs[2] = toBCD(t.Hour())
	regs[3] = byte(t.Weekday()) + 1
	regs[4] = toBCD(t.Day())
	regs[5] = toBCD(int(t.Month()))
	regs[6] = toBCD(t.Year() % 100)
}

func decodeDS3231Time(regs []byte) time.Time {
	hour := fromBCD(regs[2] & 0x3F)
	if regs[2]&0x40 != 0 {
		hour = fromBCD(regs[2] & 0x1F)
		if regs[2]&0x20 != 0 {
			hour = hour%12 + 12
		} else {
			hour %= 12
		}
	}
	return time.Date(
		2000+fromBCD(regs[6]),
		time.Month(fromBCD(regs[5]&0x1F)),
		fromBCD(regs[4]),
		hour,
		fromBCD(regs[1]),
		fromBCD(regs[0]&0x7F),
		0, time.UTC,
	)
}

// encodeDS3231Temp returns the 10-bit two's complement quarter-degree value.
func encodeDS3231Temp(mc int32) (msb, lsb byte) {
	q := mc / 250
	if mc%250 != 0 && mc < 0 {
		q--
	}
	return byte(int8(q >> 2)), byte(q&3) << 6
}
