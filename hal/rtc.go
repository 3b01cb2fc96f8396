package hal

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

type ds3231RTC struct {
	dev ds3231.Device
}

// NewDS3231 returns an RTC backed by a DS3231 on bus.
func NewDS3231(bus drivers.I2C) RTC {
	return &ds3231RTC{dev: ds3231.New(bus)}
}

func (r *ds3231RTC) ReadTime() (time.Time, error) {
	t, err := r.dev.ReadTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("rtc: read time: %w", err)
	}
	return t, nil
}

func (r *ds3231RTC) ReadTemperature() (int32, error) {
	mc, err := r.dev.ReadTemperature()
	if err != nil {
		return 0, fmt.Errorf("rtc: read temperature: %w", err)
	}
	return mc, nil
}

// SetTime sets the clock and clears its oscillator-stop flag.
func (r *ds3231RTC) SetTime(t time.Time) error {
	if err := r.dev.SetTime(t); err != nil {
		return fmt.Errorf("rtc: set time: %w", err)
	}
	return nil
}
