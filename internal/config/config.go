// Package config holds the board profile: interrupt rates, idle strategy and
// the demo tasks to spawn.
package config

import (
	"fmt"
	"time"
)

// Task names accepted in Board.Tasks.
const (
	TaskHeartbeat = "heartbeat"
	TaskButton    = "button"
	TaskClock     = "clock"
	TaskPingPong  = "pingpong"
	TaskStatus    = "status"
)

var knownTasks = []string{TaskHeartbeat, TaskButton, TaskClock, TaskPingPong, TaskStatus}

var knownIdle = []string{"default", "event", "spin", "gosched", "wfe", "wfi"}

// Board describes one board profile.
type Board struct {
	TickHz          int    `yaml:"tick_hz"`
	Idle            string `yaml:"idle"`
	StarvationLimit int    `yaml:"starvation_limit"`

	Button    ButtonConfig    `yaml:"button"`
	Display   DisplayConfig   `yaml:"display"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Clock     ClockConfig     `yaml:"clock"`
	PingPong  PingPongConfig  `yaml:"pingpong"`

	Tasks []string  `yaml:"tasks"`
	Log   LogConfig `yaml:"log"`
}

// ButtonConfig drives the synthetic button on the host simulator.
type ButtonConfig struct {
	Period time.Duration `yaml:"period"`
	Hold   time.Duration `yaml:"hold"`
	// Presses stops the button task after that many presses; zero never stops.
	Presses int `yaml:"presses"`
}

type DisplayConfig struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	RefreshTicks int `yaml:"refresh_ticks"`
}

type HeartbeatConfig struct {
	// Pattern is the LED on/off schedule in ticks, starting with on.
	Pattern []int `yaml:"pattern"`
	// Beats stops the task after that many patterns; zero runs forever.
	Beats int `yaml:"beats"`
}

type ClockConfig struct {
	PeriodTicks int `yaml:"period_ticks"`
	Samples     int `yaml:"samples"`
}

type PingPongConfig struct {
	Rounds int `yaml:"rounds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in board profile.
func Default() Board {
	return Board{
		TickHz:          100,
		Idle:            "default",
		StarvationLimit: 64,
		Button: ButtonConfig{
			Period: 3 * time.Second,
			Hold:   200 * time.Millisecond,
		},
		Display: DisplayConfig{
			Width:        240,
			Height:       240,
			RefreshTicks: 25,
		},
		Heartbeat: HeartbeatConfig{
			Pattern: []int{10, 15, 10, 65},
		},
		Clock: ClockConfig{
			PeriodTicks: 100,
		},
		PingPong: PingPongConfig{
			Rounds: 50,
		},
		Tasks: append([]string(nil), knownTasks...),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports the first invalid setting.
func (b Board) Validate() error {
	if b.TickHz <= 0 || b.TickHz > 10000 {
		return fmt.Errorf("tick_hz %d out of range (1..10000)", b.TickHz)
	}
	if !contains(knownIdle, b.Idle) {
		return fmt.Errorf("unknown idle strategy %q", b.Idle)
	}
	if b.StarvationLimit < 0 {
		return fmt.Errorf("starvation_limit must not be negative")
	}
	if b.Button.Period < 0 || b.Button.Hold < 0 || b.Button.Hold > b.Button.Period {
		return fmt.Errorf("button hold %v must be within period %v", b.Button.Hold, b.Button.Period)
	}
	if b.Button.Presses < 0 {
		return fmt.Errorf("button presses must not be negative")
	}
	if b.Clock.Samples < 0 || b.Heartbeat.Beats < 0 {
		return fmt.Errorf("sample and beat limits must not be negative")
	}
	if b.Display.Width <= 0 || b.Display.Height <= 0 {
		return fmt.Errorf("display size %dx%d invalid", b.Display.Width, b.Display.Height)
	}
	if b.Display.RefreshTicks <= 0 {
		return fmt.Errorf("display refresh_ticks must be positive")
	}
	if len(b.Heartbeat.Pattern) == 0 {
		return fmt.Errorf("heartbeat pattern is empty")
	}
	for _, n := range b.Heartbeat.Pattern {
		if n <= 0 {
			return fmt.Errorf("heartbeat pattern step %d must be positive", n)
		}
	}
	if b.Clock.PeriodTicks <= 0 {
		return fmt.Errorf("clock period_ticks must be positive")
	}
	if b.PingPong.Rounds <= 0 {
		return fmt.Errorf("pingpong rounds must be positive")
	}
	seen := map[string]bool{}
	for _, name := range b.Tasks {
		if !contains(knownTasks, name) {
			return fmt.Errorf("unknown task %q", name)
		}
		if seen[name] {
			return fmt.Errorf("task %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// Enabled reports whether the named demo task is listed.
func (b Board) Enabled(name string) bool { return contains(b.Tasks, name) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
