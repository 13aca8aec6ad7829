package dispense

import (
	"fmt"
	"time"

	"github.com/kilianp07/pillbox/core/hal"
)

// Config defines dispense workflow timings.
type Config struct {
	BeepMS    int `json:"beep_ms"`
	SettleMS  int `json:"settle_ms"`
	HomeAngle int `json:"home_angle"`
}

// SetDefaults fills zero values with the board defaults.
func (c *Config) SetDefaults() {
	if c.BeepMS == 0 {
		c.BeepMS = 800
	}
	if c.SettleMS == 0 {
		c.SettleMS = 250
	}
	if c.HomeAngle == 0 {
		c.HomeAngle = 90
	}
}

// Validate checks the configured values.
func (c Config) Validate() error {
	if c.BeepMS < 0 || c.SettleMS < 0 {
		return fmt.Errorf("dispense: negative duration (beep_ms=%d settle_ms=%d)", c.BeepMS, c.SettleMS)
	}
	if c.HomeAngle < hal.MinAngle || c.HomeAngle > hal.MaxAngle {
		return fmt.Errorf("dispense: home_angle %d out of range", c.HomeAngle)
	}
	return nil
}

func (c Config) beep() time.Duration   { return time.Duration(c.BeepMS) * time.Millisecond }
func (c Config) settle() time.Duration { return time.Duration(c.SettleMS) * time.Millisecond }
