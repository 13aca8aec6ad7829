package schedule

import (
	"fmt"
	"time"
)

// Config defines alarm behavior at boot.
type Config struct {
	AlarmMS       int  `json:"alarm_ms"`
	BuzzerEnabled bool `json:"buzzer_enabled"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.AlarmMS == 0 {
		c.AlarmMS = 5000
	}
}

// Validate checks the configured values.
func (c Config) Validate() error {
	if c.AlarmMS < 0 {
		return fmt.Errorf("schedule: negative alarm_ms %d", c.AlarmMS)
	}
	return nil
}

func (c Config) alarm() time.Duration { return time.Duration(c.AlarmMS) * time.Millisecond }
