package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LogConfig defines the process wide log settings.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn or error.
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name.
func (c LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log: unknown level %s", c.Level)
	}
	return nil
}
