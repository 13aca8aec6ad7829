package config

import (
	"errors"
	"time"

	"github.com/kilianp07/pillbox/core/clock"
	"github.com/kilianp07/pillbox/core/shadow"
)

// DeviceConfig identifies the thing and its local time.
type DeviceConfig struct {
	ThingName     string `json:"thing_name"`
	ShadowRoot    string `json:"shadow_root"`
	CommandPrefix string `json:"command_prefix"`
	// UTCOffsetSeconds is the fixed local offset. Nil means -14400.
	UTCOffsetSeconds *int `json:"utc_offset_seconds"`
	TickIntervalMS   int  `json:"tick_interval_ms"`
}

// Device defaults.
const (
	DefaultThingName        = "esp32-color-shadow"
	DefaultUTCOffsetSeconds = -4 * 60 * 60
	DefaultTickIntervalMS   = 10
)

// SetDefaults applies sane defaults.
func (c *DeviceConfig) SetDefaults() {
	if c.ThingName == "" {
		c.ThingName = DefaultThingName
	}
	if c.ShadowRoot == "" {
		c.ShadowRoot = shadow.DefaultRoot
	}
	if c.CommandPrefix == "" {
		c.CommandPrefix = shadow.DefaultCommandPrefix
	}
	if c.UTCOffsetSeconds == nil {
		off := DefaultUTCOffsetSeconds
		c.UTCOffsetSeconds = &off
	}
	if c.TickIntervalMS == 0 {
		c.TickIntervalMS = DefaultTickIntervalMS
	}
}

// Validate checks mandatory fields.
func (c DeviceConfig) Validate() error {
	if c.ThingName == "" {
		return errors.New("device: thing_name is required")
	}
	if c.UTCOffsetSeconds != nil && (*c.UTCOffsetSeconds < -14*3600 || *c.UTCOffsetSeconds > 14*3600) {
		return errors.New("device: utc_offset_seconds out of range")
	}
	if c.TickIntervalMS < 1 {
		return errors.New("device: tick_interval_ms must be positive")
	}
	return nil
}

// Topics returns the shadow topics of the thing.
func (c DeviceConfig) Topics() shadow.Topics {
	return shadow.NewTopics(c.ShadowRoot, c.ThingName, c.CommandPrefix)
}

// Resolver returns the local time resolver.
func (c DeviceConfig) Resolver() clock.Resolver {
	off := DefaultUTCOffsetSeconds
	if c.UTCOffsetSeconds != nil {
		off = *c.UTCOffsetSeconds
	}
	return clock.Resolver{OffsetSeconds: off}
}

// TickInterval returns the loop period.
func (c DeviceConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
