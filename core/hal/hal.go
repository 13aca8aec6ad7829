// Package hal declares the hardware collaborators consumed by the device
// engine. Pin level details live behind these interfaces.
package hal

import (
	"time"

	"github.com/kilianp07/pillbox/core/model"
)

// Angle bounds of the dispensing mechanism.
const (
	MinAngle = 0
	MaxAngle = 180
)

// Actuator positions the dispensing mechanism. MoveTo blocks until the
// mechanism reached the angle.
type Actuator interface {
	MoveTo(angle int) error
}

// Indicator is the audible indicator. SoundFor starts a tone and returns
// immediately; Poll switches it off once the duration elapsed and must be
// called every tick.
type Indicator interface {
	SoundFor(d time.Duration)
	Poll()
}

// ColorSampler reads the color sensor once, normalized to 0-255 per channel.
type ColorSampler interface {
	SampleNormalized() (model.RGB, error)
}

// NetworkMonitor reports whether the device has network connectivity.
type NetworkMonitor interface {
	Online() bool
}

// AlwaysOnline is a NetworkMonitor that never blocks connect attempts.
type AlwaysOnline struct{}

func (AlwaysOnline) Online() bool { return true }
