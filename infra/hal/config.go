package hal

import (
	"fmt"
	"time"

	corehal "github.com/kilianp07/pillbox/core/hal"
	"github.com/kilianp07/pillbox/infra/logger"
	"github.com/kilianp07/pillbox/internal/mathx"
)

// Config holds the simulated hardware settings.
type Config struct {
	ServoStepMS  int          `json:"servo_step_ms"`
	InitialAngle *int         `json:"initial_angle"`
	Sensor       SensorConfig `json:"sensor"`
	// RequireNetwork gates broker connects on a host interface being up.
	RequireNetwork bool `json:"require_network"`
}

// SensorConfig sets the simulated color sensor. R, G and B are the raw
// channel frequencies it reports, in Hz.
type SensorConfig struct {
	Samples int `json:"samples"`
	R       int `json:"r"`
	G       int `json:"g"`
	B       int `json:"b"`
}

func (s SensorConfig) source() StaticSource {
	return StaticSource{R: s.R, G: s.G, B: s.B}
}

// Defaults of the dispensing mechanism.
const (
	DefaultServoStepMS   = 12
	DefaultInitialAngle  = 90
	DefaultSensorSamples = 3
)

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.ServoStepMS == 0 {
		c.ServoStepMS = DefaultServoStepMS
	}
	if c.InitialAngle == nil {
		a := DefaultInitialAngle
		c.InitialAngle = &a
	}
	if c.Sensor.Samples == 0 {
		c.Sensor.Samples = DefaultSensorSamples
	}
	if c.Sensor.R == 0 && c.Sensor.G == 0 && c.Sensor.B == 0 {
		c.Sensor.R, c.Sensor.G, c.Sensor.B = 400, 400, 400
	}
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.ServoStepMS < 0 {
		return fmt.Errorf("hal: servo_step_ms must be >= 0")
	}
	if c.InitialAngle != nil && !mathx.Between(*c.InitialAngle, corehal.MinAngle, corehal.MaxAngle) {
		return fmt.Errorf("hal: initial_angle %d out of range", *c.InitialAngle)
	}
	if c.Sensor.Samples < 1 {
		return ErrNoSamples
	}
	return nil
}

// Simulated groups the software hardware built from a Config.
type Simulated struct {
	Servo   *Servo
	Buzzer  *Buzzer
	Sensor  *ColorSensor
	Network corehal.NetworkMonitor
}

// NewSimulated builds the simulated hardware. cfg must have defaults applied.
func NewSimulated(cfg Config, log logger.Logger) (*Simulated, error) {
	log = logger.OrNop(log)
	sensor, err := NewColorSensor(cfg.Sensor.source(), cfg.Sensor.Samples)
	if err != nil {
		return nil, err
	}
	initial := DefaultInitialAngle
	if cfg.InitialAngle != nil {
		initial = *cfg.InitialAngle
	}
	var network corehal.NetworkMonitor = corehal.AlwaysOnline{}
	if cfg.RequireNetwork {
		network = NewHostNetwork()
	}
	return &Simulated{
		Servo: NewServo(initial, time.Duration(cfg.ServoStepMS)*time.Millisecond, log),
		Buzzer: NewBuzzer(func(high bool) {
			log.Debugw("buzzer", map[string]any{"on": high})
		}, nil),
		Sensor:  sensor,
		Network: network,
	}, nil
}
