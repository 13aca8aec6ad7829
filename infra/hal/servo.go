package hal

import (
	"sync"
	"time"

	corehal "github.com/kilianp07/pillbox/core/hal"
	"github.com/kilianp07/pillbox/core/logger"
	"github.com/kilianp07/pillbox/internal/mathx"
)

// Servo steps one degree at a time towards the target angle, pausing
// stepDelay between steps.
type Servo struct {
	mu        sync.Mutex
	angle     int
	stepDelay time.Duration
	sleep     func(time.Duration)
	write     func(angle int)
	log       logger.Logger
}

var _ corehal.Actuator = (*Servo)(nil)

// ServoOption customizes a Servo.
type ServoOption func(*Servo)

// WithServoSleep replaces time.Sleep between steps.
func WithServoSleep(fn func(time.Duration)) ServoOption {
	return func(s *Servo) { s.sleep = fn }
}

// WithServoWriter is called with every intermediate angle.
func WithServoWriter(fn func(angle int)) ServoOption {
	return func(s *Servo) { s.write = fn }
}

// NewServo returns a servo resting at initial.
func NewServo(initial int, stepDelay time.Duration, log logger.Logger, opts ...ServoOption) *Servo {
	s := &Servo{
		angle:     mathx.Clamp(initial, corehal.MinAngle, corehal.MaxAngle),
		stepDelay: stepDelay,
		sleep:     time.Sleep,
		write:     func(int) {},
		log:       log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MoveTo clamps angle to the mechanism bounds and steps there.
func (s *Servo) MoveTo(angle int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := mathx.Clamp(angle, corehal.MinAngle, corehal.MaxAngle)
	step := mathx.Sign(target - s.angle)
	for s.angle != target {
		s.angle += step
		s.write(s.angle)
		s.sleep(s.stepDelay)
	}
	s.log.Debugf("servo at %d", s.angle)
	return nil
}

// Angle returns the current position.
func (s *Servo) Angle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.angle
}
