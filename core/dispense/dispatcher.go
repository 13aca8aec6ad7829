package dispense

import (
	"errors"
	"time"

	"github.com/kilianp07/pillbox/core/clock"
	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/hal"
	"github.com/kilianp07/pillbox/core/logger"
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/core/shadow"
)

// Dispatcher executes dispense commands. It is not safe for concurrent use;
// the tick loop is its only caller.
type Dispatcher struct {
	cfg      Config
	actuator hal.Actuator
	buzzer   hal.Indicator
	sensor   hal.ColorSampler
	reporter shadow.Reporter
	clock    clock.Clock
	resolver clock.Resolver
	log      logger.Logger
	bus      events.Publisher

	lastCommandID uint64
	sleep         func(time.Duration)
	now           func() time.Time
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithEvents publishes dispense and duplicate events to p.
func WithEvents(p events.Publisher) Option {
	return func(d *Dispatcher) { d.bus = events.OrNop(p) }
}

// WithSleep replaces the settle delay, mainly for tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.sleep = fn
		}
	}
}

// New creates a Dispatcher.
func New(cfg Config, act hal.Actuator, buzzer hal.Indicator, sensor hal.ColorSampler,
	rep shadow.Reporter, clk clock.Clock, res clock.Resolver, log logger.Logger, opts ...Option) (*Dispatcher, error) {
	if act == nil || buzzer == nil || sensor == nil || rep == nil || clk == nil {
		return nil, errors.New("dispense: nil collaborator provided to New")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		return nil, errors.New("dispense: nil logger")
	}
	d := &Dispatcher{
		cfg:      cfg,
		actuator: act,
		buzzer:   buzzer,
		sensor:   sensor,
		reporter: rep,
		clock:    clk,
		resolver: res,
		log:      log,
		bus:      events.NopPublisher{},
		sleep:    time.Sleep,
		now:      time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// LastCommandID returns the id of the last executed command, 0 if none.
func (d *Dispatcher) LastCommandID() uint64 { return d.lastCommandID }

// HandleCommandPayload decodes and executes a raw command topic payload.
// Malformed or unsupported payloads are logged and dropped.
func (d *Dispatcher) HandleCommandPayload(raw []byte) {
	cmd, err := shadow.DecodeCommand(raw)
	if err != nil {
		d.log.Warnf("dropping command payload: %v", err)
		return
	}
	d.HandleCommand(cmd)
}

// HandleCommand executes a decoded command.
func (d *Dispatcher) HandleCommand(cmd model.Command) {
	if err := shadow.CheckCommand(cmd); err != nil {
		d.log.Warnf("ignoring command id=%d: %v", cmd.CommandID, err)
		return
	}
	d.perform(cmd.Color, cmd.CommandID, cmd.Source)
}

// HandleDesiredColor executes a desired-state dispense_now request. It carries no
// command id and is never deduplicated.
func (d *Dispatcher) HandleDesiredColor(color string) {
	if color == "" {
		return
	}
	d.perform(color, 0, model.SourceShadowDeltaCompat)
}

// PerformDispense runs the dispense workflow for color. A non-zero commandID
// equal to the last handled one is discarded. It reports whether the
// workflow ran. The workflow blocks for the whole sweep and is never
// interrupted once started.
func (d *Dispatcher) PerformDispense(color string, commandID uint64) bool {
	return d.perform(color, commandID, model.SourceTopic)
}

func (d *Dispatcher) perform(color string, commandID uint64, src model.CommandSource) bool {
	if commandID != 0 && commandID == d.lastCommandID {
		d.log.Debugf("duplicate command id=%d ignored", commandID)
		d.bus.Publish(events.DuplicateEvent{CommandID: commandID, Time: d.now()})
		return false
	}
	if commandID != 0 {
		d.lastCommandID = commandID
	}

	start := d.now()
	angle := ColorToAngle(color)
	outcome := model.DispenseOutcome{
		Color:     color,
		Angle:     angle,
		Status:    model.StatusOK,
		CommandID: commandID,
	}
	d.log.Infof("dispensing color=%s angle=%d id=%d source=%s", color, angle, commandID, src)

	if err := d.actuator.MoveTo(angle); err != nil {
		d.log.Errorf("move to %d failed: %v", angle, err)
		outcome.Status = model.StatusError
	}
	d.buzzer.SoundFor(d.cfg.beep())
	d.sleep(d.cfg.settle())

	rgb, err := d.sensor.SampleNormalized()
	if err != nil {
		d.log.Errorf("verification sample failed: %v", err)
		outcome.Status = model.StatusError
	} else {
		outcome.Measured = rgb
	}
	if t, ok := d.clock.Now(); ok {
		outcome.LocalTimestamp = d.resolver.Epoch(t)
	}

	if err := d.reporter.PublishDispenseReport(outcome); err != nil {
		d.log.Warnf("dispense report not published: %v", err)
	}
	if err := d.reporter.ClearDesired(); err != nil {
		d.log.Warnf("desired state not cleared: %v", err)
	}
	if err := d.actuator.MoveTo(d.cfg.HomeAngle); err != nil {
		d.log.Errorf("return home failed: %v", err)
	}

	d.bus.Publish(events.DispenseEvent{Outcome: outcome, Source: src, Duration: d.now().Sub(start), Time: d.now()})
	d.log.Infow("dispense done", map[string]any{
		"color":      color,
		"angle":      angle,
		"status":     outcome.Status.String(),
		"measured":   outcome.Measured.String(),
		"command_id": commandID,
	})
	return true
}
