package schedule

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

// Evaluator owns the accepted ScheduleConfig. Like the dispatcher it is
// driven only from the tick loop.
type Evaluator struct {
	cfg      Config
	state    model.ScheduleConfig
	buzzer   hal.Indicator
	reporter shadow.Reporter
	clock    clock.Clock
	resolver clock.Resolver
	log      logger.Logger
	bus      events.Publisher
}

// NewEvaluator creates an Evaluator with an unset schedule. bus may be nil.
func NewEvaluator(cfg Config, buzzer hal.Indicator, rep shadow.Reporter, clk clock.Clock,
	res clock.Resolver, log logger.Logger, bus events.Publisher) (*Evaluator, error) {
	if buzzer == nil || rep == nil || clk == nil || log == nil {
		return nil, errors.New("schedule: nil parameter provided to NewEvaluator")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{
		cfg:      cfg,
		state:    model.NewScheduleConfig(cfg.BuzzerEnabled),
		buzzer:   buzzer,
		reporter: rep,
		clock:    clk,
		resolver: res,
		log:      log,
		bus:      events.OrNop(bus),
	}, nil
}

// Config returns a copy of the current schedule.
func (e *Evaluator) Config() model.ScheduleConfig { return e.state }

// ApplyDelta merges the present schedule fields of d and acknowledges the
// resulting configuration. Out of range fields are dropped.
func (e *Evaluator) ApplyDelta(d model.DesiredDelta) {
	if !d.HasSchedule() {
		return
	}
	next := e.state
	if d.Hour != nil {
		if validHour(*d.Hour) {
			next.Hour = *d.Hour
		} else {
			e.log.Warnf("ignoring pill_hour=%d", *d.Hour)
		}
	}
	if d.Minute != nil {
		if validMinute(*d.Minute) {
			next.Minute = *d.Minute
		} else {
			e.log.Warnf("ignoring pill_minute=%d", *d.Minute)
		}
	}
	if d.BuzzerEnabled != nil {
		next.BuzzerEnabled = *d.BuzzerEnabled
	}
	if next.Hour != e.state.Hour || next.Minute != e.state.Minute {
		next.AlarmArmed = false
	}
	e.state = next
	e.log.Infof("schedule set hour=%d minute=%d buzzer=%t", next.Hour, next.Minute, next.BuzzerEnabled)
	e.bus.Publish(events.ScheduleEvent{Config: next, Time: time.Now()})
	if err := e.reporter.PublishReportedConfig(next); err != nil {
		e.log.Warnf("schedule ack not published: %v", err)
	}
}

// HandleScheduleUpdate overwrites hour and minute together.
func (e *Evaluator) HandleScheduleUpdate(hour, minute int) {
	e.ApplyDelta(model.DesiredDelta{Hour: &hour, Minute: &minute})
}

// Tick evaluates the alarm for the current local minute. Nothing happens
// while the clock is unsynchronized.
func (e *Evaluator) Tick() {
	now, ok := e.clock.Now()
	if !ok {
		return
	}
	hour, minute := e.resolver.HourMinute(now)
	if !e.state.IsSet() {
		return
	}
	if minute != e.state.Minute {
		e.state.AlarmArmed = false
		return
	}
	if !e.state.BuzzerEnabled || hour != e.state.Hour || e.state.AlarmArmed {
		return
	}
	e.buzzer.SoundFor(e.cfg.alarm())
	e.state.AlarmArmed = true
	e.log.Infof("alarm fired at %02d:%02d", hour, minute)
	e.bus.Publish(events.AlarmEvent{Hour: hour, Minute: minute, Time: now})
}

func validHour(h int) bool   { return h >= model.Unset && h <= 23 }
func validMinute(m int) bool { return m >= model.Unset && m <= 59 }
