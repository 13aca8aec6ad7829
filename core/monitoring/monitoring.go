// Package monitoring reports device faults to an error tracker. Faults are
// read off the event bus so the tick loop never waits on the tracker.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/internal/eventbus"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// Config defines settings for the error tracker. An empty DSN disables it.
type Config struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

// NopMonitor discards every report.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// ErrDispenseFailed is captured for dispenses that ended in error status.
var ErrDispenseFailed = errors.New("dispense failed")

// Report is one capturable fault.
type Report struct {
	Err  error
	Tags map[string]string
}

// Fault converts an event into a report. ok is false for events that are
// not faults.
func Fault(ev events.Event) (Report, bool) {
	switch e := ev.(type) {
	case events.DispenseEvent:
		if e.Outcome.Status != model.StatusError {
			return Report{}, false
		}
		return Report{
			Err: fmt.Errorf("%w: color %s", ErrDispenseFailed, e.Outcome.Color),
			Tags: map[string]string{
				"color":      e.Outcome.Color,
				"command_id": strconv.FormatUint(e.Outcome.CommandID, 10),
				"source":     e.Source.String(),
			},
		}, true
	case events.PublishEvent:
		if e.OK || e.Err == nil {
			return Report{}, false
		}
		return Report{Err: e.Err, Tags: map[string]string{"report": e.Report}}, true
	case events.ConnectionEvent:
		// Failed connect attempts repeat every tick while the broker is down;
		// only losing an established connection is reported.
		if e.Err == nil || e.From != model.Connected || e.To != model.Disconnected {
			return Report{}, false
		}
		return Report{Err: e.Err, Tags: map[string]string{"from": e.From.String()}}, true
	}
	return Report{}, false
}

// StartReporter captures every fault published on bus until ctx is done or
// the bus is closed. thing is attached to every report.
func StartReporter(ctx context.Context, bus *eventbus.TypedBus[events.Event], mon Monitor, thing string) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || mon == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		defer mon.Recover()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				r, fault := Fault(ev)
				if !fault {
					continue
				}
				r.Tags["thing"] = thing
				r.Tags["kind"] = ev.Kind()
				mon.CaptureException(r.Err, r.Tags)
			}
		}
	}()
	return done
}
