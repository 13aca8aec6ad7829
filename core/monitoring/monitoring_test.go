package monitoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/internal/eventbus"
)

type captured struct {
	err  error
	tags map[string]string
}

type recordingMonitor struct {
	NopMonitor
	mu   sync.Mutex
	caps []captured
}

func (m *recordingMonitor) CaptureException(err error, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caps = append(m.caps, captured{err, tags})
}

func (m *recordingMonitor) captures() []captured {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]captured(nil), m.caps...)
}

func TestFault(t *testing.T) {
	lost := errors.New("eof")
	cases := []struct {
		name  string
		ev    events.Event
		fault bool
	}{
		{"dispense ok", events.DispenseEvent{Outcome: model.DispenseOutcome{Status: model.StatusOK}}, false},
		{"dispense error", events.DispenseEvent{Outcome: model.DispenseOutcome{Status: model.StatusError, Color: "RED"}}, true},
		{"publish ok", events.PublishEvent{Report: "clear_desired", OK: true}, false},
		{"publish failed", events.PublishEvent{Report: "clear_desired", Err: lost}, true},
		{"connected", events.ConnectionEvent{From: model.Connecting, To: model.Connected}, false},
		{"lost", events.ConnectionEvent{From: model.Connected, To: model.Disconnected, Err: lost}, true},
		{"refused", events.ConnectionEvent{From: model.Connecting, To: model.Disconnected, Err: errors.New("connection refused")}, false},
		{"closed", events.ConnectionEvent{From: model.Connected, To: model.Disconnected}, false},
		{"alarm", events.AlarmEvent{Hour: 8}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, ok := Fault(c.ev)
			assert.Equal(t, c.fault, ok)
			if c.fault {
				assert.Error(t, r.Err)
				assert.NotNil(t, r.Tags)
			}
		})
	}
	r, _ := Fault(events.DispenseEvent{Outcome: model.DispenseOutcome{Status: model.StatusError, Color: "RED", CommandID: 9}})
	assert.ErrorIs(t, r.Err, ErrDispenseFailed)
	assert.Equal(t, "9", r.Tags["command_id"])
	assert.Equal(t, "RED", r.Tags["color"])
}

func TestStartReporter(t *testing.T) {
	bus := eventbus.NewTyped[events.Event]()
	mon := &recordingMonitor{}
	done := StartReporter(context.Background(), bus, mon, "box")

	bus.Publish(events.AlarmEvent{Hour: 8, Time: time.Now()})
	bus.Publish(events.PublishEvent{Report: "dispense_report", Err: errors.New("timeout")})
	bus.Close()
	<-done

	caps := mon.captures()
	require.Len(t, caps, 1)
	assert.EqualError(t, caps[0].err, "timeout")
	assert.Equal(t, map[string]string{"report": "dispense_report", "thing": "box", "kind": "publish"}, caps[0].tags)
}

func TestStartReporterNil(t *testing.T) {
	<-StartReporter(context.Background(), nil, NopMonitor{}, "box")
	<-StartReporter(context.Background(), eventbus.NewTyped[events.Event](), nil, "box")
}
