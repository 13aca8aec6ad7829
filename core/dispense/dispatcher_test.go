package dispense

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pillbox/core/clock"
	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/infra/logger"
)

// rig records every collaborator call in order.
type rig struct {
	calls    []string
	reports  []model.DispenseOutcome
	moveErr  error
	readErr  error
	rgb      model.RGB
	events   []events.Event
	sleeps   []time.Duration
	clockOK  bool
	clockNow time.Time
}

func (r *rig) MoveTo(angle int) error {
	r.calls = append(r.calls, fmt.Sprintf("move:%d", angle))
	if angle != 90 {
		return r.moveErr
	}
	return nil
}
func (r *rig) SoundFor(d time.Duration) { r.calls = append(r.calls, fmt.Sprintf("sound:%s", d)) }
func (r *rig) Poll()                    {}
func (r *rig) SampleNormalized() (model.RGB, error) {
	r.calls = append(r.calls, "sample")
	return r.rgb, r.readErr
}
func (r *rig) PublishReportedConfig(model.ScheduleConfig) error { return nil }
func (r *rig) PublishDispenseReport(o model.DispenseOutcome) error {
	r.calls = append(r.calls, "report")
	r.reports = append(r.reports, o)
	return nil
}
func (r *rig) ClearDesired() error {
	r.calls = append(r.calls, "clear")
	return nil
}
func (r *rig) Publish(e events.Event) { r.events = append(r.events, e) }

func newRig(t *testing.T) (*rig, *Dispatcher) {
	t.Helper()
	r := &rig{
		rgb:      model.RGB{R: 10, G: 20, B: 255},
		clockOK:  true,
		clockNow: time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC),
	}
	clk := clock.Func(func() (time.Time, bool) { return r.clockNow, r.clockOK })
	d, err := New(Config{}, r, r, r, r, clk, clock.Resolver{OffsetSeconds: -14400}, logger.NopLogger{},
		WithEvents(r),
		WithSleep(func(d time.Duration) {
			r.sleeps = append(r.sleeps, d)
			r.calls = append(r.calls, fmt.Sprintf("sleep:%s", d))
		}))
	require.NoError(t, err)
	return r, d
}

func TestColorToAngle(t *testing.T) {
	cases := map[string]int{
		"WHITE": 0, "CREAM": 30, "BROWN": 60, "RED": 90, "BLUE": 120, "GREEN": 150,
		"red": 90, "Blue": 120, " green ": 150, "PURPLE": 180, "": 180,
	}
	for color, want := range cases {
		assert.Equal(t, want, ColorToAngle(color), color)
	}
}

func TestDispenseScenarioBlue(t *testing.T) {
	r, d := newRig(t)
	d.HandleCommandPayload([]byte(`{"action":"dispense","color":"BLUE","command_id":5}`))

	assert.Equal(t, []string{"move:120", "sound:800ms", "sleep:250ms", "sample", "report", "clear", "move:90"}, r.calls)
	require.Len(t, r.reports, 1)
	rep := r.reports[0]
	assert.Equal(t, "BLUE", rep.Color)
	assert.Equal(t, 120, rep.Angle)
	assert.Equal(t, model.StatusOK, rep.Status)
	assert.Equal(t, uint64(5), rep.CommandID)
	assert.Equal(t, model.RGB{R: 10, G: 20, B: 255}, rep.Measured)
	assert.Equal(t, r.clockNow.Unix()-14400, rep.LocalTimestamp)
	assert.Equal(t, uint64(5), d.LastCommandID())

	require.Len(t, r.events, 1)
	ev, ok := r.events[0].(events.DispenseEvent)
	require.True(t, ok)
	assert.Equal(t, model.SourceTopic, ev.Source)
}

func TestDispenseIdempotent(t *testing.T) {
	r, d := newRig(t)
	assert.True(t, d.PerformDispense("RED", 42))
	assert.False(t, d.PerformDispense("RED", 42))
	assert.Len(t, r.reports, 1)
	require.Len(t, r.events, 2)
	dup, ok := r.events[1].(events.DuplicateEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(42), dup.CommandID)

	assert.True(t, d.PerformDispense("RED", 43))
	assert.True(t, d.PerformDispense("RED", 42))
	assert.Len(t, r.reports, 3)
}

func TestDispenseZeroIDNeverDeduplicated(t *testing.T) {
	r, d := newRig(t)
	d.PerformDispense("GREEN", 7)
	assert.True(t, d.PerformDispense("WHITE", 0))
	assert.True(t, d.PerformDispense("WHITE", 0))
	assert.Len(t, r.reports, 3)
	assert.Equal(t, uint64(7), d.LastCommandID())
}

func TestDispenseErrorStatusStillReportsAndHomes(t *testing.T) {
	r, d := newRig(t)
	r.moveErr = errors.New("stalled")
	d.PerformDispense("BROWN", 1)
	require.Len(t, r.reports, 1)
	assert.Equal(t, model.StatusError, r.reports[0].Status)
	assert.Equal(t, "move:90", r.calls[len(r.calls)-1])

	r.moveErr = nil
	r.readErr = errors.New("no pulse")
	d.PerformDispense("BROWN", 2)
	require.Len(t, r.reports, 2)
	assert.Equal(t, model.StatusError, r.reports[1].Status)
	assert.Equal(t, model.RGB{}, r.reports[1].Measured)
}

func TestDispenseClockUnavailable(t *testing.T) {
	r, d := newRig(t)
	r.clockOK = false
	d.PerformDispense("RED", 0)
	require.Len(t, r.reports, 1)
	assert.Zero(t, r.reports[0].LocalTimestamp)
}

func TestHandleCommandRejectsInvalid(t *testing.T) {
	r, d := newRig(t)
	d.HandleCommandPayload([]byte(`{"action":"dispense"}`))
	d.HandleCommandPayload([]byte(`{"action":"reboot","color":"RED","command_id":3}`))
	d.HandleCommandPayload([]byte(`garbage`))
	assert.Empty(t, r.calls)
	assert.Zero(t, d.LastCommandID())
}

func TestHandleDesiredColor(t *testing.T) {
	r, d := newRig(t)
	d.HandleDesiredColor("CREAM")
	d.HandleDesiredColor("")
	require.Len(t, r.reports, 1)
	assert.Equal(t, 30, r.reports[0].Angle)
	assert.Zero(t, r.reports[0].CommandID)
	ev := r.events[0].(events.DispenseEvent)
	assert.Equal(t, model.SourceShadowDeltaCompat, ev.Source)
}

func TestNewValidates(t *testing.T) {
	r := &rig{}
	clk := clock.Func(func() (time.Time, bool) { return time.Time{}, false })
	_, err := New(Config{}, nil, r, r, r, clk, clock.Resolver{}, logger.NopLogger{})
	assert.Error(t, err)
	_, err = New(Config{HomeAngle: 200}, r, r, r, r, clk, clock.Resolver{}, logger.NopLogger{})
	assert.Error(t, err)
	_, err = New(Config{BeepMS: -1}, r, r, r, r, clk, clock.Resolver{}, logger.NopLogger{})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, Config{BeepMS: 800, SettleMS: 250, HomeAngle: 90}, c)
	assert.NoError(t, c.Validate())
}
