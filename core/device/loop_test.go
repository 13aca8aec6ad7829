package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/core/shadow"
	"github.com/kilianp07/pillbox/infra/logger"
)

type trace struct{ calls []string }

type fakeIndicator struct{ t *trace }

func (f fakeIndicator) SoundFor(time.Duration) {}
func (f fakeIndicator) Poll()                  { f.t.calls = append(f.t.calls, "indicator") }

type fakeSession struct {
	t      *trace
	inject func(h shadow.Handler)
}

func (f fakeSession) Poll(_ context.Context, h shadow.Handler) {
	f.t.calls = append(f.t.calls, "session")
	if f.inject != nil {
		f.inject(h)
	}
}

type fakeDispenser struct{ t *trace }

func (f fakeDispenser) HandleCommand(cmd model.Command) {
	f.t.calls = append(f.t.calls, "command:"+cmd.Color)
}
func (f fakeDispenser) HandleDesiredColor(color string) {
	f.t.calls = append(f.t.calls, "color:"+color)
}

type fakeScheduler struct{ t *trace }

func (f fakeScheduler) ApplyDelta(model.DesiredDelta) { f.t.calls = append(f.t.calls, "delta") }
func (f fakeScheduler) Tick()                         { f.t.calls = append(f.t.calls, "schedule") }

func TestTickOrder(t *testing.T) {
	tr := &trace{}
	sess := fakeSession{t: tr, inject: func(h shadow.Handler) {
		h.HandleDelta(model.DesiredDelta{})
		h.HandleCommand(model.Command{Action: "dispense", Color: "RED"})
		h.HandleDesiredColor("BLUE")
	}}
	l, err := NewLoop(fakeIndicator{tr}, sess, fakeDispenser{tr}, fakeScheduler{tr}, logger.NopLogger{})
	require.NoError(t, err)

	l.Tick(context.Background())
	assert.Equal(t, []string{"indicator", "session", "delta", "command:RED", "color:BLUE", "schedule"}, tr.calls)
}

func TestRunStopsOnCancel(t *testing.T) {
	tr := &trace{}
	l, err := NewLoop(fakeIndicator{tr}, fakeSession{t: tr}, fakeDispenser{tr}, fakeScheduler{tr}, logger.NopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx, time.Hour), context.Canceled)
	assert.Equal(t, []string{"indicator", "session", "schedule"}, tr.calls)
}

func TestNewLoopRejectsNil(t *testing.T) {
	_, err := NewLoop(nil, nil, nil, nil, nil)
	assert.Error(t, err)
}
