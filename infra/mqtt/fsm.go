package mqtt

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/kilianp07/pillbox/core/model"
)

// Session state machine events.
const (
	eventDial = "dial"
	eventUp   = "up"
	eventDown = "down"
)

func newConnectionFSM(onEnter func(from, to model.ConnectionState, err error)) *fsm.FSM {
	disconnected := model.Disconnected.String()
	connecting := model.Connecting.String()
	connected := model.Connected.String()
	return fsm.NewFSM(
		disconnected,
		fsm.Events{
			{Name: eventDial, Src: []string{disconnected}, Dst: connecting},
			{Name: eventUp, Src: []string{connecting}, Dst: connected},
			{Name: eventDown, Src: []string{connecting, connected}, Dst: disconnected},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				var cause error
				if len(e.Args) > 0 {
					cause, _ = e.Args[0].(error)
				}
				onEnter(model.ParseConnectionState(e.Src), model.ParseConnectionState(e.Dst), cause)
			},
		},
	)
}

// isFSMRealError filters the non-errors looplab/fsm reports for no-op
// transitions.
func isFSMRealError(err error) bool {
	if err == nil {
		return false
	}
	var noTransition fsm.NoTransitionError
	var canceled fsm.CanceledError
	return !errors.As(err, &noTransition) && !errors.As(err, &canceled)
}
