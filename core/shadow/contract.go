package shadow

import (
	"fmt"

	"github.com/kilianp07/pillbox/core/model"
)

// Handler consumes decoded inbound shadow traffic. The session calls it from
// the tick goroutine only.
type Handler interface {
	// HandleDelta receives schedule fields of a desired-state delta.
	HandleDelta(delta model.DesiredDelta)
	// HandleDesiredColor receives a desired-state dispense_now request.
	HandleDesiredColor(color string)
	// HandleCommand receives a validated dispense command.
	HandleCommand(cmd model.Command)
}

// Reporter publishes outbound reports to the update topic. Failures are
// returned for logging; callers do not retry.
type Reporter interface {
	PublishReportedConfig(cfg model.ScheduleConfig) error
	PublishDispenseReport(outcome model.DispenseOutcome) error
	ClearDesired() error
}

// Deliver decodes one inbound message and hands it to h. Schedule fields of
// a delta go to HandleDelta. The delta's color reaches HandleDesiredColor
// only when dispense_now is true. Commands reach HandleCommand only when
// CheckCommand accepts them.
func (t Topics) Deliver(topic string, payload []byte, h Handler) error {
	switch t.Route(topic) {
	case RouteDelta:
		d, err := DecodeDelta(payload)
		if err != nil {
			return err
		}
		if d.HasSchedule() {
			h.HandleDelta(d)
		}
		if color, ok := d.DispenseRequest(); ok {
			h.HandleDesiredColor(color)
		}
		return nil
	case RouteCommand:
		cmd, err := DecodeCommand(payload)
		if err != nil {
			return err
		}
		if err := CheckCommand(cmd); err != nil {
			return fmt.Errorf("command id=%d: %w", cmd.CommandID, err)
		}
		h.HandleCommand(cmd)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnroutable, topic)
}
