package events

import (
	"time"

	"github.com/kilianp07/pillbox/core/model"
)

// Event is any value published on the device bus.
type Event interface {
	// Kind returns a short stable name for the event type.
	Kind() string
}

// Publisher accepts events. Implementations must not block.
type Publisher interface {
	Publish(Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// OrNop returns p, or a NopPublisher when p is nil.
func OrNop(p Publisher) Publisher {
	if p == nil {
		return NopPublisher{}
	}
	return p
}

// DispenseEvent is published after a dispense workflow finished.
type DispenseEvent struct {
	Outcome  model.DispenseOutcome
	Source   model.CommandSource
	Duration time.Duration
	Time     time.Time
}

func (DispenseEvent) Kind() string { return "dispense" }

// DuplicateEvent is published when a command id was already handled.
type DuplicateEvent struct {
	CommandID uint64
	Time      time.Time
}

func (DuplicateEvent) Kind() string { return "duplicate" }

// AlarmEvent is published when the scheduled alarm fires.
type AlarmEvent struct {
	Hour   int
	Minute int
	Time   time.Time
}

func (AlarmEvent) Kind() string { return "alarm" }

// ScheduleEvent is published when a schedule update was accepted.
type ScheduleEvent struct {
	Config model.ScheduleConfig
	Time   time.Time
}

func (ScheduleEvent) Kind() string { return "schedule" }

// PublishEvent reports the result of one shadow publish.
type PublishEvent struct {
	// Report is "reported_config", "dispense_report" or "clear_desired".
	Report string
	OK     bool
	Err    error
	Time   time.Time
}

func (PublishEvent) Kind() string { return "publish" }

// ConnectionEvent is published on every session state transition.
type ConnectionEvent struct {
	From model.ConnectionState
	To   model.ConnectionState
	Err  error
	Time time.Time
}

func (ConnectionEvent) Kind() string { return "connection" }
