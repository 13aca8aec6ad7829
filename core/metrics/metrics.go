package metrics

import (
	"time"

	"github.com/kilianp07/pillbox/core/model"
)

// DispenseRecord describes one finished dispense workflow.
type DispenseRecord struct {
	Outcome  model.DispenseOutcome
	Source   model.CommandSource
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records dispense activity for observability purposes.
type MetricsSink interface {
	RecordDispense(rec DispenseRecord) error
}

// DuplicateRecorder records discarded duplicate commands.
type DuplicateRecorder interface {
	RecordDuplicate(commandID uint64, t time.Time) error
}

// AlarmRecord describes a fired alarm.
type AlarmRecord struct {
	Hour   int
	Minute int
	Time   time.Time
}

// AlarmRecorder records fired alarms.
type AlarmRecorder interface {
	RecordAlarm(rec AlarmRecord) error
}

// PublishRecord is the result of one shadow publish.
type PublishRecord struct {
	Report string
	OK     bool
	Time   time.Time
}

// PublishRecorder records shadow publish results.
type PublishRecorder interface {
	RecordPublish(rec PublishRecord) error
}

// ConnectionRecord is a session state transition.
type ConnectionRecord struct {
	From model.ConnectionState
	To   model.ConnectionState
	Time time.Time
}

// ConnectionRecorder records session state transitions.
type ConnectionRecorder interface {
	RecordConnection(rec ConnectionRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispense(DispenseRecord) error     { return nil }
func (NopSink) RecordDuplicate(uint64, time.Time) error { return nil }
func (NopSink) RecordAlarm(AlarmRecord) error           { return nil }
func (NopSink) RecordPublish(PublishRecord) error       { return nil }
func (NopSink) RecordConnection(ConnectionRecord) error { return nil }
