package metrics

import (
	"errors"
	"time"
)

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispense forwards the record to all sinks and joins their errors.
func (m *MultiSink) RecordDispense(rec DispenseRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordDispense(rec))
	}
	return errors.Join(errs...)
}

// RecordDuplicate forwards to sinks implementing DuplicateRecorder.
func (m *MultiSink) RecordDuplicate(id uint64, t time.Time) error {
	return each(m.Sinks, func(r DuplicateRecorder) error { return r.RecordDuplicate(id, t) })
}

// RecordAlarm forwards to sinks implementing AlarmRecorder.
func (m *MultiSink) RecordAlarm(rec AlarmRecord) error {
	return each(m.Sinks, func(r AlarmRecorder) error { return r.RecordAlarm(rec) })
}

// RecordPublish forwards to sinks implementing PublishRecorder.
func (m *MultiSink) RecordPublish(rec PublishRecord) error {
	return each(m.Sinks, func(r PublishRecorder) error { return r.RecordPublish(rec) })
}

// RecordConnection forwards to sinks implementing ConnectionRecorder.
func (m *MultiSink) RecordConnection(rec ConnectionRecord) error {
	return each(m.Sinks, func(r ConnectionRecorder) error { return r.RecordConnection(rec) })
}

func each[R any](sinks []MetricsSink, fn func(R) error) error {
	var errs []error
	for _, s := range sinks {
		if r, ok := s.(R); ok {
			errs = append(errs, fn(r))
		}
	}
	return errors.Join(errs...)
}
