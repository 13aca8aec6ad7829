// Package journal persists the outcome of every dispense so the history can
// be inspected after the fact.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/model"
)

// Record is one journaled dispense.
type Record struct {
	ThingName string `json:"thing_name"`
	// EventTimestamp is the UTC instant in epoch milliseconds.
	EventTimestamp int64     `json:"event_timestamp"`
	Time           time.Time `json:"time"`
	Color          string    `json:"color"`
	Angle          int       `json:"angle"`
	Status         string    `json:"status"`
	Measured       model.RGB `json:"measured"`
	CommandID      uint64    `json:"command_id"`
	Source         string    `json:"source"`
	LocalTimestamp int64     `json:"local_timestamp"`
	DurationMS     int64     `json:"duration_ms"`
}

// FromEvent builds a Record from a dispense event.
func FromEvent(thing string, e events.DispenseEvent) Record {
	t := e.Time.UTC()
	return Record{
		ThingName:      thing,
		EventTimestamp: t.UnixMilli(),
		Time:           t,
		Color:          e.Outcome.Color,
		Angle:          e.Outcome.Angle,
		Status:         e.Outcome.Status.String(),
		Measured:       e.Outcome.Measured,
		CommandID:      e.Outcome.CommandID,
		Source:         e.Source.String(),
		LocalTimestamp: e.Outcome.LocalTimestamp,
		DurationMS:     e.Duration.Milliseconds(),
	}
}

// Query filters journaled records. Zero fields do not filter.
type Query struct {
	Start time.Time
	End   time.Time
	Color string
	// Limit keeps only the most recent records when positive.
	Limit int
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Time.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Time.After(q.End) {
		return false
	}
	return q.Color == "" || q.Color == r.Color
}

func (q Query) limit(res []Record) []Record {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}

// Store persists records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Close() error
}

// Querier is implemented by stores able to read their history back.
type Querier interface {
	Query(ctx context.Context, q Query) ([]Record, error)
}

// ErrNotQueryable is returned when the configured store cannot be read back.
var ErrNotQueryable = errors.New("journal: store does not support queries")

// Run queries s when it implements Querier.
func Run(ctx context.Context, s Store, q Query) ([]Record, error) {
	qr, ok := s.(Querier)
	if !ok {
		return nil, ErrNotQueryable
	}
	return qr.Query(ctx, q)
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error { return nil }
func (NopStore) Close() error                         { return nil }
