package metrics

import (
	"context"

	"github.com/kilianp07/pillbox/core/events"
	coremetrics "github.com/kilianp07/pillbox/core/metrics"
	"github.com/kilianp07/pillbox/infra/logger"
	"github.com/kilianp07/pillbox/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events. It stops when the context is canceled or the bus is closed. The
// returned channel is closed once the collector exited.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := Record(sink, ev); err != nil {
					log.Warnf("metrics %s: %v", ev.Kind(), err)
				}
			}
		}
	}()
	return done
}

// Record maps one event onto the matching sink recorder. Events the sink
// has no recorder for are skipped.
func Record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.DispenseEvent:
		return sink.RecordDispense(coremetrics.DispenseRecord{
			Outcome:  e.Outcome,
			Source:   e.Source,
			Duration: e.Duration,
			Time:     e.Time,
		})
	case events.DuplicateEvent:
		if r, ok := sink.(coremetrics.DuplicateRecorder); ok {
			return r.RecordDuplicate(e.CommandID, e.Time)
		}
	case events.AlarmEvent:
		if r, ok := sink.(coremetrics.AlarmRecorder); ok {
			return r.RecordAlarm(coremetrics.AlarmRecord{Hour: e.Hour, Minute: e.Minute, Time: e.Time})
		}
	case events.PublishEvent:
		if r, ok := sink.(coremetrics.PublishRecorder); ok {
			return r.RecordPublish(coremetrics.PublishRecord{Report: e.Report, OK: e.OK, Time: e.Time})
		}
	case events.ConnectionEvent:
		if r, ok := sink.(coremetrics.ConnectionRecorder); ok {
			return r.RecordConnection(coremetrics.ConnectionRecord{From: e.From, To: e.To, Time: e.Time})
		}
	}
	return nil
}
