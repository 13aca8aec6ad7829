package journal

import (
	"context"

	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/logger"
	"github.com/kilianp07/pillbox/internal/eventbus"
)

// StartRecorder appends every dispense event published on bus to store until
// ctx is canceled or the bus is closed. The returned channel is closed once
// the recorder exited.
func StartRecorder(ctx context.Context, bus *eventbus.TypedBus[events.Event], store Store, thing string, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil || log == nil {
		close(done)
		return done
	}
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
				de, isDispense := ev.(events.DispenseEvent)
				if !isDispense {
					continue
				}
				if err := store.Append(ctx, FromEvent(thing, de)); err != nil {
					log.Errorf("journal append failed: %v", err)
				}
			}
		}
	}()
	return done
}
