package device

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/pillbox/core/hal"
	"github.com/kilianp07/pillbox/core/logger"
	"github.com/kilianp07/pillbox/core/shadow"
)

// DefaultTickInterval is the loop period used when none is configured.
const DefaultTickInterval = 10 * time.Millisecond

// Session is the transport polled once per tick.
type Session interface {
	Poll(ctx context.Context, h shadow.Handler)
}

// Loop runs indicator auto-off, session poll and schedule evaluation in that
// order on a single goroutine.
type Loop struct {
	indicator  hal.Indicator
	session    Session
	controller *Controller
	scheduler  Scheduler
	log        logger.Logger
}

// NewLoop creates a Loop.
func NewLoop(ind hal.Indicator, sess Session, d Dispenser, s Scheduler, log logger.Logger) (*Loop, error) {
	if ind == nil || sess == nil || d == nil || s == nil || log == nil {
		return nil, errors.New("device: nil parameter provided to NewLoop")
	}
	return &Loop{
		indicator:  ind,
		session:    sess,
		controller: NewController(d, s),
		scheduler:  s,
		log:        log,
	}, nil
}

// Tick runs one iteration.
func (l *Loop) Tick(ctx context.Context) {
	l.indicator.Poll()
	l.session.Poll(ctx, l.controller)
	l.scheduler.Tick()
}

// Run ticks every interval until ctx is canceled.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	l.log.Infof("tick loop started interval=%s", interval)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		l.Tick(ctx)
		select {
		case <-ctx.Done():
			l.log.Infof("tick loop stopped")
			return ctx.Err()
		case <-t.C:
		}
	}
}
