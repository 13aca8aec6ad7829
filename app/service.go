// Package app wires the device engine from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/pillbox/app/plugins"
	"github.com/kilianp07/pillbox/config"
	"github.com/kilianp07/pillbox/core/clock"
	"github.com/kilianp07/pillbox/core/device"
	"github.com/kilianp07/pillbox/core/dispense"
	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/journal"
	coremetrics "github.com/kilianp07/pillbox/core/metrics"
	coremon "github.com/kilianp07/pillbox/core/monitoring"
	"github.com/kilianp07/pillbox/core/schedule"
	"github.com/kilianp07/pillbox/infra/hal"
	"github.com/kilianp07/pillbox/infra/logger"
	"github.com/kilianp07/pillbox/infra/metrics"
	"github.com/kilianp07/pillbox/infra/monitoring"
	"github.com/kilianp07/pillbox/infra/mqtt"
	"github.com/kilianp07/pillbox/internal/eventbus"
)

// DisconnectQuiesce is the time given to in-flight publishes on shutdown.
const DisconnectQuiesce = 250 * time.Millisecond

// Service owns the tick loop and its observers.
type Service struct {
	cfg        *config.Config
	log        logger.Logger
	bus        *eventbus.TypedBus[events.Event]
	sink       coremetrics.MetricsSink
	monitor    coremon.Monitor
	store      journal.Store
	hardware   *hal.Simulated
	session    *mqtt.Session
	dispatcher *dispense.Dispatcher
	evaluator  *schedule.Evaluator
	loop       *device.Loop
}

// Constructors replaced in tests.
var (
	newMetricsSink = coremetrics.NewMetricsSink
	newMonitor     = monitoring.NewSentryMonitor
)

// New creates a Service from the configuration. Nothing is dialed until Run.
// Whatever was built before a failing step is released again.
func New(cfg *config.Config) (_ *Service, err error) {
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	var undo []func()
	defer func() {
		if err == nil {
			return
		}
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}()

	sink, err := newMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	undo = append(undo, func() { closeSink(sink) })
	monitor, err := newMonitor(cfg.Monitoring)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	undo = append(undo, func() { monitor.Flush(2 * time.Second) })
	store, err := plugins.NewJournalStore(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	undo = append(undo, func() { _ = store.Close() })
	hw, err := hal.NewSimulated(cfg.Hardware, logger.New("hal"))
	if err != nil {
		return nil, fmt.Errorf("hardware: %w", err)
	}

	bus := eventbus.NewTyped[events.Event]()
	clk := clock.NewSystem()
	res := cfg.Device.Resolver()

	session, err := mqtt.NewSession(cfg.MQTT, cfg.Device.Topics(), hw.Network, clk, res, logger.New("mqtt"), bus)
	if err != nil {
		return nil, fmt.Errorf("mqtt session: %w", err)
	}
	dispatcher, err := dispense.New(cfg.Dispense, hw.Servo, hw.Buzzer, hw.Sensor, session, clk, res,
		logger.New("dispense"), dispense.WithEvents(bus))
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}
	evaluator, err := schedule.NewEvaluator(cfg.Schedule, hw.Buzzer, session, clk, res, logger.New("schedule"), bus)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	loop, err := device.NewLoop(hw.Buzzer, session, dispatcher, evaluator, logger.New("loop"))
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}

	return &Service{
		cfg:        cfg,
		log:        logg,
		bus:        bus,
		sink:       sink,
		monitor:    monitor,
		store:      store,
		hardware:   hw,
		session:    session,
		dispatcher: dispatcher,
		evaluator:  evaluator,
		loop:       loop,
	}, nil
}

// Run starts the observers and blocks in the tick loop until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	defer s.monitor.Recover()
	obsCtx, stopObservers := context.WithCancel(context.Background())
	defer stopObservers()
	collected := metrics.StartEventCollector(obsCtx, s.bus, s.sink, logger.New("metrics"))
	recorded := journal.StartRecorder(obsCtx, s.bus, s.store, s.cfg.Device.ThingName, logger.New("journal"))
	reported := coremon.StartReporter(obsCtx, s.bus, s.monitor, s.cfg.Device.ThingName)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, logger.New("prometheus")); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	s.log.Infow("device started", map[string]any{
		"thing":  s.cfg.Device.ThingName,
		"broker": s.cfg.MQTT.Broker,
	})
	err := s.loop.Run(ctx, s.cfg.Device.TickInterval())

	// Closing the bus lets the observers drain buffered events and exit.
	s.bus.Close()
	<-collected
	<-recorded
	<-reported
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Close disconnects the session and releases the journal and sinks.
func (s *Service) Close() error {
	s.session.Disconnect(DisconnectQuiesce)
	s.bus.Close()
	closeSink(s.sink)
	s.monitor.Flush(2 * time.Second)
	return s.store.Close()
}

func closeSink(sink coremetrics.MetricsSink) {
	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
}
