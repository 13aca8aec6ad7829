package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/looplab/fsm"

	"github.com/kilianp07/pillbox/core/clock"
	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/hal"
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/core/shadow"
	"github.com/kilianp07/pillbox/infra/logger"
)

// Report names carried by publish events.
const (
	ReportConfig   = "reported_config"
	ReportDispense = "dispense_report"
	ReportClear    = "clear_desired"
)

type inbound struct {
	topic   string
	payload []byte
}

// Session is the shadow transport. Paho callbacks only enqueue messages;
// connection management and dispatch happen in Poll on the caller's
// goroutine.
type Session struct {
	cfg      Config
	topics   shadow.Topics
	cli      pahoClient
	fsm      *fsm.FSM
	queue    chan inbound
	dropped  atomic.Uint64
	network  hal.NetworkMonitor
	clock    clock.Clock
	resolver clock.Resolver
	log      logger.Logger
	bus      events.Publisher
}

var _ shadow.Reporter = (*Session)(nil)

// NewSession builds a disconnected session. Nothing is dialed until the
// first Poll. bus may be nil.
func NewSession(cfg Config, topics shadow.Topics, network hal.NetworkMonitor, clk clock.Clock,
	res clock.Resolver, log logger.Logger, bus events.Publisher) (*Session, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if network == nil {
		network = hal.AlwaysOnline{}
	}
	if clk == nil {
		return nil, errors.New("mqtt: nil clock")
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	s := &Session{
		cfg:      cfg,
		topics:   topics,
		queue:    make(chan inbound, cfg.QueueSize),
		network:  network,
		clock:    clk,
		resolver: res,
		log:      logger.OrNop(log),
		bus:      events.OrNop(bus),
	}
	s.fsm = newConnectionFSM(s.onTransition)
	opts.SetDefaultPublishHandler(s.enqueue)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		s.log.Warnf("connection lost: %v", err)
	})
	s.cli = newMQTTClient(opts)
	return s, nil
}

// State returns the current connection state.
func (s *Session) State() model.ConnectionState {
	return model.ParseConnectionState(s.fsm.Current())
}

// Dropped returns the number of inbound messages dropped on a full queue.
func (s *Session) Dropped() uint64 { return s.dropped.Load() }

// Topics returns the topics the session uses.
func (s *Session) Topics() shadow.Topics { return s.topics }

// Poll checks liveness, connects when needed and dispatches every queued
// inbound message to h.
func (s *Session) Poll(ctx context.Context, h shadow.Handler) {
	if s.State() == model.Connected && !s.cli.IsConnectionOpen() {
		s.transition(ctx, eventDown, ErrConnectionLost)
	}
	if s.State() == model.Disconnected && s.network.Online() {
		if err := s.connect(ctx); err != nil {
			s.log.Warnf("connect to %s failed: %v", s.cfg.Broker, err)
		}
	}
	for {
		select {
		case m := <-s.queue:
			s.dispatch(m, h)
		default:
			return
		}
	}
}

func (s *Session) connect(ctx context.Context) error {
	s.transition(ctx, eventDial, nil)
	tok := s.cli.Connect()
	if !tok.WaitTimeout(s.cfg.connectTimeout()) {
		s.cli.Disconnect(0)
		s.transition(ctx, eventDown, ErrConnectTimeout)
		return ErrConnectTimeout
	}
	if err := tok.Error(); err != nil {
		s.transition(ctx, eventDown, err)
		return err
	}
	filters := map[string]byte{
		s.topics.Delta:   s.cfg.qos(QoSDelta),
		s.topics.Command: s.cfg.qos(QoSCommand),
	}
	sub := s.cli.SubscribeMultiple(filters, s.enqueue)
	if !sub.WaitTimeout(s.cfg.connectTimeout()) || sub.Error() != nil {
		err := sub.Error()
		if err == nil {
			err = ErrConnectTimeout
		}
		s.cli.Disconnect(0)
		s.transition(ctx, eventDown, err)
		return fmt.Errorf("subscribe: %w", err)
	}
	s.transition(ctx, eventUp, nil)
	s.log.Infof("connected to %s, subscribed to %s and %s", s.cfg.Broker, s.topics.Delta, s.topics.Command)
	return nil
}

func (s *Session) transition(ctx context.Context, event string, cause error) {
	var err error
	if cause != nil {
		err = s.fsm.Event(ctx, event, cause)
	} else {
		err = s.fsm.Event(ctx, event)
	}
	if isFSMRealError(err) {
		s.log.Errorf("session transition %s: %v", event, err)
	}
}

func (s *Session) onTransition(from, to model.ConnectionState, cause error) {
	s.log.Debugf("session %s -> %s", from, to)
	s.bus.Publish(events.ConnectionEvent{From: from, To: to, Err: cause, Time: time.Now()})
}

// enqueue runs on a paho goroutine.
func (s *Session) enqueue(_ paho.Client, msg paho.Message) {
	payload := append([]byte(nil), msg.Payload()...)
	select {
	case s.queue <- inbound{topic: msg.Topic(), payload: payload}:
	default:
		s.dropped.Add(1)
		s.log.Warnf("inbound queue full, dropping message on %s", msg.Topic())
	}
}

func (s *Session) dispatch(m inbound, h shadow.Handler) {
	err := s.topics.Deliver(m.topic, m.payload, h)
	switch {
	case err == nil:
	case errors.Is(err, shadow.ErrUnroutable):
		s.log.Debugf("ignoring message on %s", m.topic)
	default:
		s.log.Warnf("dropping message on %s: %v", m.topic, err)
	}
}

// PublishReportedConfig acknowledges an accepted schedule.
func (s *Session) PublishReportedConfig(cfg model.ScheduleConfig) error {
	payload, err := shadow.EncodeReportedConfig(cfg, s.localEpoch())
	return s.report(ReportConfig, payload, err)
}

// PublishDispenseReport reports a completed dispense.
func (s *Session) PublishDispenseReport(o model.DispenseOutcome) error {
	payload, err := shadow.EncodeDispenseReport(o)
	return s.report(ReportDispense, payload, err)
}

// ClearDesired nulls the consumed desired keys.
func (s *Session) ClearDesired() error {
	payload, err := shadow.EncodeClearDesired()
	return s.report(ReportClear, payload, err)
}

func (s *Session) report(name string, payload []byte, err error) error {
	if err == nil {
		err = s.publish(s.topics.Update, s.cfg.qos(QoSUpdate), payload)
	}
	ok := err == nil
	if ok {
		s.log.Infof("publish %s ok=%t", name, ok)
	} else {
		s.log.Warnf("publish %s ok=%t: %v", name, ok, err)
	}
	s.bus.Publish(events.PublishEvent{Report: name, OK: ok, Err: err, Time: time.Now()})
	if err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}

func (s *Session) publish(topic string, qos byte, payload []byte) error {
	if s.State() != model.Connected {
		return ErrNotConnected
	}
	tok := s.cli.Publish(topic, qos, false, payload)
	if !tok.WaitTimeout(s.cfg.publishTimeout()) {
		return ErrPublishTimeout
	}
	return tok.Error()
}

func (s *Session) localEpoch() int64 {
	t, ok := s.clock.Now()
	if !ok {
		return 0
	}
	return s.resolver.Epoch(t)
}

// Disconnect closes the connection, letting in-flight work finish for
// quiesce.
func (s *Session) Disconnect(quiesce time.Duration) {
	if s.cli.IsConnected() {
		s.cli.Disconnect(uint(quiesce / time.Millisecond))
	}
	if s.State() != model.Disconnected {
		s.transition(context.Background(), eventDown, nil)
	}
}
