package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/pillbox/core/metrics"
)

// PromSink records device activity in Prometheus metrics.
type PromSink struct {
	dispenses   *prometheus.CounterVec
	duration    prometheus.Histogram
	duplicates  prometheus.Counter
	alarms      prometheus.Counter
	publishes   *prometheus.CounterVec
	connState   prometheus.Gauge
	transitions *prometheus.CounterVec
}

// NewPromSink registers device metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		dispenses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pillbox_dispense_total",
			Help: "Dispense workflows run, by color, status and command source",
		}, []string{"color", "status", "source"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pillbox_dispense_duration_seconds",
			Help:    "Wall time of one dispense workflow",
			Buckets: []float64{0.5, 1, 2, 3, 5, 8, 13},
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pillbox_duplicate_commands_total",
			Help: "Commands discarded because their id was already handled",
		}),
		alarms: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pillbox_alarms_total",
			Help: "Scheduled alarms fired",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pillbox_shadow_publish_total",
			Help: "Shadow publishes by report type and result",
		}, []string{"report", "ok"}),
		connState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pillbox_connection_state",
			Help: "Shadow session state (0 disconnected, 1 connecting, 2 connected)",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pillbox_connection_transitions_total",
			Help: "Shadow session transitions by target state",
		}, []string{"to"}),
	}
	var err error
	if s.dispenses, err = register(reg, s.dispenses); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.duplicates, err = register(reg, s.duplicates); err != nil {
		return nil, err
	}
	if s.alarms, err = register(reg, s.alarms); err != nil {
		return nil, err
	}
	if s.publishes, err = register(reg, s.publishes); err != nil {
		return nil, err
	}
	if s.connState, err = register(reg, s.connState); err != nil {
		return nil, err
	}
	if s.transitions, err = register(reg, s.transitions); err != nil {
		return nil, err
	}
	return s, nil
}

// register reuses an already registered collector of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDispense increments the dispense counter and observes its duration.
func (s *PromSink) RecordDispense(rec coremetrics.DispenseRecord) error {
	s.dispenses.WithLabelValues(rec.Outcome.Color, rec.Outcome.Status.String(), rec.Source.String()).Inc()
	s.duration.Observe(rec.Duration.Seconds())
	return nil
}

// RecordDuplicate counts a discarded command.
func (s *PromSink) RecordDuplicate(uint64, time.Time) error {
	s.duplicates.Inc()
	return nil
}

// RecordAlarm counts a fired alarm.
func (s *PromSink) RecordAlarm(coremetrics.AlarmRecord) error {
	s.alarms.Inc()
	return nil
}

// RecordPublish counts a shadow publish.
func (s *PromSink) RecordPublish(rec coremetrics.PublishRecord) error {
	s.publishes.WithLabelValues(rec.Report, strconv.FormatBool(rec.OK)).Inc()
	return nil
}

// RecordConnection tracks the current session state.
func (s *PromSink) RecordConnection(rec coremetrics.ConnectionRecord) error {
	s.connState.Set(float64(rec.To))
	s.transitions.WithLabelValues(rec.To.String()).Inc()
	return nil
}

var (
	_ coremetrics.MetricsSink        = (*PromSink)(nil)
	_ coremetrics.DuplicateRecorder  = (*PromSink)(nil)
	_ coremetrics.AlarmRecorder      = (*PromSink)(nil)
	_ coremetrics.PublishRecorder    = (*PromSink)(nil)
	_ coremetrics.ConnectionRecorder = (*PromSink)(nil)
)
