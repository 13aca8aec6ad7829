package scenarios

import (
	"context"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/pillbox/core/clock"
	"github.com/kilianp07/pillbox/core/device"
	"github.com/kilianp07/pillbox/core/dispense"
	"github.com/kilianp07/pillbox/core/events"
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/core/schedule"
	"github.com/kilianp07/pillbox/core/shadow"
	"github.com/kilianp07/pillbox/infra/logger"
	"github.com/kilianp07/pillbox/infra/metrics"
	"github.com/kilianp07/pillbox/internal/eventbus"
)

type inbound struct {
	topic   string
	payload []byte
}

// harness is the fake transport and hardware around the engine.
type harness struct {
	topics    shadow.Topics
	pending   []inbound
	now       time.Time
	synced    bool
	reports   map[string]int
	dispensed []string
}

func (h *harness) Poll(_ context.Context, hd shadow.Handler) {
	in := h.pending
	h.pending = nil
	for _, m := range in {
		_ = h.topics.Deliver(m.topic, m.payload, hd)
	}
}

func (h *harness) PublishReportedConfig(model.ScheduleConfig) error {
	h.reports["reported_config"]++
	return nil
}

func (h *harness) PublishDispenseReport(o model.DispenseOutcome) error {
	h.reports["dispense_report"]++
	h.dispensed = append(h.dispensed, o.Color)
	return nil
}

func (h *harness) ClearDesired() error {
	h.reports["clear_desired"]++
	return nil
}

func (h *harness) Now() (time.Time, bool) { return h.now, h.synced }

type servo struct{}

func (servo) MoveTo(int) error { return nil }

type buzzer struct{}

func (buzzer) SoundFor(time.Duration) {}
func (buzzer) Poll()                  {}

type sensor struct{}

func (sensor) SampleNormalized() (model.RGB, error) { return model.RGB{R: 10, G: 20, B: 255}, nil }

// RunScenario wires the engine, replays sc and checks its expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	bus := eventbus.NewTypedWithBuffer[events.Event](256)
	done := metrics.StartEventCollector(context.Background(), bus, sink, logger.NopLogger{})

	h := &harness{topics: shadow.NewTopics("", "scenario-box", ""), reports: map[string]int{}}
	res := clock.Resolver{OffsetSeconds: -4 * 3600}
	disp, err := dispense.New(dispense.Config{}, servo{}, buzzer{}, sensor{}, h, h, res, logger.NopLogger{},
		dispense.WithEvents(bus), dispense.WithSleep(func(time.Duration) {}))
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	eval, err := schedule.NewEvaluator(schedule.Config{}, buzzer{}, h, h, res, logger.NopLogger{}, bus)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	loop, err := device.NewLoop(buzzer{}, h, disp, eval, logger.NopLogger{})
	if err != nil {
		t.Fatalf("loop: %v", err)
	}

	ctx := context.Background()
	for _, st := range sc.Steps {
		at, set, _ := st.instant()
		if set {
			h.now, h.synced = at, !at.IsZero()
		}
		if st.Delta != "" {
			h.pending = append(h.pending, inbound{h.topics.Delta, []byte(st.Delta)})
		}
		if st.Command != "" {
			h.pending = append(h.pending, inbound{h.topics.Command, []byte(st.Command)})
		}
		for i := 0; i < st.ticks(); i++ {
			loop.Tick(ctx)
		}
	}
	bus.Close()
	<-done

	exp := sc.Expected
	if !slices.Equal(h.dispensed, exp.Dispensed) {
		t.Errorf("dispensed %v, want %v", h.dispensed, exp.Dispensed)
	}
	if got := counterSum(t, reg, "pillbox_duplicate_commands_total"); got != float64(exp.Duplicates) {
		t.Errorf("duplicates %v, want %d", got, exp.Duplicates)
	}
	if got := counterSum(t, reg, "pillbox_alarms_total"); got != float64(exp.Alarms) {
		t.Errorf("alarms %v, want %d", got, exp.Alarms)
	}
	if got := counterSum(t, reg, "pillbox_dispense_total"); got != float64(len(exp.Dispensed)) {
		t.Errorf("dispense metric %v, want %d", got, len(exp.Dispensed))
	}
	want := exp.Reports
	if want == nil {
		want = map[string]int{}
	}
	if !reflect.DeepEqual(h.reports, want) {
		t.Errorf("reports %v, want %v", h.reports, want)
	}
	if exp.Schedule != nil {
		cfg := eval.Config()
		got := ScheduleDef{Hour: cfg.Hour, Minute: cfg.Minute, BuzzerEnabled: cfg.BuzzerEnabled}
		if got != *exp.Schedule {
			t.Errorf("schedule %+v, want %+v", got, *exp.Schedule)
		}
	}
}

// counterSum adds every series of the named counter family.
func counterSum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
