package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/pillbox/core/metrics"
	"github.com/kilianp07/pillbox/infra/logger"
)

// InfluxSink writes device events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	device   string
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
// Every point is tagged with device.
func NewInfluxSink(url, token, org, bucket, device string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		device:   device,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket, device string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket, device)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDispense writes a dispense_event point.
func (s *InfluxSink) RecordDispense(rec coremetrics.DispenseRecord) error {
	o := rec.Outcome
	p := write.NewPointWithMeasurement("dispense_event").
		AddTag("device", s.device).
		AddTag("color", o.Color).
		AddTag("status", o.Status.String()).
		AddTag("source", rec.Source.String()).
		AddField("angle", o.Angle).
		AddField("r", o.Measured.R).
		AddField("g", o.Measured.G).
		AddField("b", o.Measured.B).
		AddField("command_id", strconv.FormatUint(o.CommandID, 10)).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordDuplicate writes a duplicate_command point.
func (s *InfluxSink) RecordDuplicate(id uint64, t time.Time) error {
	p := write.NewPointWithMeasurement("duplicate_command").
		AddTag("device", s.device).
		AddField("command_id", strconv.FormatUint(id, 10)).
		SetTime(t)
	return s.write(p)
}

// RecordAlarm writes an alarm_fired point.
func (s *InfluxSink) RecordAlarm(rec coremetrics.AlarmRecord) error {
	p := write.NewPointWithMeasurement("alarm_fired").
		AddTag("device", s.device).
		AddField("hour", rec.Hour).
		AddField("minute", rec.Minute).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordPublish writes a shadow_publish point.
func (s *InfluxSink) RecordPublish(rec coremetrics.PublishRecord) error {
	p := write.NewPointWithMeasurement("shadow_publish").
		AddTag("device", s.device).
		AddTag("report", rec.Report).
		AddField("ok", rec.OK).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordConnection writes a connection_state point.
func (s *InfluxSink) RecordConnection(rec coremetrics.ConnectionRecord) error {
	p := write.NewPointWithMeasurement("connection_state").
		AddTag("device", s.device).
		AddTag("from", rec.From.String()).
		AddTag("to", rec.To.String()).
		AddField("state", int(rec.To)).
		SetTime(rec.Time)
	return s.write(p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
