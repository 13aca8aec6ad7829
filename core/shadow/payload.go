package shadow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kilianp07/pillbox/core/model"
)

// MaxPayloadBytes bounds every outbound payload.
const MaxPayloadBytes = 512

type deltaState struct {
	PillHour      *int    `json:"pill_hour"`
	PillMinute    *int    `json:"pill_minute"`
	BuzzerEnabled *bool   `json:"buzzer_enabled"`
	Color         *string `json:"color"`
	DispenseNow   *bool   `json:"dispense_now"`
}

type deltaDoc struct {
	Version int64       `json:"version"`
	State   *deltaState `json:"state"`
}

// DecodeDelta parses a delta topic payload. Fields absent from state stay
// nil in the returned delta.
func DecodeDelta(payload []byte) (model.DesiredDelta, error) {
	var doc deltaDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return model.DesiredDelta{}, fmt.Errorf("%w: delta: %v", ErrDecode, err)
	}
	if doc.State == nil {
		return model.DesiredDelta{}, fmt.Errorf("%w: delta: state missing", ErrDecode)
	}
	return model.DesiredDelta{
		Hour:          doc.State.PillHour,
		Minute:        doc.State.PillMinute,
		BuzzerEnabled: doc.State.BuzzerEnabled,
		Color:         doc.State.Color,
		DispenseNow:   doc.State.DispenseNow,
	}, nil
}

type commandDoc struct {
	Action    string `json:"action"`
	Color     string `json:"color"`
	CommandID uint64 `json:"command_id"`
}

// DecodeCommand parses a command topic payload. A missing command_id decodes
// as 0. The command is not validated; see CheckCommand.
func DecodeCommand(payload []byte) (model.Command, error) {
	var doc commandDoc
	if err := json.Unmarshal(payload, &doc); err != nil {
		return model.Command{}, fmt.Errorf("%w: command: %v", ErrDecode, err)
	}
	return model.Command{
		Action:    doc.Action,
		Color:     doc.Color,
		CommandID: doc.CommandID,
		Source:    model.SourceTopic,
	}, nil
}

// CheckCommand returns nil for a dispense command carrying a color.
func CheckCommand(cmd model.Command) error {
	if !strings.EqualFold(cmd.Action, model.ActionDispense) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	if cmd.Color == "" {
		return ErrMissingColor
	}
	return nil
}

// EncodeCommand builds a command topic payload.
func EncodeCommand(cmd model.Command) ([]byte, error) {
	return encode(commandDoc{Action: cmd.Action, Color: cmd.Color, CommandID: cmd.CommandID})
}

// ReportedConfig is the reported shape of an accepted schedule.
type ReportedConfig struct {
	PillHour      int   `json:"pill_hour"`
	PillMinute    int   `json:"pill_minute"`
	BuzzerEnabled bool  `json:"buzzer_enabled"`
	UpdatedAt     int64 `json:"updated_at"`
}

// DispenseReport is the reported shape of a completed dispense.
type DispenseReport struct {
	R              int    `json:"r"`
	G              int    `json:"g"`
	B              int    `json:"b"`
	DominantColor  string `json:"dominant_color"`
	DispensedColor string `json:"dispensed_color"`
	DispensedAngle int    `json:"dispensed_angle"`
	DispenseStatus string `json:"dispense_status"`
	CommandID      uint64 `json:"command_id"`
	LastDispense   int64  `json:"last_dispense"`
}

// clearedDesired marshals every field as an explicit null.
type clearedDesired struct {
	Color       *string `json:"color"`
	PillHour    *int    `json:"pill_hour"`
	PillMinute  *int    `json:"pill_minute"`
	DispenseNow *bool   `json:"dispense_now"`
}

// desiredSchedule is the desired shape written by bench tools.
type desiredSchedule struct {
	PillHour      *int    `json:"pill_hour,omitempty"`
	PillMinute    *int    `json:"pill_minute,omitempty"`
	BuzzerEnabled *bool   `json:"buzzer_enabled,omitempty"`
	Color         *string `json:"color,omitempty"`
	DispenseNow   *bool   `json:"dispense_now,omitempty"`
}

type reportedDoc[T any] struct {
	State struct {
		Reported T `json:"reported"`
	} `json:"state"`
}

type desiredDoc[T any] struct {
	State struct {
		Desired T `json:"desired"`
	} `json:"state"`
}

func reported[T any](v T) reportedDoc[T] {
	var d reportedDoc[T]
	d.State.Reported = v
	return d
}

func desired[T any](v T) desiredDoc[T] {
	var d desiredDoc[T]
	d.State.Desired = v
	return d
}

// EncodeReportedConfig builds the reported config payload.
func EncodeReportedConfig(cfg model.ScheduleConfig, updatedAt int64) ([]byte, error) {
	return encode(reported(ReportedConfig{
		PillHour:      cfg.Hour,
		PillMinute:    cfg.Minute,
		BuzzerEnabled: cfg.BuzzerEnabled,
		UpdatedAt:     updatedAt,
	}))
}

// EncodeDispenseReport builds the dispense report payload.
func EncodeDispenseReport(o model.DispenseOutcome) ([]byte, error) {
	return encode(reported(DispenseReport{
		R:              o.Measured.R,
		G:              o.Measured.G,
		B:              o.Measured.B,
		DominantColor:  o.Color,
		DispensedColor: o.Color,
		DispensedAngle: o.Angle,
		DispenseStatus: o.Status.String(),
		CommandID:      o.CommandID,
		LastDispense:   o.LocalTimestamp,
	}))
}

// EncodeClearDesired builds the payload nulling the desired keys the device
// consumes, so the cloud does not redeliver them on reconnect.
func EncodeClearDesired() ([]byte, error) {
	return encode(desired(clearedDesired{}))
}

// EncodeDesired builds a desired-state update from the present delta fields.
func EncodeDesired(d model.DesiredDelta) ([]byte, error) {
	return encode(desired(desiredSchedule{
		PillHour:      d.Hour,
		PillMinute:    d.Minute,
		BuzzerEnabled: d.BuzzerEnabled,
		Color:         d.Color,
		DispenseNow:   d.DispenseNow,
	}))
}

// DecodeDispenseReport parses a dispense report payload back to an outcome.
func DecodeDispenseReport(payload []byte) (model.DispenseOutcome, error) {
	var doc reportedDoc[DispenseReport]
	if err := json.Unmarshal(payload, &doc); err != nil {
		return model.DispenseOutcome{}, fmt.Errorf("%w: dispense report: %v", ErrDecode, err)
	}
	r := doc.State.Reported
	status, err := model.ParseDispenseStatus(r.DispenseStatus)
	if err != nil {
		return model.DispenseOutcome{}, fmt.Errorf("%w: dispense report: %v", ErrDecode, err)
	}
	return model.DispenseOutcome{
		Color:          r.DispensedColor,
		Angle:          r.DispensedAngle,
		Measured:       model.RGB{R: r.R, G: r.G, B: r.B},
		Status:         status,
		CommandID:      r.CommandID,
		LocalTimestamp: r.LastDispense,
	}, nil
}

// DecodeReportedConfig parses a reported config payload.
func DecodeReportedConfig(payload []byte) (ReportedConfig, error) {
	var doc reportedDoc[ReportedConfig]
	if err := json.Unmarshal(payload, &doc); err != nil {
		return ReportedConfig{}, fmt.Errorf("%w: reported config: %v", ErrDecode, err)
	}
	return doc.State.Reported, nil
}

func encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(b) > MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(b))
	}
	return b, nil
}
