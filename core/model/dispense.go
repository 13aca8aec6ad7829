package model

import "fmt"

// RGB is a color sample normalized to 0-255 per channel.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// DispenseStatus is the result of a dispense workflow.
type DispenseStatus int

const (
	StatusOK DispenseStatus = iota
	StatusError
)

// String returns the wire representation used in shadow reports.
func (s DispenseStatus) String() string {
	if s == StatusError {
		return "ERROR"
	}
	return "OK"
}

// ParseDispenseStatus converts a wire status back to a DispenseStatus.
func ParseDispenseStatus(s string) (DispenseStatus, error) {
	switch s {
	case "OK":
		return StatusOK, nil
	case "ERROR":
		return StatusError, nil
	default:
		return StatusError, fmt.Errorf("unknown dispense status %q", s)
	}
}

// DispenseOutcome describes one completed dispense.
type DispenseOutcome struct {
	Color     string
	Angle     int
	Measured  RGB
	Status    DispenseStatus
	CommandID uint64
	// LocalTimestamp is in local (offset) epoch seconds.
	LocalTimestamp int64
}
