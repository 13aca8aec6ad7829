package model

// Unset marks a schedule hour or minute that has not been configured.
const Unset = -1

// DesiredDelta is the subset of desired shadow state carried by one delta
// message. Nil fields were absent from the payload and must not modify the
// stored configuration.
type DesiredDelta struct {
	Hour          *int
	Minute        *int
	BuzzerEnabled *bool
	// Color is the pill color named in desired state. The cloud writes it
	// alongside the schedule, so on its own it never triggers a dispense.
	Color *string
	// DispenseNow requests an immediate dispense of Color.
	DispenseNow *bool
}

// HasSchedule reports whether the delta touches the schedule configuration.
func (d DesiredDelta) HasSchedule() bool {
	return d.Hour != nil || d.Minute != nil || d.BuzzerEnabled != nil
}

// Empty reports whether no field was present.
func (d DesiredDelta) Empty() bool {
	return !d.HasSchedule() && d.Color == nil && d.DispenseNow == nil
}

// DispenseRequest returns the color to dispense when the delta sets
// dispense_now to true together with a non-empty color.
func (d DesiredDelta) DispenseRequest() (string, bool) {
	if d.DispenseNow == nil || !*d.DispenseNow || d.Color == nil || *d.Color == "" {
		return "", false
	}
	return *d.Color, true
}

// ScheduleConfig is the daily alarm configuration accepted by the device.
type ScheduleConfig struct {
	Hour          int
	Minute        int
	BuzzerEnabled bool
	// AlarmArmed is set once the alarm fired for the current matching minute
	// and cleared as soon as the local minute differs from Minute.
	AlarmArmed bool
}

// NewScheduleConfig returns an unset schedule.
func NewScheduleConfig(buzzerEnabled bool) ScheduleConfig {
	return ScheduleConfig{Hour: Unset, Minute: Unset, BuzzerEnabled: buzzerEnabled}
}

// IsSet reports whether both hour and minute are configured.
func (c ScheduleConfig) IsSet() bool {
	return c.Hour != Unset && c.Minute != Unset
}
