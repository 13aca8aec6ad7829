// Package clock resolves wall-clock time for the device. The device only
// knows UTC (from NTP) and a fixed configured offset; it never consults the
// host time zone database.
package clock

import "time"

// Clock reports the current UTC instant. ok is false while the clock is not
// yet synchronized; callers must not act on the returned time in that case.
type Clock interface {
	Now() (t time.Time, ok bool)
}

// syncedAfter is the earliest instant considered a synchronized clock. Boards
// without a battery backed RTC boot at the Unix epoch until NTP answers.
var syncedAfter = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// System reads the host clock.
type System struct {
	now func() time.Time
}

// NewSystem returns a Clock backed by time.Now.
func NewSystem() System { return System{now: time.Now} }

// Now returns the current UTC time, reporting it unavailable before syncedAfter.
func (s System) Now() (time.Time, bool) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	t := now().UTC()
	if t.Before(syncedAfter) {
		return time.Time{}, false
	}
	return t, true
}

// Func adapts a function to the Clock interface.
type Func func() (time.Time, bool)

func (f Func) Now() (time.Time, bool) { return f() }

// LocalInstant shifts utc by offsetSeconds. The result stays in the UTC
// location so that its calendar fields read as local wall-clock values.
func LocalInstant(utc time.Time, offsetSeconds int) time.Time {
	return utc.UTC().Add(time.Duration(offsetSeconds) * time.Second)
}

// Resolver converts UTC instants to the device's fixed-offset local time.
type Resolver struct {
	OffsetSeconds int
}

// Local returns the local instant for utc.
func (r Resolver) Local(utc time.Time) time.Time {
	return LocalInstant(utc, r.OffsetSeconds)
}

// HourMinute returns the local hour and minute for utc.
func (r Resolver) HourMinute(utc time.Time) (hour, minute int) {
	l := r.Local(utc)
	return l.Hour(), l.Minute()
}

// Epoch returns local epoch seconds for utc, the timestamp format of every
// shadow report.
func (r Resolver) Epoch(utc time.Time) int64 {
	return utc.Unix() + int64(r.OffsetSeconds)
}
