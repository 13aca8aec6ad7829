package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandIsDispense(t *testing.T) {
	assert.True(t, Command{Action: "dispense", Color: "RED"}.IsDispense())
	assert.True(t, Command{Action: "DisPense", Color: "red"}.IsDispense())
	assert.False(t, Command{Action: "dispense"}.IsDispense())
	assert.False(t, Command{Action: "rotate", Color: "RED"}.IsDispense())
}

func TestDesiredDelta(t *testing.T) {
	h := 7
	color := "RED"
	assert.True(t, DesiredDelta{}.Empty())
	assert.True(t, DesiredDelta{Hour: &h}.HasSchedule())
	d := DesiredDelta{Color: &color}
	assert.False(t, d.HasSchedule())
	assert.False(t, d.Empty())
	_, ok := d.DispenseRequest()
	assert.False(t, ok)

	now, later := true, false
	d.DispenseNow = &later
	_, ok = d.DispenseRequest()
	assert.False(t, ok)
	d.DispenseNow = &now
	got, ok := d.DispenseRequest()
	assert.True(t, ok)
	assert.Equal(t, "RED", got)
	assert.False(t, DesiredDelta{DispenseNow: &now}.Empty())
}

func TestScheduleConfigIsSet(t *testing.T) {
	c := NewScheduleConfig(true)
	assert.False(t, c.IsSet())
	c.Hour = 7
	assert.False(t, c.IsSet())
	c.Minute = 0
	assert.True(t, c.IsSet())
}

func TestConnectionStateNames(t *testing.T) {
	for _, s := range []ConnectionState{Disconnected, Connecting, Connected} {
		assert.Equal(t, s, ParseConnectionState(s.String()))
	}
	assert.Equal(t, Disconnected, ParseConnectionState("bogus"))
}

func TestDispenseStatus(t *testing.T) {
	s, err := ParseDispenseStatus(StatusOK.String())
	assert.NoError(t, err)
	assert.Equal(t, StatusOK, s)
	s, err = ParseDispenseStatus("ERROR")
	assert.NoError(t, err)
	assert.Equal(t, StatusError, s)
	_, err = ParseDispenseStatus("meh")
	assert.Error(t, err)
}
