package hal

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/infra/logger"
)

func TestServoStepsOneDegree(t *testing.T) {
	var slept time.Duration
	var path []int
	s := NewServo(90, 12*time.Millisecond, logger.NopLogger{},
		WithServoSleep(func(d time.Duration) { slept += d }),
		WithServoWriter(func(a int) { path = append(path, a) }))

	require.NoError(t, s.MoveTo(93))
	assert.Equal(t, []int{91, 92, 93}, path)
	assert.Equal(t, 36*time.Millisecond, slept)

	path = nil
	require.NoError(t, s.MoveTo(91))
	assert.Equal(t, []int{92, 91}, path)
	assert.Equal(t, 91, s.Angle())
}

func TestServoClampsTarget(t *testing.T) {
	s := NewServo(179, 0, logger.NopLogger{}, WithServoSleep(func(time.Duration) {}))
	require.NoError(t, s.MoveTo(500))
	assert.Equal(t, 180, s.Angle())
	require.NoError(t, s.MoveTo(-3))
	assert.Equal(t, 0, s.Angle())

	s = NewServo(-20, 0, logger.NopLogger{})
	assert.Equal(t, 0, s.Angle())
}

func TestBuzzerPoll(t *testing.T) {
	now := time.Unix(0, 0)
	var levels []bool
	b := NewBuzzer(func(h bool) { levels = append(levels, h) }, func() time.Time { return now })

	b.SoundFor(800 * time.Millisecond)
	assert.True(t, b.Active())
	now = now.Add(799 * time.Millisecond)
	b.Poll()
	assert.True(t, b.Active())
	now = now.Add(time.Millisecond)
	b.Poll()
	assert.False(t, b.Active())
	b.Poll()
	assert.Equal(t, []bool{true, false}, levels)
}

func TestBuzzerRestartExtendsDeadline(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBuzzer(nil, func() time.Time { return now })
	b.SoundFor(time.Second)
	now = now.Add(500 * time.Millisecond)
	b.SoundFor(time.Second)
	now = now.Add(600 * time.Millisecond)
	b.Poll()
	assert.True(t, b.Active())
}

type seqSource struct {
	vals map[Channel][]int
	err  error
}

func (s *seqSource) Frequency(ch Channel) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.vals[ch][0]
	s.vals[ch] = s.vals[ch][1:]
	return v, nil
}

func TestColorSensorNormalizes(t *testing.T) {
	cs, err := NewColorSensor(StaticSource{R: 100, G: 200, B: 400}, 3)
	require.NoError(t, err)
	rgb, err := cs.SampleNormalized()
	require.NoError(t, err)
	assert.Equal(t, model.RGB{R: 63, G: 127, B: 255}, rgb)
}

func TestColorSensorAveragesSamples(t *testing.T) {
	src := &seqSource{vals: map[Channel][]int{
		Red:   {10, 20},
		Green: {30, 31},
		Blue:  {0, 0},
	}}
	cs, err := NewColorSensor(src, 2)
	require.NoError(t, err)
	raw, err := cs.SampleRaw()
	require.NoError(t, err)
	assert.Equal(t, model.RGB{R: 15, G: 31, B: 0}, raw)
}

func TestColorSensorDarkReadsZero(t *testing.T) {
	cs, err := NewColorSensor(StaticSource{}, 1)
	require.NoError(t, err)
	rgb, err := cs.SampleNormalized()
	require.NoError(t, err)
	assert.Equal(t, model.RGB{}, rgb)
}

func TestColorSensorErrors(t *testing.T) {
	_, err := NewColorSensor(nil, 1)
	assert.Error(t, err)
	_, err = NewColorSensor(StaticSource{}, 0)
	assert.ErrorIs(t, err, ErrNoSamples)

	cs, err := NewColorSensor(&seqSource{err: errors.New("timeout")}, 1)
	require.NoError(t, err)
	_, err = cs.SampleNormalized()
	assert.ErrorContains(t, err, "read red")
}

func TestPulseFrequency(t *testing.T) {
	assert.Equal(t, 1_000_000, PulseFrequency(0))
	assert.Equal(t, 4000, PulseFrequency(250))
}

func TestHostNetwork(t *testing.T) {
	h := HostNetwork{interfaces: func() ([]net.Interface, error) {
		return []net.Interface{{Name: "lo", Flags: net.FlagUp | net.FlagLoopback}}, nil
	}}
	assert.False(t, h.Online())

	h.interfaces = func() ([]net.Interface, error) {
		return []net.Interface{{Name: "wlan0", Flags: net.FlagUp}}, nil
	}
	assert.True(t, h.Online())

	h.interfaces = func() ([]net.Interface, error) { return nil, errors.New("boom") }
	assert.False(t, h.Online())
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, 12, c.ServoStepMS)
	assert.Equal(t, 90, *c.InitialAngle)
	assert.Equal(t, 3, c.Sensor.Samples)

	zero := 0
	c = Config{InitialAngle: &zero}
	c.SetDefaults()
	assert.Equal(t, 0, *c.InitialAngle)

	bad := 181
	c.InitialAngle = &bad
	assert.Error(t, c.Validate())
}

func TestNewSimulated(t *testing.T) {
	zero := 0
	c := Config{InitialAngle: &zero, Sensor: SensorConfig{R: 10, G: 20, B: 40}}
	c.SetDefaults()
	sim, err := NewSimulated(c, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, sim.Servo.Angle())
	rgb, err := sim.Sensor.SampleNormalized()
	require.NoError(t, err)
	assert.Equal(t, model.RGB{R: 63, G: 127, B: 255}, rgb)
	assert.True(t, sim.Network.Online())
	_, isHost := sim.Network.(HostNetwork)
	assert.False(t, isHost)

	c.RequireNetwork = true
	sim, err = NewSimulated(c, nil)
	require.NoError(t, err)
	_, isHost = sim.Network.(HostNetwork)
	assert.True(t, isHost)
}
