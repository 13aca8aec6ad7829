package hal

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	corehal "github.com/kilianp07/pillbox/core/hal"
	"github.com/kilianp07/pillbox/core/model"
	"github.com/kilianp07/pillbox/internal/mathx"
)

// Channel selects a photodiode filter of the sensor.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// FrequencySource reads the output frequency of one filtered channel in Hz.
type FrequencySource interface {
	Frequency(ch Channel) (int, error)
}

// PulseFrequency converts a low pulse width in microseconds to Hz. A zero
// width, reported when the read timed out, counts as one microsecond.
func PulseFrequency(pulseMicros int) int {
	if pulseMicros <= 0 {
		pulseMicros = 1
	}
	return 1_000_000 / pulseMicros
}

// StaticSource returns fixed frequencies.
type StaticSource model.RGB

func (s StaticSource) Frequency(ch Channel) (int, error) {
	switch ch {
	case Red:
		return s.R, nil
	case Green:
		return s.G, nil
	case Blue:
		return s.B, nil
	}
	return 0, fmt.Errorf("unknown %s", ch)
}

// ColorSensor averages samples per channel and scales the result so that
// the strongest channel reads 255.
type ColorSensor struct {
	src     FrequencySource
	samples int
}

var _ corehal.ColorSampler = (*ColorSensor)(nil)

// ErrNoSamples is returned when the sensor is configured with no samples.
var ErrNoSamples = errors.New("hal: sensor needs at least one sample")

// NewColorSensor returns a sensor taking samples reads per channel.
func NewColorSensor(src FrequencySource, samples int) (*ColorSensor, error) {
	if src == nil {
		return nil, errors.New("hal: nil frequency source")
	}
	if samples < 1 {
		return nil, ErrNoSamples
	}
	return &ColorSensor{src: src, samples: samples}, nil
}

// SampleRaw returns the mean frequency of each channel.
func (s *ColorSensor) SampleRaw() (model.RGB, error) {
	var out [3]int
	buf := make([]float64, s.samples)
	for _, ch := range []Channel{Red, Green, Blue} {
		for i := range buf {
			f, err := s.src.Frequency(ch)
			if err != nil {
				return model.RGB{}, fmt.Errorf("read %s: %w", ch, err)
			}
			buf[i] = float64(f)
		}
		out[ch] = int(math.Round(stat.Mean(buf, nil)))
	}
	return model.RGB{R: out[Red], G: out[Green], B: out[Blue]}, nil
}

// SampleNormalized scales the raw sample to 0-255 against its largest
// channel.
func (s *ColorSensor) SampleNormalized() (model.RGB, error) {
	raw, err := s.SampleRaw()
	if err != nil {
		return model.RGB{}, err
	}
	hi := max(raw.R, raw.G, raw.B)
	if hi <= 0 {
		hi = 1
	}
	scale := func(v int) int { return mathx.MapRange(v, 0, hi, 0, 255) }
	return model.RGB{R: scale(raw.R), G: scale(raw.G), B: scale(raw.B)}, nil
}
