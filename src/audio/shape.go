package audio

import (
	"math"

	"github.com/jinjor/desktop-oscilloscope/src/curve"
)

const (
	// DefaultFrequency is the trace frequency in Hz.
	DefaultFrequency = 80.0
	// DefaultVolume ...
	DefaultVolume = 0.8
	// DefaultSampleRate is assumed until a device reports its own.
	DefaultSampleRate = 48000
	// MinShapeSamples is the smallest number of points in a Shape.
	MinShapeSamples = 10
)

// ----- Shape ----- //

// Shape is a curve pre-sampled for one trace period. It is never modified after creation.
type Shape struct {
	Name       string
	Points     []Point
	Curve      curve.Curve
	Frequency  float64
	SampleRate int
	Volume     float64
}

// SampleCount is the number of samples in one trace at the given rates.
func SampleCount(sampleRate int, frequency float64) int {
	if !(frequency > 0) || math.IsInf(frequency, 0) {
		frequency = DefaultFrequency
	}
	n := int(math.Round(float64(sampleRate) / frequency))
	if n < MinShapeSamples {
		return MinShapeSamples
	}
	return n
}

// Presample evaluates c at N evenly spaced positions and applies volume.
func Presample(c curve.Curve, frequency float64, sampleRate int, volume float64) *Shape {
	volume = clamp01(volume)
	n := SampleCount(sampleRate, frequency)
	points := make([]Point, n)
	for i := range points {
		x, y := c.Sample(float64(i) / float64(n))
		points[i] = Point{X: x * volume, Y: y * volume}
	}
	return &Shape{
		Name:       c.Name(),
		Points:     points,
		Curve:      c,
		Frequency:  frequency,
		SampleRate: sampleRate,
		Volume:     volume,
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
