package scope

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	// Headroom is the fraction of the screen the trace is scaled to fill.
	Headroom = 0.9
	minGain  = 0.5
	maxGain  = 4.0
)

// AutoGain eases the display gain toward the value that makes the trace fill the screen.
type AutoGain struct {
	spring   harmonica.Spring
	gain     float64
	velocity float64
}

// NewAutoGain ...
func NewAutoGain(fps int) *AutoGain {
	return &AutoGain{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
		gain:   1,
	}
}

// Target is the gain that maps peak to Headroom.
func Target(peak float64) float64 {
	if !(peak > 0) || math.IsInf(peak, 0) {
		return 1
	}
	return math.Max(minGain, math.Min(maxGain, Headroom/peak))
}

// Update advances one frame toward the target for peak and returns the gain.
func (a *AutoGain) Update(peak float64) float64 {
	a.gain, a.velocity = a.spring.Update(a.gain, a.velocity, Target(peak))
	return a.gain
}

// Gain ...
func (a *AutoGain) Gain() float64 {
	return a.gain
}

// Peak is the largest absolute coordinate.
func Peak(xs, ys []float64) float64 {
	peak := 0.0
	for _, v := range xs {
		peak = math.Max(peak, math.Abs(v))
	}
	for _, v := range ys {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}
