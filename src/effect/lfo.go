package effect

import "math"

// ----- Wave ----- //

// Wave is the shape of an LFO cycle.
type Wave int

// Waves
const (
	WaveSine Wave = iota
	WaveTriangle
	WaveSquare
	WaveSaw
	WaveSawRev
)

// WaveFromString ...
func WaveFromString(s string) Wave {
	switch s {
	case "triangle":
		return WaveTriangle
	case "square":
		return WaveSquare
	case "saw":
		return WaveSaw
	case "saw-rev", "reverse-saw":
		return WaveSawRev
	}
	return WaveSine
}

func (w Wave) String() string {
	switch w {
	case WaveTriangle:
		return "triangle"
	case WaveSquare:
		return "square"
	case WaveSaw:
		return "saw"
	case WaveSawRev:
		return "saw-rev"
	}
	return "sine"
}

// value returns the waveform at phase in [0, 1), in [-1, 1].
func (w Wave) value(phase float64) float64 {
	switch w {
	case WaveTriangle:
		p := phase * 4
		switch {
		case p < 1:
			return p
		case p < 3:
			return 2 - p
		default:
			return p - 4
		}
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 2*phase - 1
	case WaveSawRev:
		return 1 - 2*phase
	}
	return math.Sin(2 * math.Pi * phase)
}

// ----- LFO ----- //

// Lfo is a stateless low frequency oscillator evaluated at a time in seconds.
type Lfo struct {
	Freq  float64 // Hz
	Wave  Wave
	Min   float64
	Max   float64
	Phase float64 // cycles
}

// NewLfo ...
func NewLfo(freq, min, max float64, wave Wave) Lfo {
	return Lfo{Freq: freq, Wave: wave, Min: min, Max: max}
}

// Midpoint ...
func (l Lfo) Midpoint() float64 {
	return (l.Min + l.Max) / 2
}

// Sample returns the LFO value at t, within [Min, Max].
func (l Lfo) Sample(t float64) float64 {
	if !(l.Freq > 0) || math.IsInf(l.Freq, 0) || l.Min == l.Max || math.IsNaN(t) || math.IsInf(t, 0) {
		return l.Midpoint()
	}
	phase := t*l.Freq + l.Phase
	phase -= math.Floor(phase)
	if phase >= 1 {
		phase = 0
	}
	raw := l.Wave.value(phase)
	return l.Min + (raw+1)/2*(l.Max-l.Min)
}

// ----- LFO Effects ----- //

// LfoRotate rotates by Base plus an LFO-driven angle.
type LfoRotate struct {
	toggle
	Base float64
	Lfo  Lfo
}

// NewLfoRotate swings the angle within [-amount, amount] radians.
func NewLfoRotate(freq, amount float64, wave Wave) *LfoRotate {
	return &LfoRotate{Lfo: NewLfo(freq, -amount, amount, wave)}
}

// Apply ...
func (r *LfoRotate) Apply(x, y, t float64) (float64, float64) {
	return rotate(x, y, r.Base+r.Lfo.Sample(t))
}

// Name ...
func (r *LfoRotate) Name() string {
	return "lfo-rotate"
}

// LfoScale scales both axes by the LFO value.
type LfoScale struct {
	toggle
	Lfo Lfo
}

// NewLfoScale ...
func NewLfoScale(freq, min, max float64, wave Wave) *LfoScale {
	return &LfoScale{Lfo: NewLfo(freq, min, max, wave)}
}

// Apply ...
func (s *LfoScale) Apply(x, y, t float64) (float64, float64) {
	f := s.Lfo.Sample(t)
	return x * f, y * f
}

// Name ...
func (s *LfoScale) Name() string {
	return "lfo-scale"
}

// LfoTranslate offsets each axis with its own LFO.
type LfoTranslate struct {
	toggle
	X Lfo
	Y Lfo
}

// NewWobble moves the shape on an ellipse-like path: the Y LFO runs a quarter cycle ahead.
func NewWobble(freq, amount float64, wave Wave) *LfoTranslate {
	y := NewLfo(freq, -amount, amount, wave)
	y.Phase = 0.25
	return &LfoTranslate{X: NewLfo(freq, -amount, amount, wave), Y: y}
}

// Apply ...
func (tr *LfoTranslate) Apply(x, y, t float64) (float64, float64) {
	return x + tr.X.Sample(t), y + tr.Y.Sample(t)
}

// Name ...
func (tr *LfoTranslate) Name() string {
	return "lfo-translate"
}
