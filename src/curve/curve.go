package curve

import "math"

// Curve is a closed-form 2D parametric shape traced by the beam.
//
// Sample maps t in [0, 1) to a point in [-1, 1]^2. Implementations are
// immutable and must be safe for concurrent reads.
type Curve interface {
	Sample(t float64) (x, y float64)
	Name() string
	// Length is a density hint. 1.0 when unknown.
	Length() float64
	Closed() bool
}

// ----- Func ----- //

// Func adapts a plain function to a Curve.
type Func struct {
	Label string
	Open  bool
	F     func(t float64) (float64, float64)
}

// NewFunc returns a closed curve backed by f.
func NewFunc(label string, f func(t float64) (float64, float64)) *Func {
	return &Func{Label: label, F: f}
}

// Sample ...
func (c *Func) Sample(t float64) (float64, float64) {
	if c.F == nil {
		return 0, 0
	}
	return clampPoint(c.F(wrap(t)))
}

// Name ...
func (c *Func) Name() string {
	return c.Label
}

// Length ...
func (c *Func) Length() float64 {
	return 1.0
}

// Closed ...
func (c *Func) Closed() bool {
	return !c.Open
}

// ----- Utility ----- //

// wrap folds t into [0, 1). NaN and infinities become 0.
func wrap(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	if t >= 0 && t < 1 {
		return t
	}
	t -= math.Floor(t)
	if t >= 1 {
		return 0
	}
	return t
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampPoint(x, y float64) (float64, float64) {
	return clamp(x), clamp(y)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
