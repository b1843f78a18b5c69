package effect

import "math"

// MaxEffects is the capacity of a Chain.
const MaxEffects = 8

// Effect transforms a point at a given time in seconds.
type Effect interface {
	Apply(x, y, t float64) (float64, float64)
	Name() string
	Enabled() bool
}

// ----- Chain ----- //

// Chain applies effects in registration order.
// The zero value is an empty chain and the identity transform.
type Chain struct {
	effects [MaxEffects]Effect
	n       int
}

// Add appends an effect. It reports false when the chain is full.
func (c *Chain) Add(e Effect) bool {
	if e == nil || c.n >= MaxEffects {
		return false
	}
	c.effects[c.n] = e
	c.n++
	return true
}

// Reset empties the chain without releasing its storage.
func (c *Chain) Reset() {
	for i := 0; i < c.n; i++ {
		c.effects[i] = nil
	}
	c.n = 0
}

// Len ...
func (c *Chain) Len() int {
	return c.n
}

// At returns the i-th effect.
func (c *Chain) At(i int) Effect {
	if i < 0 || i >= c.n {
		return nil
	}
	return c.effects[i]
}

// Remove deletes the i-th effect, keeping the order of the rest.
func (c *Chain) Remove(i int) bool {
	if i < 0 || i >= c.n {
		return false
	}
	copy(c.effects[i:c.n], c.effects[i+1:c.n])
	c.n--
	c.effects[c.n] = nil
	return true
}

// Apply folds every enabled effect over (x, y).
func (c *Chain) Apply(x, y, t float64) (float64, float64) {
	for i := 0; i < c.n; i++ {
		e := c.effects[i]
		if !e.Enabled() {
			continue
		}
		x, y = e.Apply(x, y, t)
	}
	return x, y
}

// ----- Toggle ----- //

// toggle is embedded by effects. The zero value is enabled.
type toggle struct {
	disabled bool
}

// Enabled ...
func (s *toggle) Enabled() bool {
	return !s.disabled
}

// SetEnabled ...
func (s *toggle) SetEnabled(enabled bool) {
	s.disabled = !enabled
}

// ----- Transforms ----- //

// Rotate rotates around the origin by Angle + Speed*t radians.
type Rotate struct {
	toggle
	Angle float64
	Speed float64 // rad/s
}

// NewRotate ...
func NewRotate(angle float64) *Rotate {
	return &Rotate{Angle: angle}
}

// NewAnimatedRotate ...
func NewAnimatedRotate(speed float64) *Rotate {
	return &Rotate{Speed: speed}
}

// Apply ...
func (r *Rotate) Apply(x, y, t float64) (float64, float64) {
	return rotate(x, y, r.Angle+r.Speed*t)
}

// Name ...
func (r *Rotate) Name() string {
	return "rotate"
}

func rotate(x, y, angle float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}

// Scale multiplies each axis.
type Scale struct {
	toggle
	X float64
	Y float64
}

// NewScale ...
func NewScale(x, y float64) *Scale {
	return &Scale{X: x, Y: y}
}

// NewUniformScale ...
func NewUniformScale(f float64) *Scale {
	return &Scale{X: f, Y: f}
}

// Apply ...
func (s *Scale) Apply(x, y, t float64) (float64, float64) {
	return x * s.X, y * s.Y
}

// Name ...
func (s *Scale) Name() string {
	return "scale"
}

// Translate offsets each axis.
type Translate struct {
	toggle
	X float64
	Y float64
}

// NewTranslate ...
func NewTranslate(x, y float64) *Translate {
	return &Translate{X: x, Y: y}
}

// Apply ...
func (tr *Translate) Apply(x, y, t float64) (float64, float64) {
	return x + tr.X, y + tr.Y
}

// Name ...
func (tr *Translate) Name() string {
	return "translate"
}

// Mirror flips the shape across one or both axes.
type Mirror struct {
	toggle
	Axis Axis
}

// NewMirror ...
func NewMirror(axis Axis) *Mirror {
	return &Mirror{Axis: axis}
}

// Apply ...
func (m *Mirror) Apply(x, y, t float64) (float64, float64) {
	switch m.Axis {
	case AxisHorizontal:
		return -x, y
	case AxisVertical:
		return x, -y
	case AxisBoth:
		return -x, -y
	}
	return x, y
}

// Name ...
func (m *Mirror) Name() string {
	return "mirror"
}

// ----- Axis ----- //

// Axis selects what a Mirror negates.
type Axis int

// Axes
const (
	AxisNone Axis = iota
	AxisHorizontal
	AxisVertical
	AxisBoth
)

// AxisFromString ...
func AxisFromString(s string) Axis {
	switch s {
	case "horizontal", "x":
		return AxisHorizontal
	case "vertical", "y":
		return AxisVertical
	case "both", "xy":
		return AxisBoth
	}
	return AxisNone
}

func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	case AxisBoth:
		return "both"
	}
	return "none"
}
