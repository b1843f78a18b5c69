package curve

import "math"

// ----- Circle ----- //

// Circle is traced counter-clockwise starting at (CX+Radius, CY).
type Circle struct {
	CX     float64
	CY     float64
	Radius float64
}

// NewCircle returns a circle centered at the origin.
func NewCircle(radius float64) *Circle {
	return &Circle{Radius: radius}
}

// Sample ...
func (c *Circle) Sample(t float64) (float64, float64) {
	sin, cos := math.Sincos(2 * math.Pi * wrap(t))
	return clampPoint(c.CX+c.Radius*cos, c.CY+c.Radius*sin)
}

// Name ...
func (c *Circle) Name() string {
	return "Circle"
}

// Length ...
func (c *Circle) Length() float64 {
	return 2 * math.Pi * math.Abs(c.Radius)
}

// Closed ...
func (c *Circle) Closed() bool {
	return true
}

// ----- Line ----- //

// Line goes from (X1, Y1) to (X2, Y2).
type Line struct {
	X1, Y1 float64
	X2, Y2 float64
}

// NewLine ...
func NewLine(x1, y1, x2, y2 float64) *Line {
	return &Line{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Sample ...
func (l *Line) Sample(t float64) (float64, float64) {
	t = wrap(t)
	return clampPoint(lerp(l.X1, l.X2, t), lerp(l.Y1, l.Y2, t))
}

// Name ...
func (l *Line) Name() string {
	return "Line"
}

// Length ...
func (l *Line) Length() float64 {
	return math.Hypot(l.X2-l.X1, l.Y2-l.Y1)
}

// Closed ...
func (l *Line) Closed() bool {
	return false
}

// ----- Rectangle ----- //

// Rectangle is traced clockwise from the top-left corner, one side per quarter of t.
type Rectangle struct {
	CX, CY     float64
	HalfWidth  float64
	HalfHeight float64
}

// NewRectangle returns a rectangle centered at the origin.
func NewRectangle(width, height float64) *Rectangle {
	return &Rectangle{HalfWidth: width / 2, HalfHeight: height / 2}
}

// NewSquare ...
func NewSquare(size float64) *Rectangle {
	return NewRectangle(size, size)
}

func (r *Rectangle) corners() [4][2]float64 {
	return [4][2]float64{
		{r.CX - r.HalfWidth, r.CY + r.HalfHeight},
		{r.CX + r.HalfWidth, r.CY + r.HalfHeight},
		{r.CX + r.HalfWidth, r.CY - r.HalfHeight},
		{r.CX - r.HalfWidth, r.CY - r.HalfHeight},
	}
}

// Sample ...
func (r *Rectangle) Sample(t float64) (float64, float64) {
	corners := r.corners()
	pos := wrap(t) * 4
	segment := int(pos)
	if segment > 3 {
		segment = 3
	}
	local := pos - float64(segment)
	from := corners[segment]
	to := corners[(segment+1)%4]
	return clampPoint(lerp(from[0], to[0], local), lerp(from[1], to[1], local))
}

// Name ...
func (r *Rectangle) Name() string {
	return "Rectangle"
}

// Length ...
func (r *Rectangle) Length() float64 {
	return 4 * (math.Abs(r.HalfWidth) + math.Abs(r.HalfHeight))
}

// Closed ...
func (r *Rectangle) Closed() bool {
	return true
}
