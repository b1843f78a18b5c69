package curve

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultPoints is the resolution used by the generators when asked for fewer than 2 points.
	DefaultPoints = 512
	// MaxPoints is the largest resolution of a generated path.
	MaxPoints = 1 << 16
	// MaxVertices is the most corners a polygon or star can have.
	MaxVertices = 1024
)

// Point ...
type Point [2]float64

// ----- Path ----- //

// Path is a polyline sampled by arc length, so the beam moves at constant speed.
type Path struct {
	name     string
	points   []Point
	segments []float64 // length of each segment
	ends     []float64 // cumulative length at the end of each segment
	total    float64
	closed   bool
}

// NewPath builds a path over a copy of points.
func NewPath(name string, points []Point, closed bool) *Path {
	p := &Path{
		name:   name,
		points: append([]Point(nil), points...),
		closed: closed,
	}
	n := len(p.points) - 1
	if closed {
		n = len(p.points)
	}
	if n <= 0 {
		return p
	}
	p.segments = make([]float64, n)
	for i := range p.segments {
		from := p.points[i]
		to := p.points[(i+1)%len(p.points)]
		p.segments[i] = math.Hypot(to[0]-from[0], to[1]-from[1])
	}
	p.ends = floats.CumSum(make([]float64, n), p.segments)
	p.total = floats.Sum(p.segments)
	return p
}

// NewPolygon returns the closed path through vertices.
func NewPolygon(vertices []Point) *Path {
	return NewPath("Polygon", vertices, true)
}

// Len is the number of points.
func (p *Path) Len() int {
	return len(p.points)
}

// Points returns a copy of the points.
func (p *Path) Points() []Point {
	return append([]Point(nil), p.points...)
}

// Sample ...
func (p *Path) Sample(t float64) (float64, float64) {
	if len(p.points) == 0 {
		return 0, 0
	}
	if len(p.points) == 1 || p.total == 0 {
		return clampPoint(p.points[0][0], p.points[0][1])
	}
	target := wrap(t) * p.total
	i := sort.SearchFloat64s(p.ends, target)
	if i >= len(p.segments) {
		i = len(p.segments) - 1
	}
	local := 0.0
	if p.segments[i] > 0 {
		local = (target - (p.ends[i] - p.segments[i])) / p.segments[i]
	}
	from := p.points[i]
	to := p.points[(i+1)%len(p.points)]
	return clampPoint(lerp(from[0], to[0], local), lerp(from[1], to[1], local))
}

// Name ...
func (p *Path) Name() string {
	return p.name
}

// Length ...
func (p *Path) Length() float64 {
	return p.total
}

// Closed ...
func (p *Path) Closed() bool {
	return p.closed
}

// ----- Generators ----- //

func pointCount(n int) int {
	if n < 2 {
		return DefaultPoints
	}
	return min(n, MaxPoints)
}

// Regular returns a regular polygon with its first vertex at the top.
func Regular(sides int, radius float64) *Path {
	sides = max(3, min(sides, MaxVertices))
	vertices := make([]Point, sides)
	for i := range vertices {
		angle := -math.Pi/2 + float64(i)/float64(sides)*2*math.Pi
		vertices[i] = Point{radius * math.Cos(angle), radius * math.Sin(angle)}
	}
	return NewPath("Polygon", vertices, true)
}

// Star alternates between the outer and inner radius.
func Star(points int, outer, inner float64) *Path {
	points = max(3, min(points, MaxVertices))
	n := points * 2
	vertices := make([]Point, n)
	for i := range vertices {
		angle := -math.Pi/2 + float64(i)/float64(n)*2*math.Pi
		r := outer
		if i%2 == 1 {
			r = inner
		}
		vertices[i] = Point{r * math.Cos(angle), r * math.Sin(angle)}
	}
	return NewPath("Star", vertices, true)
}

// Lissajous traces x = sin(a*s + delta), y = sin(b*s) over one period.
func Lissajous(a, b, delta float64, n int) *Path {
	n = pointCount(n)
	points := make([]Point, n)
	for i := range points {
		s := float64(i) / float64(n) * 2 * math.Pi
		points[i] = Point{math.Sin(a*s + delta), math.Sin(b * s)}
	}
	return NewPath("Lissajous", points, true)
}

// Spiral grows linearly from start to end radius over turns revolutions.
func Spiral(start, end, turns float64, n int) *Path {
	n = pointCount(n)
	points := make([]Point, n)
	for i := range points {
		s := float64(i) / float64(n-1)
		r := lerp(start, end, s)
		angle := s * turns * 2 * math.Pi
		points[i] = Point{r * math.Cos(angle), r * math.Sin(angle)}
	}
	return NewPath("Spiral", points, false)
}

// Heart ...
func Heart(scale float64, n int) *Path {
	n = pointCount(n)
	points := make([]Point, n)
	for i := range points {
		s := float64(i) / float64(n) * 2 * math.Pi
		x := 16 * math.Pow(math.Sin(s), 3)
		y := 13*math.Cos(s) - 5*math.Cos(2*s) - 2*math.Cos(3*s) - math.Cos(4*s)
		points[i] = Point{x * scale / 17, y * scale / 17}
	}
	return NewPath("Heart", points, true)
}

// SineWave sweeps x from -1 to 1.
func SineWave(amplitude, periods float64, n int) *Path {
	n = pointCount(n)
	points := make([]Point, n)
	for i := range points {
		s := float64(i) / float64(n-1)
		points[i] = Point{s*2 - 1, amplitude * math.Sin(s*periods*2*math.Pi)}
	}
	return NewPath("Sine Wave", points, false)
}
