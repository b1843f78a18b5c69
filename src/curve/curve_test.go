package curve

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func expectPoint(t *testing.T, name string, x, y, wantX, wantY float64) {
	t.Helper()
	if math.Abs(x-wantX) > tolerance || math.Abs(y-wantY) > tolerance {
		t.Errorf("%s: expected (%v, %v), but got (%v, %v)", name, wantX, wantY, x, y)
	}
}

func allCurves() []Curve {
	scene := NewScene("Scene").Add(NewCircle(0.5)).AddWeighted(Star(5, 0.9, 0.4), 2)
	return []Curve{
		NewCircle(0.8),
		NewCircle(3), // clamped
		&Circle{CX: 0.5, CY: -0.5, Radius: 0.7},
		NewLine(-1, -1, 1, 1),
		NewRectangle(1.2, 0.6),
		NewSquare(4),
		Regular(6, 0.9),
		Star(5, 0.9, 0.4),
		Lissajous(3, 2, math.Pi/2, 300),
		Spiral(0.1, 0.9, 4, 300),
		Heart(0.9, 300),
		SineWave(0.5, 3, 300),
		NewPath("Empty", nil, true),
		NewPath("Dot", []Point{{0.2, 0.3}}, false),
		scene,
		NewScene("Empty Scene"),
		NewFunc("Wild", func(t float64) (float64, float64) { return math.Inf(1), math.NaN() }),
	}
}

func TestCurvesStayInRange(t *testing.T) {
	for _, c := range allCurves() {
		for i := 0; i <= 1000; i++ {
			x, y := c.Sample(float64(i) / 1000)
			if math.IsNaN(x) || math.IsNaN(y) || x < -1 || x > 1 || y < -1 || y > 1 {
				t.Fatalf("%s: sample %d out of range: (%v, %v)", c.Name(), i, x, y)
			}
		}
	}
}

func TestSampleIsDeterministic(t *testing.T) {
	for _, c := range allCurves() {
		for _, s := range []float64{0, 0.1, 0.5, 0.9999} {
			x1, y1 := c.Sample(s)
			x2, y2 := c.Sample(s)
			if x1 != x2 || y1 != y2 {
				t.Errorf("%s: sample(%v) is not deterministic", c.Name(), s)
			}
		}
	}
}

func TestOutOfRangeTWraps(t *testing.T) {
	c := NewCircle(0.5)
	x1, y1 := c.Sample(1.25)
	x2, y2 := c.Sample(0.25)
	expectPoint(t, "t=1.25", x1, y1, x2, y2)
	x, y := c.Sample(math.NaN())
	expectPoint(t, "t=NaN", x, y, 0.5, 0)
}

func TestCircle(t *testing.T) {
	c := NewCircle(0.5)
	x, y := c.Sample(0)
	expectPoint(t, "t=0", x, y, 0.5, 0)
	x, y = c.Sample(0.25)
	expectPoint(t, "t=0.25", x, y, 0, 0.5)
	if !c.Closed() {
		t.Errorf("expected circle to be closed")
	}
	if math.Abs(c.Length()-math.Pi) > tolerance {
		t.Errorf("expected length π, but got %v", c.Length())
	}
}

func TestLine(t *testing.T) {
	l := NewLine(-0.5, 0, 0.5, 0.5)
	x, y := l.Sample(0.5)
	expectPoint(t, "midpoint", x, y, 0, 0.25)
	if l.Closed() {
		t.Errorf("expected line to be open")
	}
}

func TestRectangleStartsTopLeftClockwise(t *testing.T) {
	r := NewRectangle(1, 0.5)
	x, y := r.Sample(0)
	expectPoint(t, "top-left", x, y, -0.5, 0.25)
	x, y = r.Sample(0.25)
	expectPoint(t, "top-right", x, y, 0.5, 0.25)
	x, y = r.Sample(0.5)
	expectPoint(t, "bottom-right", x, y, 0.5, -0.25)
	x, y = r.Sample(0.75)
	expectPoint(t, "bottom-left", x, y, -0.5, -0.25)
}

func TestPathArcLength(t *testing.T) {
	// Uneven segments: 0.1 then 0.9 long.
	p := NewPath("L", []Point{{0, 0}, {0.1, 0}, {0.1, 0.9}}, false)
	x, y := p.Sample(0.05)
	expectPoint(t, "first segment", x, y, 0.05, 0)
	x, y = p.Sample(0.55)
	expectPoint(t, "second segment", x, y, 0.1, 0.45)
	if math.Abs(p.Length()-1) > tolerance {
		t.Errorf("expected length 1, but got %v", p.Length())
	}
}

func TestClosedPathReturnsToStart(t *testing.T) {
	p := NewPolygon([]Point{{0, 0}, {0.5, 0}, {0.5, 0.5}, {0, 0.5}})
	x, y := p.Sample(0.875)
	expectPoint(t, "closing segment", x, y, 0, 0.25)
}

func TestRegularPolygonStartsAtTop(t *testing.T) {
	p := Regular(4, 0.5)
	x, y := p.Sample(0)
	expectPoint(t, "first vertex", x, y, 0, -0.5)
	if p.Len() != 4 {
		t.Errorf("expected 4 vertices, but got %d", p.Len())
	}
}

func TestGeneratorsCapSize(t *testing.T) {
	if n := Regular(1<<40, 0.8).Len(); n != MaxVertices {
		t.Errorf("expected %d vertices, but got %d", MaxVertices, n)
	}
	if n := Star(1<<40, 0.8, 0.3).Len(); n != 2*MaxVertices {
		t.Errorf("expected %d vertices, but got %d", 2*MaxVertices, n)
	}
	if n := Regular(-5, 0.8).Len(); n != 3 {
		t.Errorf("expected 3 vertices, but got %d", n)
	}
	if n := Heart(0.8, 1<<40).Len(); n != MaxPoints {
		t.Errorf("expected %d points, but got %d", MaxPoints, n)
	}
}

func TestGeneratorsKeepPointCount(t *testing.T) {
	if n := Lissajous(3, 2, 0, 100).Len(); n != 100 {
		t.Errorf("expected 100 points, but got %d", n)
	}
	if n := Heart(0.8, 0).Len(); n != DefaultPoints {
		t.Errorf("expected %d points, but got %d", DefaultPoints, n)
	}
	if !Lissajous(3, 2, 0, 100).Closed() || Spiral(0, 1, 2, 50).Closed() {
		t.Errorf("unexpected closed flags")
	}
}

func constant(name string, x, y float64) *Func {
	return NewFunc(name, func(float64) (float64, float64) { return x, y })
}

func TestSceneWeights(t *testing.T) {
	s := NewScene("Weighted").AddWeighted(constant("A", -0.5, 0), 2).AddWeighted(constant("B", 0.5, 0), 1)
	x, _ := s.Sample(0.5)
	if x != -0.5 {
		t.Errorf("t=0.5: expected first curve, but got x=%v", x)
	}
	x, _ = s.Sample(0.7)
	if x != 0.5 {
		t.Errorf("t=0.7: expected second curve, but got x=%v", x)
	}
	x, _ = s.Sample(0.66)
	if x != -0.5 {
		t.Errorf("t=0.66: expected first curve, but got x=%v", x)
	}
}

func TestSceneRemapsLocalT(t *testing.T) {
	s := NewScene("Lines").Add(NewLine(-1, 0, 0, 0)).Add(NewLine(0, 0, 1, 0))
	x, _ := s.Sample(0.25)
	if math.Abs(x+0.5) > tolerance {
		t.Errorf("expected -0.5, but got %v", x)
	}
	x, _ = s.Sample(0.75)
	if math.Abs(x-0.5) > tolerance {
		t.Errorf("expected 0.5, but got %v", x)
	}
}

func TestSceneEditing(t *testing.T) {
	s := NewScene("Edit").Add(constant("A", -0.5, 0)).Add(constant("B", 0.5, 0))
	s.SetEnabled(0, false)
	if x, _ := s.Sample(0.1); x != 0.5 {
		t.Errorf("expected disabled entry to be skipped, but got x=%v", x)
	}
	s.SetEnabled(0, true)
	s.MoveDown(0)
	if x, _ := s.Sample(0.1); x != 0.5 {
		t.Errorf("expected B first after MoveDown, but got x=%v", x)
	}
	s.SetWeight(1, 0)
	if _, w, _ := s.At(1); w != MinWeight {
		t.Errorf("expected weight clamped to %v, but got %v", MinWeight, w)
	}
	if _, ok := s.Remove(5); ok {
		t.Errorf("expected out of range removal to fail")
	}
	if _, ok := s.Remove(0); !ok || s.Len() != 1 {
		t.Errorf("expected removal to succeed")
	}
}

func TestEmptyScene(t *testing.T) {
	s := NewScene("Empty")
	x, y := s.Sample(0.3)
	expectPoint(t, "empty", x, y, 0, 0)
	if s.Length() != 0 {
		t.Errorf("expected zero length")
	}
}

func TestSceneLengthAndClosed(t *testing.T) {
	s := NewScene("Mixed").AddWeighted(NewLine(0, 0, 0.5, 0), 2).Add(NewCircle(0.5))
	want := 0.5*2 + math.Pi
	if math.Abs(s.Length()-want) > tolerance {
		t.Errorf("expected %v, but got %v", want, s.Length())
	}
	if s.Closed() {
		t.Errorf("expected a scene with an open curve to be open")
	}
}

func TestScript(t *testing.T) {
	src := `
name = "Lua Circle"
function sample(t)
  local a = t * 2 * math.pi
  return 0.5 * math.cos(a), 0.5 * math.sin(a)
end
`
	p, err := Script("ignored", src, 400)
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	if p.Name() != "Lua Circle" || !p.Closed() || p.Len() != 400 {
		t.Errorf("unexpected path: %s closed=%v len=%d", p.Name(), p.Closed(), p.Len())
	}
	x, y := p.Sample(0)
	expectPoint(t, "t=0", x, y, 0.5, 0)
}

func TestScriptErrors(t *testing.T) {
	tests := map[string]string{
		"syntax":    "function sample(t",
		"no sample": "x = 1",
		"not a num": "function sample(t) return 'a', 1 end",
		"runtime":   "function sample(t) error('boom') end",
	}
	for name, src := range tests {
		if _, err := Script(name, src, 10); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
