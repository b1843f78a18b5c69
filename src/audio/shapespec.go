package audio

import (
	"math"
	"strconv"

	"github.com/jinjor/desktop-oscilloscope/src/curve"
	"github.com/pkg/errors"
)

// ShapePoints is the resolution of generated paths.
const ShapePoints = 1024

// ShapeSpec names a curve and its arguments, as typed in a command.
type ShapeSpec struct {
	Kind string   `json:"kind"`
	Args []string `json:"args,omitempty"`
}

type shapeDefaults struct {
	args  []float64
	build func(a []float64) curve.Curve
}

var shapeKinds = map[string]shapeDefaults{
	"circle": {[]float64{0.8}, func(a []float64) curve.Curve {
		return curve.NewCircle(a[0])
	}},
	"line": {[]float64{-0.8, 0, 0.8, 0}, func(a []float64) curve.Curve {
		return curve.NewLine(a[0], a[1], a[2], a[3])
	}},
	"rectangle": {[]float64{1.2, 0.6}, func(a []float64) curve.Curve {
		return curve.NewRectangle(a[0], a[1])
	}},
	"polygon": {[]float64{5, 0.8}, func(a []float64) curve.Curve {
		return curve.Regular(int(a[0]), a[1])
	}},
	"star": {[]float64{5, 0.8, 0.3}, func(a []float64) curve.Curve {
		return curve.Star(int(a[0]), a[1], a[2])
	}},
	"lissajous": {[]float64{3, 2, math.Pi / 2}, func(a []float64) curve.Curve {
		return curve.Lissajous(a[0], a[1], a[2], ShapePoints)
	}},
	"spiral": {[]float64{0.1, 0.8, 3}, func(a []float64) curve.Curve {
		return curve.Spiral(a[0], a[1], a[2], ShapePoints)
	}},
	"heart": {[]float64{0.8}, func(a []float64) curve.Curve {
		return curve.Heart(a[0], ShapePoints)
	}},
	"sine": {[]float64{0.5, 2}, func(a []float64) curve.Curve {
		return curve.SineWave(a[0], a[1], ShapePoints)
	}},
}

// countArgs are the kinds whose first argument is a number of corners.
var countArgs = map[string]bool{"polygon": true, "star": true}

// Build creates the curve. Missing arguments take their defaults.
func (s ShapeSpec) Build() (curve.Curve, error) {
	if s.Kind == "script" {
		if len(s.Args) != 1 {
			return nil, errors.New("script needs a file path")
		}
		return curve.LoadScript(s.Args[0], ShapePoints)
	}
	kind, ok := shapeKinds[s.Kind]
	if !ok {
		return nil, errors.Errorf("unknown shape %q", s.Kind)
	}
	if len(s.Args) > len(kind.args) {
		return nil, errors.Errorf("%s takes at most %d arguments", s.Kind, len(kind.args))
	}
	args := append([]float64(nil), kind.args...)
	for i, arg := range s.Args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s argument %d", s.Kind, i)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("%s argument %d is not finite", s.Kind, i)
		}
		if i == 0 && countArgs[s.Kind] && (v != math.Trunc(v) || v < 3 || v > curve.MaxVertices) {
			return nil, errors.Errorf("%s needs 3 to %d corners, got %s", s.Kind, curve.MaxVertices, arg)
		}
		args[i] = v
	}
	return kind.build(args), nil
}

// ----- Scene Spec ----- //

// SceneEntrySpec is one curve of a scene.
type SceneEntrySpec struct {
	Shape   ShapeSpec `json:"shape"`
	Weight  float64   `json:"weight"`
	Enabled bool      `json:"enabled"`
}

func buildScene(entries []SceneEntrySpec) (*curve.Scene, error) {
	scene := curve.NewScene("Scene")
	for i, e := range entries {
		c, err := e.Shape.Build()
		if err != nil {
			return nil, errors.Wrapf(err, "scene entry %d", i)
		}
		scene.AddWeighted(c, e.Weight)
		if !e.Enabled {
			scene.SetEnabled(scene.Len()-1, false)
		}
	}
	return scene, nil
}
