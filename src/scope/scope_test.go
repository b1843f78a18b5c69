package scope

import (
	"math"
	"testing"

	"github.com/jinjor/desktop-oscilloscope/src/audio"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func expectNearlyEqual(t *testing.T, actual, expected, tolerance float64) {
	t.Helper()
	if math.Abs(actual-expected) > tolerance {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func TestRasterCell(t *testing.T) {
	r := NewRaster(21, 11)
	col, row, ok := r.Cell(0, 0)
	expectEqual(t, ok, true)
	expectEqual(t, col, 10)
	expectEqual(t, row, 5)

	col, row, _ = r.Cell(-1, 1)
	expectEqual(t, col, 0)
	expectEqual(t, row, 0)
	col, row, _ = r.Cell(1, -1)
	expectEqual(t, col, 20)
	expectEqual(t, row, 10)

	_, _, ok = r.Cell(1.01, 0)
	expectEqual(t, ok, false)
	_, _, ok = r.Cell(math.NaN(), 0)
	expectEqual(t, ok, false)
}

func TestRasterPlotAndDecay(t *testing.T) {
	r := NewRaster(21, 11)
	r.Plot(0, 0, 0.6)
	r.Plot(0, 0, 0.6)
	r.Plot(5, 5, 1)
	expectEqual(t, r.At(10, 5), 1.0)
	r.Decay(0.5)
	expectEqual(t, r.At(10, 5), 0.5)
	r.Decay(0.001)
	expectEqual(t, r.At(10, 5), 0.0)

	r.Plot(0, 0, 1)
	r.Decay(0)
	expectEqual(t, r.At(10, 5), 0.0)
	expectEqual(t, r.At(-1, 100), 0.0)
}

func TestRasterPlotLineIsContinuous(t *testing.T) {
	r := NewRaster(21, 11)
	r.PlotLine(-1, 0, 1, 0, 0.5)
	for col := 0; col < 21; col++ {
		expectEqual(t, r.At(col, 5), 0.5)
	}
	expectEqual(t, r.At(0, 4), 0.0)
}

func TestRasterTraceAppliesGain(t *testing.T) {
	r := NewRaster(21, 11)
	r.Trace([]float64{0.5}, []float64{0}, 2, 1)
	expectEqual(t, r.At(20, 5), 1.0)
	expectEqual(t, r.At(15, 5), 0.0)
}

func TestRasterResize(t *testing.T) {
	r := NewRaster(0, -3)
	w, h := r.Size()
	expectEqual(t, w, 1)
	expectEqual(t, h, 1)
	r.Resize(10, 5)
	r.Plot(0, 0, 1)
	r.Resize(10, 5)
	expectEqual(t, r.At(5, 2), 1.0)
	r.Resize(11, 5)
	expectEqual(t, r.At(5, 2), 0.0)
}

func TestLevel(t *testing.T) {
	expectEqual(t, Level(0), 0)
	expectEqual(t, Level(-1), 0)
	expectEqual(t, Level(0.01), 1)
	expectEqual(t, Level(0.5), 3)
	expectEqual(t, Level(1), len(Ramp)-1)
	expectEqual(t, Level(7), len(Ramp)-1)
}

func TestGraticule(t *testing.T) {
	r := NewRaster(33, 17)
	expectEqual(t, r.Graticule(16, 8), '┼')
	expectEqual(t, r.Graticule(0, 8), '─')
	expectEqual(t, r.Graticule(16, 0), '│')
	expectEqual(t, r.Graticule(0, 0), '·')
	expectEqual(t, r.Graticule(4, 2), '·')
	expectEqual(t, r.Graticule(32, 16), '·')
	expectEqual(t, r.Graticule(1, 1), rune(0))
	expectEqual(t, NewRaster(5, 5).Graticule(0, 0), rune(0))
}

func TestAutoGain(t *testing.T) {
	expectEqual(t, Target(0), 1.0)
	expectEqual(t, Target(math.NaN()), 1.0)
	expectNearlyEqual(t, Target(0.45), 2, 1e-9)
	expectEqual(t, Target(0.01), maxGain)
	expectEqual(t, Target(10), minGain)

	a := NewAutoGain(60)
	expectEqual(t, a.Gain(), 1.0)
	for i := 0; i < 600; i++ {
		a.Update(0.45)
	}
	expectNearlyEqual(t, a.Gain(), 2, 0.01)
}

func TestPeak(t *testing.T) {
	expectEqual(t, Peak(nil, nil), 0.0)
	expectEqual(t, Peak([]float64{0.2, -0.7}, []float64{0.5}), 0.7)
}

func TestFrameDrawsOnlyNewPoints(t *testing.T) {
	buffer := audio.NewSampleBuffer(64)
	s := New(Config{Buffer: buffer})
	settings := audio.DisplaySettings{Intensity: 1, Persistence: 0.5, Zoom: 1}

	buffer.Push(audio.Point{X: 0, Y: 0})
	s.Frame(21, 11, settings)
	expectEqual(t, s.raster.At(10, 5), 1.0)
	expectEqual(t, len(s.xs), 1)

	s.Frame(21, 11, settings)
	expectEqual(t, s.raster.At(10, 5), 0.5)
	expectEqual(t, len(s.xs), 0)

	for i := 0; i < 100; i++ {
		buffer.Push(audio.Point{X: 0.1, Y: 0.1})
	}
	s.Frame(21, 11, settings)
	expectEqual(t, len(s.xs), 64)
}
