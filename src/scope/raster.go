package scope

import "math"

// Ramp is the glyph for each brightness level, dimmest first.
var Ramp = []rune{' ', '·', '•', '●', '█'}

// Raster is a grid of phosphor brightness in [0, 1].
// X maps left to right and Y bottom to top, both over [-1, 1].
type Raster struct {
	width  int
	height int
	cells  []float64
}

// NewRaster ...
func NewRaster(width, height int) *Raster {
	r := &Raster{}
	r.Resize(width, height)
	return r
}

// Resize clears the raster when the size changes.
func (r *Raster) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == r.width && height == r.height {
		return
	}
	r.width = width
	r.height = height
	r.cells = make([]float64, width*height)
}

// Size ...
func (r *Raster) Size() (int, int) {
	return r.width, r.height
}

// At returns the brightness of a cell.
func (r *Raster) At(col, row int) float64 {
	if col < 0 || col >= r.width || row < 0 || row >= r.height {
		return 0
	}
	return r.cells[row*r.width+col]
}

// Decay multiplies every cell by persistence. Zero clears the raster.
func (r *Raster) Decay(persistence float64) {
	if persistence <= 0 {
		for i := range r.cells {
			r.cells[i] = 0
		}
		return
	}
	for i, v := range r.cells {
		v *= persistence
		if v < 1.0/256 {
			v = 0
		}
		r.cells[i] = v
	}
}

// Cell maps a point to its cell. Points outside [-1, 1] report false.
func (r *Raster) Cell(x, y float64) (int, int, bool) {
	if math.IsNaN(x) || math.IsNaN(y) || x < -1 || x > 1 || y < -1 || y > 1 {
		return 0, 0, false
	}
	col := int(math.Round((x + 1) / 2 * float64(r.width-1)))
	row := int(math.Round((1 - y) / 2 * float64(r.height-1)))
	return col, row, true
}

// Plot brightens the cell under a point.
func (r *Raster) Plot(x, y, intensity float64) {
	col, row, ok := r.Cell(x, y)
	if !ok {
		return
	}
	r.add(col, row, intensity)
}

// PlotLine brightens the cells between two points.
func (r *Raster) PlotLine(x1, y1, x2, y2, intensity float64) {
	c1, r1, ok1 := r.Cell(x1, y1)
	c2, r2, ok2 := r.Cell(x2, y2)
	if !ok1 || !ok2 {
		r.Plot(x1, y1, intensity)
		r.Plot(x2, y2, intensity)
		return
	}
	steps := max(abs(c2-c1), abs(r2-r1))
	if steps == 0 {
		r.add(c1, r1, intensity)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col := int(math.Round(float64(c1) + t*float64(c2-c1)))
		row := int(math.Round(float64(r1) + t*float64(r2-r1)))
		r.add(col, row, intensity)
	}
}

func (r *Raster) add(col, row int, intensity float64) {
	i := row*r.width + col
	r.cells[i] = math.Min(1, r.cells[i]+intensity)
}

// Trace plots points as connected segments scaled by gain.
func (r *Raster) Trace(xs, ys []float64, gain, intensity float64) {
	n := min(len(xs), len(ys))
	for i := 0; i < n; i++ {
		x, y := xs[i]*gain, ys[i]*gain
		if i == 0 {
			r.Plot(x, y, intensity)
			continue
		}
		r.PlotLine(xs[i-1]*gain, ys[i-1]*gain, x, y, intensity)
	}
}

// Level converts a brightness into an index of Ramp.
func Level(v float64) int {
	if v <= 0 {
		return 0
	}
	l := 1 + int(v*float64(len(Ramp)-1))
	if l >= len(Ramp) {
		l = len(Ramp) - 1
	}
	return l
}

// Graticule returns the grid glyph of a cell, or 0 when the cell is off the grid.
// The center axes are drawn as lines and the 8x8 divisions as dots.
func (r *Raster) Graticule(col, row int) rune {
	cx, cy := (r.width-1)/2, (r.height-1)/2
	switch {
	case col == cx && row == cy:
		return '┼'
	case row == cy:
		return '─'
	case col == cx:
		return '│'
	case division(col, r.width) && division(row, r.height):
		return '·'
	}
	return 0
}

// division reports whether i is on one of 9 evenly spaced grid lines across n cells.
func division(i, n int) bool {
	if n < 9 {
		return false
	}
	k := math.Round(float64(i) * 8 / float64(n-1))
	return int(math.Round(k*float64(n-1)/8)) == i
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
