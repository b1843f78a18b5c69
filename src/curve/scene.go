package curve

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// MinWeight is the smallest weight a scene entry can have.
const MinWeight = 0.1

type sceneEntry struct {
	curve   Curve
	weight  float64
	enabled bool
}

// Scene draws several curves in one trace. Each enabled entry gets a share of
// t proportional to its weight.
//
// A Scene is edited from one goroutine and must not be modified while it is being sampled.
type Scene struct {
	name    string
	entries []sceneEntry
	starts  []float64 // start of each enabled range
	ends    []float64 // end of each enabled range
	indices []int     // entry index of each enabled range
}

// NewScene ...
func NewScene(name string) *Scene {
	return &Scene{name: name}
}

// Add appends c with weight 1.
func (s *Scene) Add(c Curve) *Scene {
	return s.AddWeighted(c, 1)
}

// AddWeighted ...
func (s *Scene) AddWeighted(c Curve, weight float64) *Scene {
	if weight < MinWeight {
		weight = MinWeight
	}
	s.entries = append(s.entries, sceneEntry{curve: c, weight: weight, enabled: true})
	s.recompute()
	return s
}

// Remove ...
func (s *Scene) Remove(i int) (Curve, bool) {
	if i < 0 || i >= len(s.entries) {
		return nil, false
	}
	c := s.entries[i].curve
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.recompute()
	return c, true
}

// Len ...
func (s *Scene) Len() int {
	return len(s.entries)
}

// At returns the i-th curve and its weight.
func (s *Scene) At(i int) (Curve, float64, bool) {
	if i < 0 || i >= len(s.entries) {
		return nil, 0, false
	}
	e := s.entries[i]
	return e.curve, e.weight, e.enabled
}

// SetWeight ...
func (s *Scene) SetWeight(i int, weight float64) {
	if i < 0 || i >= len(s.entries) {
		return
	}
	if weight < MinWeight {
		weight = MinWeight
	}
	s.entries[i].weight = weight
	s.recompute()
}

// SetEnabled ...
func (s *Scene) SetEnabled(i int, enabled bool) {
	if i < 0 || i >= len(s.entries) {
		return
	}
	s.entries[i].enabled = enabled
	s.recompute()
}

// MoveUp ...
func (s *Scene) MoveUp(i int) {
	if i > 0 && i < len(s.entries) {
		s.entries[i], s.entries[i-1] = s.entries[i-1], s.entries[i]
		s.recompute()
	}
}

// MoveDown ...
func (s *Scene) MoveDown(i int) {
	if i >= 0 && i+1 < len(s.entries) {
		s.entries[i], s.entries[i+1] = s.entries[i+1], s.entries[i]
		s.recompute()
	}
}

func (s *Scene) recompute() {
	s.starts = s.starts[:0]
	s.ends = s.ends[:0]
	s.indices = s.indices[:0]
	weights := make([]float64, 0, len(s.entries))
	for i, e := range s.entries {
		if e.enabled {
			weights = append(weights, e.weight)
			s.indices = append(s.indices, i)
		}
	}
	total := floats.Sum(weights)
	if total <= 0 {
		s.indices = s.indices[:0]
		return
	}
	floats.Scale(1/total, weights)
	s.ends = floats.CumSum(make([]float64, len(weights)), weights)
	for i := range s.ends {
		start := 0.0
		if i > 0 {
			start = s.ends[i-1]
		}
		s.starts = append(s.starts, start)
	}
}

// locate returns the entry for t and t remapped into that entry's range.
func (s *Scene) locate(t float64) (int, float64, bool) {
	if len(s.indices) == 0 {
		return 0, 0, false
	}
	i := sort.Search(len(s.ends), func(i int) bool { return t < s.ends[i] })
	if i >= len(s.ends) {
		return s.indices[len(s.indices)-1], 0.999, true
	}
	width := s.ends[i] - s.starts[i]
	local := 0.0
	if width > 0 {
		local = (t - s.starts[i]) / width
	}
	return s.indices[i], local, true
}

// Sample ...
func (s *Scene) Sample(t float64) (float64, float64) {
	t = wrap(t)
	if i, local, ok := s.locate(t); ok {
		return clampPoint(s.entries[i].curve.Sample(local))
	}
	if len(s.entries) > 0 {
		return clampPoint(s.entries[0].curve.Sample(t))
	}
	return 0, 0
}

// Name ...
func (s *Scene) Name() string {
	return s.name
}

// Length ...
func (s *Scene) Length() float64 {
	length := 0.0
	for _, e := range s.entries {
		if e.enabled {
			length += e.curve.Length() * e.weight
		}
	}
	return length
}

// Closed ...
func (s *Scene) Closed() bool {
	for _, e := range s.entries {
		if e.enabled && !e.curve.Closed() {
			return false
		}
	}
	return true
}
