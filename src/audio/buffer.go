package audio

import (
	"sync"
	"sync/atomic"
)

// DefaultBufferCapacity ...
const DefaultBufferCapacity = 4096

// Point is an XY sample. Left channel is X, right channel is Y.
type Point struct {
	X float64
	Y float64
}

// ----- Sample Buffer ----- //

// SampleBuffer is a fixed-size ring of the most recent rendered points.
//
// The audio goroutine writes with Push/PushSlice, which never wait: a write
// that finds the lock taken is dropped. Readers take snapshots and may block.
type SampleBuffer struct {
	mu      sync.Mutex
	samples []Point
	pos     int // next write
	written atomic.Uint64
	dropped atomic.Uint64
}

// NewSampleBuffer ...
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &SampleBuffer{samples: make([]Point, capacity)}
}

// Cap ...
func (b *SampleBuffer) Cap() int {
	return len(b.samples)
}

// Push writes one point. It reports false when the point was dropped.
func (b *SampleBuffer) Push(p Point) bool {
	if !b.mu.TryLock() {
		b.dropped.Add(1)
		return false
	}
	b.samples[b.pos] = p
	b.pos = (b.pos + 1) % len(b.samples)
	b.written.Add(1)
	b.mu.Unlock()
	return true
}

// PushSlice writes points under a single lock acquisition.
func (b *SampleBuffer) PushSlice(points []Point) bool {
	if len(points) == 0 {
		return true
	}
	if !b.mu.TryLock() {
		b.dropped.Add(uint64(len(points)))
		return false
	}
	for _, p := range points {
		b.samples[b.pos] = p
		b.pos++
		if b.pos == len(b.samples) {
			b.pos = 0
		}
	}
	b.written.Add(uint64(len(points)))
	b.mu.Unlock()
	return true
}

// Samples returns the whole ring, oldest first.
func (b *SampleBuffer) Samples() []Point {
	return b.RecentSamples(len(b.samples))
}

// RecentSamples returns the newest n points, oldest first.
func (b *SampleBuffer) RecentSamples(n int) []Point {
	if n < 0 {
		n = 0
	}
	if n > len(b.samples) {
		n = len(b.samples)
	}
	out := make([]Point, n)
	b.mu.Lock()
	start := (b.pos - n + len(b.samples)) % len(b.samples)
	k := copy(out, b.samples[start:])
	if k < n {
		copy(out[k:], b.samples)
	}
	b.mu.Unlock()
	return out
}

// Clear zeroes the ring. It gives up and reports false when the writer holds the lock.
func (b *SampleBuffer) Clear() bool {
	if !b.mu.TryLock() {
		return false
	}
	for i := range b.samples {
		b.samples[i] = Point{}
	}
	b.pos = 0
	b.mu.Unlock()
	return true
}

// Written is the number of points pushed since creation.
func (b *SampleBuffer) Written() uint64 {
	return b.written.Load()
}

// Dropped is the number of points lost to contention.
func (b *SampleBuffer) Dropped() uint64 {
	return b.dropped.Load()
}
