package sim

import (
	"sync"

	"github.com/Faultbox/meshpack/internal/engine/registry"
	"github.com/Faultbox/meshpack/pkg/math"
)

// DrawStats summarizes what one tick would draw.
type DrawStats struct {
	Tick      uint64
	DrawCalls int
	Triangles int
	Visible   int // Instances whose transform is not collapsed
}

// Recorder is a Submitter that reads every published palette and keeps the
// statistics of the latest tick.
type Recorder struct {
	mu    sync.Mutex
	last  DrawStats
	total int
}

// Submit implements Submitter.
func (r *Recorder) Submit(tick registry.Tick, entries []*registry.Entry) error {
	s := DrawStats{Tick: tick.Index}
	for _, e := range entries {
		if e.Buffers == nil {
			continue
		}
		s.DrawCalls++
		s.Triangles += e.Buffers.PrimitiveCount
		for _, m := range e.Palette.Front() {
			if !collapsed(m) {
				s.Visible++
			}
		}
	}

	r.mu.Lock()
	r.last = s
	r.total++
	r.mu.Unlock()
	return nil
}

// Last returns the statistics of the latest submitted tick.
func (r *Recorder) Last() DrawStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Submissions returns the number of Submit calls.
func (r *Recorder) Submissions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// collapsed reports whether m maps every point to its translation.
func collapsed(m math.Mat4) bool {
	for _, i := range [...]int{0, 1, 2, 4, 5, 6, 8, 9, 10} {
		if m[i] != 0 {
			return false
		}
	}
	return true
}
