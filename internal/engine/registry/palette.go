package registry

import (
	"slices"
	"sync/atomic"

	"github.com/Faultbox/meshpack/pkg/math"
)

// Palette holds the instance transforms of one container, indexed by slot.
// One writer fills the back buffer and calls Publish; any number of readers
// call Front concurrently. Published slices are never written again.
type Palette struct {
	back    []math.Mat4
	front   atomic.Pointer[[]math.Mat4]
	version atomic.Uint64
}

// NewPalette creates a palette of n identity transforms.
func NewPalette(n int) *Palette {
	p := &Palette{back: make([]math.Mat4, n)}
	for i := range p.back {
		p.back[i] = math.Identity()
	}
	front := slices.Clone(p.back)
	p.front.Store(&front)
	return p
}

// Len returns the number of slots.
func (p *Palette) Len() int {
	return len(p.back)
}

// Back returns the buffer the writer fills before Publish. It keeps its
// contents across Publish calls.
func (p *Palette) Back() []math.Mat4 {
	return p.back
}

// Set writes one slot of the back buffer.
func (p *Palette) Set(slot int, m math.Mat4) {
	p.back[slot] = m
}

// Publish makes a snapshot of the back buffer visible to readers.
func (p *Palette) Publish() {
	front := slices.Clone(p.back)
	p.front.Store(&front)
	p.version.Add(1)
}

// Front returns the most recently published transforms. The slice must not
// be modified.
func (p *Palette) Front() []math.Mat4 {
	return *p.front.Load()
}

// Version returns the number of Publish calls so far.
func (p *Palette) Version() uint64 {
	return p.version.Load()
}
