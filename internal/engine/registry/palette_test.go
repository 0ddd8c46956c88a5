package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/meshpack/pkg/math"
)

func TestPalettePublish(t *testing.T) {
	p := NewPalette(3)
	assert.Equal(t, 3, p.Len())
	for _, m := range p.Front() {
		assert.Equal(t, math.Identity(), m)
	}

	p.Set(1, math.Translate(1, 2, 3))
	assert.Equal(t, math.Identity(), p.Front()[1], "write must not be visible before Publish")

	p.Publish()
	assert.Equal(t, math.Translate(1, 2, 3), p.Front()[1])
	assert.Equal(t, uint64(1), p.Version())

	// The back buffer keeps its state after Publish.
	assert.Equal(t, math.Translate(1, 2, 3), p.Back()[1])
	p.Set(0, math.Scale(2, 2, 2))
	p.Publish()
	front := p.Front()
	assert.Equal(t, math.Scale(2, 2, 2), front[0])
	assert.Equal(t, math.Translate(1, 2, 3), front[1])
}

func TestPaletteConcurrentReaders(t *testing.T) {
	p := NewPalette(16)
	done := make(chan struct{})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_ = p.Front()[0]
				_ = p.Version()
			}
		}()
	}

	for i := range 100 {
		for slot := range p.Back() {
			p.Set(slot, math.Translate(float32(i), 0, 0))
		}
		p.Publish()
	}
	close(done)
	wg.Wait()

	assert.Equal(t, uint64(100), p.Version())
	assert.Equal(t, float32(99), p.Front()[15].Translation().X)
}

func TestGridPlacement(t *testing.T) {
	place := GridPlacement(2, 10, math32.Pi)

	inst := Instance{Type: "a", TypeIndex: 1, Ordinal: 23, MaxAmount: 100}
	m := place(inst, Tick{})
	assert.Equal(t, math.Vec3{X: 6, Y: 2, Z: 4}, m.Translation())

	// Half a second at pi rad/s turns +X to -Z.
	m = place(inst, Tick{Elapsed: 500 * time.Millisecond})
	dir := m.TransformDirection(math.Vec3{X: 1})
	assert.True(t, dir.ApproxEqual(math.Vec3{Z: -1}, 1e-5), "dir %v", dir)

	inst.Ordinal = 100
	assert.Equal(t, math.Scale(0, 0, 0), place(inst, Tick{}))
}

func TestStaticPlacement(t *testing.T) {
	assert.Equal(t, math.Identity(), StaticPlacement(Instance{Ordinal: 0, MaxAmount: 1}, Tick{}))
	assert.Equal(t, math.Scale(0, 0, 0), StaticPlacement(Instance{Ordinal: 1, MaxAmount: 1}, Tick{}))
}
