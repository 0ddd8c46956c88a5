// Package instancing packs many tagged copies of a SourceMesh into one
// shared vertex/index buffer pair drawn with a single call. Each vertex
// carries the slot of the transform that positions its instance.
package instancing

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/engine/model"
	"github.com/Faultbox/meshpack/internal/logger"
)

// Container limits.
const (
	// MaxCombinedVertices is the largest vertex count addressable by 16-bit
	// indices once 0xFFFF is reserved as the primitive-restart value.
	MaxCombinedVertices = 65535

	// DefaultMaxInstances matches the transform palette size of the
	// reference skinning shader.
	DefaultMaxInstances = 75

	// MaxSlots is the number of distinct slots a one-byte tag can hold.
	MaxSlots = 256
)

// Container errors. None of them modify the container.
var (
	ErrCapacityExceeded = errors.New("instance would exceed the combined vertex limit")
	ErrContainerFull    = errors.New("container holds the maximum number of instances")
	ErrSlotOutOfRange   = errors.New("instance slot out of range")
	ErrAlreadyBuilt     = errors.New("container already built")
	ErrDisposed         = errors.New("container disposed")
	ErrInvalidSource    = errors.New("invalid source mesh")
)

// Option configures a Container.
type Option func(*Container)

// WithMaxInstances sets the number of instances, and therefore slots, the
// container accepts. Values outside 1..MaxSlots are clamped.
func WithMaxInstances(n int) Option {
	return func(c *Container) {
		c.maxInstances = min(max(n, 1), MaxSlots)
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Container) {
		c.log = log
	}
}

// Container accumulates instances until Build freezes them into Buffers.
// It is not safe for concurrent use; distinct containers are independent.
type Container struct {
	effect       any
	maxInstances int
	log          *zap.Logger

	// Staging, dropped by Build.
	vertices  []model.SkinnedVertex
	indices   []uint16
	instances int

	buffers  *Buffers
	disposed bool
}

// New creates an empty container. effect is an opaque rendering handle
// carried through to the built Buffers.
func New(effect any, opts ...Option) *Container {
	c := &Container{
		effect:       effect,
		maxInstances: DefaultMaxInstances,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("instancing")
	}
	return c
}

// MaxInstances returns the configured instance limit.
func (c *Container) MaxInstances() int {
	return c.maxInstances
}

// Instances returns the number of instances added so far.
func (c *Container) Instances() int {
	return c.instances
}

// VertexCount returns the combined vertex count staged so far, or the built
// vertex count after Build.
func (c *Container) VertexCount() int {
	if c.buffers != nil {
		return c.buffers.VertexCount
	}
	return len(c.vertices)
}

// Effect returns the rendering handle passed to New.
func (c *Container) Effect() any {
	return c.effect
}

// Buffers returns the built buffers, or nil before Build and after Dispose.
func (c *Container) Buffers() *Buffers {
	return c.buffers
}

// Built reports whether Build has succeeded.
func (c *Container) Built() bool {
	return c.buffers != nil
}

// AddInstance appends a copy of src whose vertices are tagged with slot.
// Indices are offset by the combined vertex count before the call. On any
// error the container is left unchanged.
func (c *Container) AddInstance(src *model.SourceMesh, slot int) error {
	if err := c.usable(); err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: nil", ErrInvalidSource)
	}
	if err := src.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	if slot < 0 || slot >= c.maxInstances {
		return fmt.Errorf("%w: slot %d, limit %d", ErrSlotOutOfRange, slot, c.maxInstances)
	}
	if c.instances >= c.maxInstances {
		return fmt.Errorf("%w: %d instances", ErrContainerFull, c.instances)
	}

	base := len(c.vertices)
	if base+len(src.Vertices) > MaxCombinedVertices {
		return fmt.Errorf("%w: %d + %d vertices, limit %d", ErrCapacityExceeded, base, len(src.Vertices), MaxCombinedVertices)
	}

	tag := uint8(slot)
	for i := range src.Vertices {
		c.vertices = append(c.vertices, model.Skin(src.Vertices[i], tag))
	}
	for _, idx := range src.Indices {
		c.indices = append(c.indices, uint16(base+int(idx)))
	}
	c.instances++
	return nil
}

// Remaining returns how many more copies of src the container accepts.
func (c *Container) Remaining(src *model.SourceMesh) int {
	if c.usable() != nil || src == nil {
		return 0
	}
	free := c.maxInstances - c.instances
	if n := len(src.Vertices); n > 0 {
		free = min(free, (MaxCombinedVertices-len(c.vertices))/n)
	}
	return free
}

// Build freezes the staged geometry into Buffers and releases the staging
// lists. A container can be built once; later calls return ErrAlreadyBuilt
// and leave the first result in place.
func (c *Container) Build() (*Buffers, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}

	b := &Buffers{
		Vertices:       c.vertices,
		Indices:        c.indices,
		Stride:         model.SkinnedVertexStride,
		VertexCount:    len(c.vertices),
		PrimitiveCount: len(c.indices) / 3,
		InstanceCount:  c.instances,
		Effect:         c.effect,
	}
	c.buffers = b
	c.vertices = nil
	c.indices = nil

	c.log.Debug("container built", b.Stats().Fields()...)
	return b, nil
}

// Dispose releases the buffers. It is safe to call more than once; every
// other call on a disposed container returns ErrDisposed.
func (c *Container) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.buffers = nil
	c.vertices = nil
	c.indices = nil
}

func (c *Container) usable() error {
	if c.disposed {
		return ErrDisposed
	}
	if c.buffers != nil {
		return ErrAlreadyBuilt
	}
	return nil
}
