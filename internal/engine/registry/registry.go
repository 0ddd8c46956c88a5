// Package registry groups packing containers by mesh type, assigns each
// instance a transform slot and refreshes the transform palettes every tick.
package registry

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshpack/internal/engine/instancing"
	"github.com/Faultbox/meshpack/internal/engine/model"
	"github.com/Faultbox/meshpack/internal/logger"
)

// DefaultPaletteSlots is the palette size of the reference skinning shader.
const DefaultPaletteSlots = instancing.DefaultMaxInstances

// TypeSpec declares one mesh type.
type TypeSpec struct {
	Name      string
	Effect    any
	Source    *model.SourceMesh
	MaxAmount int
}

// Entry is one packing container and the palette that positions it.
type Entry struct {
	Type      string
	Object    string
	Index     int
	Container *instancing.Container
	Buffers   *instancing.Buffers
	Palette   *Palette
}

type meshType struct {
	spec    TypeSpec
	index   int
	entries []*Entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithPaletteSlots sets the transform palette size perContainer is checked
// against.
func WithPaletteSlots(n int) Option {
	return func(r *Registry) {
		r.paletteSlots = n
	}
}

// WithPlacement sets the function Update uses to position instances.
func WithPlacement(fn PlacementFunc) Option {
	return func(r *Registry) {
		r.placement = fn
	}
}

// WithParallelBuild controls whether Finalize builds containers concurrently.
func WithParallelBuild(parallel bool) Option {
	return func(r *Registry) {
		r.parallel = parallel
	}
}

// WithLogger sets the registry logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// Registry owns every container of every declared mesh type.
type Registry struct {
	perContainer int
	paletteSlots int
	placement    PlacementFunc
	parallel     bool
	log          *zap.Logger

	mu        sync.RWMutex
	types     []*meshType
	byName    map[string]*meshType
	finalized bool
	closed    bool
}

// New creates a registry that packs perContainer instances into each
// container. perContainer must be addressable by the transform palette.
func New(perContainer int, opts ...Option) (*Registry, error) {
	r := &Registry{
		perContainer: perContainer,
		paletteSlots: DefaultPaletteSlots,
		placement:    StaticPlacement,
		parallel:     true,
		byName:       make(map[string]*meshType),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Named("registry")
	}

	limit := min(r.paletteSlots, instancing.MaxSlots)
	if perContainer < 1 || perContainer > limit {
		return nil, &SlotRangeError{PerContainer: perContainer, Limit: limit}
	}
	return r, nil
}

// PerContainer returns the number of instances packed per container.
func (r *Registry) PerContainer() int {
	return r.perContainer
}

// Declare registers a mesh type and pre-sizes its containers. Every
// container will hold perContainer instances, so the type gets
// ceil(MaxAmount/perContainer) of them.
func (r *Registry) Declare(spec TypeSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.mutable(); err != nil {
		return err
	}
	if spec.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidType)
	}
	if _, ok := r.byName[spec.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, spec.Name)
	}
	if spec.Source == nil {
		return fmt.Errorf("%w: %s has no source mesh", ErrInvalidType, spec.Name)
	}
	if spec.MaxAmount <= 0 {
		return fmt.Errorf("%w: %s max amount %d", ErrInvalidType, spec.Name, spec.MaxAmount)
	}
	if err := spec.Source.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidType, spec.Name, err)
	}
	if need := r.perContainer * spec.Source.VertexCount(); need > instancing.MaxCombinedVertices {
		return fmt.Errorf("%s: %w: %d copies of %d vertices need %d", spec.Name,
			instancing.ErrCapacityExceeded, r.perContainer, spec.Source.VertexCount(), need)
	}

	mt := &meshType{spec: spec, index: len(r.types)}
	count := (spec.MaxAmount + r.perContainer - 1) / r.perContainer
	mt.entries = make([]*Entry, count)
	for i := range mt.entries {
		mt.entries[i] = &Entry{
			Type:      spec.Name,
			Object:    fmt.Sprintf("%s_%d", spec.Name, i),
			Index:     i,
			Container: instancing.New(spec.Effect, instancing.WithMaxInstances(r.perContainer), instancing.WithLogger(r.log)),
			Palette:   NewPalette(r.perContainer),
		}
	}

	r.types = append(r.types, mt)
	r.byName[spec.Name] = mt

	r.log.Info("declared mesh type",
		zap.String("type", spec.Name),
		zap.Int("max_amount", spec.MaxAmount),
		zap.Int("containers", count),
		zap.Int("source_vertices", spec.Source.VertexCount()))
	return nil
}

// Finalize fills every container with perContainer instances using slots
// 0..perContainer-1 and builds it. Containers are independent, so they are
// built concurrently unless parallel build is disabled.
func (r *Registry) Finalize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.mutable(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if !r.parallel {
		g.SetLimit(1)
	}
	for _, mt := range r.types {
		for _, e := range mt.entries {
			g.Go(func() error {
				return r.buildEntry(ctx, e, mt.spec.Source)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.finalized = true

	total := r.stats()
	r.log.Info("registry finalized", append(total.Fields(), zap.Int("containers", r.containerCount()))...)
	return nil
}

func (r *Registry) buildEntry(ctx context.Context, e *Entry, src *model.SourceMesh) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for slot := range r.perContainer {
		if err := e.Container.AddInstance(src, slot); err != nil {
			return fmt.Errorf("%s: %w", e.Object, err)
		}
	}
	b, err := e.Container.Build()
	if err != nil {
		return fmt.Errorf("%s: %w", e.Object, err)
	}
	e.Buffers = b
	return nil
}

// Update recomputes every instance transform for tick and publishes each
// palette. Geometry is never touched.
func (r *Registry) Update(tick Tick) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return ErrClosed
	}
	if !r.finalized {
		return ErrNotFinalized
	}

	for _, mt := range r.types {
		inst := Instance{Type: mt.spec.Name, TypeIndex: mt.index, MaxAmount: mt.spec.MaxAmount}
		for _, e := range mt.entries {
			inst.Container = e.Index
			back := e.Palette.Back()
			for slot := range back {
				inst.Slot = slot
				inst.Ordinal = e.Index*r.perContainer + slot
				back[slot] = r.placement(inst, tick)
			}
			e.Palette.Publish()
		}
	}
	return nil
}

// Entries returns the containers of a type in index order.
func (r *Registry) Entries(typeName string) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mt, ok := r.byName[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}
	return append([]*Entry(nil), mt.entries...), nil
}

// All returns every entry of every type in declaration order.
func (r *Registry) All() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Entry
	for _, mt := range r.types {
		all = append(all, mt.entries...)
	}
	return all
}

// Types returns the declared type names in declaration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.types))
	for i, mt := range r.types {
		names[i] = mt.spec.Name
	}
	return names
}

// Stats sums the buffer statistics of every built container.
func (r *Registry) Stats() instancing.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats()
}

func (r *Registry) stats() instancing.Stats {
	var total instancing.Stats
	for _, mt := range r.types {
		for _, e := range mt.entries {
			if e.Buffers != nil {
				total = total.Add(e.Buffers.Stats())
			}
		}
	}
	return total
}

func (r *Registry) containerCount() int {
	n := 0
	for _, mt := range r.types {
		n += len(mt.entries)
	}
	return n
}

// Close disposes every container. Further calls other than reads fail
// with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, mt := range r.types {
		for _, e := range mt.entries {
			e.Container.Dispose()
			e.Buffers = nil
		}
	}
	r.log.Debug("registry closed", zap.Int("containers", r.containerCount()))
}

func (r *Registry) mutable() error {
	if r.closed {
		return ErrClosed
	}
	if r.finalized {
		return ErrFinalized
	}
	return nil
}
