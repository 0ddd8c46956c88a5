// Package assets resolves mesh source descriptors into shared SourceMeshes.
//
// A source is one of:
//
//	box                   the procedural unit cube
//	sdf:<shape>[:<cells>] a tessellated distance field primitive
//	<path>.amdl           an authored model file
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/engine/extract"
	"github.com/Faultbox/meshpack/internal/engine/model"
	"github.com/Faultbox/meshpack/internal/engine/sdfmesh"
	"github.com/Faultbox/meshpack/internal/logger"
	"github.com/Faultbox/meshpack/pkg/formats"
)

// Source prefixes and names.
const (
	SourceBox       = "box"
	SourceSDFPrefix = "sdf:"
	ModelExt        = ".amdl"
)

// ErrUnknownSource is returned for descriptors that name no known provider.
var ErrUnknownSource = errors.New("unknown mesh source")

// Manager loads source meshes and keeps each one for the manager's lifetime.
type Manager struct {
	dirs  []string
	cache *Cache
	log   *zap.Logger
	mu    sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		log:   logger.Named("assets"),
	}
}

// AddSearchDir adds a directory used to resolve relative model paths.
// Directories are searched in reverse order (last added = highest priority).
func (m *Manager) AddSearchDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding search dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding search dir %s: not a directory", dir)
	}

	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()

	return nil
}

// Load returns the SourceMesh for source, building it on first use.
func (m *Manager) Load(source string) (*model.SourceMesh, error) {
	if mesh, ok := m.cache.Get(source); ok {
		return mesh, nil
	}

	mesh, err := m.build(source)
	if err != nil {
		return nil, err
	}
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("source %s: %w", source, err)
	}

	m.cache.Set(source, mesh)
	m.log.Debug("loaded source mesh",
		zap.String("source", source),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()))
	return mesh, nil
}

func (m *Manager) build(source string) (*model.SourceMesh, error) {
	switch {
	case source == SourceBox:
		return model.NewBox(), nil

	case strings.HasPrefix(source, SourceSDFPrefix):
		shape, cells, err := parseSDF(strings.TrimPrefix(source, SourceSDFPrefix))
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source, err)
		}
		mesh, err := sdfmesh.Generate(shape, cells)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source, err)
		}
		// Round-trip through the model form so sdf meshes see the same
		// validation as authored ones.
		out, err := extract.Extract(mesh.Model(shape))
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source, err)
		}
		return out, nil

	case strings.EqualFold(filepath.Ext(source), ModelExt):
		path, err := m.resolve(source)
		if err != nil {
			return nil, err
		}
		mdl, err := formats.ParseModelFile(path)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source, err)
		}
		out, err := extract.Extract(mdl)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source, err)
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
}

// resolve finds a model file, trying the path itself first.
func (m *Manager) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.dirs) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.dirs[i], path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("file not found: %s", path)
}

func parseSDF(spec string) (shape string, cells int, err error) {
	shape, cellStr, found := strings.Cut(spec, ":")
	if !found {
		return shape, sdfmesh.DefaultCells, nil
	}
	cells, err = strconv.Atoi(cellStr)
	if err != nil || cells <= 0 {
		return "", 0, fmt.Errorf("invalid cell count %q", cellStr)
	}
	return shape, cells, nil
}

// Close drops every cached mesh.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dirs = nil
	m.cache.Clear()
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Cache is a simple in-memory cache for built meshes.
type Cache struct {
	data map[string]*model.SourceMesh
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*model.SourceMesh),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*model.SourceMesh, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mesh, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return mesh, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, mesh *model.SourceMesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = mesh
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*model.SourceMesh)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
