package assets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshpack/internal/engine/extract"
	"github.com/Faultbox/meshpack/internal/engine/model"
	"github.com/Faultbox/meshpack/internal/engine/sdfmesh"
	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/math"
)

func TestLoadBoxIsCached(t *testing.T) {
	m := NewManager()
	defer m.Close()

	first, err := m.Load("box")
	require.NoError(t, err)
	assert.Equal(t, model.BoxVertices, first.VertexCount())

	second, err := m.Load("box")
	require.NoError(t, err)
	assert.Same(t, first, second)

	hits, misses := m.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestLoadSDF(t *testing.T) {
	m := NewManager()

	mesh, err := m.Load("sdf:sphere:8")
	require.NoError(t, err)
	assert.NotZero(t, mesh.TriangleCount())

	_, err = m.Load("sdf:sphere:zero")
	assert.Error(t, err)

	_, err = m.Load("sdf:teapot")
	assert.ErrorIs(t, err, sdfmesh.ErrUnknownShape)
}

func TestLoadModelFromSearchDir(t *testing.T) {
	dir := t.TempDir()
	box := model.NewBox()
	mdl := box.Model("crate")
	mdl.Bones[0].Transform = math.Translate(0, 5, 0)
	require.NoError(t, formats.WriteModelFile(filepath.Join(dir, "props", "crate.amdl"), mdl))

	m := NewManager()
	require.NoError(t, m.AddSearchDir(dir))

	mesh, err := m.Load("props/crate.amdl")
	require.NoError(t, err)
	require.Equal(t, box.VertexCount(), mesh.VertexCount())
	assert.Equal(t, float32(5), mesh.Bounds().Min.Y)

	_, err = m.Load("props/missing.amdl")
	assert.Error(t, err)
}

func TestLoadModelFormatError(t *testing.T) {
	dir := t.TempDir()
	mdl := model.NewBox().Model("bad")
	mdl.Meshes[0].Parts[0].Elements = model.Declaration()[:3]
	path := filepath.Join(dir, "bad.amdl")
	require.NoError(t, formats.WriteModelFile(path, mdl))

	_, err := NewManager().Load(path)
	assert.ErrorIs(t, err, extract.ErrFormat)
}

func TestLoadUnknown(t *testing.T) {
	_, err := NewManager().Load("teapot.obj")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestAddSearchDirErrors(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.AddSearchDir(filepath.Join(t.TempDir(), "nope")))
}

func TestCache(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", model.NewBox())
	_, ok = c.Get("a")
	assert.True(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	c.Clear()
	hits, misses = c.Stats()
	assert.Zero(t, hits+misses)
}
