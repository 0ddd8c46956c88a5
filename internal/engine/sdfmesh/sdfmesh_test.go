package sdfmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshpack/internal/engine/extract"
	"github.com/Faultbox/meshpack/internal/engine/instancing"
	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/math"
)

const unitTolerance = 1e-3

func TestGenerateSphere(t *testing.T) {
	mesh, err := Generate("sphere", 16)
	require.NoError(t, err)
	require.NoError(t, mesh.Validate())
	require.NotZero(t, mesh.TriangleCount())

	center := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	for i, v := range mesh.Vertices {
		assert.InDelta(t, 0.5, v.Position.Distance(center), 0.05, "vertex %d off the surface", i)
		assert.InDelta(t, 1, v.Normal.Length(), unitTolerance)
		assert.InDelta(t, 1, v.Tangent.Length(), unitTolerance)
		assert.InDelta(t, 1, v.Binormal.Length(), unitTolerance)

		outward := v.Position.Sub(center).Normalize()
		assert.Greater(t, v.Normal.Dot(outward), float32(0.9), "vertex %d normal not outward", i)
	}
}

func TestGenerateWeldsVertices(t *testing.T) {
	mesh, err := Generate("sphere", 12)
	require.NoError(t, err)

	// A closed welded surface shares each vertex among several triangles.
	assert.Less(t, mesh.VertexCount(), len(mesh.Indices)/2)
}

func TestGenerateWindingIsOutward(t *testing.T) {
	mesh, err := Generate("box", 10)
	require.NoError(t, err)

	for i := 0; i < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]]
		b := mesh.Vertices[mesh.Indices[i+1]]
		c := mesh.Vertices[mesh.Indices[i+2]]
		face := math.PlaneFromPoints(a.Position, b.Position, c.Position).Normal
		assert.GreaterOrEqual(t, face.Dot(a.Normal.Add(b.Normal).Add(c.Normal)), float32(0), "triangle %d", i/3)
	}
}

func TestSolidStartsAtOrigin(t *testing.T) {
	for _, shape := range Shapes() {
		t.Run(shape, func(t *testing.T) {
			s, err := Solid(shape)
			require.NoError(t, err)
			bb := s.BoundingBox()
			assert.InDelta(t, 0, bb.Min.X, 1e-9)
			assert.InDelta(t, 0, bb.Min.Y, 1e-9)
			assert.InDelta(t, 0, bb.Min.Z, 1e-9)
		})
	}
}

func TestUnknownShape(t *testing.T) {
	_, err := Generate("teapot", 8)
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestShapes(t *testing.T) {
	assert.Equal(t, []string{"box", "cylinder", "pillar", "sphere"}, Shapes())
}

func TestModelRoundTrip(t *testing.T) {
	mesh, err := Generate("cylinder", 10)
	require.NoError(t, err)

	data, err := formats.EncodeModel(mesh.Model("cylinder"))
	require.NoError(t, err)
	parsed, err := formats.ParseModel(data)
	require.NoError(t, err)

	out, err := extract.Extract(parsed)
	require.NoError(t, err)
	assert.Equal(t, mesh.VertexCount(), out.VertexCount())
	assert.Equal(t, mesh.Indices, out.Indices)
}

func TestSphereFitsContainer(t *testing.T) {
	mesh, err := Generate("sphere", 8)
	require.NoError(t, err)

	c := instancing.New(nil)
	assert.Positive(t, c.Remaining(mesh))
	require.NoError(t, c.AddInstance(mesh, 0))
}
