package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/math"
)

func TestDeclarationStride(t *testing.T) {
	assert.Equal(t, VertexStride, formats.DeclarationStride(Declaration()))
	assert.Equal(t, SkinnedVertexStride, formats.DeclarationStride(SkinnedDeclaration()))
}

func TestMatchesDeclaration(t *testing.T) {
	ok, reason := MatchesDeclaration(Declaration())
	assert.True(t, ok)
	assert.Empty(t, reason)

	swapped := Declaration()
	swapped[3].Usage, swapped[4].Usage = swapped[4].Usage, swapped[3].Usage
	ok, reason = MatchesDeclaration(swapped)
	assert.False(t, ok)
	assert.Contains(t, reason, "Binormal")

	ok, _ = MatchesDeclaration(Declaration()[:4])
	assert.False(t, ok)
}

func TestVertexEncoding(t *testing.T) {
	v := Vertex{
		Position: math.Vec3{X: 1, Y: 2, Z: 3},
		Normal:   math.Vec3{Y: 1},
		TexCoord: math.Vec2{X: 0.25, Y: 0.75},
		Tangent:  math.Vec3{X: 1},
		Binormal: math.Vec3{Z: -1},
	}
	data := EncodeVertices([]Vertex{v, v})
	require.Len(t, data, 2*VertexStride)
	assert.Equal(t, v, ReadVertex(data[VertexStride:]))
}

func TestSkinnedVertexPut(t *testing.T) {
	sv := Skin(Vertex{Position: math.Vec3{X: 1}}, 42)
	assert.Equal(t, FullWeight, sv.BlendWeights)

	buf := make([]byte, SkinnedVertexStride)
	sv.Put(buf)
	assert.Equal(t, uint8(42), buf[56])
	assert.Equal(t, []byte{0, 0, 0}, buf[57:60])
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, buf[60:64], "first weight is 1.0")
	assert.Equal(t, sv.Vertex, ReadVertex(buf))
}

func TestSourceMeshValidate(t *testing.T) {
	three := make([]Vertex, 3)
	tests := []struct {
		name    string
		mesh    SourceMesh
		wantErr error
	}{
		{"valid", SourceMesh{Vertices: three, Indices: []uint16{0, 1, 2}}, nil},
		{"empty", SourceMesh{}, nil},
		{"partial triangle", SourceMesh{Vertices: three, Indices: []uint16{0, 1}}, ErrIndexCount},
		{"index past end", SourceMesh{Vertices: three, Indices: []uint16{0, 1, 3}}, ErrIndexOutOfRange},
		{"too many vertices", SourceMesh{Vertices: make([]Vertex, MaxSourceVertices+1)}, ErrTooManyVertices},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestSourceMeshModel(t *testing.T) {
	box := NewBox()
	m := box.Model("crate")

	require.Len(t, m.Meshes, 1)
	require.Len(t, m.Meshes[0].Parts, 1)
	part := m.Meshes[0].Parts[0]
	assert.Equal(t, "crate", m.Meshes[0].Name)
	assert.Equal(t, int32(12), part.PrimitiveCount)
	assert.Equal(t, int32(24), part.NumVertices)
	ok, _ := MatchesDeclaration(part.Elements)
	assert.True(t, ok)

	vb := m.VertexBuffers[0]
	assert.Equal(t, 24, vb.VertexCount())
	assert.Equal(t, box.Vertices[7], ReadVertex(vb.Data[7*VertexStride:]))
	assert.Equal(t, int32(-1), m.Bones[0].Parent)
}
