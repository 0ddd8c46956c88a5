// Package model defines the fixed vertex layout shared by every mesh
// producer and consumer, the immutable SourceMesh template, and the
// procedural box generator.
package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/math"
)

// MaxSourceVertices is the largest vertex count addressable by a
// SourceMesh's 16-bit indices.
const MaxSourceVertices = 65535

// SourceMesh validation errors.
var (
	ErrIndexCount      = errors.New("index count is not a multiple of 3")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrTooManyVertices = errors.New("too many vertices for 16-bit indices")
)

// SourceMesh is an already-deduplicated, object-space triangle list used as
// the template replicated by the packing container. It is produced once and
// shared read-only afterwards.
type SourceMesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// VertexCount returns the number of vertices.
func (m *SourceMesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *SourceMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks the triangle-list invariants.
func (m *SourceMesh) Validate() error {
	if len(m.Vertices) > MaxSourceVertices {
		return fmt.Errorf("%w: %d", ErrTooManyVertices, len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d", ErrIndexCount, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexOutOfRange, idx, i, len(m.Vertices))
		}
	}
	return nil
}

// Model wraps the mesh in a model with one identity bone, one mesh and one
// part using the canonical declaration.
func (m *SourceMesh) Model(name string) *formats.Model {
	return &formats.Model{
		Version: formats.CurrentModelVersion,
		Bones: []formats.Bone{
			{Name: "root", Parent: -1, Transform: math.Identity()},
		},
		VertexBuffers: []formats.VertexBuffer{
			{Stride: VertexStride, Data: EncodeVertices(m.Vertices)},
		},
		IndexBuffers: []formats.IndexBuffer{
			{Indices: m.Indices},
		},
		Meshes: []formats.Mesh{{
			Name:       name,
			ParentBone: 0,
			Parts: []formats.MeshPart{{
				PrimitiveCount: int32(m.TriangleCount()),
				NumVertices:    int32(m.VertexCount()),
				Elements:       Declaration(),
			}},
		}},
	}
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Bounds returns the bounding box of all vertex positions. An empty mesh
// yields a zero box.
func (m *SourceMesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for i := range m.Vertices[1:] {
		updateBounds(&b, m.Vertices[i+1].Position)
	}
	return b
}

func updateBounds(b *Bounds, p math.Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}
