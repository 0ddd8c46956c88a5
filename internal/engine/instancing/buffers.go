package instancing

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/engine/model"
)

// Buffers is the immutable output of Build, ready for upload.
type Buffers struct {
	Vertices       []model.SkinnedVertex
	Indices        []uint16
	Stride         int
	VertexCount    int
	PrimitiveCount int
	InstanceCount  int
	Effect         any
}

// VertexBytes encodes the vertices in SkinnedDeclaration layout.
func (b *Buffers) VertexBytes() []byte {
	data := make([]byte, len(b.Vertices)*model.SkinnedVertexStride)
	for i := range b.Vertices {
		b.Vertices[i].Put(data[i*model.SkinnedVertexStride:])
	}
	return data
}

// IndexBytes encodes the indices as little-endian uint16.
func (b *Buffers) IndexBytes() []byte {
	data := make([]byte, len(b.Indices)*2)
	for i, idx := range b.Indices {
		binary.LittleEndian.PutUint16(data[i*2:], idx)
	}
	return data
}

// Stats summarizes a built container.
type Stats struct {
	Instances   int
	Vertices    int
	Indices     int
	Primitives  int
	VertexBytes int
	IndexBytes  int
}

// Stats returns the buffer sizes.
func (b *Buffers) Stats() Stats {
	return Stats{
		Instances:   b.InstanceCount,
		Vertices:    b.VertexCount,
		Indices:     len(b.Indices),
		Primitives:  b.PrimitiveCount,
		VertexBytes: b.VertexCount * b.Stride,
		IndexBytes:  len(b.Indices) * 2,
	}
}

// Fields returns s as structured log fields.
func (s Stats) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("instances", s.Instances),
		zap.Int("vertices", s.Vertices),
		zap.Int("indices", s.Indices),
		zap.Int("primitives", s.Primitives),
		zap.Int("vertex_bytes", s.VertexBytes),
		zap.Int("index_bytes", s.IndexBytes),
	}
}

// Add accumulates other into s.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		Instances:   s.Instances + other.Instances,
		Vertices:    s.Vertices + other.Vertices,
		Indices:     s.Indices + other.Indices,
		Primitives:  s.Primitives + other.Primitives,
		VertexBytes: s.VertexBytes + other.VertexBytes,
		IndexBytes:  s.IndexBytes + other.IndexBytes,
	}
}
