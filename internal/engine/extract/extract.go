// Package extract flattens an authored multi-part model into a single
// deduplicated, object-space SourceMesh.
package extract

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/engine/model"
	"github.com/Faultbox/meshpack/internal/logger"
	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/math"
)

// Extract converts every part of every mesh in m into one SourceMesh.
// Positions are moved into object space by the owning bone's absolute
// transform; normals, tangents and binormals are rotated and renormalized.
// Vertices are deduplicated within each part only.
//
// All parts are validated before any vertex is produced, so a failure never
// yields partial output.
func Extract(m *formats.Model) (*model.SourceMesh, error) {
	if err := validate(m); err != nil {
		return nil, err
	}

	abs, err := AbsoluteTransforms(m.Bones)
	if err != nil {
		return nil, err
	}

	log := logger.Named("extract")
	out := &model.SourceMesh{}

	for mi := range m.Meshes {
		mesh := &m.Meshes[mi]

		world := math.Identity()
		if mesh.ParentBone >= 0 {
			world = abs[mesh.ParentBone]
		}

		for pi := range mesh.Parts {
			part := &mesh.Parts[pi]
			before := len(out.Vertices)

			if err := extractPart(out, m, part, world); err != nil {
				return nil, fmt.Errorf("mesh %q part %d: %w", mesh.Name, pi, err)
			}

			log.Debug("extracted part",
				zap.String("mesh", mesh.Name),
				zap.Int("part", pi),
				zap.Int("indices", int(part.PrimitiveCount)*3),
				zap.Int("vertices", len(out.Vertices)-before))
		}
	}

	log.Debug("extracted model",
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("vertices", out.VertexCount()),
		zap.Int("triangles", out.TriangleCount()))

	return out, nil
}

// extractPart appends one part's triangles to out. Dedup keys are the source
// vertex ids (index + BaseVertex) seen within this part.
func extractPart(out *model.SourceMesh, m *formats.Model, part *formats.MeshPart, world math.Mat4) error {
	vb := &m.VertexBuffers[part.VertexBuffer]
	ib := &m.IndexBuffers[part.IndexBuffer]
	stride := int(vb.Stride)

	start := int(part.StartIndex)
	count := int(part.PrimitiveCount) * 3
	seen := make(map[int]uint16, min(count, vb.VertexCount()))

	for _, idx := range ib.Indices[start : start+count] {
		src := int(idx) + int(part.BaseVertex)

		dst, ok := seen[src]
		if !ok {
			if len(out.Vertices) >= model.MaxSourceVertices {
				return fmt.Errorf("%w: more than %d vertices", ErrTooManyVertices, model.MaxSourceVertices)
			}
			off := src * stride
			v := model.ReadVertex(vb.Data[off : off+model.VertexStride])
			out.Vertices = append(out.Vertices, transformVertex(v, world))

			dst = uint16(len(out.Vertices) - 1)
			seen[src] = dst
		}
		out.Indices = append(out.Indices, dst)
	}
	return nil
}

// transformVertex moves v by world. Directions skip the translation.
func transformVertex(v model.Vertex, world math.Mat4) model.Vertex {
	v.Position = world.TransformPoint(v.Position)
	v.Normal = world.TransformDirection(v.Normal)
	v.Tangent = world.TransformDirection(v.Tangent)
	v.Binormal = world.TransformDirection(v.Binormal)
	model.OrthonormalizeFrame(&v)
	return v
}

// validate checks every part's declaration, layout and ranges.
func validate(m *formats.Model) error {
	for mi := range m.Meshes {
		mesh := &m.Meshes[mi]
		if mesh.ParentBone < -1 || int(mesh.ParentBone) >= len(m.Bones) {
			return fmt.Errorf("mesh %q: %w: parent bone %d, %d bones", mesh.Name, ErrInvalidBoneTree, mesh.ParentBone, len(m.Bones))
		}

		for pi := range mesh.Parts {
			part := &mesh.Parts[pi]

			if ok, reason := model.MatchesDeclaration(part.Elements); !ok {
				return &FormatError{Mesh: mesh.Name, Part: pi, Reason: reason}
			}
			if part.StreamOffset != 0 {
				return &UnsupportedLayoutError{Mesh: mesh.Name, Part: pi, StreamOffset: part.StreamOffset}
			}
			if err := validateRanges(m, part); err != nil {
				return fmt.Errorf("mesh %q part %d: %w", mesh.Name, pi, err)
			}
			if stride := m.VertexBuffers[part.VertexBuffer].Stride; int(stride) < model.VertexStride {
				reason := fmt.Sprintf("vertex stride %d is smaller than %d", stride, model.VertexStride)
				return &FormatError{Mesh: mesh.Name, Part: pi, Reason: reason}
			}
		}
	}
	return nil
}

func validateRanges(m *formats.Model, part *formats.MeshPart) error {
	if part.VertexBuffer < 0 || int(part.VertexBuffer) >= len(m.VertexBuffers) {
		return fmt.Errorf("%w: vertex buffer %d, %d buffers", ErrIndexOutOfRange, part.VertexBuffer, len(m.VertexBuffers))
	}
	if part.IndexBuffer < 0 || int(part.IndexBuffer) >= len(m.IndexBuffers) {
		return fmt.Errorf("%w: index buffer %d, %d buffers", ErrIndexOutOfRange, part.IndexBuffer, len(m.IndexBuffers))
	}

	vb := &m.VertexBuffers[part.VertexBuffer]
	ib := &m.IndexBuffers[part.IndexBuffer]
	start := int(part.StartIndex)
	end := start + int(part.PrimitiveCount)*3
	if start < 0 || part.PrimitiveCount < 0 || end > len(ib.Indices) {
		return fmt.Errorf("%w: draw range [%d,%d), %d indices", ErrIndexOutOfRange, start, end, len(ib.Indices))
	}

	vertices := vb.VertexCount()
	for _, idx := range ib.Indices[start:end] {
		src := int(idx) + int(part.BaseVertex)
		if src < 0 || src >= vertices {
			return fmt.Errorf("%w: vertex %d (index %d + base %d), %d vertices", ErrIndexOutOfRange, src, idx, part.BaseVertex, vertices)
		}
	}
	return nil
}
