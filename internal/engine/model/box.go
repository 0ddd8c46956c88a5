package model

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshpack/pkg/math"
)

// Box layout.
const (
	BoxFaces    = 6
	BoxVertices = BoxFaces * 4
	BoxIndices  = BoxFaces * 6
)

// boxFaces lists the four corners of each face of the {0,1}^3 cube.
var boxFaces = [BoxFaces][4]math.Vec3{
	{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}, // -X
	{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}, // +X
	{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}, // -Y
	{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}, // +Y
	{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}, // -Z
	{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}, // +Z
}

// NewBox generates a unit cube whose corners lie at {0,1}^3. Every face has
// its own four vertices so normals stay flat, UVs use box projection and the
// tangent frames are derived from the result.
func NewBox() *SourceMesh {
	center := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	vertices := make([]Vertex, 0, BoxVertices)
	indices := make([]uint16, 0, BoxIndices)

	for _, corners := range boxFaces {
		plane := math.PlaneFromPoints(corners[0], corners[1], corners[2])

		// Flip the winding if the normal faces the cube center.
		faceCenter := corners[0].Add(corners[2]).Scale(0.5)
		if plane.Normal.Dot(faceCenter.Sub(center)) < 0 {
			corners[1], corners[3] = corners[3], corners[1]
			plane.Normal = plane.Normal.Negate()
		}

		base := uint16(len(vertices))
		for _, p := range corners {
			vertices = append(vertices, Vertex{
				Position: p,
				Normal:   plane.Normal,
				TexCoord: BoxUV(p, plane.Normal),
			})
		}
		indices = append(indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}

	GenerateTangentFrames(vertices, indices)

	return &SourceMesh{Vertices: vertices, Indices: indices}
}

// BoxUV projects p onto the two axes orthogonal to the dominant axis of
// normal. Ties resolve in X, Y, Z order.
func BoxUV(p, normal math.Vec3) math.Vec2 {
	ax, ay, az := math32.Abs(normal.X), math32.Abs(normal.Y), math32.Abs(normal.Z)
	switch {
	case ax >= ay && ax >= az:
		return math.Vec2{X: p.Y, Y: p.Z}
	case ay >= az:
		return math.Vec2{X: p.X, Y: p.Z}
	default:
		return math.Vec2{X: p.X, Y: p.Y}
	}
}
