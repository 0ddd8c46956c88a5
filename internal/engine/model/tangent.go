package model

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshpack/pkg/math"
)

// degenerateUV is the smallest UV-parallelogram area that still yields a
// usable tangent direction.
const degenerateUV = 1e-8

// GenerateTangentFrames derives per-vertex tangent and binormal vectors from
// the triangle list and texture coordinates. Contributions of every triangle
// sharing a vertex are accumulated, the tangent is orthogonalized against
// the normal and all three basis vectors are normalized. Vertices without a
// usable UV gradient get an arbitrary basis perpendicular to the normal.
func GenerateTangentFrames(vertices []Vertex, indices []uint16) {
	tan := make([]math.Vec3, len(vertices))
	bin := make([]math.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0, v1, v2 := &vertices[i0], &vertices[i1], &vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.TexCoord.Sub(v0.TexCoord)
		d2 := v2.TexCoord.Sub(v0.TexCoord)

		r := d1.X*d2.Y - d2.X*d1.Y
		if math32.Abs(r) < degenerateUV {
			continue
		}
		inv := 1 / r
		sdir := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(inv)
		tdir := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(inv)

		for _, idx := range [3]uint16{i0, i1, i2} {
			tan[idx] = tan[idx].Add(sdir)
			bin[idx] = bin[idx].Add(tdir)
		}
	}

	for i := range vertices {
		v := &vertices[i]
		n := v.Normal.Normalize()
		if n == (math.Vec3{}) {
			n = math.Vec3{Y: 1}
		}

		// Gram-Schmidt
		t := tan[i].Sub(n.Scale(n.Dot(tan[i]))).Normalize()
		if t == (math.Vec3{}) {
			t = n.Perpendicular()
		}

		b := n.Cross(t)
		if b.Dot(bin[i]) < 0 {
			b = b.Negate()
		}

		v.Normal = n
		v.Tangent = t
		v.Binormal = b.Normalize()
	}
}

// OrthonormalizeFrame renormalizes the normal, tangent and binormal of v,
// re-deriving the tangent and binormal when they collapsed.
func OrthonormalizeFrame(v *Vertex) {
	n := v.Normal.Normalize()
	if n == (math.Vec3{}) {
		n = math.Vec3{Y: 1}
	}
	t := v.Tangent.Sub(n.Scale(n.Dot(v.Tangent))).Normalize()
	if t == (math.Vec3{}) {
		t = n.Perpendicular()
	}
	b := n.Cross(t)
	if b.Dot(v.Binormal) < 0 {
		b = b.Negate()
	}
	v.Normal, v.Tangent, v.Binormal = n, t, b.Normalize()
}
