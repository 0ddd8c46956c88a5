// Package sdfmesh tessellates signed distance field primitives into source
// meshes.
package sdfmesh

import (
	"errors"
	"fmt"
	gomath "math"
	"sort"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/Faultbox/meshpack/internal/engine/model"
	"github.com/Faultbox/meshpack/pkg/math"
)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 24

// weldEpsilon is the quantization step used to merge marching cubes
// vertices that land on the same cube edge.
const weldEpsilon = 1e-5

// ErrUnknownShape is returned for shape names Solid does not know.
var ErrUnknownShape = errors.New("unknown sdf shape")

// shapes builds each primitive inside the unit cube [0,1]^3.
var shapes = map[string]func() (sdf.SDF3, error){
	"box": func() (sdf.SDF3, error) {
		return sdf.Box3D(v3.Vec{X: 1, Y: 1, Z: 1}, 0.1)
	},
	"sphere": func() (sdf.SDF3, error) {
		return sdf.Sphere3D(0.5)
	},
	"cylinder": func() (sdf.SDF3, error) {
		return sdf.Cylinder3D(1, 0.5, 0.05)
	},
	"pillar": func() (sdf.SDF3, error) {
		base, err := sdf.Box3D(v3.Vec{X: 1, Y: 1, Z: 0.2}, 0.02)
		if err != nil {
			return nil, err
		}
		base = sdf.Transform3D(base, sdf.Translate3d(v3.Vec{Z: -0.4}))
		shaft, err := sdf.Cylinder3D(1, 0.3, 0.02)
		if err != nil {
			return nil, err
		}
		return sdf.Union3D(base, shaft), nil
	},
}

// Shapes returns the known shape names, sorted.
func Shapes() []string {
	names := make([]string, 0, len(shapes))
	for name := range shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Solid returns the named primitive with its bounding box moved to start at
// the origin.
func Solid(shape string) (sdf.SDF3, error) {
	build, ok := shapes[shape]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownShape, shape, Shapes())
	}
	s, err := build()
	if err != nil {
		return nil, fmt.Errorf("sdf %s: %w", shape, err)
	}
	bb := s.BoundingBox()
	return sdf.Transform3D(s, sdf.Translate3d(bb.Min.Neg())), nil
}

// Tessellate runs marching cubes over s and welds the triangle soup into
// an indexed SourceMesh. Normals come from the distance field gradient,
// texture coordinates from box projection and tangent frames from both.
func Tessellate(s sdf.SDF3, cells int) (*model.SourceMesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))

	size := s.BoundingBox().Size()
	h := gomath.Max(size.X, gomath.Max(size.Y, size.Z)) / float64(cells) * 0.1

	mesh := &model.SourceMesh{}
	weld := make(map[[3]int64]uint16)

	vertexFor := func(p v3.Vec) (uint16, error) {
		key := [3]int64{
			int64(gomath.Round(p.X / weldEpsilon)),
			int64(gomath.Round(p.Y / weldEpsilon)),
			int64(gomath.Round(p.Z / weldEpsilon)),
		}
		if idx, ok := weld[key]; ok {
			return idx, nil
		}
		if len(mesh.Vertices) >= model.MaxSourceVertices {
			return 0, fmt.Errorf("%w: raise the cell size", model.ErrTooManyVertices)
		}
		n := gradient(s, p, h)
		pos := toVec3(p)
		mesh.Vertices = append(mesh.Vertices, model.Vertex{
			Position: pos,
			Normal:   n,
			TexCoord: model.BoxUV(pos, n),
		})
		idx := uint16(len(mesh.Vertices) - 1)
		weld[key] = idx
		return idx, nil
	}

	for _, tri := range triangles {
		var idx [3]uint16
		for j := 0; j < 3; j++ {
			var err error
			if idx[j], err = vertexFor(tri[j]); err != nil {
				return nil, err
			}
		}
		// Welding can collapse slivers.
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}

		a, b, c := mesh.Vertices[idx[0]].Position, mesh.Vertices[idx[1]].Position, mesh.Vertices[idx[2]].Position
		outward := mesh.Vertices[idx[0]].Normal.Add(mesh.Vertices[idx[1]].Normal).Add(mesh.Vertices[idx[2]].Normal)
		if math.PlaneFromPoints(a, b, c).Normal.Dot(outward) < 0 {
			idx[1], idx[2] = idx[2], idx[1]
		}
		mesh.Indices = append(mesh.Indices, idx[0], idx[1], idx[2])
	}

	compact(mesh)
	model.GenerateTangentFrames(mesh.Vertices, mesh.Indices)
	return mesh, nil
}

// compact reorders vertices by first use and drops the ones only dropped
// triangles referenced.
func compact(mesh *model.SourceMesh) {
	remap := make([]int32, len(mesh.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	vertices := make([]model.Vertex, 0, len(mesh.Vertices))
	for i, idx := range mesh.Indices {
		if remap[idx] < 0 {
			remap[idx] = int32(len(vertices))
			vertices = append(vertices, mesh.Vertices[idx])
		}
		mesh.Indices[i] = uint16(remap[idx])
	}
	mesh.Vertices = vertices
}

// Generate tessellates a named shape.
func Generate(shape string, cells int) (*model.SourceMesh, error) {
	s, err := Solid(shape)
	if err != nil {
		return nil, err
	}
	return Tessellate(s, cells)
}

// gradient estimates the outward surface normal at p by central differences.
func gradient(s sdf.SDF3, p v3.Vec, h float64) math.Vec3 {
	dx := v3.Vec{X: h}
	dy := v3.Vec{Y: h}
	dz := v3.Vec{Z: h}
	g := v3.Vec{
		X: s.Evaluate(p.Add(dx)) - s.Evaluate(p.Sub(dx)),
		Y: s.Evaluate(p.Add(dy)) - s.Evaluate(p.Sub(dy)),
		Z: s.Evaluate(p.Add(dz)) - s.Evaluate(p.Sub(dz)),
	}
	return toVec3(g).Normalize()
}

func toVec3(v v3.Vec) math.Vec3 {
	return math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
