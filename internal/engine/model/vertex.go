package model

import (
	"encoding/binary"
	gomath "math"

	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/math"
)

// Encoded vertex sizes in bytes.
const (
	VertexStride        = 56
	SkinnedVertexStride = 76
)

// Vertex is the fixed per-vertex attribute layout. Normal, Tangent and
// Binormal are unit length and mutually near-orthogonal.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
	Tangent  math.Vec3
	Binormal math.Vec3
}

// SkinnedVertex is a Vertex tagged with the instance slot whose transform
// positions it. The blend weights are constant (full weight on the first
// index) so a generic skinning pipeline can draw instances.
type SkinnedVertex struct {
	Vertex
	InstanceSlot uint8
	BlendWeights [4]float32
}

// FullWeight is the blend weight vector carried by every SkinnedVertex.
var FullWeight = [4]float32{1, 0, 0, 0}

// Skin tags v with slot and the fixed full weight.
func Skin(v Vertex, slot uint8) SkinnedVertex {
	return SkinnedVertex{Vertex: v, InstanceSlot: slot, BlendWeights: FullWeight}
}

// Declaration returns the canonical element layout of Vertex.
func Declaration() []formats.VertexElement {
	return []formats.VertexElement{
		{Offset: 0, Format: formats.FormatVector3, Usage: formats.UsagePosition},
		{Offset: 12, Format: formats.FormatVector3, Usage: formats.UsageNormal},
		{Offset: 24, Format: formats.FormatVector2, Usage: formats.UsageTextureCoordinate},
		{Offset: 32, Format: formats.FormatVector3, Usage: formats.UsageTangent},
		{Offset: 44, Format: formats.FormatVector3, Usage: formats.UsageBinormal},
	}
}

// SkinnedDeclaration returns the element layout of SkinnedVertex.
func SkinnedDeclaration() []formats.VertexElement {
	return append(Declaration(),
		formats.VertexElement{Offset: 56, Format: formats.FormatByte4, Usage: formats.UsageBlendIndices},
		formats.VertexElement{Offset: 60, Format: formats.FormatVector4, Usage: formats.UsageBlendWeight},
	)
}

// MatchesDeclaration reports whether elements equal the canonical Vertex
// layout field for field. On mismatch it returns a short reason.
func MatchesDeclaration(elements []formats.VertexElement) (bool, string) {
	want := Declaration()
	if len(elements) != len(want) {
		return false, "expected 5 elements (position, normal, texcoord, tangent, binormal)"
	}
	for i := range want {
		if elements[i] != want[i] {
			return false, "element " + elements[i].String() + " does not match " + want[i].String()
		}
	}
	return true, ""
}

// Put encodes v into b, which must hold VertexStride bytes.
func (v *Vertex) Put(b []byte) {
	_ = b[VertexStride-1]
	putVec3(b[0:], v.Position)
	putVec3(b[12:], v.Normal)
	putFloat(b[24:], v.TexCoord.X)
	putFloat(b[28:], v.TexCoord.Y)
	putVec3(b[32:], v.Tangent)
	putVec3(b[44:], v.Binormal)
}

// ReadVertex decodes a Vertex in canonical layout from b.
func ReadVertex(b []byte) Vertex {
	_ = b[VertexStride-1]
	return Vertex{
		Position: readVec3(b[0:]),
		Normal:   readVec3(b[12:]),
		TexCoord: math.Vec2{X: readFloat(b[24:]), Y: readFloat(b[28:])},
		Tangent:  readVec3(b[32:]),
		Binormal: readVec3(b[44:]),
	}
}

// Put encodes v into b, which must hold SkinnedVertexStride bytes.
func (v *SkinnedVertex) Put(b []byte) {
	_ = b[SkinnedVertexStride-1]
	v.Vertex.Put(b)
	b[56] = v.InstanceSlot
	b[57], b[58], b[59] = 0, 0, 0
	for i, w := range v.BlendWeights {
		putFloat(b[60+4*i:], w)
	}
}

// EncodeVertices packs vertices into a canonical vertex buffer.
func EncodeVertices(vertices []Vertex) []byte {
	data := make([]byte, len(vertices)*VertexStride)
	for i := range vertices {
		vertices[i].Put(data[i*VertexStride:])
	}
	return data
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, gomath.Float32bits(f))
}

func putVec3(b []byte, v math.Vec3) {
	putFloat(b[0:], v.X)
	putFloat(b[4:], v.Y)
	putFloat(b[8:], v.Z)
}

func readFloat(b []byte) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(b))
}

func readVec3(b []byte) math.Vec3 {
	return math.Vec3{X: readFloat(b[0:]), Y: readFloat(b[4:]), Z: readFloat(b[8:])}
}
