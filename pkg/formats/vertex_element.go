package formats

import "fmt"

// ElementFormat is the storage format of a single vertex element.
type ElementFormat uint8

const (
	FormatSingle  ElementFormat = 0 // 1 x float32
	FormatVector2 ElementFormat = 1 // 2 x float32
	FormatVector3 ElementFormat = 2 // 3 x float32
	FormatVector4 ElementFormat = 3 // 4 x float32
	FormatByte4   ElementFormat = 4 // 4 x uint8
	FormatColor   ElementFormat = 5 // packed RGBA
)

// Size returns the element size in bytes, or 0 for an unknown format.
func (f ElementFormat) Size() int {
	switch f {
	case FormatSingle, FormatByte4, FormatColor:
		return 4
	case FormatVector2:
		return 8
	case FormatVector3:
		return 12
	case FormatVector4:
		return 16
	default:
		return 0
	}
}

// String returns a human-readable format name.
func (f ElementFormat) String() string {
	switch f {
	case FormatSingle:
		return "Single"
	case FormatVector2:
		return "Vector2"
	case FormatVector3:
		return "Vector3"
	case FormatVector4:
		return "Vector4"
	case FormatByte4:
		return "Byte4"
	case FormatColor:
		return "Color"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// ElementUsage is the semantic meaning of a vertex element.
type ElementUsage uint8

const (
	UsagePosition          ElementUsage = 0
	UsageNormal            ElementUsage = 1
	UsageTextureCoordinate ElementUsage = 2
	UsageTangent           ElementUsage = 3
	UsageBinormal          ElementUsage = 4
	UsageBlendIndices      ElementUsage = 5
	UsageBlendWeight       ElementUsage = 6
	UsageColor             ElementUsage = 7
)

// String returns a human-readable usage name.
func (u ElementUsage) String() string {
	switch u {
	case UsagePosition:
		return "Position"
	case UsageNormal:
		return "Normal"
	case UsageTextureCoordinate:
		return "TextureCoordinate"
	case UsageTangent:
		return "Tangent"
	case UsageBinormal:
		return "Binormal"
	case UsageBlendIndices:
		return "BlendIndices"
	case UsageBlendWeight:
		return "BlendWeight"
	case UsageColor:
		return "Color"
	default:
		return fmt.Sprintf("Unknown(%d)", u)
	}
}

// VertexElement describes one attribute inside an interleaved vertex.
type VertexElement struct {
	Offset     uint16
	Format     ElementFormat
	Usage      ElementUsage
	UsageIndex uint8
}

// String returns the element as "Usage[index]:Format@offset".
func (e VertexElement) String() string {
	return fmt.Sprintf("%s[%d]:%s@%d", e.Usage, e.UsageIndex, e.Format, e.Offset)
}

// DeclarationStride returns the byte size covered by the given elements.
func DeclarationStride(elements []VertexElement) int {
	stride := 0
	for _, e := range elements {
		if end := int(e.Offset) + e.Format.Size(); end > stride {
			stride = end
		}
	}
	return stride
}
