// Package formats provides parsers for authored mesh interchange files.
// AMDL (Authored Model) holds a bone tree, interleaved vertex buffers,
// 16-bit index buffers and meshes whose parts draw ranges out of them.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// AMDL format errors.
var (
	ErrInvalidModelMagic       = errors.New("invalid model magic: expected 'AMDL'")
	ErrUnsupportedModelVersion = errors.New("unsupported model version")
	ErrTruncatedModelData      = errors.New("truncated model data")
	ErrInvalidModelCount       = errors.New("invalid model element count")
)

const (
	modelMagic   = "AMDL"
	nameLength   = 40
	maxBones     = 1024
	maxBuffers   = 1024
	maxMeshes    = 4096
	maxParts     = 4096
	maxElements  = 32
	maxVertices  = 1 << 20
	maxIndices   = 1 << 22
	maxStride    = 1024
	headerLength = 6
)

// ModelVersion represents the AMDL file version.
type ModelVersion struct {
	Major uint8
	Minor uint8
}

// CurrentModelVersion is the version written by EncodeModel.
var CurrentModelVersion = ModelVersion{Major: 1, Minor: 0}

// String returns the version as "Major.Minor".
func (v ModelVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Bone is a node of the model's transform tree.
type Bone struct {
	Name      string
	Parent    int32      // Index into Model.Bones, -1 for a root
	Transform [16]float32 // Local transform, column-major
}

// VertexBuffer is a pool of interleaved vertices shared by mesh parts.
type VertexBuffer struct {
	Stride int32
	Data   []byte
}

// VertexCount returns the number of whole vertices stored in the buffer.
func (vb *VertexBuffer) VertexCount() int {
	if vb.Stride <= 0 {
		return 0
	}
	return len(vb.Data) / int(vb.Stride)
}

// IndexBuffer is a pool of 16-bit triangle-list indices shared by mesh parts.
type IndexBuffer struct {
	Indices []uint16
}

// MeshPart draws a range of an index buffer against a vertex buffer.
type MeshPart struct {
	VertexBuffer   int32
	IndexBuffer    int32
	StartIndex     int32 // First index read from the index buffer
	PrimitiveCount int32 // Triangles drawn
	BaseVertex     int32 // Added to every index before addressing the vertex buffer
	NumVertices    int32 // Vertices spanned by the range (informational)
	StreamOffset   int32 // Byte offset into the vertex buffer stream
	Elements       []VertexElement
}

// Mesh is a named group of parts positioned by one bone.
type Mesh struct {
	Name       string
	ParentBone int32
	Parts      []MeshPart
}

// Model represents a parsed AMDL file.
type Model struct {
	Version       ModelVersion
	Bones         []Bone
	VertexBuffers []VertexBuffer
	IndexBuffers  []IndexBuffer
	Meshes        []Mesh
}

// ParseModel parses AMDL data from a byte slice.
func ParseModel(data []byte) (*Model, error) {
	if len(data) < headerLength {
		return nil, ErrTruncatedModelData
	}
	if string(data[:4]) != modelMagic {
		return nil, ErrInvalidModelMagic
	}

	m := &Model{
		Version: ModelVersion{Major: data[4], Minor: data[5]},
	}
	if m.Version.Major != CurrentModelVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModelVersion, m.Version)
	}

	r := &modelReader{r: bytes.NewReader(data[headerLength:])}

	boneCount := r.count(maxBones)
	m.Bones = make([]Bone, boneCount)
	for i := range m.Bones {
		b := &m.Bones[i]
		b.Name = r.name()
		r.read(&b.Parent)
		r.read(&b.Transform)
	}

	vbCount := r.count(maxBuffers)
	m.VertexBuffers = make([]VertexBuffer, vbCount)
	for i := range m.VertexBuffers {
		vb := &m.VertexBuffers[i]
		r.read(&vb.Stride)
		if r.err == nil && (vb.Stride <= 0 || vb.Stride > maxStride) {
			r.err = fmt.Errorf("%w: vertex stride %d", ErrInvalidModelCount, vb.Stride)
		}
		n := r.count(maxVertices)
		vb.Data = r.bytes(n * int(vb.Stride))
	}

	ibCount := r.count(maxBuffers)
	m.IndexBuffers = make([]IndexBuffer, ibCount)
	for i := range m.IndexBuffers {
		ib := &m.IndexBuffers[i]
		n := r.count(maxIndices)
		ib.Indices = make([]uint16, n)
		r.read(ib.Indices)
	}

	meshCount := r.count(maxMeshes)
	m.Meshes = make([]Mesh, meshCount)
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		mesh.Name = r.name()
		r.read(&mesh.ParentBone)
		mesh.Parts = make([]MeshPart, r.count(maxParts))
		for j := range mesh.Parts {
			parseMeshPart(r, &mesh.Parts[j])
		}
	}

	if r.err != nil {
		return nil, fmt.Errorf("parsing model: %w", r.err)
	}
	return m, nil
}

func parseMeshPart(r *modelReader, p *MeshPart) {
	r.read(&p.VertexBuffer)
	r.read(&p.IndexBuffer)
	r.read(&p.StartIndex)
	r.read(&p.PrimitiveCount)
	r.read(&p.BaseVertex)
	r.read(&p.NumVertices)
	r.read(&p.StreamOffset)

	p.Elements = make([]VertexElement, r.count(maxElements))
	for k := range p.Elements {
		e := &p.Elements[k]
		var reserved [3]uint8
		r.read(&e.Offset)
		r.read(&e.Format)
		r.read(&e.Usage)
		r.read(&e.UsageIndex)
		r.read(&reserved)
	}
}

// ParseModelFile parses an AMDL file from disk.
func ParseModelFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}
	return ParseModel(data)
}

// VertexCount returns the number of vertices across all vertex buffers.
func (m *Model) VertexCount() int {
	total := 0
	for i := range m.VertexBuffers {
		total += m.VertexBuffers[i].VertexCount()
	}
	return total
}

// PrimitiveCount returns the number of triangles drawn by all parts.
func (m *Model) PrimitiveCount() int {
	total := 0
	for _, mesh := range m.Meshes {
		for _, p := range mesh.Parts {
			total += int(p.PrimitiveCount)
		}
	}
	return total
}

// GetMeshByName returns a mesh by its name, or nil if not found.
func (m *Model) GetMeshByName(name string) *Mesh {
	for i := range m.Meshes {
		if m.Meshes[i].Name == name {
			return &m.Meshes[i]
		}
	}
	return nil
}

// modelReader reads little-endian values and keeps the first error.
type modelReader struct {
	r   *bytes.Reader
	err error
}

func (mr *modelReader) read(v any) {
	if mr.err != nil {
		return
	}
	if err := binary.Read(mr.r, binary.LittleEndian, v); err != nil {
		mr.err = truncated(err)
	}
}

// count reads an int32 element count and checks it against limit.
func (mr *modelReader) count(limit int) int {
	var n int32
	mr.read(&n)
	if mr.err != nil {
		return 0
	}
	if n < 0 || int(n) > limit {
		mr.err = fmt.Errorf("%w: %d", ErrInvalidModelCount, n)
		return 0
	}
	return int(n)
}

func (mr *modelReader) bytes(n int) []byte {
	if mr.err != nil {
		return nil
	}
	if n > mr.r.Len() {
		mr.err = ErrTruncatedModelData
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(mr.r, buf); err != nil {
		mr.err = truncated(err)
		return nil
	}
	return buf
}

// name reads a fixed-length null-terminated string.
func (mr *modelReader) name() string {
	buf := mr.bytes(nameLength)
	if buf == nil {
		return ""
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return string(buf[:i])
	}
	return string(buf)
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncatedModelData
	}
	return err
}
