package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// EncodeModel serializes a model in the current AMDL version.
func EncodeModel(m *Model) ([]byte, error) {
	w := &modelWriter{}
	w.buf.WriteString(modelMagic)
	w.buf.WriteByte(CurrentModelVersion.Major)
	w.buf.WriteByte(CurrentModelVersion.Minor)

	w.write(int32(len(m.Bones)))
	for _, b := range m.Bones {
		w.name(b.Name)
		w.write(b.Parent)
		w.write(b.Transform)
	}

	w.write(int32(len(m.VertexBuffers)))
	for i, vb := range m.VertexBuffers {
		if vb.Stride <= 0 || len(vb.Data)%int(vb.Stride) != 0 {
			return nil, fmt.Errorf("vertex buffer %d: %d bytes is not a multiple of stride %d", i, len(vb.Data), vb.Stride)
		}
		w.write(vb.Stride)
		w.write(int32(vb.VertexCount()))
		w.buf.Write(vb.Data)
	}

	w.write(int32(len(m.IndexBuffers)))
	for _, ib := range m.IndexBuffers {
		w.write(int32(len(ib.Indices)))
		w.write(ib.Indices)
	}

	w.write(int32(len(m.Meshes)))
	for _, mesh := range m.Meshes {
		w.name(mesh.Name)
		w.write(mesh.ParentBone)
		w.write(int32(len(mesh.Parts)))
		for _, p := range mesh.Parts {
			w.write(p.VertexBuffer)
			w.write(p.IndexBuffer)
			w.write(p.StartIndex)
			w.write(p.PrimitiveCount)
			w.write(p.BaseVertex)
			w.write(p.NumVertices)
			w.write(p.StreamOffset)
			w.write(int32(len(p.Elements)))
			for _, e := range p.Elements {
				w.write(e.Offset)
				w.write(e.Format)
				w.write(e.Usage)
				w.write(e.UsageIndex)
				w.write([3]uint8{})
			}
		}
	}

	if w.err != nil {
		return nil, fmt.Errorf("encoding model: %w", w.err)
	}
	return w.buf.Bytes(), nil
}

// WriteModelFile encodes a model and writes it to path.
func WriteModelFile(path string, m *Model) error {
	data, err := EncodeModel(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

type modelWriter struct {
	buf bytes.Buffer
	err error
}

func (mw *modelWriter) write(v any) {
	if mw.err != nil {
		return
	}
	mw.err = binary.Write(&mw.buf, binary.LittleEndian, v)
}

// name writes a fixed-length null-padded string, truncating long names.
func (mw *modelWriter) name(s string) {
	var buf [nameLength]byte
	copy(buf[:nameLength-1], s)
	mw.buf.Write(buf[:])
}
