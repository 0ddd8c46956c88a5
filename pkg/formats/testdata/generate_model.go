//go:build ignore

// This program generates a test AMDL file for unit tests.
// Run with: go run generate_model.go
package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
)

func main() {
	var buf bytes.Buffer
	le := binary.LittleEndian

	// Header (6 bytes)
	buf.WriteString("AMDL")
	buf.WriteByte(1) // major
	buf.WriteByte(0) // minor

	// Bones: root at origin, "lid" 1 unit up
	binary.Write(&buf, le, int32(2))
	writeBone(&buf, "root", -1, [3]float32{0, 0, 0})
	writeBone(&buf, "lid", 0, [3]float32{0, 1, 0})

	// One vertex buffer with 4 canonical 56-byte vertices (a quad on Y=0)
	binary.Write(&buf, le, int32(56))
	binary.Write(&buf, le, int32(4))
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}} {
		binary.Write(&buf, le, p)                      // position
		binary.Write(&buf, le, [3]float32{0, 1, 0})    // normal
		binary.Write(&buf, le, [2]float32{p[0], p[2]}) // texcoord
		binary.Write(&buf, le, [3]float32{1, 0, 0})    // tangent
		binary.Write(&buf, le, [3]float32{0, 0, 1})    // binormal
	}

	// One index buffer: two triangles
	binary.Write(&buf, le, int32(6))
	binary.Write(&buf, le, []uint16{0, 2, 1, 0, 3, 2})

	// Meshes: "base" on root, "lid" on the second bone, same geometry
	binary.Write(&buf, le, int32(2))
	writeMesh(&buf, "base", 0)
	writeMesh(&buf, "lid", 1)

	if err := os.WriteFile("test.amdl", buf.Bytes(), 0644); err != nil {
		panic(err)
	}

	println("Generated test.amdl:", buf.Len(), "bytes")
	println("  - 2 bones (root, lid)")
	println("  - 2 meshes sharing one 4-vertex quad")
}

func writeName(buf *bytes.Buffer, name string) {
	b := make([]byte, 40)
	copy(b, name)
	buf.Write(b)
}

func writeBone(buf *bytes.Buffer, name string, parent int32, t [3]float32) {
	writeName(buf, name)
	binary.Write(buf, binary.LittleEndian, parent)
	m := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, t[0], t[1], t[2], 1}
	for _, f := range m {
		binary.Write(buf, binary.LittleEndian, math.Float32bits(f))
	}
}

func writeMesh(buf *bytes.Buffer, name string, bone int32) {
	le := binary.LittleEndian
	writeName(buf, name)
	binary.Write(buf, le, bone)
	binary.Write(buf, le, int32(1)) // 1 part

	// vb, ib, start, prims, base, numVertices, streamOffset
	binary.Write(buf, le, [7]int32{0, 0, 0, 2, 0, 4, 0})

	// Canonical declaration: offset, format, usage, usage index, 3 reserved
	elements := [][3]uint16{
		{0, 2, 0},  // position vector3
		{12, 2, 1}, // normal vector3
		{24, 1, 2}, // texcoord vector2
		{32, 2, 3}, // tangent vector3
		{44, 2, 4}, // binormal vector3
	}
	binary.Write(buf, le, int32(len(elements)))
	for _, e := range elements {
		binary.Write(buf, le, e[0])
		buf.Write([]byte{byte(e[1]), byte(e[2]), 0, 0, 0, 0})
	}
}
