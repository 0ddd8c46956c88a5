package extract

import (
	"errors"
	"fmt"
)

// Extraction errors.
var (
	ErrFormat            = errors.New("vertex declaration does not match the canonical layout")
	ErrUnsupportedLayout = errors.New("unsupported vertex stream layout")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrTooManyVertices   = errors.New("too many vertices for 16-bit indices")
	ErrInvalidBoneTree   = errors.New("invalid bone tree")
)

// FormatError reports a mesh part whose vertex declaration differs from the
// canonical Vertex layout.
type FormatError struct {
	Mesh   string
	Part   int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("mesh %q part %d: %s: %s", e.Mesh, e.Part, ErrFormat, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

// UnsupportedLayoutError reports a mesh part whose vertices do not start at
// the beginning of the vertex stream.
type UnsupportedLayoutError struct {
	Mesh         string
	Part         int
	StreamOffset int32
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("mesh %q part %d: %s: stream offset %d", e.Mesh, e.Part, ErrUnsupportedLayout, e.StreamOffset)
}

func (e *UnsupportedLayoutError) Unwrap() error {
	return ErrUnsupportedLayout
}
