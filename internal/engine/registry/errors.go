package registry

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	ErrSlotRangeExceeded = errors.New("instances per container exceed the transform palette")
	ErrDuplicateType     = errors.New("mesh type already declared")
	ErrUnknownType       = errors.New("unknown mesh type")
	ErrInvalidType       = errors.New("invalid mesh type")
	ErrFinalized         = errors.New("registry already finalized")
	ErrNotFinalized      = errors.New("registry not finalized")
	ErrClosed            = errors.New("registry closed")
)

// SlotRangeError reports a per-container instance count that the transform
// palette cannot address.
type SlotRangeError struct {
	PerContainer int
	Limit        int
}

func (e *SlotRangeError) Error() string {
	return fmt.Sprintf("%s: %d per container, palette holds 1..%d", ErrSlotRangeExceeded, e.PerContainer, e.Limit)
}

func (e *SlotRangeError) Unwrap() error {
	return ErrSlotRangeExceeded
}
