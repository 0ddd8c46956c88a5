package registry

import (
	"time"

	"github.com/Faultbox/meshpack/pkg/math"
)

// Tick describes one simulation step.
type Tick struct {
	Index   uint64
	Elapsed time.Duration // Since the first tick
	Delta   time.Duration // Since the previous tick
}

// Instance identifies the transform slot being placed.
type Instance struct {
	Type      string
	TypeIndex int // Declaration order of the type
	Container int // Container index within the type
	Slot      int
	Ordinal   int // Container*perContainer + Slot
	MaxAmount int
}

// Hidden reports whether the instance lies past the declared amount. Such
// slots exist because containers are always filled completely.
func (i Instance) Hidden() bool {
	return i.Ordinal >= i.MaxAmount
}

// PlacementFunc computes the transform of one instance for a tick.
type PlacementFunc func(inst Instance, tick Tick) math.Mat4

// hiddenTransform collapses an instance to a point.
var hiddenTransform = math.Scale(0, 0, 0)

var (
	up        = math.Vec3{Y: 1}
	unitScale = math.Vec3{X: 1, Y: 1, Z: 1}
)

// StaticPlacement leaves every visible instance at the origin.
func StaticPlacement(inst Instance, _ Tick) math.Mat4 {
	if inst.Hidden() {
		return hiddenTransform
	}
	return math.Identity()
}

// GridPlacement lays instances out row by row in the XZ plane, stacking
// types along Y, and spins each one around Y at spin radians per second.
func GridPlacement(spacing float32, columns int, spin float32) PlacementFunc {
	columns = max(columns, 1)
	return func(inst Instance, tick Tick) math.Mat4 {
		if inst.Hidden() {
			return hiddenTransform
		}
		x := float32(inst.Ordinal%columns) * spacing
		z := float32(inst.Ordinal/columns) * spacing
		y := float32(inst.TypeIndex) * spacing

		angle := spin * float32(tick.Elapsed.Seconds())
		return math.Compose(math.Vec3{X: x, Y: y, Z: z}, math.QuatFromAxisAngle(up, angle), unitScale)
	}
}
