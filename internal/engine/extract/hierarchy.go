package extract

import (
	"fmt"

	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/math"
)

const (
	unresolved = iota
	resolving
	resolved
)

// AbsoluteTransforms resolves every bone's local transform against its
// ancestors. The result is indexed by bone id. Parents may appear after
// their children in the slice.
func AbsoluteTransforms(bones []formats.Bone) ([]math.Mat4, error) {
	abs := make([]math.Mat4, len(bones))
	state := make([]uint8, len(bones))
	chain := make([]int, 0, 8)

	for i := range bones {
		if state[i] == resolved {
			continue
		}

		// Walk up until a resolved ancestor or a root.
		chain = chain[:0]
		cur := i
		for cur >= 0 && state[cur] != resolved {
			if state[cur] == resolving {
				return nil, fmt.Errorf("%w: cycle through bone %d (%s)", ErrInvalidBoneTree, cur, bones[cur].Name)
			}
			state[cur] = resolving
			chain = append(chain, cur)

			parent := int(bones[cur].Parent)
			if parent >= len(bones) || parent < -1 {
				return nil, fmt.Errorf("%w: bone %d (%s) has parent %d, %d bones", ErrInvalidBoneTree, cur, bones[cur].Name, parent, len(bones))
			}
			cur = parent
		}

		// Resolve from the top of the chain down.
		for j := len(chain) - 1; j >= 0; j-- {
			b := chain[j]
			local := math.Mat4(bones[b].Transform)
			if p := bones[b].Parent; p >= 0 {
				abs[b] = abs[p].Mul(local)
			} else {
				abs[b] = local
			}
			state[b] = resolved
		}
	}

	return abs, nil
}
