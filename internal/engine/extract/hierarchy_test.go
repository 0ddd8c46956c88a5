package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshpack/pkg/formats"
	"github.com/Faultbox/meshpack/pkg/math"
)

func TestAbsoluteTransforms(t *testing.T) {
	bones := []formats.Bone{
		{Name: "root", Parent: -1, Transform: math.Translate(1, 0, 0)},
		{Name: "arm", Parent: 0, Transform: math.Translate(0, 2, 0)},
		{Name: "hand", Parent: 1, Transform: math.Scale(2, 2, 2)},
	}

	abs, err := AbsoluteTransforms(bones)
	require.NoError(t, err)
	require.Len(t, abs, 3)

	assert.Equal(t, math.Vec3{X: 1}, abs[0].Translation())
	assert.Equal(t, math.Vec3{X: 1, Y: 2}, abs[1].Translation())
	assert.Equal(t, math.Vec3{X: 3, Y: 2, Z: 2}, abs[2].TransformPoint(math.Vec3{X: 1, Z: 1}))
}

func TestAbsoluteTransformsEmpty(t *testing.T) {
	abs, err := AbsoluteTransforms(nil)
	require.NoError(t, err)
	assert.Empty(t, abs)
}

func TestAbsoluteTransformsInvalidTree(t *testing.T) {
	tests := []struct {
		name  string
		bones []formats.Bone
	}{
		{
			name: "self parent",
			bones: []formats.Bone{
				{Name: "a", Parent: 0, Transform: math.Identity()},
			},
		},
		{
			name: "two bone cycle",
			bones: []formats.Bone{
				{Name: "root", Parent: -1, Transform: math.Identity()},
				{Name: "a", Parent: 2, Transform: math.Identity()},
				{Name: "b", Parent: 1, Transform: math.Identity()},
			},
		},
		{
			name: "parent out of range",
			bones: []formats.Bone{
				{Name: "a", Parent: 7, Transform: math.Identity()},
			},
		},
		{
			name: "negative parent",
			bones: []formats.Bone{
				{Name: "a", Parent: -3, Transform: math.Identity()},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abs, err := AbsoluteTransforms(tt.bones)
			assert.Nil(t, abs)
			assert.ErrorIs(t, err, ErrInvalidBoneTree)
		})
	}
}
