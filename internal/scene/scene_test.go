package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshpack/internal/config"
)

func TestEvaluateDeclaresTypes(t *testing.T) {
	src := `
// ten thousand crates and a field of rocks
(instance_type "crates" "box" "crate" 10000)
(instance_type "rocks" (sdf "sphere") "stone" (* 20 25))
`
	types, err := Evaluate(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, []config.TypeConfig{
		{Name: "crates", Source: "box", Effect: "crate", MaxAmount: 10000},
		{Name: "rocks", Source: "sdf:sphere", Effect: "stone", MaxAmount: 500},
	}, types)
}

func TestEvaluateEmpty(t *testing.T) {
	types, err := Evaluate(context.Background(), "  \n")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "wrong arity", src: `(instance_type "crates" "box")`},
		{name: "non string name", src: `(instance_type 1 "box" "crate" 10)`},
		{name: "fractional amount", src: `(instance_type "a" "box" "crate" 1.5)`},
		{name: "zero amount", src: `(instance_type "a" "box" "crate" 0)`},
		{name: "unknown function", src: `(spawn "a")`},
		{name: "unbalanced", src: `(instance_type "a" "box" "crate" 10`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types, err := Evaluate(context.Background(), tt.src)
			assert.Nil(t, types)
			require.Error(t, err)

			var se *ScriptError
			assert.True(t, errors.As(err, &se), "got %T: %v", err, err)
		})
	}
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Evaluate(ctx, `(instance_type "a" "box" "crate" 1)`)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	src := `(for [(def i 0) (< i 2000000000) (set i (+ i 1))] (sdf "box"))`
	start := time.Now()
	types, err := Evaluate(ctx, src)
	assert.Nil(t, types)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEvaluateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.zy")
	require.NoError(t, os.WriteFile(path, []byte(`(instance_type "pillars" (sdf "pillar") "stone" 150)`), 0644))

	types, err := EvaluateFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "sdf:pillar", types[0].Source)

	_, err = EvaluateFile(context.Background(), filepath.Join(t.TempDir(), "missing.zy"))
	assert.Error(t, err)
}
