package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/engine/model"
	"github.com/Faultbox/meshpack/internal/engine/registry"
	"github.com/Faultbox/meshpack/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Nop()
	m.Run()
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New(10,
		registry.WithLogger(zap.NewNop()),
		registry.WithPlacement(registry.GridPlacement(2, 10, 1)))
	require.NoError(t, err)
	require.NoError(t, r.Declare(registry.TypeSpec{Name: "crates", Source: model.NewBox(), MaxAmount: 25}))
	require.NoError(t, r.Finalize(context.Background()))
	t.Cleanup(r.Close)
	return r
}

func TestRunFixedTicks(t *testing.T) {
	reg := newRegistry(t)
	rec := &Recorder{}

	loop, err := New(Config{TickRate: 1000, Ticks: 5}, reg, rec)
	require.NoError(t, err)

	n, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(5), n)
	assert.Equal(t, 5, rec.Submissions())

	last := rec.Last()
	assert.Equal(t, uint64(4), last.Tick)
	assert.Equal(t, 3, last.DrawCalls)
	assert.Equal(t, 3*10*12, last.Triangles)
	assert.Equal(t, 25, last.Visible)

	entries, err := reg.Entries("crates")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), entries[0].Palette.Version())
}

func TestRunStopsOnCancel(t *testing.T) {
	reg := newRegistry(t)
	rec := &Recorder{}

	loop, err := New(Config{TickRate: 1000}, reg, rec)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	n, err := loop.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, uint64(rec.Submissions()), n)
}

type recordingUpdater struct {
	ticks []registry.Tick
	err   error
}

func (u *recordingUpdater) Update(tick registry.Tick) error {
	u.ticks = append(u.ticks, tick)
	return u.err
}

func (u *recordingUpdater) All() []*registry.Entry { return nil }

func TestRunTickTimes(t *testing.T) {
	u := &recordingUpdater{}
	loop, err := New(Config{TickRate: 500, Ticks: 3}, u, &Recorder{})
	require.NoError(t, err)

	_, err = loop.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, u.ticks, 3)
	assert.Equal(t, registry.Tick{Index: 0}, u.ticks[0])
	assert.Equal(t, registry.Tick{Index: 2, Elapsed: 4 * time.Millisecond, Delta: 2 * time.Millisecond}, u.ticks[2])
}

type failingSubmitter struct{}

func (failingSubmitter) Submit(registry.Tick, []*registry.Entry) error {
	return errors.New("device lost")
}

func TestRunPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	loop, err := New(Config{TickRate: 1000, Ticks: 3}, &recordingUpdater{err: boom}, &Recorder{})
	require.NoError(t, err)
	n, err := loop.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)

	loop, err = New(Config{TickRate: 1000, Ticks: 3}, &recordingUpdater{}, failingSubmitter{})
	require.NoError(t, err)
	_, err = loop.Run(context.Background())
	assert.ErrorContains(t, err, "device lost")
}

func TestNewRejectsTickRate(t *testing.T) {
	_, err := New(Config{TickRate: 0}, &recordingUpdater{}, &Recorder{})
	assert.ErrorIs(t, err, ErrInvalidTickRate)
}
