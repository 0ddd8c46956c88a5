// Package sim runs the headless fixed-tick loop that refreshes instance
// transforms and hands every container to a render submitter.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/engine/registry"
	"github.com/Faultbox/meshpack/internal/logger"
)

// ErrInvalidTickRate is returned by New for a non-positive tick rate.
var ErrInvalidTickRate = errors.New("tick rate must be positive")

// Updater refreshes transforms for a tick and exposes the containers.
// *registry.Registry implements it.
type Updater interface {
	Update(tick registry.Tick) error
	All() []*registry.Entry
}

// Submitter receives every container once per tick, after its palette was
// published. It stands in for the renderer.
type Submitter interface {
	Submit(tick registry.Tick, entries []*registry.Entry) error
}

// Config holds loop settings.
type Config struct {
	TickRate int // Ticks per second
	Ticks    int // Ticks to run, 0 = until the context ends
}

// Loop drives an Updater and a Submitter at a fixed rate.
type Loop struct {
	config    Config
	step      time.Duration
	updater   Updater
	submitter Submitter
	log       *zap.Logger
}

// New creates a loop.
func New(cfg Config, updater Updater, submitter Submitter) (*Loop, error) {
	if cfg.TickRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTickRate, cfg.TickRate)
	}
	return &Loop{
		config:    cfg,
		step:      time.Second / time.Duration(cfg.TickRate),
		updater:   updater,
		submitter: submitter,
		log:       logger.Named("sim"),
	}, nil
}

// Run ticks until the configured tick count is reached or ctx ends. Tick
// times advance by exactly one step per tick regardless of scheduling
// jitter. It returns the number of completed ticks.
func (l *Loop) Run(ctx context.Context) (uint64, error) {
	ticker := time.NewTicker(l.step)
	defer ticker.Stop()

	entries := l.updater.All()

	var tick registry.Tick
	var done uint64
	tickCount := 0
	statsTimer := time.Now()

	l.log.Info("starting simulation loop",
		zap.Int("tick_rate", l.config.TickRate),
		zap.Int("ticks", l.config.Ticks),
		zap.Int("containers", len(entries)))

	for l.config.Ticks == 0 || done < uint64(l.config.Ticks) {
		select {
		case <-ctx.Done():
			l.log.Info("simulation stopped", zap.Uint64("ticks", done), zap.Error(ctx.Err()))
			return done, ctx.Err()
		case <-ticker.C:
		}

		tick = registry.Tick{
			Index:   done,
			Elapsed: time.Duration(done) * l.step,
			Delta:   l.step,
		}
		if done == 0 {
			tick.Delta = 0
		}

		if err := l.updater.Update(tick); err != nil {
			return done, fmt.Errorf("update tick %d: %w", tick.Index, err)
		}
		if err := l.submitter.Submit(tick, entries); err != nil {
			return done, fmt.Errorf("submit tick %d: %w", tick.Index, err)
		}
		done++

		// Tick rate counter
		tickCount++
		if time.Since(statsTimer) >= time.Second {
			l.log.Debug("tick rate", zap.Int("count", tickCount), zap.Uint64("tick", tick.Index))
			tickCount = 0
			statsTimer = time.Now()
		}
	}

	l.log.Info("simulation finished", zap.Uint64("ticks", done))
	return done, nil
}
