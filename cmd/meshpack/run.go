package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/meshpack/internal/assets"
	"github.com/Faultbox/meshpack/internal/config"
	"github.com/Faultbox/meshpack/internal/engine/registry"
	"github.com/Faultbox/meshpack/internal/logger"
	"github.com/Faultbox/meshpack/internal/scene"
	"github.com/Faultbox/meshpack/internal/sim"
)

func cmdRun(args []string) error {
	// Parse CLI flags first
	if err := config.ParseFlagsFrom(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("=== meshpack ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	types := cfg.Scene.Types
	if cfg.Scene.Script != "" {
		types, err = scene.EvaluateFile(ctx, cfg.Scene.Script)
		if err != nil {
			return err
		}
		cfg.Scene.Types = types
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("scene script: %w", err)
		}
	}

	reg, err := buildRegistry(ctx, cfg, types)
	if err != nil {
		return err
	}
	defer reg.Close()

	rec := &sim.Recorder{}
	loop, err := sim.New(sim.Config{
		TickRate: cfg.Simulation.TickRate,
		Ticks:    cfg.Simulation.Ticks,
	}, reg, rec)
	if err != nil {
		return err
	}

	ticks, err := loop.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	last := rec.Last()
	logger.Info("run complete",
		zap.Uint64("ticks", ticks),
		zap.Int("draw_calls", last.DrawCalls),
		zap.Int("triangles", last.Triangles),
		zap.Int("visible_instances", last.Visible))
	return nil
}

// buildRegistry loads every type's source mesh, declares it and builds all
// containers.
func buildRegistry(ctx context.Context, cfg *config.Config, types []config.TypeConfig) (*registry.Registry, error) {
	reg, err := registry.New(cfg.Instancing.PerContainer,
		registry.WithPaletteSlots(cfg.Instancing.PaletteSlots),
		registry.WithParallelBuild(cfg.Instancing.ParallelBuild),
		registry.WithPlacement(registry.GridPlacement(
			cfg.Placement.Spacing,
			cfg.Placement.Columns,
			cfg.Placement.SpinSpeed,
		)),
	)
	if err != nil {
		return nil, err
	}

	manager := assets.NewManager()
	defer manager.Close()
	if wd, err := os.Getwd(); err == nil {
		_ = manager.AddSearchDir(wd)
	}

	for _, tc := range types {
		src, err := manager.Load(tc.Source)
		if err != nil {
			reg.Close()
			return nil, fmt.Errorf("type %s: %w", tc.Name, err)
		}
		err = reg.Declare(registry.TypeSpec{
			Name:      tc.Name,
			Effect:    tc.Effect,
			Source:    src,
			MaxAmount: tc.MaxAmount,
		})
		if err != nil {
			reg.Close()
			return nil, err
		}
	}

	if err := reg.Finalize(ctx); err != nil {
		reg.Close()
		return nil, err
	}
	return reg, nil
}
