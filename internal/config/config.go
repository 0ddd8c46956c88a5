// Package config handles meshpack configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all settings.
type Config struct {
	Instancing InstancingConfig `yaml:"instancing"`
	Placement  PlacementConfig  `yaml:"placement"`
	Simulation SimulationConfig `yaml:"simulation"`
	Scene      SceneConfig      `yaml:"scene"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// InstancingConfig holds packing container settings.
type InstancingConfig struct {
	PerContainer  int  `yaml:"per_container"`  // Instances packed into each container
	PaletteSlots  int  `yaml:"palette_slots"`  // Hardware transform palette size
	ParallelBuild bool `yaml:"parallel_build"` // Build containers concurrently
}

// PlacementConfig holds the grid layout used by the per-tick update.
type PlacementConfig struct {
	Spacing   float32 `yaml:"spacing"`
	Columns   int     `yaml:"columns"`
	SpinSpeed float32 `yaml:"spin_speed"` // Radians per second
}

// SimulationConfig holds the headless tick loop settings.
type SimulationConfig struct {
	TickRate int `yaml:"tick_rate"` // Ticks per second
	Ticks    int `yaml:"ticks"`     // Ticks to run, 0 = until interrupted
}

// SceneConfig declares the instanced mesh types.
type SceneConfig struct {
	Script string       `yaml:"script"` // Optional zygomys scene script
	Types  []TypeConfig `yaml:"types"`
}

// TypeConfig declares one mesh type.
type TypeConfig struct {
	Name      string `yaml:"name"`
	Source    string `yaml:"source"` // "box", "sdf:<shape>" or a path to an .amdl file
	Effect    string `yaml:"effect"`
	MaxAmount int    `yaml:"max_amount"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Palette limits.
const (
	DefaultPaletteSlots = 75
	MaxPaletteSlots     = 255 // Instance slots are stored in one byte
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Instancing: InstancingConfig{
			PerContainer:  75,
			PaletteSlots:  DefaultPaletteSlots,
			ParallelBuild: true,
		},
		Placement: PlacementConfig{
			Spacing:   3,
			Columns:   100,
			SpinSpeed: 0.5,
		},
		Simulation: SimulationConfig{
			TickRate: 60,
			Ticks:    600,
		},
		Scene: SceneConfig{
			Types: []TypeConfig{
				{Name: "crates", Source: "box", Effect: "crate", MaxAmount: 10000},
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks the settings for values the packing layer cannot honor.
func (c *Config) Validate() error {
	var errs []error

	in := c.Instancing
	if in.PaletteSlots < 1 || in.PaletteSlots > MaxPaletteSlots {
		errs = append(errs, fmt.Errorf("instancing.palette_slots %d out of range 1..%d", in.PaletteSlots, MaxPaletteSlots))
	}
	if in.PerContainer < 1 || in.PerContainer > in.PaletteSlots {
		errs = append(errs, fmt.Errorf("instancing.per_container %d out of range 1..%d", in.PerContainer, in.PaletteSlots))
	}
	if c.Simulation.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("simulation.tick_rate must be positive, got %d", c.Simulation.TickRate))
	}
	if c.Simulation.Ticks < 0 {
		errs = append(errs, fmt.Errorf("simulation.ticks must not be negative, got %d", c.Simulation.Ticks))
	}
	if c.Placement.Columns <= 0 {
		errs = append(errs, fmt.Errorf("placement.columns must be positive, got %d", c.Placement.Columns))
	}

	seen := make(map[string]bool)
	for i, tc := range c.Scene.Types {
		switch {
		case tc.Name == "":
			errs = append(errs, fmt.Errorf("scene.types[%d]: empty name", i))
		case seen[tc.Name]:
			errs = append(errs, fmt.Errorf("scene.types[%d]: duplicate name %q", i, tc.Name))
		}
		seen[tc.Name] = true
		if tc.Source == "" {
			errs = append(errs, fmt.Errorf("scene.types[%d]: empty source", i))
		}
		if tc.MaxAmount <= 0 {
			errs = append(errs, fmt.Errorf("scene.types[%d]: max_amount must be positive, got %d", i, tc.MaxAmount))
		}
	}

	return errors.Join(errs...)
}
