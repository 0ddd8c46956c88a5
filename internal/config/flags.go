package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagPerContainer = flag.Int("per-container", 0, "Instances per packing container")
	flagTicks        = flag.Int("ticks", -1, "Simulation ticks to run (0 = until interrupted)")
	flagTickRate     = flag.Int("tick-rate", 0, "Simulation ticks per second")
	flagScript       = flag.String("script", "", "Path to a scene script")
	flagLogFile      = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ParseFlagsFrom parses flags from args instead of os.Args.
func ParseFlagsFrom(args []string) error {
	return flag.CommandLine.Parse(args)
}

// Args returns the non-flag arguments left after parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagPerContainer > 0 {
		cfg.Instancing.PerContainer = *flagPerContainer
	}
	if *flagTicks >= 0 {
		cfg.Simulation.Ticks = *flagTicks
	}
	if *flagTickRate > 0 {
		cfg.Simulation.TickRate = *flagTickRate
	}
	if *flagScript != "" {
		cfg.Scene.Script = *flagScript
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
