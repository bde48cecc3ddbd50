package app

import "flag"

// Config represents the command-line parameters of the desktop front end.
type Config struct {
	ConfigPath string
	Scenario   string
	TPS        int
	Seed       int64
	HUDWidth   int
	Diameter   int
	LogLevel   string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{TPS: 30, HUDWidth: 220, Diameter: 5, LogLevel: "info"}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "YAML engine config")
	fs.StringVar(&c.Scenario, "scenario", c.Scenario, "YAML scenario whose layout is loaded at start")
	fs.IntVar(&c.TPS, "tps", c.TPS, "simulation ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset (0 = config seed)")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the side panel in pixels (0 hides it)")
	fs.IntVar(&c.Diameter, "brush", c.Diameter, "initial brush diameter in cells")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
}
