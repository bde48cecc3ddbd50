package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sandfall/internal/sims/sand"
)

var (
	logLevel   string
	configFile string
	overrides  map[string]string
	seed       int64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("sandfall failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sandfall",
		Short:         "falling sand with heat, phase changes and material discovery",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringToStringVar(&overrides, "set", nil, "config overrides, e.g. --set w=80,conductivity=0.05")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "RNG seed (0 = config seed)")

	rootCmd.AddCommand(newRunCmd(), newTUICmd(), newParamsCmd(), newMaterialsCmd(), newConfigCmd())
	return rootCmd
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return nil
}

// baseConfig returns the defaults with --config layered on top.
func baseConfig() (sand.Config, error) {
	if configFile == "" {
		return sand.DefaultConfig(), nil
	}
	cfg, err := sand.LoadConfig(configFile)
	if err != nil {
		return sand.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// applyFlags layers --set and --seed over cfg.
func applyFlags(cfg sand.Config) sand.Config {
	cfg = sand.ApplyMap(cfg, overrides)
	if seed != 0 {
		cfg.Seed = seed
	}
	return cfg
}

// loadConfig resolves the engine config: defaults, then --config, then --set,
// then --seed.
func loadConfig() (sand.Config, error) {
	cfg, err := baseConfig()
	if err != nil {
		return sand.Config{}, err
	}
	cfg = applyFlags(cfg)
	return cfg, cfg.Validate()
}
