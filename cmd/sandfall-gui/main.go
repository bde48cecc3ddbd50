//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"sandfall/internal/app"
	"sandfall/internal/sims/sand"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatalf("log level %q: %v", cfg.LogLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(engine, cfg, logger)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("sandfall")
	ebiten.SetTPS(60)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

func buildEngine(cfg *app.Config, logger *slog.Logger) (*sand.Engine, error) {
	opts := []sand.Option{sand.WithLogger(logger)}
	if cfg.Scenario != "" {
		sc, err := sand.LoadScenario(cfg.Scenario)
		if err != nil {
			return nil, err
		}
		if cfg.Seed != 0 {
			sc.Config.Seed = cfg.Seed
		}
		return sc.NewEngine(opts...)
	}
	ec := sand.DefaultConfig()
	if cfg.ConfigPath != "" {
		loaded, err := sand.LoadConfig(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		ec = loaded
	}
	if cfg.Seed != 0 {
		ec.Seed = cfg.Seed
	}
	return sand.NewWithConfig(ec, opts...), nil
}
