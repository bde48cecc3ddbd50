package main

import (
	"testing"

	"sandfall/internal/core"
	"sandfall/internal/material"
	"sandfall/internal/sims/sand"
)

func TestOptionsReachTheRegisteredEngine(t *testing.T) {
	factory, err := core.Lookup("sand")
	if err != nil {
		t.Fatal(err)
	}
	params := paramSet{power: 8, conductivity: 0.125, airContact: 0, diffusion: sand.DiffusionProgressive}
	e, ok := factory(params.options(6)).(*sand.Engine)
	if !ok {
		t.Fatal("sand factory should build a *sand.Engine")
	}
	cfg := e.Config()
	if cfg.Width != 6 || cfg.Height != 6 {
		t.Fatalf("size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Params.Conductivity != 0.125 || cfg.Params.AirContactConductivity != 0 || cfg.Params.Diffusion != sand.DiffusionProgressive {
		t.Fatalf("params %+v", cfg.Params)
	}
}

func TestRunScenarioMeltsBlock(t *testing.T) {
	factory, err := core.Lookup("sand")
	if err != nil {
		t.Fatal(err)
	}
	res := runScenario(factory, 6, paramSet{power: 8, conductivity: 0.1, airContact: 0, diffusion: sand.DiffusionPair}, 2, 400)
	if res.err != nil {
		t.Fatal(res.err)
	}
	if res.firstMelt == 0 || res.peakLava == 0 {
		t.Fatalf("block never melted: %+v", res)
	}
	found := false
	for _, id := range res.discovered {
		found = found || id == material.Lava
	}
	if !found {
		t.Fatalf("lava missing from discoveries %v", res.discovered)
	}
}

func TestLookupUnknownSim(t *testing.T) {
	if _, err := core.Lookup("plasma"); err == nil {
		t.Fatal("expected an error for an unregistered sim")
	}
}
