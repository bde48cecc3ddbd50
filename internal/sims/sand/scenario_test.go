package sand

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sandfall/internal/material"
)

const meltScenario = `
name: melt
ticks: 12
config:
  width: 1
  height: 1
fills:
  - {x: 0, y: 0, w: 1, h: 1, material: rock, temperature: 1190}
strokes:
  - {tick: 0, x: 0, y: 0, diameter: 1, brush: heat, power: 2}
`

func TestScenarioMeltsRock(t *testing.T) {
	sc, err := ParseScenario([]byte(meltScenario))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Config.CellSize != DefaultConfig().CellSize {
		t.Fatal("unspecified config keys should keep their defaults")
	}
	e, err := sc.NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := e.TemperatureAt(0, 0); got != 1190 {
		t.Fatalf("fill temperature %v", got)
	}

	var lavaTick uint64
	err = sc.Run(e, func(e *Engine) error {
		if lavaTick == 0 && e.IsDiscovered(material.Lava) {
			lavaTick = e.Tick()
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if e.Tick() != 12 {
		t.Fatalf("ran %d ticks", e.Tick())
	}
	if lavaTick != 6 {
		t.Fatalf("rock melted on tick %d, want 6", lavaTick)
	}
	if got, _ := e.MaterialAt(0, 0); got != material.Lava {
		t.Fatalf("cell holds %v", got)
	}
}

func TestStrokeRepeat(t *testing.T) {
	s := Stroke{Tick: 3, Repeat: 2}
	for tick, want := range map[uint64]bool{2: false, 3: true, 4: true, 5: false} {
		if got := s.active(tick); got != want {
			t.Fatalf("active(%d) = %v, want %v", tick, got, want)
		}
	}
	if !(Stroke{Tick: 0}).active(0) {
		t.Fatal("zero repeat should still apply once")
	}
}

func TestScenarioRejectsUnknownNames(t *testing.T) {
	doc := `
fills:
  - {x: 0, y: 0, w: 1, h: 1, material: plasma}
strokes:
  - {tick: 0, brush: freeze}
`
	_, err := ParseScenario([]byte(doc))
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, part := range []string{"fill 0", "stroke 0"} {
		if !strings.Contains(err.Error(), part) {
			t.Fatalf("error %q does not mention %q", err, part)
		}
	}
}

func TestScenarioRejectsNonFiniteValues(t *testing.T) {
	doc := `
fills:
  - {x: 0, y: 0, w: 1, h: 1, material: rock, temperature: .nan}
strokes:
  - {tick: 0, brush: heat, power: .inf}
`
	_, err := ParseScenario([]byte(doc))
	if !errors.Is(err, ErrInvalidTemperature) {
		t.Fatalf("expected ErrInvalidTemperature, got %v", err)
	}
	if !strings.Contains(err.Error(), "stroke 0: power") {
		t.Fatalf("error %q does not mention the stroke power", err)
	}
}

func TestScenarioLayersOverBaseConfig(t *testing.T) {
	base := DefaultConfig()
	base.Width = 7
	base.Params.Conductivity = 0.2

	path := filepath.Join(t.TempDir(), "tall.yaml")
	if err := os.WriteFile(path, []byte("config:\n  height: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenarioOver(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Config.Width != 7 || sc.Config.Height != 3 || sc.Config.Params.Conductivity != 0.2 {
		t.Fatalf("config %+v", sc.Config)
	}

	sc, err = LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Config.Width != DefaultConfig().Width {
		t.Fatalf("plain load should start from defaults, width %d", sc.Config.Width)
	}
}
