package sand

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sandfall/internal/material"
)

// Scenario is a scripted run: a configuration, an initial layout and brush
// strokes replayed at given ticks.
type Scenario struct {
	Name    string   `yaml:"name"`
	Ticks   int      `yaml:"ticks"`
	Config  Config   `yaml:"config"`
	Fills   []Fill   `yaml:"fills"`
	Strokes []Stroke `yaml:"strokes"`
}

// Fill places a material over a rectangle of cells before the first tick.
// Temperature, when set, overrides the ambient temperature of the filled
// cells.
type Fill struct {
	X        int      `yaml:"x"`
	Y        int      `yaml:"y"`
	W        int      `yaml:"w"`
	H        int      `yaml:"h"`
	Material string   `yaml:"material"`
	Temp     *float64 `yaml:"temperature,omitempty"`
}

// Stroke is a brush stroke in grid coordinates applied before tick Tick runs.
// Repeat strokes are re-applied on each of the following Repeat-1 ticks.
type Stroke struct {
	Tick     uint64  `yaml:"tick"`
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Diameter int     `yaml:"diameter"`
	Brush    string  `yaml:"brush"`
	Power    float64 `yaml:"power"`
	Repeat   int     `yaml:"repeat"`
}

// active reports whether the stroke applies before the tick following tick.
func (s Stroke) active(tick uint64) bool {
	repeat := uint64(s.Repeat)
	if repeat == 0 {
		repeat = 1
	}
	return tick >= s.Tick && tick < s.Tick+repeat
}

// LoadScenario reads a YAML scenario. Config keys missing from the file keep
// their defaults.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioOver(path, DefaultConfig())
}

// LoadScenarioOver reads a YAML scenario whose config section is layered on
// top of base.
func LoadScenarioOver(path string, base Config) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenarioOver(base, data)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	return ParseScenarioOver(DefaultConfig(), data)
}

// ParseScenarioOver is ParseScenario with config keys missing from the file
// taken from base.
func ParseScenarioOver(base Config, data []byte) (*Scenario, error) {
	sc := &Scenario{Config: base}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", sc.Name, err)
	}
	return sc, nil
}

// Validate checks the configuration and resolves every material and brush
// name.
func (sc *Scenario) Validate() error {
	errs := []error{sc.Config.Validate()}
	if sc.Ticks < 0 {
		errs = append(errs, fmt.Errorf("ticks %d must not be negative", sc.Ticks))
	}
	for i, f := range sc.Fills {
		if _, err := material.Parse(f.Material); err != nil {
			errs = append(errs, fmt.Errorf("fill %d: %w", i, err))
		}
		if f.Temp != nil && !finite(*f.Temp) {
			errs = append(errs, fmt.Errorf("fill %d: temperature %v: %w", i, *f.Temp, ErrInvalidTemperature))
		}
	}
	for i, s := range sc.Strokes {
		if _, err := ParseSelection(s.Brush); err != nil {
			errs = append(errs, fmt.Errorf("stroke %d: %w", i, err))
		}
		if !finite(s.Power) {
			errs = append(errs, fmt.Errorf("stroke %d: power %v must be finite", i, s.Power))
		}
	}
	return errors.Join(errs...)
}

// NewEngine builds an engine from the scenario config and applies the fills.
func (sc *Scenario) NewEngine(opts ...Option) (*Engine, error) {
	e := NewWithConfig(sc.Config, opts...)
	if err := sc.Setup(e); err != nil {
		return nil, err
	}
	return e, nil
}

// Setup applies the fills to e. Cells outside the grid are skipped.
func (sc *Scenario) Setup(e *Engine) error {
	for i, f := range sc.Fills {
		id, err := material.Parse(f.Material)
		if err != nil {
			return fmt.Errorf("fill %d: %w", i, err)
		}
		sel := Place(id)
		for x := f.X; x < f.X+f.W; x++ {
			for y := f.Y; y < f.Y+f.H; y++ {
				if !e.cur.InBounds(x, y) {
					continue
				}
				e.ApplyBrushAt(x, y, 1, sel, 1)
				if f.Temp != nil {
					if err := e.SetTemperature(x, y, float32(*f.Temp)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// ApplyStrokes paints every stroke due before the next tick of e.
func (sc *Scenario) ApplyStrokes(e *Engine) error {
	for i, s := range sc.Strokes {
		if !s.active(e.Tick()) {
			continue
		}
		sel, err := ParseSelection(s.Brush)
		if err != nil {
			return fmt.Errorf("stroke %d: %w", i, err)
		}
		power := float32(s.Power)
		if power == 0 {
			power = 1
		}
		e.ApplyBrushAt(s.X, s.Y, s.Diameter, sel, power)
	}
	return nil
}

// Run replays strokes and advances e for the scenario's tick count, calling
// observe after every committed tick. It stops at the first error.
func (sc *Scenario) Run(e *Engine, observe func(*Engine) error) error {
	for i := 0; i < sc.Ticks; i++ {
		if err := sc.ApplyStrokes(e); err != nil {
			return err
		}
		if err := e.AdvanceTick(); err != nil {
			return err
		}
		if observe != nil {
			if err := observe(e); err != nil {
				return err
			}
		}
	}
	return nil
}
