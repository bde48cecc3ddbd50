package sand

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DiffusionMode selects how the heat transfer coefficient is chosen for each
// neighbour of a cell.
type DiffusionMode string

const (
	// DiffusionPair picks the coefficient from the pair of cells alone, so
	// neighbour scan order never matters.
	DiffusionPair DiffusionMode = "pair"
	// DiffusionProgressive lowers a single running coefficient once an air
	// neighbour has been scanned and keeps it lowered for the rest of the
	// scan. This reproduces the behaviour of the first desktop version.
	DiffusionProgressive DiffusionMode = "progressive"
)

// Params holds the tunable physics of the sand sim.
type Params struct {
	Diffusion DiffusionMode `yaml:"diffusion"`

	// Conductivity is the transfer coefficient of non-air cells.
	Conductivity float64 `yaml:"conductivity"`
	// AirConductivity is the transfer coefficient of air cells.
	AirConductivity float64 `yaml:"air_conductivity"`
	// AirContactConductivity applies to every air neighbour.
	AirContactConductivity float64 `yaml:"air_contact_conductivity"`

	AmbientTemperature float64 `yaml:"ambient_temperature"`
	BrushHeatStep      float64 `yaml:"brush_heat_step"`
}

// Config controls the sand sim dimensions, seed, pixel mapping and physics.
type Config struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"`

	// CellSize and CellGap define the pixel stride used by the brush.
	CellSize int `yaml:"cell_size"`
	CellGap  int `yaml:"cell_gap"`

	Params Params `yaml:"params"`
}

const defaultAmbient = 20

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:    50,
		Height:   50,
		Seed:     1337,
		CellSize: 10,
		CellGap:  1,
		Params: Params{
			Diffusion:              DiffusionPair,
			Conductivity:           0.1,
			AirConductivity:        0.025,
			AirContactConductivity: 0.0125,
			AmbientTemperature:     defaultAmbient,
			BrushHeatStep:          10,
		},
	}
}

// Stride is the number of pixels between the origins of adjacent cells.
func (c Config) Stride() int { return c.CellSize + c.CellGap }

// Validate reports configuration values the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid size %dx%d must be positive", c.Width, c.Height))
	}
	if c.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("cell_size %d must be positive", c.CellSize))
	}
	if c.CellGap < 0 {
		errs = append(errs, fmt.Errorf("cell_gap %d must not be negative", c.CellGap))
	}
	switch c.Params.Diffusion {
	case DiffusionPair, DiffusionProgressive:
	default:
		errs = append(errs, fmt.Errorf("diffusion mode %q must be %q or %q", c.Params.Diffusion, DiffusionPair, DiffusionProgressive))
	}
	for _, p := range []struct {
		key string
		v   float64
	}{
		{"conductivity", c.Params.Conductivity},
		{"air_conductivity", c.Params.AirConductivity},
		{"air_contact_conductivity", c.Params.AirContactConductivity},
		{"brush_heat_step", c.Params.BrushHeatStep},
	} {
		if !finite(p.v) || p.v < 0 {
			errs = append(errs, fmt.Errorf("%s %v must be a finite non-negative number", p.key, p.v))
		}
	}
	if !finite(c.Params.AmbientTemperature) || c.Params.AmbientTemperature < MinTemperature || c.Params.AmbientTemperature > MaxTemperature {
		errs = append(errs, fmt.Errorf("ambient_temperature %v outside [%v, %v]", c.Params.AmbientTemperature, MinTemperature, MaxTemperature))
	}
	return errors.Join(errs...)
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Malformed or out-of-range values are ignored and keep their defaults.
func FromMap(cfg map[string]string) Config {
	return ApplyMap(DefaultConfig(), cfg)
}

// ApplyMap overrides fields of c from a string map using the FromMap keys.
func ApplyMap(c Config, cfg map[string]string) Config {
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["cell_size"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.CellSize = parsed
		}
	}
	if v, ok := cfg["cell_gap"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.CellGap = parsed
		}
	}
	if v, ok := cfg["diffusion"]; ok {
		switch mode := DiffusionMode(v); mode {
		case DiffusionPair, DiffusionProgressive:
			c.Params.Diffusion = mode
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && finite(parsed) && parsed >= 0 {
				*dst = parsed
			}
		}
	}
	setFloat("conductivity", &c.Params.Conductivity)
	setFloat("air_conductivity", &c.Params.AirConductivity)
	setFloat("air_contact_conductivity", &c.Params.AirContactConductivity)
	setFloat("brush_heat_step", &c.Params.BrushHeatStep)
	if v, ok := cfg["ambient_temperature"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= MinTemperature && parsed <= MaxTemperature {
			c.Params.AmbientTemperature = parsed
		}
	}
	return c
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
