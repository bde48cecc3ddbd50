package sand

import (
	"image/color"
	"math"

	"sandfall/internal/material"
)

const (
	// MinTemperature and MaxTemperature bound every cell temperature.
	MinTemperature = -273
	MaxTemperature = 5000

	// ResetCooldown is the number of ticks a cell waits after creation or a
	// material change before its transitions are evaluated again.
	ResetCooldown uint8 = 5
)

// Cell is the state of one lattice site.
type Cell struct {
	Material    material.ID
	Phase       material.Phase
	Temperature float32
	// Density mirrors the registry density of Material.
	Density  float32
	Cooldown uint8
	// Color is cosmetic. It is sampled when the material is set.
	Color color.RGBA
}

func airCell(temp float32) Cell {
	air := material.MustLookup(material.Air)
	return Cell{
		Material:    material.Air,
		Phase:       air.Phase,
		Temperature: temp,
		Density:     air.Density,
		Cooldown:    ResetCooldown,
		Color:       air.Color,
	}
}

// clampTemperature bounds t to the physical range. NaN has no place in the
// range and is replaced by fallback.
func clampTemperature(t, fallback float32) float32 {
	if math.IsNaN(float64(t)) {
		return fallback
	}
	if t < MinTemperature {
		return MinTemperature
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
