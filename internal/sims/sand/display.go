package sand

import (
	"fmt"
	"image/color"

	"sandfall/internal/material"
)

var sandPalette = buildSandPalette()

// Palette maps the values returned by Cells to the base colour of each
// material.
func (e *Engine) Palette() []color.RGBA {
	return sandPalette
}

func buildSandPalette() []color.RGBA {
	ids := material.All()
	palette := make([]color.RGBA, len(ids))
	for i, id := range ids {
		palette[i] = material.MustLookup(id).Color
	}
	return palette
}

// Colors fills dst with the per-cell colours of the committed grid and
// returns it, reallocating when dst is too small.
func (e *Engine) Colors(dst []color.RGBA) []color.RGBA {
	cells := e.cur.Cells()
	if cap(dst) < len(cells) {
		dst = make([]color.RGBA, len(cells))
	}
	dst = dst[:len(cells)]
	for i, c := range cells {
		dst[i] = c.Color
	}
	return dst
}

// ThermalColors is Colors with every cell shaded by ThermalColor.
func (e *Engine) ThermalColors(dst []color.RGBA) []color.RGBA {
	cells := e.cur.Cells()
	if cap(dst) < len(cells) {
		dst = make([]color.RGBA, len(cells))
	}
	dst = dst[:len(cells)]
	for i, c := range cells {
		dst[i] = ThermalColor(c.Temperature)
	}
	return dst
}

// ThermalColor maps a temperature onto the heat-map ramp: purple fading to
// black below zero, blue through magenta up to 1000, red to yellow up to
// 2000 and yellow to white above.
func ThermalColor(t float32) color.RGBA {
	ratio := func(lo, span float32) float32 {
		r := (t - lo) / span
		if r < 0 {
			return 0
		}
		if r > 1 {
			return 1
		}
		return r
	}
	switch {
	case t <= 0:
		r := ratio(MinTemperature, -MinTemperature)
		return color.RGBA{R: uint8(75 * r), G: 0, B: uint8(130 * r), A: 255}
	case t <= 1000:
		return color.RGBA{R: uint8(255 * ratio(0, 1000)), G: 0, B: 255, A: 255}
	case t <= 2000:
		return color.RGBA{R: 255, G: uint8(255 * ratio(1000, 1000)), B: 0, A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: uint8(255 * ratio(2000, 1000)), A: 255}
	}
}

// Describe returns the inspector text for the cell at (x, y).
func (e *Engine) Describe(x, y int) (string, error) {
	c, err := e.cell(x, y)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\nTemp: %.2f\nState: %s", c.Material, c.Temperature, c.Phase), nil
}

// Toolbox lists the brush tools a front end should offer: the starter
// materials, every discovered material, then heat, cool and erase.
func (e *Engine) Toolbox() []Selection {
	starters := []material.ID{material.Sand, material.Rock, material.Water}
	tools := make([]Selection, 0, len(starters)+len(e.discovered)+3)
	seen := map[material.ID]bool{}
	for _, id := range starters {
		tools = append(tools, Place(id))
		seen[id] = true
	}
	for _, id := range e.DiscoveredMaterials() {
		if seen[id] || !material.MustLookup(id).Placeable {
			continue
		}
		tools = append(tools, Place(id))
	}
	return append(tools, Heat(), Cool(), Erase())
}
