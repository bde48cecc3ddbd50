package sand

import (
	"fmt"
	"image"
	"strings"

	"sandfall/internal/material"
)

const (
	// MinBrushDiameter and MaxBrushDiameter bound the brush size in cells.
	MinBrushDiameter = 1
	MaxBrushDiameter = 50
)

// BrushKind is what a brush stroke does to the cells it covers.
type BrushKind uint8

const (
	BrushPlace BrushKind = iota
	BrushErase
	BrushHeat
	BrushCool
)

// Selection is the active brush tool.
type Selection struct {
	Kind     BrushKind
	Material material.ID
}

// Place selects painting with id. Placing air is the same as erasing.
func Place(id material.ID) Selection {
	if id == material.Air {
		return Erase()
	}
	return Selection{Kind: BrushPlace, Material: id}
}

// Erase selects resetting cells to ambient air.
func Erase() Selection { return Selection{Kind: BrushErase} }

// Heat selects raising the temperature of cells.
func Heat() Selection { return Selection{Kind: BrushHeat} }

// Cool selects lowering the temperature of cells.
func Cool() Selection { return Selection{Kind: BrushCool} }

func (s Selection) String() string {
	switch s.Kind {
	case BrushErase:
		return "erase"
	case BrushHeat:
		return "heat"
	case BrushCool:
		return "cool"
	default:
		return s.Material.String()
	}
}

// ParseSelection resolves a tool name: a material name, "erase" (or "none"),
// "heat" or "cool".
func ParseSelection(name string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "erase", "none":
		return Erase(), nil
	case "heat":
		return Heat(), nil
	case "cool":
		return Cool(), nil
	}
	id, err := material.Parse(name)
	if err != nil {
		return Selection{}, fmt.Errorf("brush selection: %w", err)
	}
	return Place(id), nil
}

// ClampDiameter restricts a brush diameter to the supported range.
func ClampDiameter(d int) int {
	if d < MinBrushDiameter {
		return MinBrushDiameter
	}
	if d > MaxBrushDiameter {
		return MaxBrushDiameter
	}
	return d
}

// CellAtPixel maps a cursor position to the cell under it. Positions outside
// the playable area report false.
func (e *Engine) CellAtPixel(px, py int) (int, int, bool) {
	stride := e.cfg.Stride()
	if px < 0 || py < 0 || px >= e.cur.W*stride || py >= e.cur.H*stride {
		return 0, 0, false
	}
	return px / stride, py / stride, true
}

// BrushBounds returns the clipped rectangle of cells a stroke at the cursor
// would touch.
func (e *Engine) BrushBounds(px, py, diameter int) (image.Rectangle, bool) {
	gx, gy, ok := e.CellAtPixel(px, py)
	if !ok {
		return image.Rectangle{}, false
	}
	return e.brushRect(gx, gy, diameter), true
}

// BrushBoundsAt is BrushBounds addressed by grid coordinates.
func (e *Engine) BrushBoundsAt(gx, gy, diameter int) image.Rectangle {
	return e.brushRect(gx, gy, diameter)
}

func (e *Engine) brushRect(gx, gy, diameter int) image.Rectangle {
	half := ClampDiameter(diameter) / 2
	r := image.Rect(gx-half, gy-half, gx+half+1, gy+half+1)
	return r.Intersect(image.Rect(0, 0, e.cur.W, e.cur.H))
}

// ApplyBrush paints sel over the square around the cell under the cursor.
// Cursor positions outside the grid are ignored. Heat and cool change the
// temperature by the configured step times power.
func (e *Engine) ApplyBrush(px, py, diameter int, sel Selection, power float32) {
	gx, gy, ok := e.CellAtPixel(px, py)
	if !ok {
		return
	}
	e.ApplyBrushAt(gx, gy, diameter, sel, power)
}

// ApplyBrushAt is ApplyBrush addressed by grid coordinates. The centre may lie
// outside the grid; only covered cells inside it change.
func (e *Engine) ApplyBrushAt(gx, gy, diameter int, sel Selection, power float32) {
	r := e.brushRect(gx, gy, diameter)
	if r.Empty() {
		return
	}
	var place material.Properties
	if sel.Kind == BrushPlace {
		p, err := material.Lookup(sel.Material)
		if err != nil || !p.Placeable {
			return
		}
		place = p
	}
	step := float32(e.cfg.Params.BrushHeatStep) * power
	ambient := e.ambient()
	air := airCell(ambient)

	for x := r.Min.X; x < r.Max.X; x++ {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			c := e.cur.At(x, y)
			switch sel.Kind {
			case BrushHeat:
				c.Temperature = clampTemperature(c.Temperature+step, c.Temperature)
			case BrushCool:
				c.Temperature = clampTemperature(c.Temperature-step, c.Temperature)
			case BrushErase:
				c.Material = air.Material
				c.Phase = air.Phase
				c.Temperature = air.Temperature
				c.Density = air.Density
				c.Color = air.Color
			case BrushPlace:
				if c.Material != material.Air {
					continue
				}
				c.Material = sel.Material
				c.Phase = place.Phase
				c.Temperature = ambient
				c.Density = place.Density
				c.Color = e.sampleColor(place)
			}
		}
	}
}
