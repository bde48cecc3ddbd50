// Package material holds the closed set of materials and phases a cell can
// take, together with their static properties and the temperature-gated
// transition table. The registry is immutable after package initialisation.
package material

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

// ErrUnknownMaterial is returned when an id outside the registry is looked up.
var ErrUnknownMaterial = errors.New("unknown material")

// ID identifies a material. The zero value is Air.
type ID uint8

const (
	Air ID = iota
	Sand
	Rock
	Water
	Ice
	Steam
	Lava
	MoltenGlass
	Glass

	count
)

// Phase is the coarse behavioural class of a cell.
type Phase uint8

const (
	Special Phase = iota
	Solid
	Liquid
	Gas
	Powder
)

var phaseNames = [...]string{
	Special: "special",
	Solid:   "solid",
	Liquid:  "liquid",
	Gas:     "gas",
	Powder:  "powder",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// CanMove reports whether cells in this phase take part in movement.
func (p Phase) CanMove() bool {
	return p == Liquid || p == Gas || p == Powder
}

// Properties are the registry values of a material.
type Properties struct {
	Name    string
	Color   color.RGBA
	Jitter  int
	Density float32
	Phase   Phase

	// Placeable materials may be painted with the brush.
	Placeable bool
}

var registry = [count]Properties{
	Air:         {Name: "air", Color: rgb(25, 25, 25), Jitter: 0, Density: 0, Phase: Special},
	Sand:        {Name: "sand", Color: rgb(255, 255, 0), Jitter: 25, Density: 1.1, Phase: Powder, Placeable: true},
	Rock:        {Name: "rock", Color: rgb(128, 128, 128), Jitter: 5, Density: 4, Phase: Solid, Placeable: true},
	Water:       {Name: "water", Color: rgb(0, 128, 255), Jitter: 15, Density: 0.1, Phase: Liquid, Placeable: true},
	Ice:         {Name: "ice", Color: rgb(131, 206, 255), Jitter: 15, Density: 4, Phase: Solid, Placeable: true},
	Steam:       {Name: "steam", Color: rgb(200, 200, 200), Jitter: 5, Density: 0, Phase: Gas, Placeable: true},
	Lava:        {Name: "lava", Color: rgb(255, 115, 0), Jitter: 25, Density: 0.3, Phase: Liquid, Placeable: true},
	MoltenGlass: {Name: "molten glass", Color: rgb(255, 188, 79), Jitter: 20, Density: 0.2, Phase: Liquid, Placeable: true},
	Glass:       {Name: "glass", Color: rgb(207, 255, 245), Jitter: 5, Density: 4, Phase: Solid, Placeable: true},
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Valid reports whether id is a registered material.
func (id ID) Valid() bool { return id < count }

func (id ID) String() string {
	if id.Valid() {
		return registry[id].Name
	}
	return fmt.Sprintf("material(%d)", uint8(id))
}

// Lookup returns the registry entry for id.
func Lookup(id ID) (Properties, error) {
	if !id.Valid() {
		return Properties{}, fmt.Errorf("lookup %d: %w", uint8(id), ErrUnknownMaterial)
	}
	return registry[id], nil
}

// MustLookup is Lookup for ids that are known to be valid, such as the
// package constants. It panics on an unknown id.
func MustLookup(id ID) Properties {
	p, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return p
}

// All lists every registered material in enum order.
func All() []ID {
	ids := make([]ID, count)
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// Parse resolves a material name. Matching ignores case and treats spaces,
// underscores and dashes as interchangeable, so "Molten_Glass" and
// "moltenglass" both name MoltenGlass.
func Parse(name string) (ID, error) {
	key := normalize(name)
	for i, p := range registry {
		if normalize(p.Name) == key {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("parse %q: %w", name, ErrUnknownMaterial)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
