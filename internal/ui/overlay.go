//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"sandfall/internal/sims/sand"
)

// Overlay draws the brush outline and error banner on top of the grid.
type Overlay struct {
	engine      *sand.Engine
	showOutline bool
}

// NewOverlay constructs an overlay for e with the outline visible.
func NewOverlay(e *sand.Engine) *Overlay {
	return &Overlay{engine: e, showOutline: true}
}

// Update toggles the outline with B.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		o.showOutline = !o.showOutline
	}
}

// Draw outlines the cells a stroke at (cx, cy) would touch and shows err at
// the bottom of the grid.
func (o *Overlay) Draw(screen *ebiten.Image, cx, cy, diameter int, err error) {
	cfg := o.engine.Config()
	stride := float32(cfg.Stride())
	if o.showOutline {
		if r, ok := o.engine.BrushBounds(cx, cy, diameter); ok {
			x := float32(r.Min.X) * stride
			y := float32(r.Min.Y) * stride
			w := float32(r.Dx())*stride - float32(cfg.CellGap)
			h := float32(r.Dy())*stride - float32(cfg.CellGap)
			vector.StrokeRect(screen, x, y, w, h, 1, color.RGBA{R: 255, G: 255, B: 255, A: 200}, false)
		}
	}
	if err != nil {
		height := float32(o.engine.Height()) * stride
		width := float32(o.engine.Width()) * stride
		vector.DrawFilledRect(screen, 0, height-20, width, 20, color.RGBA{R: 120, A: 220}, false)
		text.Draw(screen, err.Error(), basicfont.Face7x13, 6, int(height)-6, color.White)
	}
}
