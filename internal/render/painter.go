//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// CellPainter uploads per-cell colours into a single RGBA image laid out
// with the engine's cell size and gap.
type CellPainter struct {
	w, h     int
	cellSize int
	gap      int
	img      *ebiten.Image
	buf      []byte

	Background color.RGBA
}

// NewCellPainter allocates a painter for a grid of w*h cells.
func NewCellPainter(w, h, cellSize, gap int) *CellPainter {
	pw, ph := FrameSize(w, h, cellSize, gap)
	return &CellPainter{
		w: w, h: h, cellSize: cellSize, gap: gap,
		img:        ebiten.NewImage(pw, ph),
		buf:        make([]byte, 4*pw*ph),
		Background: color.RGBA{R: 10, G: 10, B: 12, A: 255},
	}
}

// Draw rasterises colors and draws the result at the origin of dst.
func (cp *CellPainter) Draw(dst *ebiten.Image, colors []color.RGBA) {
	if len(colors) != cp.w*cp.h {
		return
	}
	fillCellsRGBA(cp.buf, colors, cp.w, cp.h, cp.cellSize, cp.gap, cp.Background)
	cp.img.WritePixels(cp.buf)
	dst.DrawImage(cp.img, nil)
}

// Size returns the pixel dimensions of the painted frame.
func (cp *CellPainter) Size() (int, int) { return FrameSize(cp.w, cp.h, cp.cellSize, cp.gap) }
