package render

import "image/color"

// FrameSize returns the pixel dimensions of a w*h grid drawn with square
// cells of cellSize pixels separated by gap pixels.
func FrameSize(w, h, cellSize, gap int) (int, int) {
	stride := cellSize + gap
	return w * stride, h * stride
}

// fillCellsRGBA rasterises per-cell colours into buf, an RGBA image of
// FrameSize pixels. Gap pixels take the background colour.
func fillCellsRGBA(buf []byte, colors []color.RGBA, w, h, cellSize, gap int, background color.RGBA) {
	stride := cellSize + gap
	pw := w * stride
	for py := 0; py < h*stride; py++ {
		gy := py / stride
		inY := py%stride < cellSize
		row := py * pw * 4
		for px := 0; px < pw; px++ {
			col := background
			if inY && px%stride < cellSize {
				col = colors[gy*w+px/stride]
			}
			base := row + px*4
			buf[base+0] = col.R
			buf[base+1] = col.G
			buf[base+2] = col.B
			buf[base+3] = col.A
		}
	}
}
