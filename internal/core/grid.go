package core

// Grid stores a 2D grid of cells in row-major order. Coordinates outside the
// grid are never wrapped: edge cells simply have fewer neighbours.
type Grid[T any] struct {
	W, H int
	data []T
}

// NewGrid allocates a grid with the given dimensions. Non-positive
// dimensions are raised to 1 so every grid holds at least one cell.
func NewGrid[T any](w, h int) *Grid[T] {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid[T]{W: w, H: h, data: make([]T, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid[T]) Cells() []T { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid[T]) Index(x, y int) int { return y*g.W + x }

// Coord converts a linear index back into (x, y).
func (g *Grid[T]) Coord(idx int) (int, int) { return idx % g.W, idx / g.W }

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid[T]) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// At returns a pointer to the cell at (x, y). The caller must bounds-check.
func (g *Grid[T]) At(x, y int) *T { return &g.data[y*g.W+x] }

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// CopyFrom overwrites the grid with src. Both grids must share a shape.
func (g *Grid[T]) CopyFrom(src *Grid[T]) {
	copy(g.data, src.data)
}

// Neighbors calls fn for each in-bounds Moore neighbour of (x, y), scanning
// row by row from the top-left.
func (g *Grid[T]) Neighbors(x, y int, fn func(nx, ny int)) {
	for dy := -1; dy <= 1; dy++ {
		ny := y + dy
		if ny < 0 || ny >= g.H {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx := x + dx
			if nx < 0 || nx >= g.W {
				continue
			}
			fn(nx, ny)
		}
	}
}
