package sand

import (
	"fmt"
	"log/slog"

	"sandfall/internal/material"
)

// AdvanceTick runs one simulation step: heat diffusion, then movement and
// transitions cell by cell. All reads go to the committed grid and all writes
// to the pending one, which replaces it only once every cell succeeded. On
// error the committed grid, counters and discoveries are left untouched.
func (e *Engine) AdvanceTick() error {
	e.next.CopyFrom(e.cur)
	e.staged = e.staged[:0]
	for i := range e.loc {
		e.loc[i] = i
		e.origin[i] = i
		e.moved[i] = false
	}

	e.diffuse()

	w, h := e.cur.W, e.cur.H
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if err := e.updateCell(x, y); err != nil {
				err = fmt.Errorf("tick %d: cell (%d,%d): %w", e.tick+1, x, y, err)
				e.log.Error("tick aborted", slog.Uint64("tick", e.tick+1), slog.Any("err", err))
				return err
			}
		}
	}

	e.cur, e.next = e.next, e.cur
	e.tick++
	for _, id := range e.staged {
		if e.discovered[id] {
			continue
		}
		e.discovered[id] = true
		e.log.Info("material discovered", slog.String("material", id.String()), slog.Uint64("tick", e.tick))
	}
	e.particles = 0
	for _, c := range e.cur.Cells() {
		if c.Material != material.Air {
			e.particles++
		}
	}
	return nil
}

// diffuse writes the next temperature of every cell into the pending grid.
func (e *Engine) diffuse() {
	p := e.cfg.Params
	conductivity := float32(p.Conductivity)
	airConductivity := float32(p.AirConductivity)
	airContact := float32(p.AirContactConductivity)
	progressive := p.Diffusion == DiffusionProgressive

	cells := e.cur.Cells()
	pending := e.next.Cells()
	for y := 0; y < e.cur.H; y++ {
		for x := 0; x < e.cur.W; x++ {
			idx := e.cur.Index(x, y)
			self := cells[idx]
			base := conductivity
			if self.Material == material.Air {
				base = airConductivity
			}
			k := base
			var delta float32
			e.cur.Neighbors(x, y, func(nx, ny int) {
				n := cells[e.cur.Index(nx, ny)]
				switch {
				case n.Material == material.Air:
					k = airContact
				case !progressive:
					k = base
				}
				delta += k * (n.Temperature - self.Temperature)
			})
			pending[idx].Temperature = clampTemperature(self.Temperature+delta, self.Temperature)
		}
	}
}

func (e *Engine) updateCell(x, y int) error {
	src := e.cur.Index(x, y)
	c := e.cur.Cells()[src]
	if c.Material == material.Air {
		return nil
	}
	if _, err := material.Lookup(c.Material); err != nil {
		return err
	}
	pos := e.loc[src]
	if !e.moved[src] && c.Phase.CanMove() {
		pos = e.move(x, y, src, c)
	}
	return e.transition(pos)
}

// move tries a single displacement for the cell at (x, y) and returns the
// pending slot that holds its record afterwards.
func (e *Engine) move(x, y, src int, c Cell) int {
	var bottom, top, side [3]int
	var nb, nt, ns int
	cells := e.cur.Cells()
	e.cur.Neighbors(x, y, func(nx, ny int) {
		idx := e.cur.Index(nx, ny)
		n := cells[idx]
		switch {
		case ny > y:
			if n.Material == material.Air || n.Phase == material.Gas || n.Phase == material.Liquid {
				bottom[nb] = idx
				nb++
			}
		case ny < y:
			if n.Material == material.Air {
				top[nt] = idx
				nt++
			}
		default:
			if n.Density == 0 {
				side[ns] = idx
				ns++
			}
		}
	})

	pending := e.next.Cells()
	if nb > 0 && c.Phase != material.Gas {
		dst := bottom[e.rng.IntN(nb)]
		if c.Density > cells[dst].Density && c.Density > pending[dst].Density {
			e.swap(src, dst)
			return dst
		}
	}
	if nt > 0 && c.Phase == material.Gas {
		dst := top[e.rng.IntN(nt)]
		if e.airAt(dst) {
			e.swap(src, dst)
			return dst
		}
	}
	if ns > 0 && (c.Phase == material.Liquid || c.Phase == material.Gas) {
		dst := side[e.rng.IntN(ns)]
		if e.airAt(dst) {
			e.swap(src, dst)
			return dst
		}
	}
	return src
}

func (e *Engine) airAt(idx int) bool {
	return e.cur.Cells()[idx].Material == material.Air && e.next.Cells()[idx].Material == material.Air
}

// swap exchanges two pending records and keeps the slot bookkeeping in step.
func (e *Engine) swap(p, q int) {
	pending := e.next.Cells()
	pending[p], pending[q] = pending[q], pending[p]
	op, oq := e.origin[p], e.origin[q]
	e.origin[p], e.origin[q] = oq, op
	e.loc[op], e.loc[oq] = q, p
	e.moved[op], e.moved[oq] = true, true
}

func (e *Engine) transition(pos int) error {
	c := &e.next.Cells()[pos]
	if c.Cooldown == 0 {
		if to, phase, ok := material.Transition(c.Material, c.Temperature); ok {
			props, err := material.Lookup(to)
			if err != nil {
				return err
			}
			c.Material = to
			c.Phase = phase
			c.Density = props.Density
			c.Cooldown = ResetCooldown
			c.Color = e.sampleColor(props)
			e.staged = append(e.staged, to)
			return nil
		}
	}
	if c.Cooldown > 0 {
		c.Cooldown--
	}
	return nil
}
