// Package sand implements a falling-sand automaton: cells of granular, fluid
// and thermal materials that exchange heat, fall, rise and change material
// with temperature on a fixed grid.
package sand

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"sort"

	"sandfall/internal/core"
	"sandfall/internal/material"
	pcore "sandfall/pkg/core"
)

var (
	// ErrOutOfBounds is returned by coordinate queries outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidTemperature is returned when a temperature is not a number.
	ErrInvalidTemperature = errors.New("temperature is not a number")
)

// Engine owns the grid and advances it one tick at a time. It is not safe for
// concurrent use: ticks and brush strokes must be serialised by the caller.
type Engine struct {
	cfg Config

	cur  *core.Grid[Cell]
	next *core.Grid[Cell]

	// Per-tick bookkeeping for records moved inside next. loc maps a cell of
	// cur to the slot of next holding its record, origin is the inverse, and
	// moved marks records that already changed slot this tick.
	loc    []int
	origin []int
	moved  []bool

	discovered map[material.ID]bool
	staged     []material.ID

	particles int
	tick      uint64
	lastErr   error
	display   []uint8

	rng *pcore.RNG
	log *slog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger routes engine events to l.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New returns a sand sim with the provided dimensions using defaults.
func New(w, h int, opts ...Option) *Engine {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg, opts...)
}

// NewWithConfig returns an engine seeded from cfg.Seed.
func NewWithConfig(cfg Config, opts ...Option) *Engine {
	return NewWithRNG(cfg, pcore.NewRNG(cfg.Seed), opts...)
}

// NewWithRNG returns an engine drawing all randomness from rng.
func NewWithRNG(cfg Config, rng *pcore.RNG, opts ...Option) *Engine {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 1
	}
	if cfg.CellGap < 0 {
		cfg.CellGap = 0
	}
	if cfg.Params.Diffusion != DiffusionProgressive {
		cfg.Params.Diffusion = DiffusionPair
	}
	e := &Engine{
		cfg:  cfg,
		cur:  core.NewGrid[Cell](cfg.Width, cfg.Height),
		next: core.NewGrid[Cell](cfg.Width, cfg.Height),
		rng:  rng,
		log:  slog.New(slog.DiscardHandler),
	}
	e.cfg.Width, e.cfg.Height = e.cur.W, e.cur.H
	total := e.cur.W * e.cur.H
	e.loc = make([]int, total)
	e.origin = make([]int, total)
	e.moved = make([]bool, total)
	e.display = make([]uint8, total)
	for _, opt := range opts {
		opt(e)
	}
	e.clear()
	return e
}

func (e *Engine) clear() {
	e.cur.Fill(airCell(e.ambient()))
	e.next.CopyFrom(e.cur)
	e.discovered = map[material.ID]bool{}
	e.staged = e.staged[:0]
	e.particles = 0
	e.tick = 0
	e.lastErr = nil
}

func (e *Engine) ambient() float32 {
	return clampTemperature(float32(e.cfg.Params.AmbientTemperature), defaultAmbient)
}

// Name returns the simulation identifier.
func (e *Engine) Name() string { return "sand" }

// Size reports the grid dimensions.
func (e *Engine) Size() core.Size { return core.Size{W: e.cur.W, H: e.cur.H} }

// Width returns the number of columns.
func (e *Engine) Width() int { return e.cur.W }

// Height returns the number of rows.
func (e *Engine) Height() int { return e.cur.H }

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// Reset refills the grid with ambient air and reseeds the RNG. A zero seed
// reuses the configured seed.
func (e *Engine) Reset(seed int64) {
	if seed == 0 {
		seed = e.cfg.Seed
	}
	e.rng = pcore.NewRNG(seed)
	e.clear()
}

// Step advances one tick. Failures are kept for Err and leave the grid as it
// was before the tick.
func (e *Engine) Step() {
	e.lastErr = e.AdvanceTick()
}

// Err returns the error of the most recent Step, if any.
func (e *Engine) Err() error { return e.lastErr }

// Cells exposes the material id of every cell in row-major order.
func (e *Engine) Cells() []uint8 {
	for i, c := range e.cur.Cells() {
		e.display[i] = uint8(c.Material)
	}
	return e.display
}

// RNG returns the random source shared with placement colour jitter.
func (e *Engine) RNG() *pcore.RNG { return e.rng }

// Tick returns the number of committed ticks since construction or Reset.
func (e *Engine) Tick() uint64 { return e.tick }

// ActiveParticleCount returns the number of non-air cells after the last
// committed tick.
func (e *Engine) ActiveParticleCount() int { return e.particles }

// DiscoveredMaterials lists the materials produced by transitions so far, in
// enum order.
func (e *Engine) DiscoveredMaterials() []material.ID {
	ids := make([]material.ID, 0, len(e.discovered))
	for id := range e.discovered {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsDiscovered reports whether id has been produced by a transition.
func (e *Engine) IsDiscovered(id material.ID) bool { return e.discovered[id] }

func (e *Engine) cell(x, y int) (*Cell, error) {
	if !e.cur.InBounds(x, y) {
		return nil, fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", x, y, e.cur.W, e.cur.H, ErrOutOfBounds)
	}
	return e.cur.At(x, y), nil
}

// CellAt returns a copy of the cell at (x, y).
func (e *Engine) CellAt(x, y int) (Cell, error) {
	c, err := e.cell(x, y)
	if err != nil {
		return Cell{}, err
	}
	return *c, nil
}

// MaterialAt returns the material at (x, y).
func (e *Engine) MaterialAt(x, y int) (material.ID, error) {
	c, err := e.cell(x, y)
	if err != nil {
		return 0, err
	}
	return c.Material, nil
}

// TemperatureAt returns the temperature at (x, y).
func (e *Engine) TemperatureAt(x, y int) (float32, error) {
	c, err := e.cell(x, y)
	if err != nil {
		return 0, err
	}
	return c.Temperature, nil
}

// PhaseAt returns the phase at (x, y).
func (e *Engine) PhaseAt(x, y int) (material.Phase, error) {
	c, err := e.cell(x, y)
	if err != nil {
		return 0, err
	}
	return c.Phase, nil
}

// ColorAt returns the display colour at (x, y).
func (e *Engine) ColorAt(x, y int) (color.RGBA, error) {
	c, err := e.cell(x, y)
	if err != nil {
		return color.RGBA{}, err
	}
	return c.Color, nil
}

// SetTemperature overrides the temperature at (x, y), clamped to the
// physical range. It is meant for fixtures and scripted scenarios. NaN is
// rejected and leaves the cell unchanged.
func (e *Engine) SetTemperature(x, y int, t float32) error {
	c, err := e.cell(x, y)
	if err != nil {
		return err
	}
	if math.IsNaN(float64(t)) {
		return fmt.Errorf("cell (%d,%d): %w", x, y, ErrInvalidTemperature)
	}
	c.Temperature = clampTemperature(t, c.Temperature)
	return nil
}

// EachCell calls fn for every cell of the committed grid in row-major order.
func (e *Engine) EachCell(fn func(x, y int, c Cell)) {
	for i, c := range e.cur.Cells() {
		x, y := e.cur.Coord(i)
		fn(x, y, c)
	}
}

func (e *Engine) sampleColor(p material.Properties) color.RGBA {
	if p.Jitter == 0 {
		return p.Color
	}
	r := clampChannel(int(p.Color.R) + e.rng.IntRange(-p.Jitter, p.Jitter))
	g := clampChannel(int(p.Color.G) + e.rng.IntRange(-p.Jitter, p.Jitter))
	b := clampChannel(int(p.Color.B) + e.rng.IntRange(-p.Jitter, p.Jitter))
	return color.RGBA{R: r, G: g, B: b, A: p.Color.A}
}

func init() {
	core.Register("sand", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
