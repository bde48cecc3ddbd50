//go:build ebiten

package app

import (
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"sandfall/internal/core"
	"sandfall/internal/render"
	"sandfall/internal/sims/sand"
	"sandfall/internal/ui"
)

var toolKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
	ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// Game adapts the sand engine to the ebiten.Game interface.
type Game struct {
	engine  *sand.Engine
	painter *render.CellPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	timer   *core.FixedStep
	log     *slog.Logger

	tools    []sand.Selection
	tool     int
	diameter int
	power    float32

	paused   bool
	tickOnce bool
	heatMap  bool
	seed     int64
	err      error
}

// New constructs a Game for e.
func New(e *sand.Engine, cfg *Config, log *slog.Logger) *Game {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ec := e.Config()
	return &Game{
		engine:   e,
		painter:  render.NewCellPainter(e.Width(), e.Height(), ec.CellSize, ec.CellGap),
		overlay:  ui.NewOverlay(e),
		hud:      ui.NewHUD(e, cfg.HUDWidth),
		timer:    core.NewFixedStep(cfg.TPS),
		log:      log,
		tools:    e.Toolbox(),
		diameter: sand.ClampDiameter(cfg.Diameter),
		power:    1,
		seed:     cfg.Seed,
	}
}

// Reset refills the grid with air using seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.engine.Reset(seed)
	g.tickOnce = false
	g.err = nil
	g.tools = g.engine.Toolbox()
	g.tool = 0
	g.log.Info("grid reset", "seed", seed)
}

// Update handles per-frame input and advances the simulation at the
// configured tick rate.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.heatMap = !g.heatMap
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.tool = (g.tool + 1) % len(g.tools)
	}
	for i, k := range toolKeys {
		if i < len(g.tools) && inpututil.IsKeyJustPressed(k) {
			g.tool = i
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) && g.power < 16 {
		g.power *= 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) && g.power > 0.25 {
		g.power /= 2
	}
	if _, dy := ebiten.Wheel(); dy > 0 {
		g.diameter = sand.ClampDiameter(g.diameter + 1)
	} else if dy < 0 {
		g.diameter = sand.ClampDiameter(g.diameter - 1)
	}

	g.overlay.Update()
	if picked := g.hud.Update(g.gridWidth(), g.status()); picked >= 0 {
		g.tool = picked
	}
	g.paint()

	due := 0
	if !g.paused {
		due = g.timer.Due()
	} else if g.tickOnce {
		due = 1
	}
	g.tickOnce = false
	g.advance(due)
	return nil
}

func (g *Game) paint() {
	mx, my := ebiten.CursorPosition()
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.engine.ApplyBrush(mx, my, g.diameter, g.tools[g.tool], g.power)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		g.engine.ApplyBrush(mx, my, g.diameter, sand.Erase(), g.power)
	}
}

func (g *Game) advance(n int) {
	for i := 0; i < n; i++ {
		if err := g.engine.AdvanceTick(); err != nil {
			g.err = err
			g.paused = true
			g.log.Error("simulation paused", "err", err)
			return
		}
	}
	if n == 0 {
		return
	}
	if tools := g.engine.Toolbox(); len(tools) != len(g.tools) {
		current := g.tools[g.tool]
		g.tools, g.tool = tools, 0
		for i, t := range tools {
			if t == current {
				g.tool = i
			}
		}
	}
}

func (g *Game) status() ui.Status {
	st := ui.Status{
		Tools:    g.tools,
		Tool:     g.tool,
		Diameter: g.diameter,
		Power:    g.power,
		Paused:   g.paused,
		HeatMap:  g.heatMap,
	}
	mx, my := ebiten.CursorPosition()
	if x, y, ok := g.engine.CellAtPixel(mx, my); ok {
		st.Hover, _ = g.engine.Describe(x, y)
	}
	return st
}

// Draw renders the grid, brush outline and HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.heatMap {
		g.painter.Draw(screen, g.engine.ThermalColors(nil))
	} else {
		g.painter.Draw(screen, g.engine.Colors(nil))
	}
	mx, my := ebiten.CursorPosition()
	g.overlay.Draw(screen, mx, my, g.diameter, g.err)
	_, h := g.Layout(0, 0)
	g.hud.Draw(screen, g.gridWidth(), h)
}

func (g *Game) gridWidth() int {
	w, _ := g.painter.Size()
	return w
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.painter.Size()
	return w + g.hud.Width(), max(h, g.hud.MinHeight())
}
