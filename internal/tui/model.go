// Package tui is a terminal front end for the sand engine built on
// bubbletea. Cells are drawn as coloured blocks and the brush is driven from
// the keyboard.
package tui

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sandfall/internal/core"
	"sandfall/internal/sims/sand"
	"sandfall/internal/telemetry"
)

// Options tune the terminal front end.
type Options struct {
	TPS      int
	Diameter int
	Paused   bool
	Logger   *slog.Logger
	// History bounds the number of ticks kept for the sparkline.
	History int
}

// DefaultOptions mirrors the desktop front end: 30 ticks per second and a
// five cell brush.
func DefaultOptions() Options {
	return Options{TPS: 30, Diameter: 5, History: 60}
}

// Model is the bubbletea model driving one engine.
type Model struct {
	engine *sand.Engine
	timer  *core.FixedStep
	log    *slog.Logger

	tools    []sand.Selection
	tool     int
	cx, cy   int
	diameter int
	power    float32

	paused  bool
	heatMap bool
	err     error

	collector telemetry.Collector
	series    *telemetry.Series

	width, height int
}

// New returns a model for e with the cursor in the middle of the grid.
func New(e *sand.Engine, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	m := Model{
		engine:   e,
		timer:    core.NewFixedStep(opts.TPS),
		log:      opts.Logger,
		tools:    e.Toolbox(),
		cx:       e.Width() / 2,
		cy:       e.Height() / 2,
		diameter: sand.ClampDiameter(opts.Diameter),
		power:    1,
		paused:   opts.Paused,
		series:   telemetry.NewSeries(opts.History),
	}
	return m
}

// Run starts an interactive program on the alternate screen and blocks until
// the user quits.
func Run(e *sand.Engine, opts Options) error {
	p := tea.NewProgram(New(e, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}

type tickMsg time.Time

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.timer.Interval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles key presses, resizes and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused {
			m.advance(m.timer.Due())
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "space":
		m.paused = !m.paused
	case "n":
		if m.paused {
			m.advance(1)
		}
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "enter", "p":
		m.paint()
	case "[":
		m.diameter = sand.ClampDiameter(m.diameter - 1)
	case "]":
		m.diameter = sand.ClampDiameter(m.diameter + 1)
	case "+", "=":
		m.power *= 2
		if m.power > 16 {
			m.power = 16
		}
	case "-", "_":
		m.power /= 2
		if m.power < 0.25 {
			m.power = 0.25
		}
	case "tab":
		m.tool = (m.tool + 1) % len(m.tools)
	case "shift+tab":
		m.tool = (m.tool + len(m.tools) - 1) % len(m.tools)
	case "t":
		m.heatMap = !m.heatMap
	case "r":
		m.engine.Reset(0)
		m.err = nil
		m.tools = m.engine.Toolbox()
		m.tool = 0
		m.series = telemetry.NewSeries(m.series.Cap)
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(m.tools) {
				m.tool = i
			}
		}
	}
	return m, nil
}

func (m *Model) moveCursor(dx, dy int) {
	m.cx = min(max(m.cx+dx, 0), m.engine.Width()-1)
	m.cy = min(max(m.cy+dy, 0), m.engine.Height()-1)
}

func (m *Model) paint() {
	m.engine.ApplyBrushAt(m.cx, m.cy, m.diameter, m.tools[m.tool], m.power)
}

// advance runs n ticks, pausing on the first failure.
func (m *Model) advance(n int) {
	for i := 0; i < n; i++ {
		if err := m.engine.AdvanceTick(); err != nil {
			m.err = err
			m.paused = true
			m.log.Error("simulation paused", slog.Any("err", err))
			return
		}
		m.series.Add(m.collector.Collect(m.engine))
	}
	if n > 0 {
		m.refreshTools()
	}
}

// refreshTools picks up newly discovered materials while keeping the
// current selection.
func (m *Model) refreshTools() {
	tools := m.engine.Toolbox()
	if len(tools) == len(m.tools) {
		return
	}
	current := m.tools[m.tool]
	m.tools = tools
	m.tool = 0
	for i, t := range tools {
		if t == current {
			m.tool = i
			break
		}
	}
	m.log.Debug("toolbox updated", slog.Int("tools", len(tools)))
}

// Selection returns the active brush tool.
func (m Model) Selection() sand.Selection { return m.tools[m.tool] }

// Cursor returns the grid cell under the cursor.
func (m Model) Cursor() (int, int) { return m.cx, m.cy }

// Diameter returns the brush diameter in cells.
func (m Model) Diameter() int { return m.diameter }

// Paused reports whether the frame loop is holding ticks.
func (m Model) Paused() bool { return m.paused }

// Err returns the tick error that paused the model, if any.
func (m Model) Err() error { return m.err }

func (m Model) status() string {
	state := "running"
	if m.paused {
		state = "paused"
	}
	return fmt.Sprintf("tick %d  %s  particles %d", m.engine.Tick(), state, m.engine.ActiveParticleCount())
}
