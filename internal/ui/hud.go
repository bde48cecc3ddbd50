//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"sandfall/internal/core"
	"sandfall/internal/sims/sand"
)

// Status is the front end state shown on the HUD each frame.
type Status struct {
	Tools    []sand.Selection
	Tool     int
	Diameter int
	Power    float32
	Paused   bool
	HeatMap  bool
	// Hover is the inspector text of the cell under the cursor, if any.
	Hover string
}

// tunable is the parameter surface the controls drive.
type tunable interface {
	core.ParameterProvider
	core.ParameterControlsProvider
	core.FloatParameterSetter
}

// HUD renders the tool palette, inspector and physics controls to the right
// of the grid.
type HUD struct {
	engine       *sand.Engine
	params       tunable
	width        int
	panel        *ebiten.Image
	snapshot     core.ParameterSnapshot
	controls     []hudControlState
	panelOffsetX int

	status    Status
	toolRects []image.Rectangle
}

// NewHUD constructs a HUD for e with the given panel width.
func NewHUD(e *sand.Engine, width int) *HUD {
	if width < 0 {
		width = 0
	}
	h := &HUD{engine: e, params: e, width: width}
	controls := h.params.ParameterControls()
	h.controls = make([]hudControlState, len(controls))
	for i, ctrl := range controls {
		h.controls[i] = hudControlState{control: ctrl, value: "--"}
	}
	h.layoutControls()
	return h
}

// Width returns the panel width in pixels.
func (h *HUD) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// MinHeight is the panel height needed to show every section.
func (h *HUD) MinHeight() int {
	if h == nil || len(h.controls) == 0 {
		return controlsTop
	}
	return h.controls[len(h.controls)-1].top + lineHeight + panelPadding
}

// Update refreshes the snapshot and handles clicks on the panel. It returns
// the index of a palette entry clicked this frame, or -1.
func (h *HUD) Update(panelOffsetX int, st Status) int {
	if h == nil {
		return -1
	}
	h.panelOffsetX = panelOffsetX
	h.status = st
	h.snapshot = h.params.Parameters()
	h.refreshControlValues()
	h.layoutPalette(len(st.Tools))
	return h.handleInput()
}

// Draw paints the panel at offsetX.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || h.width <= 0 || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dx() != h.width || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(color.RGBA{R: 16, G: 16, B: 20, A: 255})
	h.drawStatus()
	h.drawPalette()
	h.drawInspector()
	h.drawControls()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

var (
	textColor  = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	mutedColor = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	titleColor = color.RGBA{R: 200, G: 200, B: 210, A: 255}
)

func (h *HUD) drawStatus() {
	face := basicfont.Face7x13
	text.Draw(h.panel, "Sandfall", face, panelPadding, panelPadding+headerBaseline, titleColor)
	state := "running"
	if h.status.Paused {
		state = "paused"
	}
	view := "materials"
	if h.status.HeatMap {
		view = "heat map"
	}
	lines := []string{
		fmt.Sprintf("Tick %d  %s", h.engine.Tick(), state),
		fmt.Sprintf("Particles %d", h.engine.ActiveParticleCount()),
		fmt.Sprintf("Brush %d  x%.2f", h.status.Diameter, h.status.Power),
		"View " + view,
	}
	for i, line := range lines {
		text.Draw(h.panel, line, face, panelPadding, statusTop+i*statusLine, textColor)
	}
}

func (h *HUD) layoutPalette(n int) {
	if cap(h.toolRects) < n {
		h.toolRects = make([]image.Rectangle, n)
	}
	h.toolRects = h.toolRects[:n]
	colWidth := (h.width - 2*panelPadding) / 2
	for i := range h.toolRects {
		col, row := i%2, i/2
		x := panelPadding + col*colWidth
		y := paletteTop + row*paletteRow
		h.toolRects[i] = image.Rect(x, y, x+colWidth-buttonGap, y+paletteRow-4)
	}
}

func (h *HUD) drawPalette() {
	face := basicfont.Face7x13
	for i, rect := range h.toolRects {
		tool := h.status.Tools[i]
		bg := color.RGBA{R: 32, G: 34, B: 40, A: 255}
		if i == h.status.Tool {
			bg = color.RGBA{R: 70, G: 74, B: 90, A: 255}
		}
		fillRect(h.panel, rect, bg)
		swatch := image.Rect(rect.Min.X+3, rect.Min.Y+3, rect.Min.X+3+swatchSize, rect.Min.Y+3+swatchSize)
		fillRect(h.panel, swatch, h.toolColor(tool))
		text.Draw(h.panel, tool.String(), face, swatch.Max.X+6, rect.Min.Y+13, textColor)
	}
}

func (h *HUD) toolColor(s sand.Selection) color.RGBA {
	switch s.Kind {
	case sand.BrushHeat:
		return sand.ThermalColor(1500)
	case sand.BrushCool:
		return sand.ThermalColor(-100)
	case sand.BrushErase:
		return color.RGBA{R: 60, G: 60, B: 60, A: 255}
	}
	return h.engine.Palette()[s.Material]
}

func (h *HUD) drawInspector() {
	if h.status.Hover == "" {
		return
	}
	face := basicfont.Face7x13
	top := paletteTop + ((len(h.toolRects)+1)/2)*paletteRow + 16
	for i, line := range strings.Split(h.status.Hover, "\n") {
		text.Draw(h.panel, line, face, panelPadding, top+i*statusLine, mutedColor)
	}
}

func (h *HUD) refreshControlValues() {
	for i := range h.controls {
		state := &h.controls[i]
		param, ok := h.snapshot.Find(state.control.Key)
		if !ok {
			state.hasValue = false
			state.value = "--"
			continue
		}
		parsed, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			state.hasValue = false
			state.value = "--"
			continue
		}
		state.floatValue = parsed
		state.value = formatFloat(state.control, parsed)
		state.hasValue = true
	}
}

func (h *HUD) handleInput() int {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return -1
	}
	mx, my := ebiten.CursorPosition()
	if mx < h.panelOffsetX {
		return -1
	}
	px := mx - h.panelOffsetX
	for i, rect := range h.toolRects {
		if pointInRect(px, my, rect) {
			return i
		}
	}
	for i := range h.controls {
		state := &h.controls[i]
		if !state.hasValue {
			continue
		}
		if pointInRect(px, my, state.minusRect) {
			h.applyAdjustment(state, -1)
			break
		}
		if pointInRect(px, my, state.plusRect) {
			h.applyAdjustment(state, 1)
			break
		}
	}
	return -1
}

func (h *HUD) applyAdjustment(state *hudControlState, direction int) {
	target := state.control.Clamp(state.floatValue + float64(direction)*state.control.Step)
	if math.Abs(target-state.floatValue) < 1e-9 {
		return
	}
	if h.params.SetFloatParameter(state.control.Key, target) {
		state.floatValue = target
		state.value = formatFloat(state.control, target)
	}
}

func (h *HUD) canAdjust(state *hudControlState, direction int) bool {
	target := state.floatValue + float64(direction)*state.control.Step
	return state.control.Clamp(target) != state.floatValue
}

func (h *HUD) drawControls() {
	face := basicfont.Face7x13
	for i := range h.controls {
		state := &h.controls[i]
		labelY := state.top + labelBaseline
		text.Draw(h.panel, state.control.Label, face, panelPadding, labelY, textColor)
		valueColor := textColor
		if !state.hasValue {
			valueColor = mutedColor
		}
		bounds := text.BoundString(face, state.value)
		valueX := state.minusRect.Min.X - buttonGap - bounds.Dx()
		text.Draw(h.panel, state.value, face, valueX, labelY, valueColor)

		h.drawButton(state.minusRect, "-", state.hasValue && h.canAdjust(state, -1))
		h.drawButton(state.plusRect, "+", state.hasValue && h.canAdjust(state, 1))
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	fillRect(h.panel, rect, bg)

	face := basicfont.Face7x13
	bounds := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-bounds.Dx())/2
	y := rect.Min.Y + (rect.Dy()-bounds.Dy())/2 + bounds.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) layoutControls() {
	if h.width <= 0 {
		return
	}
	for i := range h.controls {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plusRect := image.Rect(h.width-panelPadding-buttonSize, buttonY, h.width-panelPadding, buttonY+buttonSize)
		minusRect := image.Rect(plusRect.Min.X-buttonGap-buttonSize, buttonY, plusRect.Min.X-buttonGap, buttonY+buttonSize)
		h.controls[i].top = top
		h.controls[i].minusRect = minusRect
		h.controls[i].plusRect = plusRect
	}
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	precision := 1
	switch {
	case ctrl.Step < 0.001:
		precision = 4
	case ctrl.Step < 0.01:
		precision = 3
	case ctrl.Step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func fillRect(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}

type hudControlState struct {
	control core.ParameterControl
	value   string

	floatValue float64
	hasValue   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	statusTop      = panelPadding + headerBaseline + 22
	statusLine     = 16
	paletteTop     = statusTop + 4*statusLine
	paletteRow     = 22
	swatchSize     = 12
	// Room for six palette rows and the inspector above the controls.
	controlsTop = paletteTop + 6*paletteRow + 4*statusLine + 12
)
