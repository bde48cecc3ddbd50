package tui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	title    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	dim      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	selected = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	panel    = lipgloss.NewStyle().PaddingLeft(2)
	frame    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238"))
)

const help = "arrows/hjkl move  enter paint  [ ] size  +/- power  tab tool  space pause  n step  t heat  r reset  q quit"

// View renders the grid next to the tool panel.
func (m Model) View() string {
	grid := frame.Render(m.renderGrid())
	side := panel.Render(m.renderPanel())
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, side))
	b.WriteString("\n")
	b.WriteString(dim.Render(help))
	return b.String()
}

func (m Model) renderGrid() string {
	var colors []color.RGBA
	if m.heatMap {
		colors = m.engine.ThermalColors(nil)
	} else {
		colors = m.engine.Colors(nil)
	}
	bounds := m.engine.BrushBoundsAt(m.cx, m.cy, m.diameter)
	w, h := m.engine.Width(), m.engine.Height()

	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := colors[y*w+x]
			style := lipgloss.NewStyle().Foreground(hex(c))
			glyph := "██"
			switch {
			case x == m.cx && y == m.cy:
				glyph = "[]"
				style = style.Background(lipgloss.Color("255")).Foreground(lipgloss.Color("0"))
			case onEdge(x, y, bounds.Min.X, bounds.Min.Y, bounds.Max.X-1, bounds.Max.Y-1):
				glyph = "▓▓"
			}
			b.WriteString(style.Render(glyph))
		}
		if y < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func onEdge(x, y, x0, y0, x1, y1 int) bool {
	if x < x0 || x > x1 || y < y0 || y > y1 {
		return false
	}
	return x == x0 || x == x1 || y == y0 || y == y1
}

func (m Model) renderPanel() string {
	var b strings.Builder
	b.WriteString(title.Render("sandfall"))
	b.WriteString("\n\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	fmt.Fprintf(&b, "brush %d  power x%.2f\n\n", m.diameter, m.power)

	for i, t := range m.tools {
		line := fmt.Sprintf("%d %s", i+1, t)
		if i == m.tool {
			b.WriteString(selected.Render("> " + line))
		} else {
			b.WriteString(dim.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if text, err := m.engine.Describe(m.cx, m.cy); err == nil {
		b.WriteString("\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	if m.series.Len() > 1 && varies(m.series.TempMean) {
		b.WriteString("\n")
		b.WriteString(asciigraph.Plot(m.series.TempMean,
			asciigraph.Height(6),
			asciigraph.Width(32),
			asciigraph.Caption("mean temperature"),
		))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.err.Error()))
	}
	return b.String()
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func varies(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return true
		}
	}
	return false
}
