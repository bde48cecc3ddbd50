//go:build !ebiten

package ui

import "sandfall/internal/sims/sand"

// Status mirrors the GUI build so callers compile headless.
type Status struct {
	Tools    []sand.Selection
	Tool     int
	Diameter int
	Power    float32
	Paused   bool
	HeatMap  bool
	Hover    string
}

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(*sand.Engine, int) *HUD { return nil }

// Width is zero in the headless build.
func (h *HUD) Width() int { return 0 }

// MinHeight is zero in the headless build.
func (h *HUD) MinHeight() int { return 0 }

// Update never reports a palette click in the headless build.
func (h *HUD) Update(int, Status) int { return -1 }

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int, int) {}
