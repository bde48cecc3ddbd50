package sand

import (
	"strconv"

	"sandfall/internal/core"
)

const (
	keyConductivity           = "conductivity"
	keyAirConductivity        = "air_conductivity"
	keyAirContactConductivity = "air_contact_conductivity"
	keyBrushHeatStep          = "brush_heat_step"
)

// Parameters returns a snapshot of the configuration and live counters.
func (e *Engine) Parameters() core.ParameterSnapshot {
	params := e.cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", e.cfg.Width),
				intParam("h", "Height", e.cfg.Height),
				int64Param("seed", "Seed", e.cfg.Seed),
				intParam("cell_size", "Cell size (px)", e.cfg.CellSize),
				intParam("cell_gap", "Cell gap (px)", e.cfg.CellGap),
			},
		},
		{
			Name:    "Thermal",
			Summary: "Heat moves by coefficient x temperature difference per neighbour each tick.",
			Params: []core.Parameter{
				{Key: "diffusion", Label: "Diffusion mode", Type: core.ParamTypeString, Value: string(params.Diffusion)},
				floatParam(keyConductivity, "Conductivity", params.Conductivity),
				floatParam(keyAirConductivity, "Air conductivity", params.AirConductivity),
				floatParam(keyAirContactConductivity, "Air contact conductivity", params.AirContactConductivity),
				floatParam("ambient_temperature", "Ambient temperature", params.AmbientTemperature),
			},
		},
		{
			Name: "Brush",
			Params: []core.Parameter{
				floatParam(keyBrushHeatStep, "Heat per stroke", params.BrushHeatStep),
			},
		},
		{
			Name: "State",
			Params: []core.Parameter{
				int64Param("tick", "Tick", int64(e.tick)),
				intParam("particles", "Particles", e.particles),
				intParam("discovered", "Discovered", len(e.discovered)),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the parameters that may be adjusted while running.
// Conductivities stay at or below 1/8 so a cell never gives away more heat
// than the difference to its neighbours.
func (e *Engine) ParameterControls() []core.ParameterControl {
	conductivity := func(key, label string) core.ParameterControl {
		return core.ParameterControl{
			Key: key, Label: label, Type: core.ParamTypeFloat,
			Step: 0.005, Min: 0, Max: 0.125, HasMin: true, HasMax: true,
		}
	}
	return []core.ParameterControl{
		conductivity(keyConductivity, "Conductivity"),
		conductivity(keyAirConductivity, "Air cond."),
		conductivity(keyAirContactConductivity, "Air contact"),
		{Key: keyBrushHeatStep, Label: "Heat step", Type: core.ParamTypeFloat, Step: 5, Min: 1, Max: 100, HasMin: true, HasMax: true},
	}
}

// SetFloatParameter updates a runtime-adjustable parameter, clamped to its
// control bounds. It reports false for unknown keys.
func (e *Engine) SetFloatParameter(key string, value float64) bool {
	var dst *float64
	switch key {
	case keyConductivity:
		dst = &e.cfg.Params.Conductivity
	case keyAirConductivity:
		dst = &e.cfg.Params.AirConductivity
	case keyAirContactConductivity:
		dst = &e.cfg.Params.AirContactConductivity
	case keyBrushHeatStep:
		dst = &e.cfg.Params.BrushHeatStep
	default:
		return false
	}
	for _, ctrl := range e.ParameterControls() {
		if ctrl.Key == key {
			value = ctrl.Clamp(value)
			break
		}
	}
	*dst = value
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
