// Package telemetry turns engine state into per-tick records for CSV export,
// structured logs and terminal plots.
package telemetry

import (
	"log/slog"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"sandfall/internal/material"
	"sandfall/internal/sims/sand"
)

// Record is the state of the grid after one committed tick.
type Record struct {
	Tick      uint64 `csv:"tick"`
	Particles int    `csv:"particles"`

	// Cell counts per phase
	Powder int `csv:"powder"`
	Liquid int `csv:"liquid"`
	Gas    int `csv:"gas"`
	Solid  int `csv:"solid"`

	// Temperature distribution over every cell, air included
	TempMean float64 `csv:"temp_mean"`
	TempStd  float64 `csv:"temp_std"`
	TempMin  float64 `csv:"temp_min"`
	TempMax  float64 `csv:"temp_max"`
	TempP90  float64 `csv:"temp_p90"`

	// Hottest non-air cell, 0 when the grid is empty
	HottestParticle float64 `csv:"hottest_particle"`

	Discovered     int    `csv:"discovered"`
	DiscoveredList string `csv:"discovered_list"`
}

// Collector samples engines into Records. It reuses its buffers between
// calls and is not safe for concurrent use.
type Collector struct {
	temps  []float64
	sorted []float64
}

// Collect summarises the committed grid of e.
func (c *Collector) Collect(e *sand.Engine) Record {
	r := Record{
		Tick:      e.Tick(),
		Particles: e.ActiveParticleCount(),
	}
	c.temps = c.temps[:0]
	hottest := 0.0
	seenParticle := false
	e.EachCell(func(_, _ int, cell sand.Cell) {
		t := float64(cell.Temperature)
		c.temps = append(c.temps, t)
		switch cell.Phase {
		case material.Powder:
			r.Powder++
		case material.Liquid:
			r.Liquid++
		case material.Gas:
			r.Gas++
		case material.Solid:
			r.Solid++
		}
		if cell.Material != material.Air && (!seenParticle || t > hottest) {
			hottest = t
			seenParticle = true
		}
	})
	r.HottestParticle = hottest

	r.TempMean, r.TempStd = stat.PopMeanStdDev(c.temps, nil)
	r.TempMin = floats.Min(c.temps)
	r.TempMax = floats.Max(c.temps)

	c.sorted = append(c.sorted[:0], c.temps...)
	sort.Float64s(c.sorted)
	r.TempP90 = stat.Quantile(0.9, stat.Empirical, c.sorted, nil)

	ids := e.DiscoveredMaterials()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}
	r.Discovered = len(ids)
	r.DiscoveredList = strings.Join(names, "|")
	return r
}

// Collect summarises e with a throwaway Collector.
func Collect(e *sand.Engine) Record {
	var c Collector
	return c.Collect(e)
}

// LogValue implements slog.LogValuer for structured logging.
func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", r.Tick),
		slog.Int("particles", r.Particles),
		slog.Int("powder", r.Powder),
		slog.Int("liquid", r.Liquid),
		slog.Int("gas", r.Gas),
		slog.Int("solid", r.Solid),
		slog.Float64("temp_mean", r.TempMean),
		slog.Float64("temp_std", r.TempStd),
		slog.Float64("temp_min", r.TempMin),
		slog.Float64("temp_max", r.TempMax),
		slog.Float64("temp_p90", r.TempP90),
		slog.Float64("hottest_particle", r.HottestParticle),
		slog.String("discovered", r.DiscoveredList),
	)
}
