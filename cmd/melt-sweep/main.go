package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"sandfall/internal/core"
	"sandfall/internal/material"
	"sandfall/internal/sims/sand"
)

type paramSet struct {
	power        float64
	conductivity float64
	airContact   float64
	diffusion    sand.DiffusionMode
}

func (p paramSet) String() string {
	return fmt.Sprintf("power=%.1f cond=%.3f airContact=%.4f diffusion=%s",
		p.power, p.conductivity, p.airContact, p.diffusion)
}

type scenarioResult struct {
	params     paramSet
	firstMelt  int
	fullMelt   int
	peakLava   int
	maxTemp    float32
	discovered []material.ID
	err        error
}

func (r scenarioResult) melted() bool { return r.fullMelt > 0 }

func main() {
	steps := flag.Int("steps", 400, "ticks to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	block := flag.Int("block", 8, "side of the rock block in cells")
	size := flag.Int("size", 32, "grid width and height")
	simName := flag.String("sim", "sand", fmt.Sprintf("registered simulation to sweep %v", core.Names()))
	flag.Parse()

	factory, err := core.Lookup(*simName)
	if err != nil {
		log.Fatal(err)
	}
	if *size <= 0 {
		log.Fatalf("grid size %d must be positive", *size)
	}
	if _, ok := factory(nil).(*sand.Engine); !ok {
		log.Fatalf("sim %q has no heat brush to sweep", *simName)
	}

	powerOptions := []float64{1, 2, 4, 8}
	conductivityOptions := []float64{0.05, 0.1, 0.125}
	airContactOptions := []float64{0, 0.0125, 0.025}
	diffusionOptions := []sand.DiffusionMode{sand.DiffusionPair, sand.DiffusionProgressive}

	var sets []paramSet
	for _, power := range powerOptions {
		for _, cond := range conductivityOptions {
			for _, air := range airContactOptions {
				for _, mode := range diffusionOptions {
					sets = append(sets, paramSet{
						power:        power,
						conductivity: cond,
						airContact:   air,
						diffusion:    mode,
					})
				}
			}
		}
	}

	fmt.Printf("Sweeping %d parameter sets (%d workers, %d steps, %dx%d block)\n", len(sets), *workers, *steps, *block, *block)

	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- runScenario(factory, *size, params, *block, *steps)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, params := range sets {
			jobs <- params
		}
		close(jobs)
	}()

	start := time.Now()
	var all []scenarioResult
	for res := range results {
		if res.err != nil {
			fmt.Printf("Scenario failed (%s): %v\n", res.params, res.err)
			continue
		}
		all = append(all, res)
	}

	// Fully melted runs first, fastest first; then by earliest first melt.
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.melted() != b.melted() {
			return a.melted()
		}
		if a.melted() && a.fullMelt != b.fullMelt {
			return a.fullMelt < b.fullMelt
		}
		if (a.firstMelt > 0) != (b.firstMelt > 0) {
			return a.firstMelt > 0
		}
		return a.firstMelt < b.firstMelt
	})
	elapsed := time.Since(start)

	fmt.Printf("\nTop 5 results (elapsed %s):\n", elapsed.Round(time.Millisecond))
	for i := 0; i < len(all) && i < 5; i++ {
		res := all[i]
		fmt.Printf("%2d) first=%d full=%d lavaPeak=%d maxTemp=%.1f discovered=%v params=%s\n",
			i+1, res.firstMelt, res.fullMelt, res.peakLava, res.maxTemp, res.discovered, res.params)
	}

	never := 0
	for _, res := range all {
		if res.firstMelt == 0 {
			never++
		}
	}
	fmt.Printf("\n%d of %d scenarios never melted within %d steps\n", never, len(all), *steps)
}

// options renders a parameter set as factory options.
func (p paramSet) options(size int) map[string]string {
	return map[string]string{
		"w":                        strconv.Itoa(size),
		"h":                        strconv.Itoa(size),
		"conductivity":             strconv.FormatFloat(p.conductivity, 'g', -1, 64),
		"air_contact_conductivity": strconv.FormatFloat(p.airContact, 'g', -1, 64),
		"diffusion":                string(p.diffusion),
	}
}

// runScenario heats a square rock block in the middle of an empty grid every
// tick and records when it starts and finishes melting.
func runScenario(factory core.Factory, size int, params paramSet, block, steps int) scenarioResult {
	res := scenarioResult{params: params}
	sim := factory(params.options(size))
	e, ok := sim.(*sand.Engine)
	if !ok {
		res.err = fmt.Errorf("sim %q has no heat brush", sim.Name())
		return res
	}
	cfg := e.Config()
	cx, cy := cfg.Width/2, cfg.Height/2
	half := block / 2
	x0, y0 := cx-half, cy-half
	rock := sand.Place(material.Rock)
	for x := x0; x < x0+block; x++ {
		for y := y0; y < y0+block; y++ {
			e.ApplyBrushAt(x, y, 1, rock, 1)
		}
	}
	total := countMaterial(sim, material.Rock)

	for step := 1; step <= steps; step++ {
		e.ApplyBrushAt(cx, cy, block, sand.Heat(), float32(params.power))
		sim.Step()
		if err := e.Err(); err != nil {
			res.err = err
			return res
		}

		lava := countMaterial(sim, material.Lava)
		if lava > 0 && res.firstMelt == 0 {
			res.firstMelt = step
		}
		if lava > res.peakLava {
			res.peakLava = lava
		}
		e.EachCell(func(_, _ int, c sand.Cell) {
			if c.Temperature > res.maxTemp {
				res.maxTemp = c.Temperature
			}
		})
		if lava >= total {
			res.fullMelt = step
			break
		}
	}
	res.discovered = e.DiscoveredMaterials()
	return res
}

func countMaterial(sim core.Sim, id material.ID) int {
	n := 0
	for _, c := range sim.Cells() {
		if material.ID(c) == id {
			n++
		}
	}
	return n
}
