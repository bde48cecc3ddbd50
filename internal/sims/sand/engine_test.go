package sand

import (
	"errors"
	"math"
	"slices"
	"testing"

	"sandfall/internal/material"
)

// pixelOf returns the pixel at the centre of cell (x, y).
func pixelOf(e *Engine, x, y int) (int, int) {
	s := e.Config().Stride()
	return x*s + s/2, y*s + s/2
}

func place(t *testing.T, e *Engine, x, y int, id material.ID) {
	t.Helper()
	e.ApplyBrushAt(x, y, 1, Place(id), 1)
	if got, err := e.MaterialAt(x, y); err != nil || got != id {
		t.Fatalf("placing %v at (%d,%d) left %v (err %v)", id, x, y, got, err)
	}
}

func countMaterial(e *Engine, id material.ID) int {
	n := 0
	e.EachCell(func(_, _ int, c Cell) {
		if c.Material == id {
			n++
		}
	})
	return n
}

func nonAir(e *Engine) int {
	n := 0
	e.EachCell(func(_, _ int, c Cell) {
		if c.Material != material.Air {
			n++
		}
	})
	return n
}

func TestNewGridIsAmbientAir(t *testing.T) {
	e := New(4, 3)
	e.EachCell(func(x, y int, c Cell) {
		want := airCell(20)
		if c != want {
			t.Fatalf("cell (%d,%d) = %+v, want %+v", x, y, c, want)
		}
	})
	if e.ActiveParticleCount() != 0 || len(e.DiscoveredMaterials()) != 0 {
		t.Fatal("fresh engine should have no particles and no discoveries")
	}
}

func TestHeatBrushRaisesEveryCell(t *testing.T) {
	e := New(3, 3)
	px, py := pixelOf(e, 1, 1)

	for _, want := range []float32{30, 40} {
		e.ApplyBrush(px, py, 3, Heat(), 1)
		e.EachCell(func(x, y int, c Cell) {
			if c.Temperature != want {
				t.Fatalf("cell (%d,%d) temperature %v, want %v", x, y, c.Temperature, want)
			}
		})
	}
}

func TestWaterAtEquilibriumKeepsTemperature(t *testing.T) {
	e := New(3, 3)
	place(t, e, 1, 1, material.Water)

	if err := e.AdvanceTick(); err != nil {
		t.Fatalf("tick: %v", err)
	}
	e.EachCell(func(x, y int, c Cell) {
		if c.Temperature != 20 {
			t.Fatalf("cell (%d,%d) temperature %v, want 20", x, y, c.Temperature)
		}
		if c.Material == material.Water && c.Phase != material.Liquid {
			t.Fatalf("water at (%d,%d) has phase %v", x, y, c.Phase)
		}
	})
	if got := countMaterial(e, material.Water); got != 1 {
		t.Fatalf("expected exactly one water cell, got %d", got)
	}
	if e.ActiveParticleCount() != 1 {
		t.Fatalf("particle count %d, want 1", e.ActiveParticleCount())
	}
}

func TestRockMeltsOnSixthTick(t *testing.T) {
	e := New(1, 1)
	place(t, e, 0, 0, material.Rock)
	if err := e.SetTemperature(0, 0, 1250); err != nil {
		t.Fatal(err)
	}

	for tick := 1; tick <= 5; tick++ {
		if err := e.AdvanceTick(); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		c, _ := e.CellAt(0, 0)
		if c.Material != material.Rock {
			t.Fatalf("tick %d: rock changed to %v before cooldown expired", tick, c.Material)
		}
		if want := ResetCooldown - uint8(tick); c.Cooldown != want {
			t.Fatalf("tick %d: cooldown %d, want %d", tick, c.Cooldown, want)
		}
		if e.IsDiscovered(material.Lava) {
			t.Fatalf("tick %d: lava discovered early", tick)
		}
	}

	if err := e.AdvanceTick(); err != nil {
		t.Fatalf("tick 6: %v", err)
	}
	c, _ := e.CellAt(0, 0)
	if c.Material != material.Lava || c.Phase != material.Liquid {
		t.Fatalf("tick 6: got %v/%v, want lava/liquid", c.Material, c.Phase)
	}
	if c.Cooldown != ResetCooldown {
		t.Fatalf("cooldown after transition %d, want %d", c.Cooldown, ResetCooldown)
	}
	if c.Density != material.MustLookup(material.Lava).Density {
		t.Fatalf("density %v not refreshed from registry", c.Density)
	}
	if !slices.Contains(e.DiscoveredMaterials(), material.Lava) {
		t.Fatalf("discovered %v, want lava included", e.DiscoveredMaterials())
	}
}

func TestWaterBoilsOnSixthTick(t *testing.T) {
	e := New(1, 1)
	place(t, e, 0, 0, material.Water)
	if err := e.SetTemperature(0, 0, 100); err != nil {
		t.Fatal(err)
	}
	for tick := 1; tick <= 6; tick++ {
		if err := e.AdvanceTick(); err != nil {
			t.Fatalf("tick %d: %v", tick, err)
		}
		got, _ := e.MaterialAt(0, 0)
		if tick < 6 && got != material.Water {
			t.Fatalf("tick %d: water became %v", tick, got)
		}
		if tick == 6 && got != material.Steam {
			t.Fatalf("tick 6: got %v, want steam", got)
		}
	}
	if p, _ := e.PhaseAt(0, 0); p != material.Gas {
		t.Fatalf("steam phase %v", p)
	}
}

func TestSandSinksBelowWater(t *testing.T) {
	e := New(1, 10)
	for y := 0; y < 5; y++ {
		place(t, e, 0, y, material.Sand)
		place(t, e, 0, y+5, material.Water)
	}
	for i := 0; i < 50; i++ {
		if err := e.AdvanceTick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	for y := 0; y < 10; y++ {
		want := material.Water
		if y >= 5 {
			want = material.Sand
		}
		if got, _ := e.MaterialAt(0, y); got != want {
			t.Fatalf("row %d holds %v, want %v", y, got, want)
		}
	}
}

func TestPowderDisplacesLiquidDownward(t *testing.T) {
	e := New(1, 2)
	place(t, e, 0, 0, material.Sand)
	place(t, e, 0, 1, material.Water)
	if err := e.AdvanceTick(); err != nil {
		t.Fatal(err)
	}
	top, _ := e.MaterialAt(0, 0)
	bottom, _ := e.MaterialAt(0, 1)
	if top != material.Water || bottom != material.Sand {
		t.Fatalf("got top=%v bottom=%v, want water over sand", top, bottom)
	}
	for i := 0; i < 20; i++ {
		if err := e.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
		if got, _ := e.MaterialAt(0, 1); got != material.Sand {
			t.Fatalf("tick %d: sand moved back up", i)
		}
	}
}

func TestLiquidFallsThroughGas(t *testing.T) {
	e := New(1, 2)
	place(t, e, 0, 0, material.Water)
	place(t, e, 0, 1, material.Steam)
	if err := e.AdvanceTick(); err != nil {
		t.Fatal(err)
	}
	top, _ := e.MaterialAt(0, 0)
	bottom, _ := e.MaterialAt(0, 1)
	if top != material.Steam || bottom != material.Water {
		t.Fatalf("got top=%v bottom=%v, want steam over water", top, bottom)
	}
}

func TestGasRises(t *testing.T) {
	e := New(1, 3)
	place(t, e, 0, 2, material.Steam)
	if err := e.SetTemperature(0, 2, 200); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := e.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
	}
	if got, _ := e.MaterialAt(0, 0); got != material.Steam {
		t.Fatalf("steam should reach the top row, found %v", got)
	}
}

func TestLiquidSpreadsSideways(t *testing.T) {
	e := New(3, 1)
	place(t, e, 1, 0, material.Water)
	if err := e.AdvanceTick(); err != nil {
		t.Fatal(err)
	}
	if got, _ := e.MaterialAt(1, 0); got != material.Air {
		t.Fatalf("water should have moved sideways, centre holds %v", got)
	}
	if countMaterial(e, material.Water) != 1 {
		t.Fatal("water cell duplicated or lost")
	}
}

func TestSolidsNeverMove(t *testing.T) {
	e := New(3, 3)
	place(t, e, 1, 0, material.Rock)
	place(t, e, 0, 0, material.Ice)
	if err := e.SetTemperature(0, 0, -50); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := e.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
	}
	if got, _ := e.MaterialAt(1, 0); got != material.Rock {
		t.Fatalf("rock moved, (1,0) holds %v", got)
	}
	if got, _ := e.MaterialAt(0, 0); got != material.Ice {
		t.Fatalf("ice moved, (0,0) holds %v", got)
	}
}

func TestEraseRemovesLavaImmediately(t *testing.T) {
	e := New(3, 3)
	place(t, e, 1, 1, material.Lava)
	if err := e.SetTemperature(1, 1, 1500); err != nil {
		t.Fatal(err)
	}
	px, py := pixelOf(e, 1, 1)
	e.ApplyBrush(px, py, 1, Erase(), 1)

	c, _ := e.CellAt(1, 1)
	air := material.MustLookup(material.Air)
	if c.Material != material.Air || c.Phase != material.Special || c.Temperature != 20 || c.Density != 0 {
		t.Fatalf("erased cell = %+v", c)
	}
	if c.Color != air.Color {
		t.Fatalf("erased cell colour %v, want %v", c.Color, air.Color)
	}
}

func TestPlacementNeverDisplaces(t *testing.T) {
	e := New(3, 3)
	place(t, e, 1, 1, material.Sand)
	px, py := pixelOf(e, 1, 1)
	e.ApplyBrush(px, py, 3, Place(material.Water), 1)

	if got, _ := e.MaterialAt(1, 1); got != material.Sand {
		t.Fatalf("placement overwrote sand with %v", got)
	}
	if got := countMaterial(e, material.Water); got != 8 {
		t.Fatalf("expected 8 water cells around the sand, got %d", got)
	}

	e.ApplyBrush(px, py, 3, Erase(), 1)
	if nonAir(e) != 0 {
		t.Fatal("erase should clear every covered cell")
	}
}

func TestQueriesOutOfBounds(t *testing.T) {
	e := New(3, 2)
	coords := [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}}
	for _, xy := range coords {
		x, y := xy[0], xy[1]
		if _, err := e.MaterialAt(x, y); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("MaterialAt(%d,%d) err = %v", x, y, err)
		}
		if _, err := e.TemperatureAt(x, y); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("TemperatureAt(%d,%d) err = %v", x, y, err)
		}
		if _, err := e.PhaseAt(x, y); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("PhaseAt(%d,%d) err = %v", x, y, err)
		}
		if err := e.SetTemperature(x, y, 0); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("SetTemperature(%d,%d) err = %v", x, y, err)
		}
	}
}

func TestTemperatureStaysInRange(t *testing.T) {
	e := New(2, 2)
	px, py := pixelOf(e, 0, 0)
	e.ApplyBrush(px, py, 3, Heat(), 1000)
	if got, _ := e.TemperatureAt(0, 0); got != MaxTemperature {
		t.Fatalf("heat clamp: got %v", got)
	}
	e.ApplyBrush(px, py, 3, Cool(), 10000)
	if got, _ := e.TemperatureAt(0, 0); got != MinTemperature {
		t.Fatalf("cool clamp: got %v", got)
	}
	if err := e.SetTemperature(1, 1, 1e9); err != nil {
		t.Fatal(err)
	}
	if got, _ := e.TemperatureAt(1, 1); got != MaxTemperature {
		t.Fatalf("SetTemperature clamp: got %v", got)
	}
}

// mixedEngine fills a grid with a deterministic mix of materials and
// temperatures that exercises every transition.
func mixedEngine(seed int64) *Engine {
	cfg := DefaultConfig()
	cfg.Width = 16
	cfg.Height = 16
	cfg.Seed = seed
	e := NewWithConfig(cfg)
	ids := []material.ID{material.Air, material.Sand, material.Rock, material.Water, material.Ice,
		material.Steam, material.Lava, material.MoltenGlass, material.Glass}
	temps := []float32{-200, 0, 20, 150, 1250, 1600, 1800, 4900}
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			id := ids[(x*7+y*3)%len(ids)]
			if id != material.Air {
				e.ApplyBrushAt(x, y, 1, Place(id), 1)
			}
			_ = e.SetTemperature(x, y, temps[(x+y*5)%len(temps)])
		}
	}
	return e
}

func TestTicksConserveParticlesAndBounds(t *testing.T) {
	e := mixedEngine(5)
	want := nonAir(e)
	var seen []material.ID
	for i := 0; i < 120; i++ {
		if err := e.AdvanceTick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if got := e.ActiveParticleCount(); got != want {
			t.Fatalf("tick %d: particle count %d, want %d", i, got, want)
		}
		if got := nonAir(e); got != want {
			t.Fatalf("tick %d: %d non-air cells, want %d", i, got, want)
		}
		e.EachCell(func(x, y int, c Cell) {
			if c.Temperature < MinTemperature || c.Temperature > MaxTemperature {
				t.Fatalf("tick %d: (%d,%d) temperature %v out of range", i, x, y, c.Temperature)
			}
			if c.Cooldown > ResetCooldown {
				t.Fatalf("tick %d: (%d,%d) cooldown %d", i, x, y, c.Cooldown)
			}
			if c.Density != material.MustLookup(c.Material).Density {
				t.Fatalf("tick %d: (%d,%d) %v density %v", i, x, y, c.Material, c.Density)
			}
		})
		discovered := e.DiscoveredMaterials()
		for _, id := range seen {
			if !slices.Contains(discovered, id) {
				t.Fatalf("tick %d: %v vanished from discoveries", i, id)
			}
		}
		seen = discovered
	}
	if len(seen) == 0 {
		t.Fatal("mixed grid should have produced at least one discovery")
	}
}

func TestSameSeedSameOutcome(t *testing.T) {
	a := mixedEngine(11)
	b := mixedEngine(11)
	for i := 0; i < 40; i++ {
		if err := a.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
		if err := b.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
	}
	if !slices.Equal(a.cur.Cells(), b.cur.Cells()) {
		t.Fatal("engines with the same seed diverged")
	}
}

func TestFailedTickLeavesGridUntouched(t *testing.T) {
	e := New(2, 2)
	place(t, e, 0, 0, material.Sand)
	e.cur.At(1, 1).Material = material.ID(99)
	before := slices.Clone(e.cur.Cells())

	err := e.AdvanceTick()
	if !errors.Is(err, material.ErrUnknownMaterial) {
		t.Fatalf("expected ErrUnknownMaterial, got %v", err)
	}
	if e.Tick() != 0 {
		t.Fatalf("failed tick was counted: %d", e.Tick())
	}
	if !slices.Equal(before, e.cur.Cells()) {
		t.Fatal("failed tick modified the committed grid")
	}

	e.Step()
	if !errors.Is(e.Err(), material.ErrUnknownMaterial) {
		t.Fatalf("Step should record the failure, got %v", e.Err())
	}
}

func TestDiffusionModes(t *testing.T) {
	run := func(mode DiffusionMode) float32 {
		cfg := DefaultConfig()
		cfg.Width, cfg.Height = 3, 1
		cfg.Params.Diffusion = mode
		e := NewWithConfig(cfg)
		e.ApplyBrushAt(1, 0, 1, Place(material.Rock), 1)
		e.ApplyBrushAt(2, 0, 1, Place(material.Rock), 1)
		_ = e.SetTemperature(1, 0, 100)
		_ = e.SetTemperature(2, 0, 200)
		if err := e.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
		got, _ := e.TemperatureAt(1, 0)
		return got
	}

	// The air neighbour is scanned before the hot rock.
	if got := run(DiffusionPair); math.Abs(float64(got)-109) > 1e-3 {
		t.Fatalf("pair mode: got %v, want 109", got)
	}
	if got := run(DiffusionProgressive); math.Abs(float64(got)-100.25) > 1e-3 {
		t.Fatalf("progressive mode: got %v, want 100.25", got)
	}
}

func TestResetRestoresAmbientGrid(t *testing.T) {
	e := mixedEngine(3)
	for i := 0; i < 10; i++ {
		e.Step()
	}
	e.Reset(0)
	if e.Tick() != 0 || e.ActiveParticleCount() != 0 || len(e.DiscoveredMaterials()) != 0 {
		t.Fatal("reset should clear counters and discoveries")
	}
	if nonAir(e) != 0 {
		t.Fatal("reset should refill the grid with air")
	}
}

func TestCellsReportMaterialIDs(t *testing.T) {
	e := New(2, 1)
	place(t, e, 1, 0, material.Glass)
	cells := e.Cells()
	if cells[0] != uint8(material.Air) || cells[1] != uint8(material.Glass) {
		t.Fatalf("Cells() = %v", cells)
	}
	if e.Palette()[cells[1]] != material.MustLookup(material.Glass).Color {
		t.Fatal("palette entry does not match the registry colour")
	}
}

func TestNaNTemperatureIsRejected(t *testing.T) {
	e := New(3, 3)
	nan := float32(math.NaN())

	if err := e.SetTemperature(1, 1, nan); !errors.Is(err, ErrInvalidTemperature) {
		t.Fatalf("SetTemperature(NaN) = %v, want ErrInvalidTemperature", err)
	}
	if got, _ := e.TemperatureAt(1, 1); got != 20 {
		t.Fatalf("rejected write changed the cell to %v", got)
	}

	e.ApplyBrushAt(1, 1, 3, Heat(), nan)
	e.ApplyBrushAt(1, 1, 3, Cool(), nan)
	e.EachCell(func(x, y int, c Cell) {
		if c.Temperature != 20 {
			t.Fatalf("NaN brush power moved cell (%d,%d) to %v", x, y, c.Temperature)
		}
	})

	e.ApplyBrushAt(0, 0, 1, Heat(), float32(math.Inf(1)))
	e.ApplyBrushAt(2, 2, 1, Cool(), float32(math.Inf(1)))
	if got, _ := e.TemperatureAt(0, 0); got != MaxTemperature {
		t.Fatalf("infinite heat gave %v, want %v", got, MaxTemperature)
	}
	if got, _ := e.TemperatureAt(2, 2); got != MinTemperature {
		t.Fatalf("infinite cooling gave %v, want %v", got, MinTemperature)
	}

	for i := 0; i < 3; i++ {
		if err := e.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
	}
	e.EachCell(func(x, y int, c Cell) {
		if math.IsNaN(float64(c.Temperature)) || c.Temperature < MinTemperature || c.Temperature > MaxTemperature {
			t.Fatalf("cell (%d,%d) temperature %v", x, y, c.Temperature)
		}
	})
}

func TestNaNAmbientFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 2, 2
	cfg.Params.AmbientTemperature = math.NaN()
	e := NewWithConfig(cfg)
	e.EachCell(func(x, y int, c Cell) {
		if c.Temperature != 20 {
			t.Fatalf("cell (%d,%d) starts at %v", x, y, c.Temperature)
		}
	})
}

// A powder that sinks into a liquid claims the slot for this tick. A later
// liquid that saw the same slot in the committed grid must not displace it.
func TestSinkingPowderKeepsItsSlot(t *testing.T) {
	e := New(2, 2)
	place(t, e, 0, 0, material.Sand)
	place(t, e, 1, 0, material.Lava)
	place(t, e, 0, 1, material.Rock)
	place(t, e, 1, 1, material.Water)

	if err := e.AdvanceTick(); err != nil {
		t.Fatal(err)
	}
	want := map[[2]int]material.ID{
		{0, 0}: material.Water,
		{1, 0}: material.Lava,
		{0, 1}: material.Rock,
		{1, 1}: material.Sand,
	}
	for p, id := range want {
		if got, _ := e.MaterialAt(p[0], p[1]); got != id {
			t.Fatalf("cell %v holds %v, want %v", p, got, id)
		}
	}
}

// A liquid flowing sideways into air takes the slot. A second liquid that
// also saw the air in the committed grid stays put.
func TestSideFlowTargetIsClaimedOnce(t *testing.T) {
	e := New(3, 1)
	place(t, e, 0, 0, material.Water)
	place(t, e, 2, 0, material.Lava)

	if err := e.AdvanceTick(); err != nil {
		t.Fatal(err)
	}
	for x, id := range []material.ID{material.Air, material.Water, material.Lava} {
		if got, _ := e.MaterialAt(x, 0); got != id {
			t.Fatalf("cell (%d,0) holds %v, want %v", x, got, id)
		}
	}
	if countMaterial(e, material.Water) != 1 || countMaterial(e, material.Lava) != 1 {
		t.Fatal("a particle was lost or duplicated")
	}
}

// Two gases compete for the same air cell above them. The first one scanned
// wins and the second one stays where it was.
func TestRisingGasTargetIsClaimedOnce(t *testing.T) {
	e := New(2, 2)
	place(t, e, 1, 0, material.Rock)
	place(t, e, 0, 1, material.Steam)
	place(t, e, 1, 1, material.Steam)
	_ = e.SetTemperature(0, 1, 150)
	_ = e.SetTemperature(1, 1, 300)

	if err := e.AdvanceTick(); err != nil {
		t.Fatal(err)
	}
	if got, _ := e.MaterialAt(0, 1); got != material.Air {
		t.Fatalf("cell (0,1) holds %v, want air", got)
	}
	top, _ := e.CellAt(0, 0)
	stayed, _ := e.CellAt(1, 1)
	if top.Material != material.Steam || stayed.Material != material.Steam {
		t.Fatalf("steam ended at (0,0)=%v (1,1)=%v", top.Material, stayed.Material)
	}
	if top.Temperature >= stayed.Temperature {
		t.Fatalf("cooler steam should have risen: top %v, stayed %v", top.Temperature, stayed.Temperature)
	}
}
