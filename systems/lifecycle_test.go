package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/traits"
)

const (
	seaLion traits.SpeciesID = iota
	sardine
	plankton
	kelp
)

// stubRand replays scripted draws; exhausted floats return 0.99 (no breeding)
// and exhausted ints return 0.
type stubRand struct {
	floats []float64
	ints   []int
}

func (r *stubRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *stubRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func testTable(t *testing.T) *traits.Table {
	t.Helper()
	tbl, err := traits.NewTable([]traits.Traits{
		{Name: "sea_lion", Family: traits.Consumer, Prey: sardine, MaxAge: 25, BreedingAge: 4, BreedingProbability: 0.15, MaxLitterSize: 3, FoodValue: 6},
		{Name: "sardine", Family: traits.Consumer, Prey: plankton, MaxAge: 13, BreedingAge: 2, BreedingProbability: 0.30, MaxLitterSize: 4, FoodValue: 4},
		{Name: "plankton", Family: traits.Producer, MaxAge: 10, BreedingProbability: 0.02, MaxLitterSize: 2},
		{Name: "kelp", Family: traits.Producer, MaxAge: 10, BreedingProbability: 0.04, MaxLitterSize: 2},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

// recorder captures lifecycle events.
type recorder struct {
	births, kills int
	deaths        map[components.DeathCause]int
}

func (r *recorder) Born(ecs.Entity, ecs.Entity, traits.SpeciesID) { r.births++ }
func (r *recorder) Ate(ecs.Entity, ecs.Entity, traits.SpeciesID)  { r.kills++ }
func (r *recorder) Died(_ ecs.Entity, _ traits.SpeciesID, c components.DeathCause) {
	if r.deaths == nil {
		r.deaths = make(map[components.DeathCause]int)
	}
	r.deaths[c]++
}

func newTestSystem(t *testing.T, depth, width int, rng traits.Rand) (*LifecycleSystem, *recorder) {
	t.Helper()
	f, err := NewField(depth, width)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	return NewLifecycleSystem(ecs.NewWorld(), f, testTable(t), rng, rec), rec
}

func mustSpawn(t *testing.T, s *LifecycleSystem, sp traits.SpeciesID, c components.Coordinate) ecs.Entity {
	t.Helper()
	e, err := s.Spawn(sp, c, false, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return e
}

func assertDead(t *testing.T, s *LifecycleSystem, e ecs.Entity, at components.Coordinate, cause components.DeathCause) {
	t.Helper()
	v := s.Vitals(e)
	if v.Alive {
		t.Fatal("organism should be dead")
	}
	if v.Cause != cause {
		t.Errorf("cause = %v, want %v", v.Cause, cause)
	}
	if s.Location(e).Placed() {
		t.Error("dead organism kept a location")
	}
	if occ, ok := s.Field().OccupantAt(at); ok && occ.Entity == e {
		t.Error("dead organism still recorded on the field")
	}
}

func TestStarvation(t *testing.T) {
	s, rec := newTestSystem(t, 5, 5, &stubRand{})
	at := components.At(2, 2)
	e := mustSpawn(t, s, seaLion, at)
	s.SetVitals(e, 3, 1)

	var staged []ecs.Entity
	if err := s.Act(e, 1, &staged); err != nil {
		t.Fatalf("Act: %v", err)
	}

	assertDead(t, s, e, at, components.CauseStarvation)
	if got := s.Vitals(e).Age; got != 4 {
		t.Errorf("age = %d, want 4 (aged but within max)", got)
	}
	if rec.deaths[components.CauseStarvation] != 1 || rec.deaths[components.CauseOldAge] != 0 {
		t.Errorf("death events = %v", rec.deaths)
	}
}

func TestHungerWithoutPrey(t *testing.T) {
	s, rec := newTestSystem(t, 3, 3, &stubRand{})
	e := mustSpawn(t, s, sardine, components.At(1, 1))
	s.SetVitals(e, 1, 3)

	var staged []ecs.Entity
	if err := s.Act(e, 1, &staged); err != nil {
		t.Fatalf("Act: %v", err)
	}

	v := s.Vitals(e)
	if !v.Alive {
		t.Fatalf("sardine died: %v", v.Cause)
	}
	if v.FoodLevel != 2 || v.Age != 2 {
		t.Errorf("vitals = %+v, want age 2 food 2", v)
	}
	if c, _ := s.Location(e).Get(); c != components.At(0, 0) {
		t.Errorf("sardine at %v, want first free neighbour (0,0)", c)
	}
	if rec.kills != 0 || len(staged) != 0 {
		t.Errorf("kills = %d, staged = %d, want none", rec.kills, len(staged))
	}
}

func TestOldAgeStopsTheTurn(t *testing.T) {
	s, _ := newTestSystem(t, 3, 3, &stubRand{})
	at := components.At(1, 1)
	e := mustSpawn(t, s, sardine, at)
	s.SetVitals(e, 13, 1)

	var staged []ecs.Entity
	_ = s.Act(e, 1, &staged)

	// Age fires first; hunger is never evaluated.
	assertDead(t, s, e, at, components.CauseOldAge)
	if got := s.Vitals(e).FoodLevel; got != 1 {
		t.Errorf("food level = %d, want 1 (hunger skipped)", got)
	}
}

func TestPredation(t *testing.T) {
	s, rec := newTestSystem(t, 5, 5, &stubRand{})
	hunterAt := components.At(2, 2)
	preyAt := components.At(3, 3)
	hunter := mustSpawn(t, s, seaLion, hunterAt)
	prey := mustSpawn(t, s, sardine, preyAt)
	s.SetVitals(hunter, 0, 2)

	var staged []ecs.Entity
	if err := s.Act(hunter, 1, &staged); err != nil {
		t.Fatalf("Act: %v", err)
	}

	v := s.Vitals(hunter)
	if !v.Alive {
		t.Fatalf("hunter died: %v", v.Cause)
	}
	if v.FoodLevel != 6 {
		t.Errorf("food level = %d, want 6", v.FoodLevel)
	}
	if c, _ := s.Location(hunter).Get(); c != preyAt {
		t.Errorf("hunter at %v, want %v", c, preyAt)
	}
	if occ, ok := s.Field().OccupantAt(preyAt); !ok || occ.Entity != hunter {
		t.Error("field does not record the hunter at the prey cell")
	}
	if !s.Field().IsVacant(hunterAt) {
		t.Error("hunter's old cell still occupied")
	}
	if s.Vitals(prey).Cause != components.CauseEaten || s.IsAlive(prey) {
		t.Error("prey should be dead by predation")
	}
	if s.Location(prey).Placed() {
		t.Error("eaten prey kept a location")
	}
	if rec.kills != 1 {
		t.Errorf("kills = %d, want 1", rec.kills)
	}
}

func TestPredationIgnoresOtherSpecies(t *testing.T) {
	s, _ := newTestSystem(t, 3, 3, &stubRand{})
	hunter := mustSpawn(t, s, seaLion, components.At(0, 0))
	other := mustSpawn(t, s, plankton, components.At(0, 1))
	s.SetVitals(hunter, 0, 5)

	var staged []ecs.Entity
	_ = s.Act(hunter, 1, &staged)

	if !s.IsAlive(other) {
		t.Fatal("sea lion ate plankton")
	}
	if c, _ := s.Location(hunter).Get(); c != components.At(1, 0) {
		t.Errorf("hunter moved to %v, want first free neighbour (1,0)", c)
	}
}

func TestBoundedReproduction(t *testing.T) {
	// Breeding forced with a draw of 0.0; litter draw 2 -> three offspring.
	s, rec := newTestSystem(t, 3, 3, &stubRand{floats: []float64{0.0}, ints: []int{2}})
	parent := mustSpawn(t, s, seaLion, components.At(0, 0))
	blocker := mustSpawn(t, s, kelp, components.At(1, 1))
	s.SetVitals(parent, 4, 6)

	var staged []ecs.Entity
	if err := s.Act(parent, 1, &staged); err != nil {
		t.Fatalf("Act: %v", err)
	}

	if len(staged) != 2 {
		t.Fatalf("staged %d newborns, want 2", len(staged))
	}
	want := []components.Coordinate{components.At(0, 1), components.At(1, 0)}
	for i, child := range staged {
		v := s.Vitals(child)
		if !v.Alive || v.Age != 0 || v.FoodLevel != 6 || v.BornStep != 1 {
			t.Errorf("newborn %d vitals = %+v", i, v)
		}
		if c, _ := s.Location(child).Get(); c != want[i] {
			t.Errorf("newborn %d at %v, want %v", i, c, want[i])
		}
	}
	if rec.births != 2 {
		t.Errorf("birth events = %d, want 2", rec.births)
	}
	// The litter filled every free cell, so the parent has nowhere to go.
	assertDead(t, s, parent, components.At(0, 0), components.CauseOvercrowding)
	if !s.IsAlive(blocker) {
		t.Error("blocker should be untouched")
	}
}

func TestProducerOvercrowding(t *testing.T) {
	s, _ := newTestSystem(t, 2, 2, &stubRand{})
	e := mustSpawn(t, s, kelp, components.At(0, 0))
	mustSpawn(t, s, kelp, components.At(0, 1))
	mustSpawn(t, s, kelp, components.At(1, 0))
	mustSpawn(t, s, kelp, components.At(1, 1))

	var staged []ecs.Entity
	_ = s.Act(e, 1, &staged)

	assertDead(t, s, e, components.At(0, 0), components.CauseOvercrowding)
}

func TestProducerGrowsAndMoves(t *testing.T) {
	s, _ := newTestSystem(t, 1, 4, &stubRand{floats: []float64{0.01}, ints: []int{0}})
	e := mustSpawn(t, s, plankton, components.At(0, 1))

	var staged []ecs.Entity
	_ = s.Act(e, 1, &staged)

	if len(staged) != 1 {
		t.Fatalf("staged %d, want 1", len(staged))
	}
	if c, _ := s.Location(staged[0]).Get(); c != components.At(0, 0) {
		t.Errorf("offspring at %v, want (0,0)", c)
	}
	if c, _ := s.Location(e).Get(); c != components.At(0, 2) {
		t.Errorf("parent at %v, want (0,2)", c)
	}
	if s.Vitals(e).FoodLevel != 0 {
		t.Error("producers carry no food level")
	}
}

func TestNewbornIsNotPrey(t *testing.T) {
	// Sardine breeds into the only gap next to the sea lion.
	s, _ := newTestSystem(t, 1, 3, &stubRand{floats: []float64{0.0}, ints: []int{0}})
	parent := mustSpawn(t, s, sardine, components.At(0, 0))
	hunter := mustSpawn(t, s, seaLion, components.At(0, 2))
	s.SetVitals(parent, 2, 4)
	s.SetVitals(hunter, 0, 5)

	var staged []ecs.Entity
	_ = s.Act(parent, 1, &staged)
	_ = s.Act(hunter, 1, &staged)

	if len(staged) != 1 {
		t.Fatalf("staged %d, want 1", len(staged))
	}
	if !s.IsAlive(staged[0]) {
		t.Fatal("newborn was eaten in the step that created it")
	}
	assertDead(t, s, hunter, components.At(0, 2), components.CauseOvercrowding)
}

func TestDeadIsAbsorbing(t *testing.T) {
	s, rec := newTestSystem(t, 3, 3, &stubRand{})
	at := components.At(1, 1)
	e := mustSpawn(t, s, sardine, at)
	s.Kill(e, components.CauseEaten)
	s.Kill(e, components.CauseOldAge)

	before := s.Vitals(e)
	var staged []ecs.Entity
	_ = s.Act(e, 1, &staged)
	s.SetVitals(e, before.Age+5, before.FoodLevel+1)

	assertDead(t, s, e, at, components.CauseEaten)
	if rec.deaths[components.CauseEaten] != 1 || len(rec.deaths) != 1 {
		t.Errorf("death events = %v, want a single eaten event", rec.deaths)
	}
	if got := s.Vitals(e); got != before {
		t.Errorf("dead vitals = %+v, want unchanged %+v", got, before)
	}
	if len(staged) != 0 {
		t.Errorf("dead organism staged %d newborns", len(staged))
	}
}

func TestSpawnRandomAge(t *testing.T) {
	s, _ := newTestSystem(t, 2, 2, &stubRand{ints: []int{7, 3}})
	e, err := s.Spawn(sardine, components.At(0, 0), true, 0)
	if err != nil {
		t.Fatal(err)
	}
	v := s.Vitals(e)
	if v.Age != 7 || v.FoodLevel != 3 {
		t.Errorf("random vitals = %+v, want age 7 food 3", v)
	}
	if _, err := s.Spawn(kelp, components.At(5, 5), false, 0); err == nil {
		t.Error("expected out-of-bounds spawn to fail")
	}
}
