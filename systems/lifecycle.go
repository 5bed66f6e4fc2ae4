package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/traits"
)

// Events receives lifecycle notifications. The game wires it to telemetry.
type Events interface {
	Born(parent, child ecs.Entity, species traits.SpeciesID)
	Died(e ecs.Entity, species traits.SpeciesID, cause components.DeathCause)
	Ate(predator, prey ecs.Entity, species traits.SpeciesID)
}

type noEvents struct{}

func (noEvents) Born(ecs.Entity, ecs.Entity, traits.SpeciesID)            {}
func (noEvents) Died(ecs.Entity, traits.SpeciesID, components.DeathCause) {}
func (noEvents) Ate(ecs.Entity, ecs.Entity, traits.SpeciesID)             {}

// LifecycleSystem creates organisms and runs the per-step template on them:
// age, hunger, reproduce, feed, move.
//
// Component pointers returned by the ark maps are only valid until the next
// entity is created, so every sub-step re-reads what it needs.
type LifecycleSystem struct {
	world     *ecs.World
	mapper    *ecs.Map3[components.Organism, components.Vitals, components.Location]
	orgMap    *ecs.Map[components.Organism]
	vitalsMap *ecs.Map[components.Vitals]
	locMap    *ecs.Map[components.Location]

	field  *Field
	table  *traits.Table
	rng    traits.Rand
	events Events
	nextID uint32

	adj []components.Coordinate
}

// NewLifecycleSystem creates a lifecycle system bound to one world and field.
// A nil events sink discards notifications.
func NewLifecycleSystem(w *ecs.World, field *Field, table *traits.Table, rng traits.Rand, events Events) *LifecycleSystem {
	if events == nil {
		events = noEvents{}
	}
	return &LifecycleSystem{
		world:     w,
		mapper:    ecs.NewMap3[components.Organism, components.Vitals, components.Location](w),
		orgMap:    ecs.NewMap[components.Organism](w),
		vitalsMap: ecs.NewMap[components.Vitals](w),
		locMap:    ecs.NewMap[components.Location](w),
		field:     field,
		table:     table,
		rng:       rng,
		events:    events,
		nextID:    1,
		adj:       make([]components.Coordinate, 0, 8),
	}
}

// Field returns the grid the system places organisms on.
func (s *LifecycleSystem) Field() *Field { return s.field }

// Table returns the species roster.
func (s *LifecycleSystem) Table() *traits.Table { return s.table }

// Organism returns the identity component of e.
func (s *LifecycleSystem) Organism(e ecs.Entity) components.Organism {
	return *s.orgMap.Get(e)
}

// Vitals returns a copy of the lifecycle state of e.
func (s *LifecycleSystem) Vitals(e ecs.Entity) components.Vitals {
	return *s.vitalsMap.Get(e)
}

// Location returns the location component of e.
func (s *LifecycleSystem) Location(e ecs.Entity) components.Location {
	return *s.locMap.Get(e)
}

// IsAlive reports whether e is a live organism.
func (s *LifecycleSystem) IsAlive(e ecs.Entity) bool {
	return s.world.Alive(e) && s.vitalsMap.Get(e).Alive
}

// SetVitals overwrites the age and food level of a live organism.
// Used to seed scenarios; it never revives the dead.
func (s *LifecycleSystem) SetVitals(e ecs.Entity, age, foodLevel int) {
	v := s.vitalsMap.Get(e)
	if !v.Alive {
		return
	}
	v.Age = age
	v.FoodLevel = foodLevel
}

// Spawn creates an organism of species at c and places it on the field.
// With randomAge, age is drawn from [0,maxAge) and food from [0,foodValue);
// otherwise the organism is a newborn with a full food level.
func (s *LifecycleSystem) Spawn(species traits.SpeciesID, c components.Coordinate, randomAge bool, bornStep int) (ecs.Entity, error) {
	if !s.field.InBounds(c) {
		return ecs.Entity{}, fmt.Errorf("spawn %s: place at %v: %w", s.table.Name(species), c, ErrOutOfBounds)
	}
	tr := s.table.Get(species)

	vitals := components.Vitals{Alive: true, BornStep: bornStep}
	if tr.IsConsumer() {
		vitals.FoodLevel = tr.FoodValue
	}
	if randomAge {
		vitals.Age = s.rng.Intn(tr.MaxAge)
		if tr.IsConsumer() {
			vitals.FoodLevel = s.rng.Intn(tr.FoodValue)
		}
	}

	org := components.Organism{ID: s.nextID, Species: species}
	s.nextID++
	loc := components.LocatedAt(c)

	e := s.mapper.NewEntity(&org, &vitals, &loc)
	if err := s.field.Place(Occupant{Entity: e, Species: species}, c); err != nil {
		s.world.RemoveEntity(e)
		return ecs.Entity{}, fmt.Errorf("spawn %s: %w", tr.Name, err)
	}
	return e, nil
}

// Kill moves e to the Dead state: its field record and its location are
// cleared. Killing the dead is a no-op.
func (s *LifecycleSystem) Kill(e ecs.Entity, cause components.DeathCause) {
	v := s.vitalsMap.Get(e)
	if !v.Alive {
		return
	}
	v.Alive = false
	v.Cause = cause

	loc := s.locMap.Get(e)
	if c, ok := loc.Get(); ok {
		if occ, ok := s.field.OccupantAt(c); ok && occ.Entity == e {
			s.field.Clear(c)
		}
		loc.Clear()
	}
	s.events.Died(e, s.orgMap.Get(e).Species, cause)
}

// relocate moves a live organism to c, overwriting any stale record there.
func (s *LifecycleSystem) relocate(e ecs.Entity, c components.Coordinate) error {
	if !s.vitalsMap.Get(e).Alive {
		return nil
	}
	species := s.orgMap.Get(e).Species
	loc := s.locMap.Get(e)
	if old, ok := loc.Get(); ok {
		if occ, ok := s.field.OccupantAt(old); ok && occ.Entity == e {
			s.field.Clear(old)
		}
	}
	if err := s.field.Place(Occupant{Entity: e, Species: species}, c); err != nil {
		return fmt.Errorf("relocate %s: %w", s.table.Name(species), err)
	}
	*loc = components.LocatedAt(c)
	return nil
}

// Act runs one step of the species template for e. Newborns are appended to
// staged; they are on the field but take no part in this step.
func (s *LifecycleSystem) Act(e ecs.Entity, step int, staged *[]ecs.Entity) error {
	v := s.vitalsMap.Get(e)
	if !v.Alive {
		return nil
	}
	species := s.orgMap.Get(e).Species
	tr := s.table.Get(species)

	v.Age++
	if v.Age > tr.MaxAge {
		s.Kill(e, components.CauseOldAge)
		return nil
	}
	if tr.IsConsumer() {
		v.FoodLevel--
		if v.FoodLevel <= 0 {
			s.Kill(e, components.CauseStarvation)
			return nil
		}
	}

	if err := s.reproduce(e, tr, v.Age, step, staged); err != nil {
		return err
	}

	here, _ := s.locMap.Get(e).Get()
	target, found := components.Coordinate{}, false
	if tr.IsConsumer() {
		target, found = s.feed(e, tr, here, step)
	}
	if !found {
		target, found = s.field.FreeAdjacentCoordinate(here)
	}
	if !found {
		s.Kill(e, components.CauseOvercrowding)
		return nil
	}
	return s.relocate(e, target)
}

// reproduce draws a litter size and fills free neighbours with newborns,
// one per birth, until the litter or the free cells run out.
func (s *LifecycleSystem) reproduce(parent ecs.Entity, tr *traits.Traits, age, step int, staged *[]ecs.Entity) error {
	births := tr.LitterSize(s.rng, age)
	if births == 0 {
		return nil
	}
	species := s.orgMap.Get(parent).Species
	here, _ := s.locMap.Get(parent).Get()
	for b := 0; b < births; b++ {
		c, ok := s.field.FreeAdjacentCoordinate(here)
		if !ok {
			break
		}
		child, err := s.Spawn(species, c, false, step)
		if err != nil {
			return fmt.Errorf("birth: %w", err)
		}
		*staged = append(*staged, child)
		s.events.Born(parent, child, species)
	}
	return nil
}

// feed eats the first live, non-newborn prey in scan order and returns its cell.
func (s *LifecycleSystem) feed(e ecs.Entity, tr *traits.Traits, here components.Coordinate, step int) (components.Coordinate, bool) {
	s.adj = s.field.AppendAdjacent(s.adj[:0], here)
	for _, where := range s.adj {
		occ, ok := s.field.OccupantAt(where)
		if !ok || occ.Species != tr.Prey {
			continue
		}
		prey := s.vitalsMap.Get(occ.Entity)
		if !prey.Alive || prey.BornStep == step {
			continue
		}
		s.Kill(occ.Entity, components.CauseEaten)
		s.vitalsMap.Get(e).FoodLevel = tr.FoodValue
		s.events.Ate(e, occ.Entity, s.orgMap.Get(e).Species)
		return where, true
	}
	return components.Coordinate{}, false
}

// Remove deletes a dead organism's entity from the world.
func (s *LifecycleSystem) Remove(e ecs.Entity) {
	if s.world.Alive(e) {
		s.world.RemoveEntity(e)
	}
}
