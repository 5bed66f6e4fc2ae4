package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/traits"
)

// Census is a per-species head count of the field at one step.
type Census struct {
	Step   int
	Counts []int // indexed by traits.SpeciesID
}

// TakeCensus counts the occupants of f by species.
// Occupants with a species id outside [0, species) are ignored.
func TakeCensus(step int, f *systems.Field, species int) Census {
	c := Census{Step: step, Counts: make([]int, species)}
	f.Each(func(_ components.Coordinate, o systems.Occupant) {
		if int(o.Species) < species {
			c.Counts[o.Species]++
		}
	})
	return c
}

// Count returns the number of occupants of the given species.
func (c Census) Count(id traits.SpeciesID) int {
	if int(id) >= len(c.Counts) {
		return 0
	}
	return c.Counts[id]
}

// Total returns the number of occupied cells.
func (c Census) Total() int {
	var n int
	for _, v := range c.Counts {
		n += v
	}
	return n
}

// Present returns how many species have at least one occupant.
func (c Census) Present() int {
	var n int
	for _, v := range c.Counts {
		if v > 0 {
			n++
		}
	}
	return n
}

// Attrs renders the census as slog attributes keyed by species name.
func (c Census) Attrs(table *traits.Table) []any {
	attrs := make([]any, 0, len(c.Counts))
	for i, v := range c.Counts {
		attrs = append(attrs, slog.Int(table.Name(traits.SpeciesID(i)), v))
	}
	return attrs
}
