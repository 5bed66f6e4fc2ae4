package telemetry

import (
	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/traits"
)

// Sample is the state of one living organism at window end.
type Sample struct {
	Species   traits.SpeciesID
	Age       int
	FoodLevel int
}

type speciesCounters struct {
	births      int
	kills       int
	deaths      [components.CauseEaten + 1]int
	lifespanSum int
	lifespanN   int
	offspring   int
}

// Collector accumulates lifecycle events within windows of steps and
// produces WindowStats.
type Collector struct {
	window      int
	windowStart int
	counters    []speciesCounters
}

// NewCollector creates a collector flushing every window steps for the given
// number of species.
func NewCollector(window, species int) *Collector {
	if window < 1 {
		window = 1
	}
	return &Collector{
		window:   window,
		counters: make([]speciesCounters, species),
	}
}

func (c *Collector) at(id traits.SpeciesID) *speciesCounters {
	if int(id) >= len(c.counters) {
		return nil
	}
	return &c.counters[id]
}

// RecordBirth records a newborn of the given species.
func (c *Collector) RecordBirth(id traits.SpeciesID) {
	if s := c.at(id); s != nil {
		s.births++
	}
}

// RecordDeath records a death with the organism's age and number of
// offspring. A negative lifespan means the organism was never tracked and is
// not averaged.
func (c *Collector) RecordDeath(id traits.SpeciesID, cause components.DeathCause, lifespan, children int) {
	s := c.at(id)
	if s == nil || cause > components.CauseEaten {
		return
	}
	s.deaths[cause]++
	if lifespan >= 0 {
		s.lifespanSum += lifespan
		s.offspring += children
		s.lifespanN++
	}
}

// RecordKill records a successful hunt by a predator of the given species.
func (c *Collector) RecordKill(predator traits.SpeciesID) {
	if s := c.at(predator); s != nil {
		s.kills++
	}
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(step int) bool {
	return step-c.windowStart >= c.window
}

// Flush produces WindowStats from the accumulated events and the living
// samples, then resets counters for the next window.
// names gives each species' display name by id.
func (c *Collector) Flush(step int, names []string, samples []Sample) WindowStats {
	ages := make([][]float64, len(c.counters))
	food := make([][]float64, len(c.counters))
	for _, s := range samples {
		if int(s.Species) >= len(c.counters) {
			continue
		}
		ages[s.Species] = append(ages[s.Species], float64(s.Age))
		food[s.Species] = append(food[s.Species], float64(s.FoodLevel))
	}

	ws := WindowStats{
		WindowStart: c.windowStart,
		WindowEnd:   step,
		Species:     make([]SpeciesStats, len(c.counters)),
	}
	for i := range c.counters {
		sc := &c.counters[i]
		age := Summarize(ages[i])
		fd := Summarize(food[i])

		row := SpeciesStats{
			WindowStart:        c.windowStart,
			WindowEnd:          step,
			Count:              len(ages[i]),
			Births:             sc.births,
			Kills:              sc.kills,
			DeathsOldAge:       sc.deaths[components.CauseOldAge],
			DeathsStarvation:   sc.deaths[components.CauseStarvation],
			DeathsOvercrowding: sc.deaths[components.CauseOvercrowding],
			DeathsEaten:        sc.deaths[components.CauseEaten],
			AgeMean:            age.Mean,
			AgeP10:             age.P10,
			AgeP50:             age.P50,
			AgeP90:             age.P90,
			FoodMean:           fd.Mean,
			FoodP10:            fd.P10,
			FoodP50:            fd.P50,
			FoodP90:            fd.P90,
		}
		if i < len(names) {
			row.Species = names[i]
		}
		if sc.lifespanN > 0 {
			row.MeanLifespan = float64(sc.lifespanSum) / float64(sc.lifespanN)
			row.MeanOffspring = float64(sc.offspring) / float64(sc.lifespanN)
		}
		ws.Species[i] = row
	}

	// Reset for next window
	c.windowStart = step
	for i := range c.counters {
		c.counters[i] = speciesCounters{}
	}

	return ws
}
