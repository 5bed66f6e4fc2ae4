package components

import "github.com/pthm-cable/reef/traits"

// DeathCause records why an organism left the field.
type DeathCause uint8

const (
	CauseNone         DeathCause = iota // still alive
	CauseOldAge                         // age exceeded the species maximum
	CauseStarvation                     // food level reached zero
	CauseOvercrowding                   // no free neighbour to move into
	CauseEaten                          // killed by a predator
)

// String returns the snake_case name used in logs and CSV output.
func (c DeathCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseOldAge:
		return "old_age"
	case CauseStarvation:
		return "starvation"
	case CauseOvercrowding:
		return "overcrowding"
	case CauseEaten:
		return "eaten"
	default:
		return "unknown"
	}
}

// Organism holds identity: a stable id and the species tag that selects behaviour.
type Organism struct {
	ID      uint32
	Species traits.SpeciesID
}

// Vitals is the mutable per-step lifecycle state.
// FoodLevel is unused for producers.
type Vitals struct {
	Age       int
	FoodLevel int
	Alive     bool
	BornStep  int        // step that created the organism; 0 for the seeded population
	Cause     DeathCause // set once on the Alive -> Dead transition
}
