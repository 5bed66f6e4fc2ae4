// Package traits defines the per-species constant records that parameterise
// the shared organism template, and the breeding algorithm they drive.
package traits

import (
	"errors"
	"fmt"
)

// SpeciesID indexes a species in its Table.
// Table order is also the seeding priority order.
type SpeciesID uint8

// NoSpecies marks a producer's (absent) prey.
const NoSpecies SpeciesID = 255

// Family selects which sub-steps of the template a species runs.
type Family uint8

const (
	Producer Family = iota // ages and spreads
	Consumer               // ages, hungers, hunts, breeds
)

// String returns the config name of the family.
func (f Family) String() string {
	if f == Consumer {
		return "consumer"
	}
	return "producer"
}

// ParseFamily maps a config name to a Family.
func ParseFamily(s string) (Family, error) {
	switch s {
	case "producer":
		return Producer, nil
	case "consumer":
		return Consumer, nil
	}
	return 0, fmt.Errorf("family %q: %w", s, ErrInvalidTraits)
}

var (
	// ErrUnknownSpecies is returned when a name or prey reference has no table entry.
	ErrUnknownSpecies = errors.New("unknown species")
	// ErrInvalidTraits is returned for out-of-range species constants.
	ErrInvalidTraits = errors.New("invalid species traits")
)

// Traits is the constant record shared by every member of a species.
type Traits struct {
	Name                string
	Family              Family
	Prey                SpeciesID // NoSpecies for producers
	MaxAge              int
	BreedingAge         int // consumers only
	BreedingProbability float64
	MaxLitterSize       int
	FoodValue           int // consumers only: food level restored by one meal
	CreationProbability float64
}

// IsConsumer reports whether the species hunts and hungers.
func (t *Traits) IsConsumer() bool {
	return t.Family == Consumer
}

// Rand is the random source the simulation draws from.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// LitterSize returns how many offspring to attempt this step.
// Consumers below breeding age return 0 without touching rng, which keeps
// seeded runs reproducible.
func (t *Traits) LitterSize(rng Rand, age int) int {
	if t.IsConsumer() && age < t.BreedingAge {
		return 0
	}
	if rng.Float64() <= t.BreedingProbability && t.MaxLitterSize > 0 {
		return rng.Intn(t.MaxLitterSize) + 1
	}
	return 0
}

func (t *Traits) validate() error {
	switch {
	case t.Name == "":
		return fmt.Errorf("empty name: %w", ErrInvalidTraits)
	case t.MaxAge <= 0:
		return fmt.Errorf("%s: max_age must be positive: %w", t.Name, ErrInvalidTraits)
	case t.BreedingProbability < 0 || t.BreedingProbability > 1:
		return fmt.Errorf("%s: breeding_probability outside [0,1]: %w", t.Name, ErrInvalidTraits)
	case t.CreationProbability < 0 || t.CreationProbability > 1:
		return fmt.Errorf("%s: creation_probability outside [0,1]: %w", t.Name, ErrInvalidTraits)
	case t.MaxLitterSize < 0:
		return fmt.Errorf("%s: max_litter_size negative: %w", t.Name, ErrInvalidTraits)
	}
	if t.IsConsumer() {
		if t.FoodValue <= 0 {
			return fmt.Errorf("%s: consumers need a positive food_value: %w", t.Name, ErrInvalidTraits)
		}
		if t.BreedingAge < 0 {
			return fmt.Errorf("%s: breeding_age negative: %w", t.Name, ErrInvalidTraits)
		}
	}
	return nil
}
