package main

import (
	"fmt"

	"github.com/pthm-cable/reef/config"
)

// Bounds for the tuned species constants.
const (
	minCreation = 0.001
	maxCreation = 0.20
	minBreeding = 0.01
	maxBreeding = 0.60
)

// paramKind selects which species constant a ParamSpec drives.
type paramKind uint8

const (
	paramCreation paramKind = iota
	paramBreeding
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	species int // index into config.Species
	kind    paramKind
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector derives the tuned parameters from the roster in cfg:
// every species' creation probability, plus every species' breeding
// probability when tuneBreeding is set.
func NewParamVector(cfg *config.Config, tuneBreeding bool) *ParamVector {
	pv := &ParamVector{}
	for i, sp := range cfg.Species {
		pv.Specs = append(pv.Specs, ParamSpec{
			Name:    sp.Name + "_creation",
			Path:    fmt.Sprintf("species.%s.creation_probability", sp.Name),
			Min:     minCreation,
			Max:     maxCreation,
			Default: clamp(sp.CreationProbability, minCreation, maxCreation),
			species: i,
			kind:    paramCreation,
		})
	}
	if !tuneBreeding {
		return pv
	}
	for i, sp := range cfg.Species {
		pv.Specs = append(pv.Specs, ParamSpec{
			Name:    sp.Name + "_breeding",
			Path:    fmt.Sprintf("species.%s.breeding_probability", sp.Name),
			Min:     minBreeding,
			Max:     maxBreeding,
			Default: clamp(sp.BreedingProbability, minBreeding, maxBreeding),
			species: i,
			kind:    paramBreeding,
		})
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = clamp(v[i], spec.Min, spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped values into the species roster of cfg and
// rebuilds the derived species table.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		if spec.species >= len(cfg.Species) {
			return fmt.Errorf("param %s: species index %d out of range", spec.Name, spec.species)
		}
		sp := &cfg.Species[spec.species]
		switch spec.kind {
		case paramCreation:
			sp.CreationProbability = clamped[i]
		case paramBreeding:
			sp.BreedingProbability = clamped[i]
		}
	}
	return cfg.Recompute()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		sp := cfg.Species[spec.species]
		switch spec.kind {
		case paramCreation:
			v[i] = sp.CreationProbability
		case paramBreeding:
			v[i] = sp.BreedingProbability
		}
	}
	return v
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
