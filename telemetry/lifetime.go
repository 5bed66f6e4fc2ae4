package telemetry

import "github.com/pthm-cable/reef/traits"

// LifetimeStats tracks per-organism statistics over its lifetime.
type LifetimeStats struct {
	Species   traits.SpeciesID
	BirthStep int

	Children int
	Kills    int // consumers only
}

// LifetimeTracker manages per-organism lifetime statistics, keyed by organism id.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new organism.
func (lt *LifetimeTracker) Register(id uint32, species traits.SpeciesID, birthStep int) {
	lt.stats[id] = &LifetimeStats{Species: species, BirthStep: birthStep}
}

// Get returns the lifetime stats for an organism, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an organism's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordChild increments the parent's children count.
func (lt *LifetimeTracker) RecordChild(parent uint32) {
	if s := lt.stats[parent]; s != nil {
		s.Children++
	}
}

// RecordKill increments the predator's kill count.
func (lt *LifetimeTracker) RecordKill(predator uint32) {
	if s := lt.stats[predator]; s != nil {
		s.Kills++
	}
}

// Reset drops all tracked organisms.
func (lt *LifetimeTracker) Reset() {
	clear(lt.stats)
}

// Count returns the number of tracked organisms.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
