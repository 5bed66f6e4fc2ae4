package traits

import "fmt"

// Table is the ordered species roster.
type Table struct {
	species []Traits
	byName  map[string]SpeciesID
}

// NewTable validates the roster and resolves prey references.
// Consumers must name a prey present in the table; producers must not.
func NewTable(species []Traits) (*Table, error) {
	if len(species) == 0 {
		return nil, fmt.Errorf("empty species table: %w", ErrInvalidTraits)
	}
	if len(species) >= int(NoSpecies) {
		return nil, fmt.Errorf("too many species (%d): %w", len(species), ErrInvalidTraits)
	}
	t := &Table{
		species: make([]Traits, len(species)),
		byName:  make(map[string]SpeciesID, len(species)),
	}
	copy(t.species, species)
	for i := range t.species {
		s := &t.species[i]
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate species %q: %w", s.Name, ErrInvalidTraits)
		}
		t.byName[s.Name] = SpeciesID(i)
	}
	for i := range t.species {
		s := &t.species[i]
		if !s.IsConsumer() {
			s.Prey = NoSpecies
			continue
		}
		if int(s.Prey) >= len(t.species) {
			return nil, fmt.Errorf("%s: prey id %d: %w", s.Name, s.Prey, ErrUnknownSpecies)
		}
	}
	return t, nil
}

// Len returns the number of species.
func (t *Table) Len() int { return len(t.species) }

// Get returns the traits for id. It panics on an id outside the table.
func (t *Table) Get(id SpeciesID) *Traits {
	return &t.species[id]
}

// Lookup resolves a species name.
func (t *Table) Lookup(name string) (SpeciesID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Name returns the name of id, or "unknown".
func (t *Table) Name(id SpeciesID) string {
	if int(id) < len(t.species) {
		return t.species[id].Name
	}
	return "unknown"
}

// IDs returns every species id in priority order.
func (t *Table) IDs() []SpeciesID {
	ids := make([]SpeciesID, len(t.species))
	for i := range ids {
		ids[i] = SpeciesID(i)
	}
	return ids
}
