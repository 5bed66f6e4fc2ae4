package telemetry

import (
	"testing"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/traits"
)

func testTable(t *testing.T) *traits.Table {
	t.Helper()
	table, err := traits.NewTable([]traits.Traits{
		{Name: "sardine", Family: traits.Consumer, Prey: 2, MaxAge: 13, BreedingAge: 2,
			BreedingProbability: 0.3, MaxLitterSize: 4, FoodValue: 4},
		{Name: "kelp", Family: traits.Producer, MaxAge: 10, BreedingProbability: 0.04, MaxLitterSize: 2},
		{Name: "plankton", Family: traits.Producer, MaxAge: 10, BreedingProbability: 0.02, MaxLitterSize: 2},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func testField(t *testing.T, placements map[components.Coordinate]traits.SpeciesID) *systems.Field {
	t.Helper()
	f, err := systems.NewField(3, 3)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	for c, sp := range placements {
		if err := f.Place(systems.Occupant{Species: sp}, c); err != nil {
			t.Fatalf("Place(%v): %v", c, err)
		}
	}
	return f
}

func TestTakeCensus(t *testing.T) {
	f := testField(t, map[components.Coordinate]traits.SpeciesID{
		components.At(0, 0): 0,
		components.At(0, 1): 0,
		components.At(2, 2): 2,
		components.At(1, 1): 9, // outside the table
	})

	c := TakeCensus(4, f, 3)
	if c.Step != 4 {
		t.Errorf("Step = %d, want 4", c.Step)
	}
	if c.Count(0) != 2 || c.Count(1) != 0 || c.Count(2) != 1 || c.Count(9) != 0 {
		t.Errorf("Counts = %v", c.Counts)
	}
	if c.Total() != 3 || c.Present() != 2 {
		t.Errorf("Total/Present = %d/%d, want 3/2", c.Total(), c.Present())
	}
}

func TestViabilityMonitor(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name       string
		minSpecies int
		placements map[components.Coordinate]traits.SpeciesID
		want       bool
	}{
		{"empty field", 2, nil, false},
		{"monoculture", 2, map[components.Coordinate]traits.SpeciesID{
			components.At(0, 0): 1, components.At(0, 1): 1,
		}, false},
		{"two species", 2, map[components.Coordinate]traits.SpeciesID{
			components.At(0, 0): 0, components.At(2, 2): 1,
		}, true},
		{"single species with floor one", 1, map[components.Coordinate]traits.SpeciesID{
			components.At(0, 0): 2,
		}, true},
		{"zero floor still needs life", 0, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewViabilityMonitor(table, tt.minSpecies)
			if got := m.IsViable(testField(t, tt.placements)); got != tt.want {
				t.Errorf("IsViable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViabilityMonitorReport(t *testing.T) {
	m := NewViabilityMonitor(testTable(t), 2)
	f := testField(t, map[components.Coordinate]traits.SpeciesID{components.At(1, 1): 2})

	m.Report(0, f)
	m.Report(1, f)

	if m.Reports() != 2 {
		t.Errorf("Reports() = %d, want 2", m.Reports())
	}
	if last := m.Last(); last.Step != 1 || last.Count(2) != 1 {
		t.Errorf("Last() = %+v", last)
	}
}
