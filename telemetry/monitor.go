package telemetry

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/traits"
)

// ViabilityMonitor receives the field after every step and judges whether the
// run is still worth continuing. A field is viable while at least minSpecies
// species have a live occupant.
type ViabilityMonitor struct {
	table      *traits.Table
	minSpecies int

	last    Census
	reports int
}

// NewViabilityMonitor creates a monitor for the given species table.
// minSpecies below 1 is treated as 1.
func NewViabilityMonitor(table *traits.Table, minSpecies int) *ViabilityMonitor {
	if minSpecies < 1 {
		minSpecies = 1
	}
	return &ViabilityMonitor{table: table, minSpecies: minSpecies}
}

// Report records the census for step and logs it at debug level.
func (m *ViabilityMonitor) Report(step int, f *systems.Field) {
	m.last = TakeCensus(step, f, m.table.Len())
	m.reports++

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("census",
			"step", step,
			"total", m.last.Total(),
			"present", m.last.Present(),
			slog.Group("species", m.last.Attrs(m.table)...),
		)
	}
}

// IsViable reports whether enough species remain on f.
func (m *ViabilityMonitor) IsViable(f *systems.Field) bool {
	return TakeCensus(0, f, m.table.Len()).Present() >= m.minSpecies
}

// Last returns the most recently reported census.
func (m *ViabilityMonitor) Last() Census { return m.last }

// Reports returns how many times Report has been called.
func (m *ViabilityMonitor) Reports() int { return m.reports }
