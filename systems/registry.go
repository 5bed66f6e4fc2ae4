package systems

// Step phase identifiers, shared by the engine and the perf collector.
const (
	PhaseSweep     = "sweep"
	PhaseCleanup   = "cleanup"
	PhaseMerge     = "merge"
	PhaseReport    = "report"
	PhaseTelemetry = "telemetry"
)

// PhaseInfo describes one phase of a simulation step.
type PhaseInfo struct {
	ID   string // Perf tracking key and CSV column suffix
	Name string // Human-readable name for logs
}

// PhaseRegistry holds the ordered step phases.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with every step phase in execution order.
func NewPhaseRegistry() *PhaseRegistry {
	r := &PhaseRegistry{byID: make(map[string]PhaseInfo)}
	r.Register(PhaseInfo{ID: PhaseSweep, Name: "Sweep"})         // every live organism acts once
	r.Register(PhaseInfo{ID: PhaseCleanup, Name: "Cleanup"})     // dead dropped from the population
	r.Register(PhaseInfo{ID: PhaseMerge, Name: "Merge"})         // staged newborns appended
	r.Register(PhaseInfo{ID: PhaseReport, Name: "Report"})       // field handed to the monitor
	r.Register(PhaseInfo{ID: PhaseTelemetry, Name: "Telemetry"}) // window statistics flushed
	return r
}

// Register adds a phase.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	r.phases = append(r.phases, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// IDs returns all phase IDs in execution order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}
