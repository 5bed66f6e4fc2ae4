// Package game drives the population: it seeds the field, runs every live
// organism through its species template once per step, merges newborns and
// reports the field to a monitor.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/systems"
	"github.com/pthm-cable/reef/telemetry"
	"github.com/pthm-cable/reef/traits"
)

// Monitor receives the field after Reset and after every Step and decides
// whether the run is still worth continuing. The field must be treated as
// read-only.
type Monitor interface {
	Report(step int, f *systems.Field)
	IsViable(f *systems.Field) bool
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	field *systems.Field
	life  *systems.LifecycleSystem
	rng   traits.Rand
	seed  int64

	// Population in stable iteration order. Newborns are staged during a
	// step and appended after the sweep.
	population []ecs.Entity
	staged     []ecs.Entity
	step       int

	monitor Monitor
	phases  *systems.PhaseRegistry
	names   []string

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	store            *telemetry.CensusStore
	runID            int64
	statsCallback    func(telemetry.WindowStats)
	logStats         bool

	stepDelay  time.Duration
	stopReason StopReason
}

// New creates a game from opts and seeds its first population.
// Invalid field dimensions fall back to the defaults with a warning.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Defaults(); err != nil {
			return nil, fmt.Errorf("load default config: %w", err)
		}
	}
	if cfg.Derived.Table == nil {
		if err := cfg.Recompute(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	field, err := newField(cfg.World.Depth, cfg.World.Width)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}

	table := cfg.Derived.Table
	g := &Game{
		cfg:             cfg,
		world:           ecs.NewWorld(),
		field:           field,
		rng:             rng,
		seed:            seed,
		monitor:         opts.Monitor,
		phases:          systems.NewPhaseRegistry(),
		perfCollector:   telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		lifetimeTracker: telemetry.NewLifetimeTracker(),
		statsCallback:   opts.StatsCallback,
		logStats:        opts.LogStats,
		stepDelay:       opts.StepDelay,
	}
	g.life = systems.NewLifecycleSystem(g.world, field, table, rng, g)
	if g.monitor == nil {
		g.monitor = telemetry.NewViabilityMonitor(table, cfg.Viability.MinSpecies)
	}
	for _, id := range table.IDs() {
		g.names = append(g.names, table.Name(id))
	}

	if err := g.openOutputs(opts); err != nil {
		g.Close()
		return nil, err
	}

	if err := g.Reset(); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// newField builds the grid, substituting the default dimensions when the
// configured ones are not positive.
func newField(depth, width int) (*systems.Field, error) {
	field, err := systems.NewField(depth, width)
	if errors.Is(err, systems.ErrInvalidDimensions) {
		slog.Warn("invalid field dimensions, using defaults",
			"depth", depth,
			"width", width,
			"default_depth", config.DefaultDepth,
			"default_width", config.DefaultWidth,
		)
		field, err = systems.NewField(config.DefaultDepth, config.DefaultWidth)
	}
	if err != nil {
		return nil, fmt.Errorf("create field: %w", err)
	}
	return field, nil
}

func (g *Game) openOutputs(opts Options) error {
	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(g.cfg); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if om != nil {
		slog.Info("writing telemetry", "dir", om.Dir())
	}

	if opts.DBPath == "" {
		return nil
	}
	store, err := telemetry.OpenCensusStore(opts.DBPath)
	if err != nil {
		return fmt.Errorf("census store: %w", err)
	}
	g.store = store
	depth, width := g.field.Dimensions()
	g.runID, err = store.StartRun(context.Background(), telemetry.RunInfo{
		Seed:  g.seed,
		Depth: depth,
		Width: width,
	})
	if err != nil {
		return fmt.Errorf("census store: %w", err)
	}
	return nil
}

// Close records the run outcome and releases output files.
func (g *Game) Close() error {
	var firstErr error
	if g.store != nil {
		if g.runID != 0 {
			reason := g.stopReason
			if reason == "" {
				reason = StopClosed
			}
			if err := g.store.FinishRun(context.Background(), g.runID, g.step, string(reason)); err != nil {
				firstErr = err
			}
		}
		if err := g.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		g.store = nil
	}
	if err := g.outputManager.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	g.outputManager = nil
	return firstErr
}

// Tick returns the current step number.
func (g *Game) Tick() int { return g.step }

// Seed returns the seed the random source was built from.
func (g *Game) Seed() int64 { return g.seed }

// Field returns the grid. Callers must not mutate it.
func (g *Game) Field() *systems.Field { return g.field }

// Lifecycle returns the system that owns organism state.
func (g *Game) Lifecycle() *systems.LifecycleSystem { return g.life }

// Population returns the live population in iteration order.
// The slice is only valid until the next Step or Reset.
func (g *Game) Population() []ecs.Entity { return g.population }

// Counts returns the number of live organisms per species.
func (g *Game) Counts() telemetry.Census {
	return telemetry.TakeCensus(g.step, g.field, g.life.Table().Len())
}

// Perf returns the rolling step timing.
func (g *Game) Perf() telemetry.PerfStats { return g.perfCollector.Stats() }
