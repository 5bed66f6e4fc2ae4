package game

import (
	"context"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/telemetry"
	"github.com/pthm-cable/reef/traits"
)

// Born records a newborn. Called by the lifecycle system during the sweep.
func (g *Game) Born(parent, child ecs.Entity, species traits.SpeciesID) {
	g.collector.RecordBirth(species)
	g.lifetimeTracker.RecordChild(g.life.Organism(parent).ID)
	g.lifetimeTracker.Register(g.life.Organism(child).ID, species, g.step)
}

// Died records a death. The entity is still in the world at this point.
func (g *Game) Died(e ecs.Entity, species traits.SpeciesID, cause components.DeathCause) {
	lifespan, children := -1, 0
	if s := g.lifetimeTracker.Remove(g.life.Organism(e).ID); s != nil {
		lifespan = g.life.Vitals(e).Age
		children = s.Children
	}
	g.collector.RecordDeath(species, cause, lifespan, children)
}

// Ate records a successful hunt by predator.
func (g *Game) Ate(predator, _ ecs.Entity, species traits.SpeciesID) {
	g.collector.RecordKill(species)
	g.lifetimeTracker.RecordKill(g.life.Organism(predator).ID)
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.step) {
		return
	}

	stats := g.collector.Flush(g.step, g.names, g.samplePopulation())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats(g.phases)
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteCensus(stats); err != nil {
			slog.Error("failed to write census", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEnd); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if g.store != nil {
		if err := g.store.RecordWindow(context.Background(), g.runID, stats); err != nil {
			slog.Error("failed to record census", "error", err)
		}
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		g.recordBookmark(bm)
	}
}

// recordBookmark writes bm to bookmarks.csv, and to the log when stats logging is on.
func (g *Game) recordBookmark(bm telemetry.Bookmark) {
	if g.logStats {
		bm.LogBookmark()
	}
	if g.outputManager != nil {
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// samplePopulation collects age and food level of every live organism.
func (g *Game) samplePopulation() []telemetry.Sample {
	samples := make([]telemetry.Sample, 0, len(g.population))
	for _, e := range g.population {
		v := g.life.Vitals(e)
		if !v.Alive {
			continue
		}
		samples = append(samples, telemetry.Sample{
			Species:   g.life.Organism(e).Species,
			Age:       v.Age,
			FoodLevel: v.FoodLevel,
		})
	}
	return samples
}
