package game

import (
	"fmt"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/telemetry"
)

// Reset clears the field and the population, seeds a fresh random population
// and reports step 0 to the monitor. Newborns left staged by a failed step are
// removed as well.
func (g *Game) Reset() error {
	for _, e := range g.population {
		g.life.Remove(e)
	}
	for _, e := range g.staged {
		g.life.Remove(e)
	}
	g.population = g.population[:0]
	g.staged = g.staged[:0]
	g.field.ClearAll()
	g.step = 0
	g.stopReason = ""

	g.lifetimeTracker.Reset()
	g.collector = telemetry.NewCollector(g.cfg.Telemetry.Window, len(g.names))
	g.bookmarkDetector = telemetry.NewBookmarkDetector(g.cfg.Telemetry.BookmarkHistorySize, g.cfg.Bookmarks)

	if err := g.populate(); err != nil {
		return err
	}
	g.monitor.Report(g.step, g.field)
	return nil
}

// populate visits every cell in row-major order and offers it to each species
// in table order; the first species whose creation draw succeeds takes it.
func (g *Game) populate() error {
	table := g.life.Table()
	ids := table.IDs()
	depth, width := g.field.Dimensions()

	for row := 0; row < depth; row++ {
		for col := 0; col < width; col++ {
			for _, id := range ids {
				if g.rng.Float64() > table.Get(id).CreationProbability {
					continue
				}
				e, err := g.life.Spawn(id, components.At(row, col), true, 0)
				if err != nil {
					return fmt.Errorf("populate: %w", err)
				}
				g.population = append(g.population, e)
				g.lifetimeTracker.Register(g.life.Organism(e).ID, id, 0)
				break
			}
		}
	}
	return nil
}

// cleanupDead drops dead organisms from the population, preserving the order
// of the survivors, and removes their entities from the world.
func (g *Game) cleanupDead() {
	live := g.population[:0]
	for _, e := range g.population {
		if g.life.IsAlive(e) {
			live = append(live, e)
			continue
		}
		g.life.Remove(e)
	}
	g.population = live
}
