package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/reef/systems"
)

// Step advances the simulation by exactly one step.
//
// Every organism in the population acts once, in population order. One that
// died earlier in the same sweep is skipped. Newborns are staged and join the
// population after the sweep, so they first act next step. The step counter
// is incremented before the sweep and reported to the monitor after it.
//
// An error means a placement left the grid; the game state is then
// undefined and the run should stop.
func (g *Game) Step() error {
	g.perfCollector.StartStep()
	g.step++

	g.perfCollector.StartPhase(systems.PhaseSweep)
	g.staged = g.staged[:0]
	for _, e := range g.population {
		if !g.life.IsAlive(e) {
			continue
		}
		if err := g.life.Act(e, g.step, &g.staged); err != nil {
			g.perfCollector.EndStep()
			return fmt.Errorf("step %d: %w", g.step, err)
		}
	}

	g.perfCollector.StartPhase(systems.PhaseCleanup)
	g.cleanupDead()

	g.perfCollector.StartPhase(systems.PhaseMerge)
	g.population = append(g.population, g.staged...)

	g.perfCollector.StartPhase(systems.PhaseReport)
	g.monitor.Report(g.step, g.field)

	g.perfCollector.StartPhase(systems.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndStep()
	return nil
}

// Run steps until maxSteps steps have been taken, the monitor declares the
// field non-viable, or ctx is cancelled. Viability is checked before every
// step. maxSteps <= 0 means no step budget.
//
// Stopping early is not an error; the reason is in the result. An error is
// returned only when a step fails.
func (g *Game) Run(ctx context.Context, maxSteps int) (RunResult, error) {
	start := g.step
	result := func(reason StopReason) RunResult {
		g.stopReason = reason
		return RunResult{Steps: g.step - start, Reason: reason}
	}

	for maxSteps <= 0 || g.step-start < maxSteps {
		if ctx.Err() != nil {
			return result(StopCancelled), nil
		}
		if !g.monitor.IsViable(g.field) {
			slog.Info("field no longer viable", "step", g.step)
			return result(StopNotViable), nil
		}
		if err := g.Step(); err != nil {
			return RunResult{Steps: g.step - start}, err
		}
		if g.stepDelay > 0 {
			if !sleep(ctx, g.stepDelay) {
				return result(StopCancelled), nil
			}
		}
	}
	return result(StopMaxSteps), nil
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
