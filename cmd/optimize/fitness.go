package main

import (
	"context"
	"sync"

	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/game"
	"github.com/pthm-cable/reef/telemetry"
)

// Weight of the coexistence quality bonus relative to survival.
const qualityWeight = 0.2

// FitnessEvaluator runs simulations to evaluate parameter fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	maxSteps   int
	seeds      []int64

	lastQuality float64 // mean quality of the most recent evaluation
}

// NewFitnessEvaluator creates a new fitness evaluator.
func NewFitnessEvaluator(params *ParamVector, baseConfig *config.Config, maxSteps int, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		baseConfig: baseConfig,
		maxSteps:   maxSteps,
		seeds:      seeds,
	}
}

// runResult holds the outcome of a single seeded run.
type runResult struct {
	steps   int
	windows []telemetry.WindowStats
	err     error
}

// Evaluate runs simulations with the given raw parameters and returns fitness.
// Lower is better (CMA-ES minimizes).
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	results := make([]runResult, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSingle(raw, s)
		}(i, seed)
	}
	wg.Wait()

	species := fe.baseConfig.Derived.Table.Len()
	var total, quality float64
	for _, r := range results {
		if r.err != nil {
			// A configuration the game rejects scores as a run that never started.
			continue
		}
		q := computeQuality(r.windows, species)
		quality += q
		total += float64(r.steps) * (1 + qualityWeight*q)
	}
	n := float64(len(fe.seeds))
	fe.lastQuality = quality / n
	return -total / n
}

// LastQuality returns the mean quality score of the last Evaluate call.
func (fe *FitnessEvaluator) LastQuality() float64 {
	return fe.lastQuality
}

// runSingle runs one simulation and collects its stats windows.
func (fe *FitnessEvaluator) runSingle(raw []float64, seed int64) runResult {
	cfg, err := fe.baseConfig.Clone()
	if err != nil {
		return runResult{err: err}
	}
	if err := fe.params.ApplyToConfig(cfg, raw); err != nil {
		return runResult{err: err}
	}

	var windows []telemetry.WindowStats
	g, err := game.New(game.Options{
		Config: cfg,
		Seed:   seed,
		StatsCallback: func(ws telemetry.WindowStats) {
			windows = append(windows, ws)
		},
	})
	if err != nil {
		return runResult{err: err}
	}
	defer g.Close()

	res, err := g.Run(context.Background(), fe.maxSteps)
	if err != nil {
		return runResult{err: err}
	}
	return runResult{steps: res.Steps, windows: windows}
}

// computeQuality scores coexistence in [0,1]: the mean fraction of species
// present per window, discounted by how much the total population swings.
func computeQuality(windows []telemetry.WindowStats, species int) float64 {
	if len(windows) == 0 || species == 0 {
		return 0
	}

	var presence float64
	totals := make([]float64, len(windows))
	for i, ws := range windows {
		presence += float64(ws.Present()) / float64(species)
		totals[i] = float64(ws.Total())
	}
	presence /= float64(len(windows))

	stability := 1 - clamp(telemetry.CoefficientOfVariation(totals), 0, 1)
	return clamp(0.7*presence+0.3*stability, 0, 1)
}
