package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes a sample of organism state (ages, food levels).
type Distribution struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// Summarize computes the population mean, standard deviation and empirical
// 10th/50th/90th percentiles of values. An empty sample yields zeros.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}

// CoefficientOfVariation returns the population std/mean of values.
// Returns 0 for an empty sample or a zero mean.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// SpeciesStats is one species' row for one stats window.
type SpeciesStats struct {
	WindowStart int    `csv:"-"`
	WindowEnd   int    `csv:"window_end"`
	Species     string `csv:"species"`

	// Live count at window end
	Count int `csv:"count"`

	// Events during window
	Births             int `csv:"births"`
	Kills              int `csv:"kills"`
	DeathsOldAge       int `csv:"deaths_old_age"`
	DeathsStarvation   int `csv:"deaths_starvation"`
	DeathsOvercrowding int `csv:"deaths_overcrowding"`
	DeathsEaten        int `csv:"deaths_eaten"`

	// Averages over organisms that died during the window
	MeanLifespan  float64 `csv:"mean_lifespan"`
	MeanOffspring float64 `csv:"mean_offspring"`

	// Distributions sampled at window end
	AgeMean  float64 `csv:"age_mean"`
	AgeP10   float64 `csv:"age_p10"`
	AgeP50   float64 `csv:"age_p50"`
	AgeP90   float64 `csv:"age_p90"`
	FoodMean float64 `csv:"food_mean"`
	FoodP10  float64 `csv:"food_p10"`
	FoodP50  float64 `csv:"food_p50"`
	FoodP90  float64 `csv:"food_p90"`
}

// Deaths returns the total number of deaths in the window.
func (s SpeciesStats) Deaths() int {
	return s.DeathsOldAge + s.DeathsStarvation + s.DeathsOvercrowding + s.DeathsEaten
}

// LogValue implements slog.LogValuer.
func (s SpeciesStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths()),
		slog.Int("kills", s.Kills),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("food_mean", s.FoodMean),
	)
}

// WindowStats holds every species' row for one window, indexed by species id.
type WindowStats struct {
	WindowStart int
	WindowEnd   int
	Species     []SpeciesStats
}

// Total returns the live population at window end.
func (w WindowStats) Total() int {
	var n int
	for _, s := range w.Species {
		n += s.Count
	}
	return n
}

// Present returns how many species are alive at window end.
func (w WindowStats) Present() int {
	var n int
	for _, s := range w.Species {
		if s.Count > 0 {
			n++
		}
	}
	return n
}

// LogStats logs the window using slog.
func (w WindowStats) LogStats() {
	attrs := []any{
		"window_end", w.WindowEnd,
		"total", w.Total(),
		"present", w.Present(),
	}
	for _, s := range w.Species {
		attrs = append(attrs, slog.Any(s.Species, s))
	}
	slog.Info("stats", attrs...)
}
