// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/reef/traits"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Default grid dimensions, used whenever configured dimensions are not positive.
const (
	DefaultDepth = 80
	DefaultWidth = 120
)

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Run       RunConfig       `yaml:"run"`
	Viability ViabilityConfig `yaml:"viability"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`
	Species   []SpeciesConfig `yaml:"species"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the grid dimensions.
type WorldConfig struct {
	Depth int `yaml:"depth"` // rows
	Width int `yaml:"width"` // columns
}

// RunConfig holds run-length parameters.
type RunConfig struct {
	MaxSteps    int   `yaml:"max_steps"`
	StepDelayMS int   `yaml:"step_delay_ms"` // presentation pacing only
	Seed        int64 `yaml:"seed"`          // 0 = time-based
}

// ViabilityConfig holds the monitor's viability rule.
type ViabilityConfig struct {
	MinSpecies int `yaml:"min_species"` // viable while at least this many species are present
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	Window              int `yaml:"window"` // steps per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfWindow          int `yaml:"perf_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	PopulationCrash PopulationCrashConfig `yaml:"population_crash"`
	StableEcosystem StableEcosystemConfig `yaml:"stable_ecosystem"`
}

// PopulationCrashConfig holds population crash detection parameters.
type PopulationCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// StableEcosystemConfig holds stable ecosystem detection parameters.
type StableEcosystemConfig struct {
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// SpeciesConfig is one species' constant record.
type SpeciesConfig struct {
	Name                string  `yaml:"name"`
	Family              string  `yaml:"family"` // producer | consumer
	Prey                string  `yaml:"prey,omitempty"`
	MaxAge              int     `yaml:"max_age"`
	BreedingAge         int     `yaml:"breeding_age,omitempty"`
	BreedingProbability float64 `yaml:"breeding_probability"`
	MaxLitterSize       int     `yaml:"max_litter_size"`
	FoodValue           int     `yaml:"food_value,omitempty"`
	CreationProbability float64 `yaml:"creation_probability"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SpeciesIndex map[string]traits.SpeciesID // name -> table index
	Table        *traits.Table
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	return Load("")
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := Merge(cfg, data); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays YAML data onto cfg and recomputes derived values.
// A species list in data replaces the default roster wholesale.
func Merge(cfg *Config, data []byte) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return cfg.computeDerived()
}

// Clone returns a deep copy with derived values recomputed.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	out := &Config{}
	if err := Merge(out, data); err != nil {
		return nil, err
	}
	return out, nil
}

// Recompute refreshes derived values after fields were edited in place.
func (c *Config) Recompute() error {
	return c.computeDerived()
}

// computeDerived resolves species names and builds the traits table.
func (c *Config) computeDerived() error {
	index := make(map[string]traits.SpeciesID, len(c.Species))
	for i, sp := range c.Species {
		index[sp.Name] = traits.SpeciesID(i)
	}

	roster := make([]traits.Traits, 0, len(c.Species))
	for _, sp := range c.Species {
		family, err := traits.ParseFamily(sp.Family)
		if err != nil {
			return fmt.Errorf("species %s: %w", sp.Name, err)
		}
		prey := traits.NoSpecies
		if family == traits.Consumer {
			id, ok := index[sp.Prey]
			if !ok {
				return fmt.Errorf("species %s: prey %q: %w", sp.Name, sp.Prey, traits.ErrUnknownSpecies)
			}
			prey = id
		}
		roster = append(roster, traits.Traits{
			Name:                sp.Name,
			Family:              family,
			Prey:                prey,
			MaxAge:              sp.MaxAge,
			BreedingAge:         sp.BreedingAge,
			BreedingProbability: sp.BreedingProbability,
			MaxLitterSize:       sp.MaxLitterSize,
			FoodValue:           sp.FoodValue,
			CreationProbability: sp.CreationProbability,
		})
	}

	table, err := traits.NewTable(roster)
	if err != nil {
		return fmt.Errorf("building species table: %w", err)
	}
	c.Derived.SpeciesIndex = index
	c.Derived.Table = table
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
