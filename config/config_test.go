package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/reef/traits"
)

func TestDefaults(t *testing.T) {
	cfg, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if cfg.World.Depth != DefaultDepth || cfg.World.Width != DefaultWidth {
		t.Errorf("world = %+v, want %dx%d", cfg.World, DefaultDepth, DefaultWidth)
	}

	wantOrder := []string{"killer_whale", "sea_lion", "dolphin", "sea_otter", "sardine", "kelp", "plankton"}
	table := cfg.Derived.Table
	if table.Len() != len(wantOrder) {
		t.Fatalf("table has %d species, want %d", table.Len(), len(wantOrder))
	}
	for i, name := range wantOrder {
		if got := table.Name(traits.SpeciesID(i)); got != name {
			t.Errorf("species %d = %q, want %q", i, got, name)
		}
	}

	sardine := table.Get(cfg.Derived.SpeciesIndex["sardine"])
	if sardine.Prey != cfg.Derived.SpeciesIndex["plankton"] {
		t.Errorf("sardine prey = %d", sardine.Prey)
	}
	if sardine.MaxAge != 13 || sardine.BreedingAge != 2 || sardine.FoodValue != 4 || sardine.MaxLitterSize != 4 {
		t.Errorf("sardine traits = %+v", sardine)
	}
	if kelp := table.Get(cfg.Derived.SpeciesIndex["kelp"]); kelp.IsConsumer() || kelp.Prey != traits.NoSpecies {
		t.Errorf("kelp traits = %+v", kelp)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := "world:\n  depth: 20\nrun:\n  seed: 7\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Depth != 20 {
		t.Errorf("depth = %d, want 20", cfg.World.Depth)
	}
	if cfg.World.Width != DefaultWidth {
		t.Errorf("width = %d, want default %d", cfg.World.Width, DefaultWidth)
	}
	if cfg.Run.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Run.Seed)
	}
	if cfg.Derived.Table == nil {
		t.Fatal("derived table missing after overlay")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestMergeUnknownPrey(t *testing.T) {
	cfg, _ := Defaults()
	data := []byte(`
species:
  - name: shark
    family: consumer
    prey: tuna
    max_age: 10
    food_value: 3
`)
	err := Merge(cfg, data)
	if !errors.Is(err, traits.ErrUnknownSpecies) {
		t.Fatalf("Merge error = %v, want ErrUnknownSpecies", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, _ := Defaults()
	cfg.Run.MaxSteps = 42
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Run.MaxSteps != 42 || len(loaded.Species) != len(cfg.Species) {
		t.Errorf("round trip lost data: %+v", loaded.Run)
	}
}

func TestClone(t *testing.T) {
	cfg, _ := Defaults()
	clone, err := cfg.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	clone.Species[0].CreationProbability = 0.5
	if cfg.Species[0].CreationProbability == 0.5 {
		t.Error("clone shares the species slice")
	}
}

func TestParseEnvDefaults(t *testing.T) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if e.LogLevel != "info" {
		t.Fatalf("expected default log level info, got %q", e.LogLevel)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("REEF_SEED", "99")
	t.Setenv("REEF_OUTPUT_DIR", "/tmp/reef")
	var e Env
	if err := ParseEnv(&e); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if e.Seed != 99 || e.OutputDir != "/tmp/reef" {
		t.Errorf("env = %+v", e)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("REEF_MAX_STEPS", "lots")
	var e Env
	err := ParseEnv(&e)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	global = nil
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
