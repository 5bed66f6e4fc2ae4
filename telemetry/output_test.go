package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/reef/config"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Nil manager methods are no-ops
	if err := om.WriteCensus(window(10, 1)); err != nil {
		t.Errorf("WriteCensus on nil: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir on nil = %q, want empty", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om.Dir() != dir {
		t.Errorf("Dir = %q, want %q", om.Dir(), dir)
	}

	if err := om.WriteCensus(window(10, 5, 2)); err != nil {
		t.Fatalf("WriteCensus: %v", err)
	}
	if err := om.WriteCensus(window(20, 4, 1)); err != nil {
		t.Fatalf("WriteCensus: %v", err)
	}
	if err := om.WritePerf(PerfStats{AvgStepDuration: time.Millisecond}, 20); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSpeciesExtinct, Step: 20, Species: "sardine"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}

	cfg, err := config.Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	census := readLines(t, filepath.Join(dir, "census.csv"))
	// Header once, then two species rows per window
	if len(census) != 5 {
		t.Fatalf("census.csv has %d lines, want 5:\n%s", len(census), strings.Join(census, "\n"))
	}
	if !strings.HasPrefix(census[0], "window_end,species,count,") {
		t.Errorf("census header = %q", census[0])
	}
	if !strings.HasPrefix(census[1], "10,sea_lion,5,") || !strings.HasPrefix(census[4], "20,sardine,1,") {
		t.Errorf("census rows = %q", census[1:])
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 2 || !strings.HasPrefix(perf[1], "20,1000,") {
		t.Errorf("perf.csv = %q", perf)
	}

	bookmarks := readLines(t, filepath.Join(dir, "bookmarks.csv"))
	if len(bookmarks) != 2 || bookmarks[0] != "type,step,species,description" {
		t.Errorf("bookmarks.csv = %q", bookmarks)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml does not reload: %v", err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
