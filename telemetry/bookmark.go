package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/reef/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSpeciesExtinct  BookmarkType = "species_extinct"
	BookmarkPopulationCrash BookmarkType = "population_crash"
	BookmarkStableEcosystem BookmarkType = "stable_ecosystem"
)

// stableSpan is the number of windows (history plus current) whose counts
// feed the stability check.
const stableSpan = 4

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Step        int          `csv:"step"`
	Species     string       `csv:"species"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"step", b.Step,
		"species", b.Species,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	peaks       []int // per-species peak count since the last crash
	stableCount int   // consecutive windows with stable populations
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < stableSpan {
		historySize = stableSpan
	}
	if cfg.StableEcosystem.StableWindows < 1 {
		cfg.StableEcosystem.StableWindows = 1
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest window and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(ws WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if len(bd.peaks) < len(ws.Species) {
		bd.peaks = append(bd.peaks, make([]int, len(ws.Species)-len(bd.peaks))...)
	}

	if prev, ok := bd.previous(); ok {
		bookmarks = append(bookmarks, bd.checkExtinctions(prev, ws)...)
	}
	bookmarks = append(bookmarks, bd.checkCrashes(ws)...)
	if b := bd.checkStableEcosystem(ws); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(ws)

	for i, s := range ws.Species {
		if s.Count > bd.peaks[i] {
			bd.peaks[i] = s.Count
		}
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(ws WindowStats) {
	bd.history[bd.historyIdx] = ws
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n most recent windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	if n > size {
		n = size
	}
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) previous() (WindowStats, bool) {
	r := bd.recent(1)
	if len(r) == 0 {
		return WindowStats{}, false
	}
	return r[0], true
}

func (bd *BookmarkDetector) checkExtinctions(prev, ws WindowStats) []Bookmark {
	var out []Bookmark
	for i, s := range ws.Species {
		if i >= len(prev.Species) {
			break
		}
		if prev.Species[i].Count > 0 && s.Count == 0 {
			out = append(out, Bookmark{
				Type:        BookmarkSpeciesExtinct,
				Step:        ws.WindowEnd,
				Species:     s.Species,
				Description: fmt.Sprintf("%s went extinct (was %d)", s.Species, prev.Species[i].Count),
			})
		}
	}
	return out
}

func (bd *BookmarkDetector) checkCrashes(ws WindowStats) []Bookmark {
	crash := bd.cfg.PopulationCrash
	var out []Bookmark
	for i, s := range ws.Species {
		peak := bd.peaks[i]
		if peak == 0 || s.Count == 0 {
			continue
		}
		drop := 1.0 - float64(s.Count)/float64(peak)
		if drop >= crash.DropPercent && peak-s.Count >= crash.MinDrop {
			// Reset peak after crash
			bd.peaks[i] = s.Count
			out = append(out, Bookmark{
				Type:        BookmarkPopulationCrash,
				Step:        ws.WindowEnd,
				Species:     s.Species,
				Description: fmt.Sprintf("%s crashed %.0f%% from peak %d to %d", s.Species, drop*100, peak, s.Count),
			})
		}
	}
	return out
}

func (bd *BookmarkDetector) checkStableEcosystem(ws WindowStats) *Bookmark {
	stable := bd.cfg.StableEcosystem

	// Need at least two species for an ecosystem
	if ws.Present() < 2 {
		bd.stableCount = 0
		return nil
	}

	windows := append(bd.recent(stableSpan-1), ws)
	if len(windows) < stableSpan {
		return nil
	}

	counts := make([]float64, len(windows))
	for i, s := range ws.Species {
		if s.Count == 0 {
			continue
		}
		for j, w := range windows {
			counts[j] = 0
			if i < len(w.Species) {
				counts[j] = float64(w.Species[i].Count)
			}
		}
		if CoefficientOfVariation(counts) > stable.CVThreshold {
			bd.stableCount = 0
			return nil
		}
	}

	bd.stableCount++
	if bd.stableCount == stable.StableWindows { // trigger exactly once per stable stretch
		return &Bookmark{
			Type: BookmarkStableEcosystem,
			Step: ws.WindowEnd,
			Description: fmt.Sprintf("%d species stable over %d windows (population %d)",
				ws.Present(), stable.StableWindows, ws.Total()),
		}
	}
	return nil
}
