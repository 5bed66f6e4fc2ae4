package game

import (
	"time"

	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/telemetry"
	"github.com/pthm-cable/reef/traits"
)

// Options configures a game.
type Options struct {
	Config *config.Config // nil = embedded defaults
	Seed   int64          // 0 = time-based
	Rand   traits.Rand    // overrides Seed when set

	Monitor       Monitor // nil = telemetry.ViabilityMonitor from Config.Viability
	OutputDir     string  // CSV + config snapshot; empty disables
	DBPath        string  // SQLite census store; empty disables
	LogStats      bool
	StatsCallback func(telemetry.WindowStats)

	// StepDelay pauses between steps in Run. It is presentation pacing only.
	StepDelay time.Duration
}

// StopReason says why Run returned.
type StopReason string

const (
	StopMaxSteps  StopReason = "max_steps"
	StopNotViable StopReason = "not_viable"
	StopCancelled StopReason = "cancelled"
	StopClosed    StopReason = "closed" // closed without a completed Run
)

// RunResult reports how far Run got.
type RunResult struct {
	Steps  int // steps taken by this Run call
	Reason StopReason
}
