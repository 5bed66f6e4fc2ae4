package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/game"
)

func main() {
	if err := run(); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Environment seeds the flag defaults; explicit flags win
	var env config.Env
	if err := config.ParseEnv(&env); err != nil {
		return err
	}

	configPath := flag.String("config", env.ConfigPath, "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", env.Seed, "RNG seed (0 = config seed, then time-based)")
	maxSteps := flag.Int("max-steps", env.MaxSteps, "Stop after N steps (0 = config max_steps)")
	outputDir := flag.String("output-dir", env.OutputDir, "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", env.DBPath, "SQLite file recording the windowed census")
	logLevel := flag.String("log-level", env.LogLevel, "Log level: debug, info, warn, error")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	flag.Parse()

	level, err := parseLevel(*logLevel)
	if err != nil {
		return err
	}
	// JSON to stdout for structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := config.Init(*configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.Run.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	steps := *maxSteps
	if steps == 0 {
		steps = cfg.Run.MaxSteps
	}

	g, err := game.New(game.Options{
		Config:    cfg,
		Seed:      rngSeed,
		OutputDir: *outputDir,
		DBPath:    *dbPath,
		LogStats:  *logStats,
		StepDelay: time.Duration(cfg.Run.StepDelayMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			slog.Error("failed to close outputs", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	depth, width := g.Field().Dimensions()
	slog.Info("starting simulation",
		"seed", rngSeed,
		"depth", depth,
		"width", width,
		"max_steps", steps,
		"population", len(g.Population()),
	)

	start := time.Now()
	res, err := g.Run(ctx, steps)
	if err != nil {
		return err
	}
	slog.Info("run_complete",
		"steps", res.Steps,
		"occupied_cells", g.Field().Occupied(),
		"reason", string(res.Reason),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
		"perf", g.Perf(),
		slog.Group("census", g.Counts().Attrs(cfg.Derived.Table)...),
	)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}
