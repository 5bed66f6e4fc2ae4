package telemetry

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schemaSQL string

// ErrDuplicateCensus is returned when a window is recorded twice for a run.
var ErrDuplicateCensus = errors.New("census already recorded for step")

// RunInfo describes a run at its start.
type RunInfo struct {
	Seed      int64
	Depth     int
	Width     int
	StartedAt time.Time
}

// CensusRow is one stored per-species census row.
type CensusRow struct {
	Step    int
	Species string
	Count   int
	Births  int
	Deaths  int
	Kills   int
}

// CensusStore persists runs and their windowed species census in SQLite.
type CensusStore struct {
	sqlDB *sql.DB
}

// OpenCensusStore opens a SQLite census store and applies the embedded schema.
func OpenCensusStore(path string) (*CensusStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &CensusStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *CensusStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// StartRun inserts a run record and returns its id.
func (s *CensusStore) StartRun(ctx context.Context, info RunInfo) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	startedAt := info.StartedAt.UTC()
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO runs (seed, depth, width, started_at) VALUES (?, ?, ?, ?)`,
		info.Seed, info.Depth, info.Width, startedAt.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// FinishRun records the final step count and stop reason of a run.
func (s *CensusStore) FinishRun(ctx context.Context, runID int64, steps int, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`UPDATE runs SET steps = ?, stop_reason = ? WHERE id = ?`,
		steps, reason, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", runID, err)
	}
	return nil
}

// RecordWindow stores one row per species for the window in a single transaction.
func (s *CensusStore) RecordWindow(ctx context.Context, runID int64, ws WindowStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin census tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, row := range ws.Species {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO census (
			   run_id, step, species, count, births, deaths, kills, mean_lifespan
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, ws.WindowEnd, row.Species, row.Count,
			row.Births, row.Deaths(), row.Kills, row.MeanLifespan,
		)
		if err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("step %d species %s: %w", ws.WindowEnd, row.Species, ErrDuplicateCensus)
			}
			return fmt.Errorf("insert census: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit census: %w", err)
	}
	return nil
}

// Census returns every stored row of a run ordered by step then species.
func (s *CensusStore) Census(ctx context.Context, runID int64) ([]CensusRow, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT step, species, count, births, deaths, kills
		   FROM census
		  WHERE run_id = ?
		  ORDER BY step, species`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query census: %w", err)
	}
	defer rows.Close()

	var out []CensusRow
	for rows.Next() {
		var r CensusRow
		if err := rows.Scan(&r.Step, &r.Species, &r.Count, &r.Births, &r.Deaths, &r.Kills); err != nil {
			return nil, fmt.Errorf("scan census: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate census: %w", err)
	}
	return out, nil
}

// RunSteps returns the recorded step count and stop reason of a run.
// Both are zero-valued until FinishRun is called.
func (s *CensusStore) RunSteps(ctx context.Context, runID int64) (int, string, error) {
	var (
		steps  sql.NullInt64
		reason sql.NullString
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT steps, stop_reason FROM runs WHERE id = ?`, runID,
	).Scan(&steps, &reason)
	if err != nil {
		return 0, "", fmt.Errorf("query run %d: %w", runID, err)
	}
	return int(steps.Int64), reason.String, nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}
