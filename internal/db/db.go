// Package db provides the optional PostgreSQL run archive. The archive
// mirrors each discovery run for querying across runs; the file artifacts
// remain the authoritative record, and a missing or unreachable database
// degrades the pipeline to file-only with a warning.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the archive tables when they do not exist yet.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS discovery_runs (
			id UUID PRIMARY KEY,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT 'running',
			collected INT NOT NULL DEFAULT 0,
			surviving INT NOT NULL DEFAULT 0,
			drafted INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS run_candidates (
			run_id UUID NOT NULL REFERENCES discovery_runs(id) ON DELETE CASCADE,
			candidate_id TEXT NOT NULL,
			bucket TEXT NOT NULL,
			payload JSONB NOT NULL,
			PRIMARY KEY (run_id, candidate_id)
		)`,
		`CREATE TABLE IF NOT EXISTS run_drafts (
			run_id UUID NOT NULL REFERENCES discovery_runs(id) ON DELETE CASCADE,
			candidate_id TEXT NOT NULL,
			category TEXT NOT NULL,
			payload JSONB NOT NULL,
			PRIMARY KEY (run_id, candidate_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure archive schema: %w", err)
		}
	}
	return nil
}

// Run is one archived discovery run.
type Run struct {
	ID          uuid.UUID
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      string
	Collected   int
	Surviving   int
	Drafted     int
}

// CreateRun inserts a new running archive entry and returns its id.
func (db *DB) CreateRun(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO discovery_runs (id, status) VALUES ($1, 'running')`,
		id,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun finalizes an archive entry with its status and counts.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, collected, surviving, drafted int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE discovery_runs
		 SET status = $1, collected = $2, surviving = $3, drafted = $4, completed_at = NOW()
		 WHERE id = $5`,
		status, collected, surviving, drafted, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// RecentRuns lists the newest archived runs, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, started_at, completed_at, status, collected, surviving, drafted
		 FROM discovery_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.CompletedAt, &run.Status,
			&run.Collected, &run.Surviving, &run.Drafted); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
