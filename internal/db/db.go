// Package db provides optional PostgreSQL persistence for pipeline runs and their results.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables used by the store. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id           UUID PRIMARY KEY,
	policy       TEXT NOT NULL,
	keywords     TEXT[] NOT NULL DEFAULT '{}',
	status       TEXT NOT NULL,
	calls_used   BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS job_results (
	run_id      UUID NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
	record_id   TEXT NOT NULL,
	source      TEXT NOT NULL,
	title       TEXT NOT NULL,
	url         TEXT NOT NULL,
	match_score DOUBLE PRECISION NOT NULL,
	content     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (run_id, record_id)
);

CREATE INDEX IF NOT EXISTS job_results_score_idx ON job_results (run_id, match_score DESC);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the store's tables when they are missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateRun records the start of a run under the scheduler's run ID
func (db *DB) CreateRun(ctx context.Context, runID, policy string, keywords []string) (uuid.UUID, error) {
	id, err := ParseRunID(runID)
	if err != nil {
		return uuid.Nil, err
	}
	if keywords == nil {
		keywords = []string{}
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, policy, keywords, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		id, policy, keywords, RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run as finished with the given status and call count
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, callsUsed int64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status = $1, calls_used = $2, completed_at = NOW() WHERE id = $3`,
		status, callsUsed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID. Returns nil when the run does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var r Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, policy, keywords, status, calls_used, created_at, completed_at
		 FROM pipeline_runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Policy, &r.Keywords, &r.Status, &r.CallsUsed, &r.CreatedAt, &r.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ParseRunID converts a scheduler run ID into a UUID
func ParseRunID(runID string) (uuid.UUID, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}
	return id, nil
}
