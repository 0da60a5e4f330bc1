package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-hunter/internal/types"
)

const upsertResult = `INSERT INTO job_results (run_id, record_id, source, title, url, match_score, content)
	 VALUES ($1, $2, $3, $4, $5, $6, $7)
	 ON CONFLICT (run_id, record_id) DO UPDATE
	 SET source = $3, title = $4, url = $5, match_score = $6, content = $7, created_at = NOW()`

// resultRow flattens a record into the column values of a job_results row
func resultRow(runID uuid.UUID, rec types.AnalyzedRecord) ([]any, error) {
	content, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
	}
	return []any{runID, rec.ID, string(rec.Source), rec.Title, rec.URL, rec.MatchScore, content}, nil
}

// SaveResults upserts the delivered records of a run in one batch
func (db *DB) SaveResults(ctx context.Context, runID uuid.UUID, records []types.AnalyzedRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		args, err := resultRow(runID, rec)
		if err != nil {
			return err
		}
		batch.Queue(upsertResult, args...)
	}

	if err := db.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	return nil
}

// ListResults returns the stored records of a run, best match first
func (db *DB) ListResults(ctx context.Context, runID uuid.UUID) ([]StoredResult, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, record_id, source, title, url, match_score, content, created_at
		 FROM job_results WHERE run_id = $1
		 ORDER BY match_score DESC, record_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []StoredResult
	for rows.Next() {
		var r StoredResult
		var source string
		var content []byte
		if err := rows.Scan(&r.RunID, &r.RecordID, &source, &r.Title, &r.URL, &r.MatchScore, &content, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		r.Source = types.JobSource(source)
		if err := json.Unmarshal(content, &r.Record); err != nil {
			return nil, fmt.Errorf("failed to decode stored record %s: %w", r.RecordID, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}
	return results, nil
}
