package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-hunter/internal/types"
)

// Run statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run represents one pipeline run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Policy      string     `json:"policy"`
	Keywords    []string   `json:"keywords"`
	Status      string     `json:"status"`
	CallsUsed   int64      `json:"calls_used"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StoredResult is one analyzed record persisted for a run
type StoredResult struct {
	RunID      uuid.UUID            `json:"run_id"`
	RecordID   string               `json:"record_id"`
	Source     types.JobSource      `json:"source"`
	Title      string               `json:"title"`
	URL        string               `json:"url"`
	MatchScore float64              `json:"match_score"`
	Record     types.AnalyzedRecord `json:"record"`
	CreatedAt  time.Time            `json:"created_at"`
}
