package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/job-hunter/internal/types"
)

// Export is the document written by ExportJSON
type Export struct {
	RunID   string                 `json:"run_id"`
	Results []types.AnalyzedRecord `json:"results"`
}

// WriteJSON writes the records of a run as indented JSON, best match first
func WriteJSON(w io.Writer, runID string, records []types.AnalyzedRecord) error {
	doc := Export{RunID: runID, Results: SortByScore(records)}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// ExportJSON writes the records of a run to path, creating parent directories
func ExportJSON(path, runID string, records []types.AnalyzedRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteJSON(f, runID, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
