// Package enricher implements the post-processing worker that fills in
// derived fields of analyzed records.
package enricher

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-hunter/internal/types"
)

// Name is the worker name the enricher registers under
const Name = "enricher"

// Enricher turns EnrichBatch messages into EnrichedBatch messages. It only
// touches non-structural fields; record IDs and scores are never changed.
type Enricher struct {
	logger *zap.Logger
}

// New creates an enricher
func New(logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{logger: logger.With(zap.String("worker", Name))}
}

// Name returns the worker name
func (e *Enricher) Name() string {
	return Name
}

// Process handles EnrichBatch; every other message is a contract violation
func (e *Enricher) Process(ctx context.Context, msg types.Message) (types.Message, error) {
	batch, ok := msg.(types.EnrichBatch)
	if !ok {
		return nil, types.UnexpectedMessage(Name, msg)
	}

	enriched := 0
	for i := range batch.Records {
		if Enrich(&batch.Records[i]) {
			enriched++
		}
	}
	e.logger.Debug("batch enriched", zap.Int("records", len(batch.Records)), zap.Int("changed", enriched))
	return types.EnrichedBatch{Records: batch.Records}, nil
}

// Enrich fills derived company fields of rec and reports whether anything changed
func Enrich(rec *types.AnalyzedRecord) bool {
	if rec.Company == nil || strings.TrimSpace(rec.Company.Name) == "" {
		return false
	}
	if rec.Company.Website != nil && strings.TrimSpace(*rec.Company.Website) != "" {
		return false
	}
	website := GuessWebsite(rec.Company.Name)
	if website == "" {
		return false
	}
	rec.Company.Website = &website
	return true
}

// GuessWebsite derives a website from a company name: lowercase, spaces
// removed, under www and .com. Names without any letter or digit yield "".
func GuessWebsite(name string) string {
	host := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if !strings.ContainsFunc(host, isAlnum) {
		return ""
	}
	return "https://www." + host + ".com"
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
