// Package collectors implements the workers that gather raw postings from
// public job boards. Every source is wrapped in the same Collector, which
// applies the run's per-source settings (enabled flag, pacing delay, user
// agent) before handing over to the source-specific Scraper.
package collectors

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/job-hunter/internal/types"
)

// DefaultLimit is the number of postings taken from one source per run
const DefaultLimit = 10

// NamePrefix prefixes every collector worker name
const NamePrefix = "collector_"

// Scraper fetches postings from one source. The pacer must be waited on
// before every request the scraper makes.
type Scraper interface {
	Source() types.JobSource
	Scrape(ctx context.Context, settings types.SourceSettings, pacer *rate.Limiter) ([]Posting, error)
}

// Posting is what a scraper extracts before the collector stamps it
type Posting struct {
	URL     string
	Content string
}

// Collector adapts a Scraper to the worker contract
type Collector struct {
	scraper Scraper
	logger  *zap.Logger
}

// New wraps scraper as a collector worker
func New(scraper Scraper, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{scraper: scraper}
	c.logger = logger.With(zap.String("worker", c.Name()))
	return c
}

// Name returns "collector_<source>"
func (c *Collector) Name() string {
	return NamePrefix + string(c.scraper.Source())
}

// Process handles BeginRun. A disabled source answers with an empty batch.
func (c *Collector) Process(ctx context.Context, msg types.Message) (types.Message, error) {
	begin, ok := msg.(types.BeginRun)
	if !ok {
		return nil, types.UnexpectedMessage(c.Name(), msg)
	}

	source := c.scraper.Source()
	settings := begin.Criteria.SettingsFor(source)
	if !settings.Enabled {
		c.logger.Info("source disabled")
		return types.RawBatch{}, nil
	}

	c.logger.Debug("collecting", zap.Duration("delay", settings.Delay()))
	postings, err := c.scraper.Scrape(ctx, settings, NewPacer(settings.Delay()))
	if err != nil {
		return nil, &types.WorkerError{
			Code:    types.CodeCollectionFailure,
			Worker:  c.Name(),
			Message: "failed to collect postings",
			Cause:   err,
		}
	}

	now := time.Now().UTC()
	records := make([]types.RawRecord, 0, len(postings))
	for _, p := range postings {
		records = append(records, types.RawRecord{
			ID:          uuid.NewString(),
			Source:      source,
			URL:         p.URL,
			Content:     p.Content,
			CollectedAt: now,
		})
	}
	c.logger.Info("collected postings", zap.Int("records", len(records)))
	return types.RawBatch{Records: records}, nil
}

// NewPacer returns a limiter whose first Wait already blocks for delay, and
// which spaces every later Wait by delay. A non-positive delay never blocks.
func NewPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	pacer := rate.NewLimiter(rate.Every(delay), 1)
	pacer.Allow()
	return pacer
}

// Defaults returns a collector for every supported source
func Defaults(logger *zap.Logger) []*Collector {
	jobspresso := Jobspresso()
	jobspresso.Logger = logger
	scrapers := []Scraper{
		RemoteOK(),
		Arbeitnow(),
		Himalayas(),
		Remotive(),
		Jobicy(),
		WeWorkRemotely(),
		jobspresso,
	}
	out := make([]*Collector, 0, len(scrapers))
	for _, s := range scrapers {
		out = append(out, New(s, logger))
	}
	return out
}
