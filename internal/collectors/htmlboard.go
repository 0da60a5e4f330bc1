package collectors

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/job-hunter/internal/fetch"
	"github.com/jonathan/job-hunter/internal/types"
)

// Defaults for HTML boards
const (
	// MaxLinks caps how many detail pages are tried
	MaxLinks = 12
	// DetailDelay spaces detail page requests
	DetailDelay = 300 * time.Millisecond
)

// HTMLBoard scrapes a board without an API: job links are discovered on a
// listing page and every detail page is reduced to its main text.
type HTMLBoard struct {
	Src          types.JobSource
	URL          string
	LinkFragment string
	Limit        int
	Logger       *zap.Logger
}

// Jobspresso lists its latest jobs on the home page
func Jobspresso() *HTMLBoard {
	return &HTMLBoard{Src: types.SourceJobspresso, URL: "https://jobspresso.co/", LinkFragment: "/job/", Limit: DefaultLimit}
}

// Source returns the board's source
func (b *HTMLBoard) Source() types.JobSource {
	return b.Src
}

// Scrape fetches the listing page, then up to Limit detail pages. Detail
// pages that fail are skipped.
func (b *HTMLBoard) Scrape(ctx context.Context, settings types.SourceSettings, pacer *rate.Limiter) ([]Posting, error) {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pacer.Wait(ctx); err != nil {
		return nil, err
	}

	opts := fetch.OptionsFor(settings)
	opts.Headers = map[string]string{"Accept": "text/html,application/xhtml+xml"}

	listing, err := fetch.Page(ctx, b.URL, opts)
	if err != nil {
		return nil, err
	}
	links, err := fetch.ExtractLinks(listing.Body, b.URL, b.LinkFragment)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s listing: %w", b.Src, err)
	}
	if len(links) == 0 {
		logger.Warn("no job links found on listing page", zap.String("url", b.URL))
		return nil, nil
	}
	if len(links) > MaxLinks {
		links = links[:MaxLinks]
	}

	limit := b.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	detailPacer := NewPacer(DetailDelay)
	postings := make([]Posting, 0, limit)
	for i, link := range links {
		if i > 0 {
			if err := detailPacer.Wait(ctx); err != nil {
				return nil, err
			}
		}
		page, err := fetch.Page(ctx, link, opts)
		if err != nil {
			logger.Warn("skipping job page", zap.String("url", link), zap.Error(err))
			continue
		}
		text, err := fetch.ExtractMainText(page.Body, fetch.JobPostingSelectors())
		if err != nil || text == "" {
			logger.Warn("skipping unreadable job page", zap.String("url", link), zap.Error(err))
			continue
		}
		if !settings.UseBrowser && fetch.ShouldUseBrowser(text) {
			logger.Debug("job page text is short, the board may need use_browser",
				zap.String("url", link), zap.Int("chars", len(text)))
		}
		postings = append(postings, Posting{URL: link, Content: text})
		if len(postings) == limit {
			break
		}
	}
	return postings, nil
}
