package collectors

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/jonathan/job-hunter/internal/fetch"
	"github.com/jonathan/job-hunter/internal/types"
)

// JSONFeed scrapes a board that publishes its listings as JSON. Each
// listing is passed on verbatim as the posting content.
type JSONFeed struct {
	Src types.JobSource
	URL string
	// Path is the top-level key holding the listing array; empty means the
	// document itself is the array
	Path string
	// Skip drops leading entries that are not listings
	Skip   int
	Limit  int
	URLKey string
}

// RemoteOK publishes a root array whose first entry is a legal notice
func RemoteOK() *JSONFeed {
	return &JSONFeed{Src: types.SourceRemoteOK, URL: "https://remoteok.com/api", Skip: 1, Limit: DefaultLimit, URLKey: "url"}
}

// Arbeitnow lists jobs under "data"
func Arbeitnow() *JSONFeed {
	return &JSONFeed{Src: types.SourceArbeitnow, URL: "https://www.arbeitnow.com/api/job-board-api", Path: "data", Limit: DefaultLimit, URLKey: "url"}
}

// Himalayas lists jobs under "jobs"
func Himalayas() *JSONFeed {
	return &JSONFeed{Src: types.SourceHimalayas, URL: "https://himalayas.app/jobs/api?limit=10", Path: "jobs", Limit: DefaultLimit, URLKey: "applicationLink"}
}

// Remotive lists jobs under "jobs"
func Remotive() *JSONFeed {
	return &JSONFeed{Src: types.SourceRemotive, URL: "https://remotive.com/api/remote-jobs?limit=15", Path: "jobs", Limit: DefaultLimit, URLKey: "url"}
}

// Jobicy lists jobs under "jobs"
func Jobicy() *JSONFeed {
	return &JSONFeed{Src: types.SourceJobicy, URL: "https://jobicy.com/api/v2/remote-jobs?count=15", Path: "jobs", Limit: DefaultLimit, URLKey: "url"}
}

// Source returns the feed's source
func (f *JSONFeed) Source() types.JobSource {
	return f.Src
}

// Scrape fetches the feed and keeps listings that carry a URL
func (f *JSONFeed) Scrape(ctx context.Context, settings types.SourceSettings, pacer *rate.Limiter) ([]Posting, error) {
	if err := pacer.Wait(ctx); err != nil {
		return nil, err
	}
	opts := fetch.OptionsFor(settings)
	opts.UseBrowser = false
	opts.Headers = map[string]string{"Accept": "application/json"}

	res, err := fetch.URL(ctx, f.URL, opts)
	if err != nil {
		return nil, err
	}

	items, err := f.listings([]byte(res.Body))
	if err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	postings := make([]Posting, 0, limit)
	for i, item := range items {
		if i < f.Skip {
			continue
		}
		link := stringField(item, f.URLKey)
		if link == "" {
			continue
		}
		postings = append(postings, Posting{URL: link, Content: string(item)})
		if len(postings) == limit {
			break
		}
	}
	return postings, nil
}

func (f *JSONFeed) listings(body []byte) ([]json.RawMessage, error) {
	root := json.RawMessage(body)
	if f.Path != "" {
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s feed: %w", f.Src, err)
		}
		var ok bool
		if root, ok = doc[f.Path]; !ok {
			return nil, nil
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(root, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s listings: %w", f.Src, err)
	}
	return items, nil
}

func stringField(item json.RawMessage, key string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(fields[key], &s); err != nil {
		return ""
	}
	return s
}
