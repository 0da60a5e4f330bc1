package collectors

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jonathan/job-hunter/internal/fetch"
	"github.com/jonathan/job-hunter/internal/types"
)

// RSSFeed scrapes a board that publishes an RSS 2.0 feed
type RSSFeed struct {
	Src   types.JobSource
	URL   string
	Limit int
}

// WeWorkRemotely publishes an RSS feed of all categories
func WeWorkRemotely() *RSSFeed {
	return &RSSFeed{Src: types.SourceWeWorkRemotely, URL: "https://weworkremotely.com/remote-jobs.rss", Limit: DefaultLimit}
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Region      string `xml:"region"`
	Category    string `xml:"category"`
	Type        string `xml:"type"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// Source returns the feed's source
func (f *RSSFeed) Source() types.JobSource {
	return f.Src
}

// Scrape fetches the feed and flattens each item into plain text
func (f *RSSFeed) Scrape(ctx context.Context, settings types.SourceSettings, pacer *rate.Limiter) ([]Posting, error) {
	if err := pacer.Wait(ctx); err != nil {
		return nil, err
	}
	opts := fetch.OptionsFor(settings)
	opts.UseBrowser = false

	res, err := fetch.URL(ctx, f.URL, opts)
	if err != nil {
		return nil, err
	}

	var doc rssDocument
	if err := xml.Unmarshal([]byte(res.Body), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s feed: %w", f.Src, err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	postings := make([]Posting, 0, limit)
	for _, item := range doc.Channel.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		postings = append(postings, Posting{URL: link, Content: item.text()})
		if len(postings) == limit {
			break
		}
	}
	return postings, nil
}

func (i rssItem) text() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(i.Title))
	for _, meta := range []struct{ label, value string }{
		{"Region", i.Region},
		{"Category", i.Category},
		{"Type", i.Type},
		{"Published", i.PubDate},
	} {
		if v := strings.TrimSpace(meta.value); v != "" {
			fmt.Fprintf(&sb, "\n%s: %s", meta.label, v)
		}
	}
	if desc := fetch.HTMLToText(i.Description); desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
	}
	return sb.String()
}
