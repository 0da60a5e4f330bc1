// Package search finds short keyword-in-context snippets inside posting and profile text.
package search

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxHits caps the number of snippets returned for one query
const MaxHits = 6

// Sentinel results returned instead of a snippet list
const (
	EmptyQuery = "Empty query."
	NoMatches  = "No relevant matches found."
)

// FindSnippets returns the snippets for keyword formatted as a bullet list,
// or one of the EmptyQuery / NoMatches sentinels.
func FindSnippets(text, keyword string) string {
	if strings.TrimSpace(keyword) == "" {
		return EmptyQuery
	}

	hits := Snippets(text, keyword)
	if len(hits) == 0 {
		return NoMatches
	}

	lines := make([]string, len(hits))
	for i, hit := range hits {
		lines[i] = fmt.Sprintf("• %q", hit)
	}
	return strings.Join(lines, "\n")
}

// Snippets returns up to MaxHits context windows around case-insensitive
// literal matches of keyword. A window is the matching line plus the line
// before and after it. Windows contained in an earlier window are skipped and
// earlier windows contained in a later one are replaced by it.
func Snippets(text, keyword string) []string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(keyword))

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var hits []string
	for i, line := range lines {
		if !re.MatchString(line) {
			continue
		}

		window := contextWindow(lines, i)
		if window == "" || containedIn(window, hits) {
			continue
		}

		kept := hits[:0]
		for _, h := range hits {
			if !strings.Contains(window, h) {
				kept = append(kept, h)
			}
		}
		hits = append(kept, window)

		if len(hits) >= MaxHits {
			break
		}
	}
	return hits
}

func contextWindow(lines []string, i int) string {
	start := max(0, i-1)
	end := min(len(lines), i+2)

	parts := make([]string, 0, end-start)
	for _, l := range lines[start:end] {
		if t := strings.TrimSpace(l); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func containedIn(window string, hits []string) bool {
	for _, h := range hits {
		if strings.Contains(h, window) {
			return true
		}
	}
	return false
}

// Truncate cuts s to at most limit runes, marking the cut
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "\n[...truncated...]"
}
