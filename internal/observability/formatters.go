// Package observability provides formatted console output for pipeline runs.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/job-hunter/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// cardWidth is the inner width of a result card
	cardWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Score thresholds for card colouring
const (
	StrongMatch = 0.8
	FairMatch   = 0.5
)

var (
	strongColor = lipgloss.Color("#43BF6D")
	fairColor   = lipgloss.Color("#F2C94C")
	weakColor   = lipgloss.Color("#FF6B6B")
	mutedColor  = lipgloss.Color("#AAAAAA")
	borderColor = lipgloss.Color("#444444")
)

// Printer handles formatted output of run summaries and result cards
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// RunSummary describes a finished run
type RunSummary struct {
	RunID     string
	Policy    string
	Records   int
	CallsUsed int64
	MaxCalls  int64
	Errors    []string
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs the totals of a run.
func (p *Printer) PrintRunSummary(summary RunSummary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Policy:   %s\n", summary.Policy))
	sb.WriteString(fmt.Sprintf("Results:  %d\n", summary.Records))
	if summary.MaxCalls > 0 {
		sb.WriteString(fmt.Sprintf("LLM calls: %d / %d\n", summary.CallsUsed, summary.MaxCalls))
	} else {
		sb.WriteString(fmt.Sprintf("LLM calls: %d\n", summary.CallsUsed))
	}

	if len(summary.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		count := min(len(summary.Errors), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", summary.Errors[i]))
		}
		if len(summary.Errors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(summary.Errors)-maxItemsToShow))
		}
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResults outputs one card per record, best match first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResults(records []types.AnalyzedRecord) {
	if len(records) == 0 {
		fmt.Fprintln(p.out, "No matching jobs found.")
		return
	}

	for _, rec := range SortByScore(records) {
		fmt.Fprintln(p.out, RenderCard(rec))
	}
}

// SortByScore returns a copy of records ordered by descending match score
func SortByScore(records []types.AnalyzedRecord) []types.AnalyzedRecord {
	sorted := make([]types.AnalyzedRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MatchScore > sorted[j].MatchScore
	})
	return sorted
}

// ScoreColor picks the card accent for a match score
func ScoreColor(score float64) lipgloss.Color {
	switch {
	case score >= StrongMatch:
		return strongColor
	case score >= FairMatch:
		return fairColor
	default:
		return weakColor
	}
}

// RenderCard renders one analyzed record as a bordered card
func RenderCard(rec types.AnalyzedRecord) string {
	accent := ScoreColor(rec.MatchScore)

	score := lipgloss.NewStyle().
		Bold(true).
		Foreground(accent).
		Render(fmt.Sprintf("%3.0f%%", rec.MatchScore*100))
	title := lipgloss.NewStyle().
		Bold(true).
		Render(truncate(rec.Title, cardWidth-8))

	var lines []string
	lines = append(lines, score+"  "+title)

	meta := []string{}
	if rec.Company != nil && rec.Company.Name != "" {
		meta = append(meta, rec.Company.Name)
	}
	if rec.Location != "" {
		meta = append(meta, rec.Location)
	}
	if rec.IsRemote {
		meta = append(meta, "remote")
	}
	if rec.JobType != "" {
		meta = append(meta, string(rec.JobType))
	}
	if rec.ExperienceLevel != "" {
		meta = append(meta, string(rec.ExperienceLevel))
	}
	if rec.SalaryNormalized != nil {
		meta = append(meta, fmt.Sprintf("$%.0f/yr", *rec.SalaryNormalized))
	}
	if len(meta) > 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Render(truncate(strings.Join(meta, " · "), cardWidth)))
	}

	if len(rec.MatchReasons) > 0 {
		lines = append(lines, "")
		lines = append(lines, bulletList(rec.MatchReasons, "+")...)
	}
	if len(rec.SkillsAnalysis.Missing) > 0 {
		lines = append(lines, truncate("Missing: "+strings.Join(rec.SkillsAnalysis.Missing, ", "), cardWidth))
	}
	if len(rec.RedFlags) > 0 {
		flag := lipgloss.NewStyle().Foreground(weakColor)
		for _, l := range bulletList(rec.RedFlags, "!") {
			lines = append(lines, flag.Render(l))
		}
	}
	if rec.URL != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(mutedColor).Render(rec.URL))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func bulletList(items []string, marker string) []string {
	count := min(len(items), maxItemsToShow)
	out := make([]string, 0, count+1)
	for i := 0; i < count; i++ {
		out = append(out, truncate(fmt.Sprintf("%s %s", marker, items[i]), cardWidth))
	}
	if len(items) > maxItemsToShow {
		out = append(out, fmt.Sprintf("  ... and %d more", len(items)-maxItemsToShow))
	}
	return out
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
