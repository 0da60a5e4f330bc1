// Package evidence implements the bounded evidence-gathering loop used to
// evaluate a single posting. The model never sees the posting directly: it
// asks for keyword searches over the posting or the candidate profile, and
// only the snippets it asked for are accumulated in a ledger.
package evidence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/job-hunter/internal/analysis"
	"github.com/jonathan/job-hunter/internal/decode"
	"github.com/jonathan/job-hunter/internal/llm"
	"github.com/jonathan/job-hunter/internal/progress"
	"github.com/jonathan/job-hunter/internal/prompts"
	"github.com/jonathan/job-hunter/internal/search"
	"github.com/jonathan/job-hunter/internal/types"
)

// DefaultMaxSteps is the number of reasoning steps before synthesis is forced
const DefaultMaxSteps = 4

// NoProfile is returned for profile searches when the run has no profile
const NoProfile = "No candidate profile provided."

// State is the position of a run in the loop
type State string

// Loop states
const (
	StateReasoning State = "reasoning"
	StateExecuting State = "executing"
	StateFinalized State = "finalized"
	StateExhausted State = "exhausted"
)

// Result is the outcome of one Loop.Run
type Result struct {
	Analysis *analysis.Analysis
	// State is StateFinalized when the model finalized with a usable
	// analysis and StateExhausted when synthesis produced it
	State State
	// Steps is the number of reasoning steps taken
	Steps int
	// Calls is the number of completions issued, at most MaxSteps+1
	Calls  int
	Ledger string
}

// Loop runs the evidence loop against a Completer
type Loop struct {
	Completer llm.Completer
	MaxSteps  int
	Sink      progress.Sink
	Logger    *zap.Logger
}

// NewLoop creates a loop with the default step limit
func NewLoop(completer llm.Completer, sink progress.Sink, logger *zap.Logger) *Loop {
	return &Loop{
		Completer: completer,
		MaxSteps:  DefaultMaxSteps,
		Sink:      sink,
		Logger:    logger,
	}
}

func (l *Loop) maxSteps() int {
	if l.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return l.MaxSteps
}

// Run evaluates one record. A completion error ends the run immediately and
// is returned unchanged, so budget exhaustion stays recognizable.
func (l *Loop) Run(ctx context.Context, rec types.RawRecord, criteria *types.Criteria) (*Result, error) {
	if l.Completer == nil {
		return nil, fmt.Errorf("evidence loop has no completer")
	}
	sink := progress.OrNop(l.Sink)
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("record_id", rec.ID), zap.String("source", string(rec.Source)))

	objective := Objective(rec, criteria)
	ledger := NewLedger(objective)
	res := &Result{State: StateReasoning}
	maxSteps := l.maxSteps()

	for step := 1; step <= maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Steps = step

		prompt, err := prompts.Render(prompts.EvidenceFile, prompts.KeyEvidenceStep, map[string]string{
			"Objective": objective,
			"Step":      strconv.Itoa(step),
			"MaxSteps":  strconv.Itoa(maxSteps),
			"Ledger":    ledger.String(),
		})
		if err != nil {
			return nil, err
		}

		reply, err := l.Completer.Complete(ctx, prompt)
		res.Calls++
		if err != nil {
			return nil, err
		}

		action := ParseAction(reply)
		res.State = StateExecuting
		log.Debug("evidence step",
			zap.Int("step", step),
			zap.String("action", string(action.Kind)),
			zap.String("query", action.Query))

		switch action.Kind {
		case ActionFinalize:
			if action.Analysis == nil {
				ledger.AppendNote("Finalize requested without an analysis.")
				return l.synthesize(ctx, objective, ledger, res, sink, log)
			}
			a, err := analysis.ParseValid(action.Analysis)
			if err != nil {
				log.Debug("finalize analysis rejected", zap.Error(err))
				ledger.AppendNote("Finalize analysis was not usable.")
				return l.synthesize(ctx, objective, ledger, res, sink, log)
			}
			res.Analysis = a
			res.State = StateFinalized
			res.Ledger = ledger.String()
			sink.Log(progress.LevelInfo, fmt.Sprintf("%s: finalized after %d step(s)", rec.ID, step))
			return res, nil

		case ActionSearchProfile:
			result := NoProfile
			if criteria.HasProfile() {
				result = search.FindSnippets(criteria.CandidateProfile, action.Query)
			}
			ledger.AppendSearch("profile", action.Query, result)
			sink.Log(progress.LevelInfo, fmt.Sprintf("%s: searching profile for %q", rec.ID, action.Query))

		case ActionUnrecognized:
			ledger.AppendNote(fmt.Sprintf("Unknown action %q, searching the posting instead.", action.Label))
			ledger.AppendSearch("posting", QueryUnrecognized, search.FindSnippets(rec.Content, QueryUnrecognized))
			sink.Log(progress.LevelWarn, fmt.Sprintf("%s: unknown action %q", rec.ID, action.Label))

		default:
			if !action.Decoded {
				ledger.AppendNote("Previous reply was not valid JSON.")
			}
			ledger.AppendSearch("posting", action.Query, search.FindSnippets(rec.Content, action.Query))
			sink.Log(progress.LevelInfo, fmt.Sprintf("%s: searching posting for %q", rec.ID, action.Query))
		}
		res.State = StateReasoning
	}

	return l.synthesize(ctx, objective, ledger, res, sink, log)
}

// synthesize issues the single forced-synthesis completion
func (l *Loop) synthesize(ctx context.Context, objective string, ledger *Ledger, res *Result, sink progress.Sink, log *zap.Logger) (*Result, error) {
	res.State = StateExhausted
	res.Ledger = ledger.String()

	prompt, err := prompts.Render(prompts.EvidenceFile, prompts.KeyEvidenceSynth, map[string]string{
		"Objective": objective,
		"Ledger":    res.Ledger,
	})
	if err != nil {
		return nil, err
	}

	reply, err := l.Completer.Complete(ctx, prompt)
	res.Calls++
	if err != nil {
		return nil, err
	}

	raw, err := decode.Decode(reply)
	if err != nil {
		return nil, fmt.Errorf("synthesis reply: %w", err)
	}
	a, err := analysis.ParseValid(raw)
	if err != nil {
		return nil, fmt.Errorf("synthesis reply: %w", err)
	}

	log.Debug("evidence synthesized", zap.Int("steps", res.Steps), zap.Int("ledger_entries", ledger.Entries()))
	sink.Log(progress.LevelInfo, fmt.Sprintf("synthesized analysis after %d step(s)", res.Steps))
	res.Analysis = a
	return res, nil
}

// Objective describes what the loop is trying to establish for rec
func Objective(rec types.RawRecord, criteria *types.Criteria) string {
	var sb strings.Builder
	sb.WriteString("OBJECTIVE: Decide how well the candidate matches this job posting.")
	if rec.URL != "" {
		fmt.Fprintf(&sb, "\nPosting URL: %s", rec.URL)
	}
	if criteria != nil {
		if len(criteria.Keywords) > 0 {
			fmt.Fprintf(&sb, "\nTarget keywords: %s", strings.Join(criteria.Keywords, ", "))
		}
		if criteria.ExperienceLevel != "" && criteria.ExperienceLevel != types.LevelAny {
			fmt.Fprintf(&sb, "\nTarget experience level: %s", criteria.ExperienceLevel)
		}
	}
	if criteria.HasProfile() {
		sb.WriteString("\nA candidate profile is available through search-candidate-profile.")
	} else {
		sb.WriteString("\nNo candidate profile is available; judge the posting against the keywords.")
	}
	return sb.String()
}
