// Package evaluator implements the worker that judges raw postings against
// the run criteria with a language model.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-hunter/internal/analysis"
	"github.com/jonathan/job-hunter/internal/budget"
	"github.com/jonathan/job-hunter/internal/decode"
	"github.com/jonathan/job-hunter/internal/evidence"
	"github.com/jonathan/job-hunter/internal/llm"
	"github.com/jonathan/job-hunter/internal/metrics"
	"github.com/jonathan/job-hunter/internal/progress"
	"github.com/jonathan/job-hunter/internal/search"
	"github.com/jonathan/job-hunter/internal/types"
)

// Name is the worker name the evaluator registers under
const Name = "evaluator"

// Mode selects how a single record is analyzed
type Mode string

// Analysis modes
const (
	// ModeLinear sends the truncated posting and profile in one prompt
	ModeLinear Mode = "linear"
	// ModeRecursive runs the evidence loop per record
	ModeRecursive Mode = "recursive"
)

// Input limits for linear mode
const (
	DefaultMaxPostingChars = 12000
	LocalMaxPostingChars   = 4000
	DefaultMaxProfileChars = 3000
)

// Config holds evaluator settings
type Config struct {
	Mode            Mode
	Concurrency     int
	MaxSteps        int
	MaxPostingChars int
	MaxProfileChars int
}

// DefaultConfig returns the recursive, sequential configuration
func DefaultConfig() Config {
	return Config{
		Mode:            ModeRecursive,
		Concurrency:     1,
		MaxSteps:        evidence.DefaultMaxSteps,
		MaxPostingChars: DefaultMaxPostingChars,
		MaxProfileChars: DefaultMaxProfileChars,
	}
}

// Evaluator turns EvaluateBatch messages into EvaluatedBatch messages
type Evaluator struct {
	completer llm.Completer
	config    Config
	sink      progress.Sink
	logger    *zap.Logger
}

// New creates an evaluator. Zero config values fall back to DefaultConfig.
func New(completer llm.Completer, config Config, sink progress.Sink, logger *zap.Logger) *Evaluator {
	defaults := DefaultConfig()
	if config.Mode == "" {
		config.Mode = defaults.Mode
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.MaxSteps <= 0 {
		config.MaxSteps = defaults.MaxSteps
	}
	if config.MaxPostingChars <= 0 {
		config.MaxPostingChars = defaults.MaxPostingChars
	}
	if config.MaxProfileChars <= 0 {
		config.MaxProfileChars = defaults.MaxProfileChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		completer: completer,
		config:    config,
		sink:      progress.OrNop(sink),
		logger:    logger.With(zap.String("worker", Name)),
	}
}

// Name returns the worker name
func (e *Evaluator) Name() string {
	return Name
}

// Process handles EvaluateBatch; every other message is a contract violation
func (e *Evaluator) Process(ctx context.Context, msg types.Message) (types.Message, error) {
	batch, ok := msg.(types.EvaluateBatch)
	if !ok {
		return nil, types.UnexpectedMessage(Name, msg)
	}
	return types.EvaluatedBatch{Records: e.EvaluateAll(ctx, batch.Records, batch.Criteria)}, nil
}

// EvaluateAll evaluates records with bounded concurrency. Records that fail
// are logged and omitted; the output keeps the input order. Once the run's
// budget is exhausted the remaining records are skipped.
func (e *Evaluator) EvaluateAll(ctx context.Context, records []types.RawRecord, criteria *types.Criteria) []types.AnalyzedRecord {
	results := make([]*types.AnalyzedRecord, len(records))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)

	for i, raw := range records {
		g.Go(func() (err error) {
			defer e.recoverRecord(raw, &err)

			rec, err := e.Evaluate(gCtx, raw, criteria)
			if err != nil {
				if errors.Is(err, budget.ErrExceeded) {
					e.sink.Log(progress.LevelError, "completion budget exhausted, skipping remaining records")
					return err
				}
				if gCtx.Err() != nil {
					return nil
				}
				e.reportFailure(raw, err)
				return nil
			}
			results[i] = &rec
			metrics.RecordsAnalyzed.Inc()
			e.sink.RecordAnalyzed(rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.Warn("batch evaluation stopped early",
			zap.Int("records", len(records)),
			zap.String("error_code", string(types.CodeOf(err))),
			zap.Error(err))
	}

	out := make([]types.AnalyzedRecord, 0, len(records))
	for _, rec := range results {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	e.logger.Info("batch evaluated", zap.Int("records", len(records)), zap.Int("analyzed", len(out)))
	return out
}

// recoverRecord turns a panic while evaluating raw into a per-record
// WORKER_CRASH failure so the rest of the batch goes on
func (e *Evaluator) recoverRecord(raw types.RawRecord, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	e.logger.Error("record evaluation panicked",
		zap.String("record_id", raw.ID),
		zap.Any("panic", r),
		zap.ByteString("stack", debug.Stack()))
	metrics.WorkerFailures.WithLabelValues(Name, string(types.CodeWorkerCrash)).Inc()
	e.reportFailure(raw, &types.WorkerError{
		Code:    types.CodeWorkerCrash,
		Worker:  Name,
		Message: fmt.Sprintf("panic: %v", r),
	})
	*errp = nil
}

// Evaluate analyzes one record and normalizes the result
func (e *Evaluator) Evaluate(ctx context.Context, raw types.RawRecord, criteria *types.Criteria) (types.AnalyzedRecord, error) {
	var (
		a   *analysis.Analysis
		err error
	)
	switch e.config.Mode {
	case ModeLinear:
		a, err = e.analyzeLinear(ctx, raw, criteria)
	default:
		loop := &evidence.Loop{
			Completer: e.completer,
			MaxSteps:  e.config.MaxSteps,
			Sink:      e.sink,
			Logger:    e.logger,
		}
		var res *evidence.Result
		res, err = loop.Run(ctx, raw, criteria)
		if res != nil {
			a = res.Analysis
		}
	}
	if err != nil {
		return types.AnalyzedRecord{}, err
	}
	return analysis.Normalize(a, raw, criteria), nil
}

func (e *Evaluator) analyzeLinear(ctx context.Context, raw types.RawRecord, criteria *types.Criteria) (*analysis.Analysis, error) {
	profile := "Not provided."
	if criteria.HasProfile() {
		profile = search.Truncate(criteria.CandidateProfile, e.config.MaxProfileChars)
	}
	keywords := "None."
	if criteria != nil && len(criteria.Keywords) > 0 {
		keywords = strings.Join(criteria.Keywords, ", ")
	}

	prompt := llm.BuildExtractionPrompt(llm.PostingAnalysisSchema(),
		llm.InputSection{Label: "Candidate profile", Text: profile},
		llm.InputSection{Label: "Target keywords", Text: keywords},
		llm.InputSection{Label: "Job posting (" + raw.URL + ")", Text: search.Truncate(raw.Content, e.config.MaxPostingChars)},
	)

	reply, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	obj, err := decode.Decode(reply)
	if err != nil {
		return nil, err
	}
	return analysis.ParseValid(obj)
}

func (e *Evaluator) reportFailure(raw types.RawRecord, err error) {
	code := types.CodeOf(err)
	e.logger.Warn("record omitted",
		zap.String("record_id", raw.ID),
		zap.String("url", raw.URL),
		zap.String("error_code", string(code)),
		zap.Error(err))
	e.sink.Log(progress.LevelWarn, fmt.Sprintf("record %s omitted (%s)", raw.ID, code))
}
