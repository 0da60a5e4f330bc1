// Package pipeline provides the high-level orchestration of a job search run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-hunter/internal/budget"
	"github.com/jonathan/job-hunter/internal/collectors"
	"github.com/jonathan/job-hunter/internal/config"
	"github.com/jonathan/job-hunter/internal/db"
	"github.com/jonathan/job-hunter/internal/enricher"
	"github.com/jonathan/job-hunter/internal/evaluator"
	"github.com/jonathan/job-hunter/internal/llm"
	"github.com/jonathan/job-hunter/internal/logger"
	"github.com/jonathan/job-hunter/internal/observability"
	"github.com/jonathan/job-hunter/internal/orchestrator"
	"github.com/jonathan/job-hunter/internal/progress"
	"github.com/jonathan/job-hunter/internal/types"
)

// SourceLocal marks records read from a local file
const SourceLocal types.JobSource = "local"

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Config  config.Config
	Profile string // candidate profile text, may be empty

	// Completer replaces the provider client built from Config
	Completer llm.Completer
	// Collectors replaces the default collector set
	Collectors []orchestrator.Worker

	Sink   progress.Sink
	Out    io.Writer
	Logger *zap.Logger
}

// Result is the outcome of a run
type Result struct {
	RunID     string
	Records   []types.AnalyzedRecord
	CallsUsed int64
	MaxCalls  int64
	Errors    []string
}

// errorLog keeps the error-level progress messages of a run
type errorLog struct {
	mu   sync.Mutex
	msgs []string
}

func (l *errorLog) sink() progress.Sink {
	return progress.Func(func(e progress.Event) {
		if e.Kind != progress.KindLog || e.Level != progress.LevelError {
			return
		}
		l.mu.Lock()
		l.msgs = append(l.msgs, e.Message)
		l.mu.Unlock()
	})
}

func (l *errorLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs...)
}

// RunPipeline collects, evaluates and enriches postings for the configured
// criteria, then prints, exports and optionally persists the results.
func RunPipeline(ctx context.Context, opts RunOptions) (*Result, error) {
	log := logger.OrNop(opts.Logger)
	cfg := opts.Config
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	policy, err := orchestrator.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	completer, closeClient, err := buildCompleter(ctx, opts, log)
	if err != nil {
		return nil, err
	}
	defer closeClient()

	criteria, err := cfg.Criteria(opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("invalid criteria: %w", err)
	}
	if len(criteria.Keywords) == 0 && criteria.HasProfile() {
		keywords, err := evaluator.ExtractKeywords(ctx, completer, criteria.CandidateProfile)
		if err != nil {
			log.Warn("keyword extraction failed, searching without keywords", zap.Error(err))
		} else {
			criteria.Keywords = keywords
			log.Info("keywords extracted from profile", zap.Strings("keywords", keywords))
		}
	}

	errs := &errorLog{}
	sink := progress.Multi(progress.OrNop(opts.Sink), errs.sink())

	sched := orchestrator.New(log,
		orchestrator.WithPolicy(policy),
		orchestrator.WithSink(sink),
		orchestrator.WithMaxCalls(cfg.MaxCalls),
	)
	if err := registerWorkers(sched, opts, completer, sink, log); err != nil {
		return nil, err
	}

	records, runErr := sched.Execute(ctx, criteria)
	used, limit := sched.Usage()
	result := &Result{
		RunID:     sched.RunID(),
		Records:   observability.SortByScore(records),
		CallsUsed: used,
		MaxCalls:  limit,
		Errors:    errs.list(),
	}

	persist(ctx, cfg.DatabaseURL, policy.String(), criteria.Keywords, result, runErr, log)
	if runErr != nil {
		return result, fmt.Errorf("run failed: %w", runErr)
	}

	printer.PrintResults(result.Records)
	printer.PrintRunSummary(observability.RunSummary{
		RunID:     result.RunID,
		Policy:    policy.String(),
		Records:   len(result.Records),
		CallsUsed: result.CallsUsed,
		MaxCalls:  result.MaxCalls,
		Errors:    result.Errors,
	})

	if cfg.Output != "" {
		if err := observability.ExportJSON(cfg.Output, result.RunID, result.Records); err != nil {
			return result, err
		}
		log.Info("results exported", zap.String("path", cfg.Output))
	}
	return result, nil
}

// AnalyzePosting runs a single posting text through the evaluator outside a
// scheduled run. The configured call budget still applies.
func AnalyzePosting(ctx context.Context, opts RunOptions, url, posting string) (*types.AnalyzedRecord, error) {
	log := logger.OrNop(opts.Logger)
	cfg := opts.Config

	if strings.TrimSpace(posting) == "" {
		return nil, fmt.Errorf("posting is empty")
	}
	criteria, err := cfg.Criteria(opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("invalid criteria: %w", err)
	}

	completer, closeClient, err := buildCompleter(ctx, opts, log)
	if err != nil {
		return nil, err
	}
	defer closeClient()

	b := budget.New(cfg.MaxCalls)
	eval := evaluator.New(completer, evaluatorConfig(cfg), progress.OrNop(opts.Sink), log)
	raw := types.RawRecord{
		ID:      uuid.NewString(),
		Source:  SourceLocal,
		URL:     url,
		Content: posting,
	}

	rec, err := eval.Evaluate(budget.NewContext(ctx, b), raw, criteria)
	if err != nil {
		return nil, fmt.Errorf("analysis failed after %d call(s): %w", b.Used(), err)
	}
	enricher.Enrich(&rec)

	log.Info("posting analyzed",
		zap.String("record_id", rec.ID),
		zap.Float64("match_score", rec.MatchScore),
		zap.Int64("calls", b.Used()))
	return &rec, nil
}

func buildCompleter(ctx context.Context, opts RunOptions, log *zap.Logger) (llm.Completer, func(), error) {
	if opts.Completer != nil {
		return llm.WithBudget(llm.WithLogging(opts.Completer, log)), func() {}, nil
	}

	client, err := llm.NewClient(ctx, opts.Config.LLMConfig(), opts.Config.APIKey, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	log.Info("using model", zap.String("provider", opts.Config.Provider), zap.String("model", client.GetModel()))

	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close LLM client", zap.Error(err))
		}
	}
	return llm.WithBudget(llm.WithLogging(client, log)), closeClient, nil
}

func evaluatorConfig(cfg config.Config) evaluator.Config {
	ec := evaluator.Config{
		Mode:        evaluator.Mode(cfg.AnalysisMode),
		Concurrency: cfg.Concurrency,
		MaxSteps:    cfg.MaxSteps,
	}
	if cfg.Provider == string(llm.ProviderOllama) {
		ec.MaxPostingChars = evaluator.LocalMaxPostingChars
	}
	return ec
}

func registerWorkers(sched *orchestrator.Scheduler, opts RunOptions, completer llm.Completer, sink progress.Sink, log *zap.Logger) error {
	workers := opts.Collectors
	if workers == nil {
		for _, c := range collectors.Defaults(log) {
			workers = append(workers, c)
		}
	}
	for _, w := range workers {
		if err := sched.Register(w, orchestrator.RoleCollector); err != nil {
			return err
		}
	}

	if err := sched.Register(evaluator.New(completer, evaluatorConfig(opts.Config), sink, log), orchestrator.RoleEvaluator); err != nil {
		return err
	}
	return sched.Register(enricher.New(log), orchestrator.RoleEnricher)
}

// persist stores the run and its records when a database is configured.
// Persistence failures are logged and never fail the run.
func persist(ctx context.Context, databaseURL, policy string, keywords []string, result *Result, runErr error, log *zap.Logger) {
	if databaseURL == "" || result.RunID == "" {
		return
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		log.Warn("failed to connect to database, continuing without persistence", zap.Error(err))
		return
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		log.Warn("failed to prepare database", zap.Error(err))
		return
	}
	runID, err := database.CreateRun(ctx, result.RunID, policy, keywords)
	if err != nil {
		log.Warn("failed to create database run", zap.Error(err))
		return
	}

	status := db.RunStatusCompleted
	if runErr != nil {
		status = db.RunStatusFailed
	} else if err := database.SaveResults(ctx, runID, result.Records); err != nil {
		log.Warn("failed to save results", zap.Error(err))
		status = db.RunStatusFailed
	}
	if err := database.CompleteRun(ctx, runID, status, result.CallsUsed); err != nil {
		log.Warn("failed to complete database run", zap.Error(err))
		return
	}
	log.Info("results stored in database", zap.String("run_id", result.RunID), zap.Int("records", len(result.Records)))
}
