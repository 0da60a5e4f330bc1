package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/job-hunter/internal/budget"
	"github.com/jonathan/job-hunter/internal/progress"
	"github.com/jonathan/job-hunter/internal/types"
)

// QueueCapacity is the default size of the inbound queue
const QueueCapacity = 100

// CompletionPolicy decides when a run is over
type CompletionPolicy int

const (
	// PolicyFirstBatch delivers the first non-empty enriched batch and ends
	// the run. Results still in flight on slower branches are discarded.
	PolicyFirstBatch CompletionPolicy = iota
	// PolicyAllCollectors waits until every collector branch has ended and
	// delivers the merged records.
	PolicyAllCollectors
)

func (p CompletionPolicy) String() string {
	if p == PolicyAllCollectors {
		return "all_collectors"
	}
	return "first_batch"
}

// ParsePolicy maps a config value onto a policy
func ParsePolicy(s string) (CompletionPolicy, error) {
	switch s {
	case "", "first_batch":
		return PolicyFirstBatch, nil
	case "all_collectors":
		return PolicyAllCollectors, nil
	default:
		return PolicyFirstBatch, fmt.Errorf("unknown completion policy %q", s)
	}
}

// Errors returned by the scheduler
var (
	ErrRunActive      = errors.New("a run was already started on this scheduler")
	ErrNoEvaluator    = errors.New("no evaluator registered")
	ErrNoEnricher     = errors.New("no enricher registered")
	ErrDuplicate      = errors.New("worker already registered")
	ErrReservedName   = errors.New("worker name is reserved")
	ErrNoResults      = errors.New("run ended without results")
	errSchedulerEnded = errors.New("scheduler stopped")
)

// Option configures a Scheduler
type Option func(*Scheduler)

// WithPolicy sets the completion policy
func WithPolicy(p CompletionPolicy) Option {
	return func(s *Scheduler) { s.policy = p }
}

// WithSink sets the progress sink
func WithSink(sink progress.Sink) Option {
	return func(s *Scheduler) { s.sink = progress.OrNop(sink) }
}

// WithMaxCalls sets the completion budget of a run
func WithMaxCalls(n int) Option {
	return func(s *Scheduler) { s.maxCalls = n }
}

// WithQueueCapacity sets the size of the inbound queue
func WithQueueCapacity(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.queueCap = n
		}
	}
}

// run is the state of the single run a scheduler serves
type run struct {
	id       string
	ctx      context.Context
	cancel   context.CancelFunc
	criteria *types.Criteria
	budget   *budget.Budget
	open     map[string]bool
	records  []types.AnalyzedRecord
	done     bool
}

// Scheduler owns the worker registry and the inbound queue. One Scheduler
// serves one run.
type Scheduler struct {
	logger   *zap.Logger
	sink     progress.Sink
	policy   CompletionPolicy
	maxCalls int
	queueCap int

	workers    map[string]Worker
	collectors []string
	evaluator  string
	enricher   string

	queue   chan Envelope
	stopped chan struct{}
	once    sync.Once
	results chan []types.AnalyzedRecord
	units   sync.WaitGroup

	mu  sync.Mutex
	run *run
}

// New creates a scheduler
func New(logger *zap.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		logger:   logger.With(zap.String("component", SchedulerName)),
		sink:     progress.Nop,
		maxCalls: budget.DefaultMaxCalls,
		queueCap: QueueCapacity,
		workers:  make(map[string]Worker),
		stopped:  make(chan struct{}),
		results:  make(chan []types.AnalyzedRecord, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan Envelope, s.queueCap)
	return s
}

// Register adds a worker under its name with the given role. Registering a
// second evaluator or enricher replaces the first as routing target.
func (s *Scheduler) Register(w Worker, role Role) error {
	name := w.Name()
	if name == SchedulerName {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.workers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	s.workers[name] = w

	switch role {
	case RoleCollector:
		s.collectors = append(s.collectors, name)
	case RoleEvaluator:
		s.evaluator = name
	case RoleEnricher:
		s.enricher = name
	}
	s.logger.Debug("registered worker", zap.String("worker", name), zap.Stringer("role", role))
	return nil
}

// Results delivers the records of the run exactly once, then is closed
func (s *Scheduler) Results() <-chan []types.AnalyzedRecord {
	return s.results
}

// Usage returns the completion calls spent by the run and its limit
func (s *Scheduler) Usage() (used, limit int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return 0, int64(s.maxCalls)
	}
	return s.run.budget.Used(), s.run.budget.Limit()
}

// RunID returns the ID of the run, or "" before StartRun
func (s *Scheduler) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return ""
	}
	return s.run.id
}

// StartRun validates criteria and enqueues a BeginRun for every collector.
// Workers of the run receive a context derived from ctx that carries the
// run's budget.
func (s *Scheduler) StartRun(ctx context.Context, criteria *types.Criteria) (string, error) {
	if err := criteria.Validate(); err != nil {
		return "", fmt.Errorf("invalid criteria: %w", err)
	}

	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		return "", ErrRunActive
	}
	if len(s.collectors) > 0 && s.evaluator == "" {
		s.mu.Unlock()
		return "", ErrNoEvaluator
	}
	if len(s.collectors) > 0 && s.enricher == "" {
		s.mu.Unlock()
		return "", ErrNoEnricher
	}

	b := budget.New(s.maxCalls)
	runCtx, cancel := context.WithCancel(budget.NewContext(ctx, b))
	r := &run{
		id:       uuid.NewString(),
		ctx:      runCtx,
		cancel:   cancel,
		criteria: criteria,
		budget:   b,
		open:     make(map[string]bool, len(s.collectors)),
	}
	for _, name := range s.collectors {
		r.open[name] = true
	}
	s.run = r
	collectors := append([]string(nil), s.collectors...)
	s.mu.Unlock()

	if len(collectors) == 0 {
		s.logger.Warn("no collectors registered, ending run")
		s.sink.Log(progress.LevelWarn, "no collectors registered")
		s.finish(r)
		return r.id, nil
	}

	s.logger.Info("run started",
		zap.String("run_id", r.id),
		zap.Int("collectors", len(collectors)),
		zap.Stringer("policy", s.policy))
	s.sink.Log(progress.LevelInfo, fmt.Sprintf("run started with %d collectors", len(collectors)))
	for _, name := range collectors {
		if err := s.post(ctx, Envelope{Target: name, Branch: name, Message: types.BeginRun{Criteria: criteria}}); err != nil {
			return r.id, err
		}
	}
	return r.id, nil
}

// Run drains the queue until a Shutdown is dequeued or ctx is canceled.
// It never waits for a worker; units that are still running keep running.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.once.Do(func() { close(s.stopped) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-s.queue:
			if _, ok := env.Message.(types.Shutdown); ok {
				s.logger.Debug("shutdown received")
				return nil
			}
			s.dispatch(ctx, env)
		}
	}
}

// Close cancels the run context and waits for every spawned unit to return
func (s *Scheduler) Close() {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()
	if r != nil {
		r.cancel()
	}
	s.units.Wait()
}

// Execute starts a run, drives it to the end and returns its records
func (s *Scheduler) Execute(ctx context.Context, criteria *types.Criteria) ([]types.AnalyzedRecord, error) {
	if _, err := s.StartRun(ctx, criteria); err != nil {
		return nil, err
	}
	runErr := s.Run(ctx)
	s.Close()

	select {
	case records, ok := <-s.results:
		if ok {
			return records, nil
		}
	default:
	}
	if runErr != nil {
		return nil, runErr
	}
	return nil, ErrNoResults
}

func (s *Scheduler) dispatch(ctx context.Context, env Envelope) {
	if env.Target == SchedulerName {
		if m, ok := env.Message.(types.ErrorMessage); ok {
			s.logger.Error("worker reported an error",
				zap.String("worker", m.Worker),
				zap.String("error_code", string(m.Code)),
				zap.String("branch", env.Branch),
				zap.String("error", m.Text))
			s.sink.Log(progress.LevelError, fmt.Sprintf("%s failed: %s", m.Worker, m.Code))
			s.closeBranch(env.Branch)
			return
		}
		s.logger.Warn("ignoring message addressed to the scheduler", zap.String("kind", string(kindOf(env.Message))))
		return
	}

	s.mu.Lock()
	w, ok := s.workers[env.Target]
	r := s.run
	s.mu.Unlock()
	if !ok {
		s.logger.Warn("dropping message for unknown worker",
			zap.String("target", env.Target),
			zap.String("kind", string(kindOf(env.Message))))
		s.closeBranch(env.Branch)
		return
	}

	unitCtx := ctx
	if r != nil {
		unitCtx = r.ctx
	}
	s.units.Add(1)
	go func() {
		defer s.units.Done()
		out := supervise(unitCtx, w, env.Message, s.logger)
		s.handle(unitCtx, env, out)
	}()
}

// handle routes a unit's outcome; it runs on the unit's goroutine
func (s *Scheduler) handle(ctx context.Context, env Envelope, out Outcome) {
	if out.Err != nil {
		_ = s.post(ctx, Envelope{
			Target: SchedulerName,
			Branch: env.Branch,
			Message: types.ErrorMessage{
				Worker: env.Target,
				Code:   types.CodeOf(out.Err),
				Text:   out.Err.Error(),
			},
		})
		return
	}

	s.mu.Lock()
	var criteria *types.Criteria
	if s.run != nil {
		criteria = s.run.criteria
	}
	evaluator, enricher := s.evaluator, s.enricher
	s.mu.Unlock()

	switch m := out.Message.(type) {
	case types.RawBatch:
		if len(m.Records) == 0 {
			s.logger.Info("collector returned no records", zap.String("branch", env.Branch))
			s.closeBranch(env.Branch)
			return
		}
		s.sink.Log(progress.LevelInfo, fmt.Sprintf("%s collected %d postings", env.Target, len(m.Records)))
		_ = s.post(ctx, Envelope{Target: evaluator, Branch: env.Branch, Message: types.EvaluateBatch{Records: m.Records, Criteria: criteria}})
	case types.EvaluatedBatch:
		_ = s.post(ctx, Envelope{Target: enricher, Branch: env.Branch, Message: types.EnrichBatch{Records: m.Records}})
	case types.EnrichedBatch:
		if len(m.Records) == 0 {
			s.logger.Info("branch produced no records", zap.String("branch", env.Branch))
			s.closeBranch(env.Branch)
			return
		}
		s.completeBranch(env.Branch, m.Records)
	default:
		s.logger.Warn("unroutable response",
			zap.String("worker", env.Target),
			zap.String("kind", string(kindOf(out.Message))))
		s.closeBranch(env.Branch)
	}
}

// completeBranch records an enriched batch and ends the run per policy
func (s *Scheduler) completeBranch(branch string, records []types.AnalyzedRecord) {
	s.mu.Lock()
	r := s.run
	if r == nil || r.done {
		s.mu.Unlock()
		return
	}
	r.records = append(r.records, records...)
	delete(r.open, branch)
	finished := s.policy == PolicyFirstBatch || len(r.open) == 0
	remaining := len(r.open)
	s.mu.Unlock()

	s.logger.Info("branch completed",
		zap.String("branch", branch),
		zap.Int("records", len(records)),
		zap.Int("open_branches", remaining))
	if finished {
		s.finish(r)
	}
}

// closeBranch ends a branch that produced no enriched batch
func (s *Scheduler) closeBranch(branch string) {
	s.mu.Lock()
	r := s.run
	if r == nil || r.done || !r.open[branch] {
		s.mu.Unlock()
		return
	}
	delete(r.open, branch)
	finished := len(r.open) == 0
	s.mu.Unlock()

	if finished {
		s.finish(r)
	}
}

// finish delivers the accumulated records once and enqueues the shutdown
func (s *Scheduler) finish(r *run) {
	s.mu.Lock()
	if r.done {
		s.mu.Unlock()
		return
	}
	r.done = true
	records := r.records
	if records == nil {
		records = []types.AnalyzedRecord{}
	}
	s.mu.Unlock()

	s.results <- records
	close(s.results)

	used, limit := r.budget.Used(), r.budget.Limit()
	s.logger.Info("run finished",
		zap.String("run_id", r.id),
		zap.Int("records", len(records)),
		zap.Int64("completion_calls", used),
		zap.Int64("completion_limit", limit))
	s.sink.Log(progress.LevelSuccess, fmt.Sprintf("run finished with %d records", len(records)))
	_ = s.post(context.Background(), Envelope{Target: SchedulerName, Message: types.Shutdown{}})
}

// post enqueues env unless the loop has stopped or ctx is done
func (s *Scheduler) post(ctx context.Context, env Envelope) error {
	select {
	case <-s.stopped:
		return errSchedulerEnded
	default:
	}
	select {
	case s.queue <- env:
		return nil
	case <-s.stopped:
		s.logger.Debug("scheduler stopped, dropping message",
			zap.String("target", env.Target),
			zap.String("kind", string(kindOf(env.Message))))
		return errSchedulerEnded
	case <-ctx.Done():
		return ctx.Err()
	}
}

func kindOf(msg types.Message) types.MessageKind {
	if msg == nil {
		return "nil"
	}
	return msg.Kind()
}
