package types

// MessageKind names a Message variant for logging and metrics
type MessageKind string

// Message kinds
const (
	KindBeginRun       MessageKind = "begin_run"
	KindRawBatch       MessageKind = "raw_batch"
	KindEvaluateBatch  MessageKind = "evaluate_batch"
	KindEvaluatedBatch MessageKind = "evaluated_batch"
	KindEnrichBatch    MessageKind = "enrich_batch"
	KindEnrichedBatch  MessageKind = "enriched_batch"
	KindError          MessageKind = "error"
	KindShutdown       MessageKind = "shutdown"
)

// Message is a run-lifecycle event passed between workers.
// The set of variants is closed: only the types in this file implement it.
type Message interface {
	Kind() MessageKind
	isMessage()
}

// BeginRun asks a collector to start collecting for the given criteria
type BeginRun struct {
	Criteria *Criteria
}

// RawBatch carries the records one collector produced
type RawBatch struct {
	Records []RawRecord
}

// EvaluateBatch asks the evaluator to judge records against criteria
type EvaluateBatch struct {
	Records  []RawRecord
	Criteria *Criteria
}

// EvaluatedBatch carries the evaluator output
type EvaluatedBatch struct {
	Records []AnalyzedRecord
}

// EnrichBatch asks the enricher to post-process analyzed records
type EnrichBatch struct {
	Records []AnalyzedRecord
}

// EnrichedBatch carries the enricher output; it is the last stage of a branch
type EnrichedBatch struct {
	Records []AnalyzedRecord
}

// ErrorMessage reports a worker failure to the scheduler
type ErrorMessage struct {
	Worker string
	Code   ErrorCode
	Text   string
}

// Shutdown stops the scheduler loop
type Shutdown struct{}

func (BeginRun) Kind() MessageKind       { return KindBeginRun }
func (RawBatch) Kind() MessageKind       { return KindRawBatch }
func (EvaluateBatch) Kind() MessageKind  { return KindEvaluateBatch }
func (EvaluatedBatch) Kind() MessageKind { return KindEvaluatedBatch }
func (EnrichBatch) Kind() MessageKind    { return KindEnrichBatch }
func (EnrichedBatch) Kind() MessageKind  { return KindEnrichedBatch }
func (ErrorMessage) Kind() MessageKind   { return KindError }
func (Shutdown) Kind() MessageKind       { return KindShutdown }

func (BeginRun) isMessage()       {}
func (RawBatch) isMessage()       {}
func (EvaluateBatch) isMessage()  {}
func (EvaluatedBatch) isMessage() {}
func (EnrichBatch) isMessage()    {}
func (EnrichedBatch) isMessage()  {}
func (ErrorMessage) isMessage()   {}
func (Shutdown) isMessage()       {}
