// Package orchestrator routes run-lifecycle messages between workers and
// supervises every worker invocation.
package orchestrator

import (
	"context"

	"github.com/jonathan/job-hunter/internal/types"
)

// SchedulerName is the target name that addresses the scheduler itself
const SchedulerName = "scheduler"

// Worker is the contract every pipeline participant implements: accept one
// message, return a response message or a typed error.
type Worker interface {
	Name() string
	Process(ctx context.Context, msg types.Message) (types.Message, error)
}

// Role tells the scheduler where a worker sits in the pipeline
type Role int

// Worker roles
const (
	RoleCollector Role = iota
	RoleEvaluator
	RoleEnricher
)

func (r Role) String() string {
	switch r {
	case RoleCollector:
		return "collector"
	case RoleEvaluator:
		return "evaluator"
	case RoleEnricher:
		return "enricher"
	default:
		return "unknown"
	}
}

// Envelope is one entry of the scheduler queue. Branch names the collector
// whose output the message descends from.
type Envelope struct {
	Target  string
	Branch  string
	Message types.Message
}
