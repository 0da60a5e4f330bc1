// Package budget enforces the run-scoped ceiling on external completion calls.
package budget

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jonathan/job-hunter/internal/types"
)

// ErrExceeded is returned once a run has spent its whole budget
var ErrExceeded = errors.New("budget exceeded")

// DefaultMaxCalls is the ceiling used when a run is started without one
const DefaultMaxCalls = 200

// ExceededError reports the usage at the moment the budget refused a call
type ExceededError struct {
	Used  int64
	Limit int64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: %d of %d calls used", e.Used, e.Limit)
}

// Unwrap lets callers match with errors.Is(err, ErrExceeded)
func (e *ExceededError) Unwrap() error {
	return ErrExceeded
}

// ErrorCode classifies budget failures for the worker error taxonomy
func (e *ExceededError) ErrorCode() types.ErrorCode {
	return types.CodeBudgetExceeded
}

// Budget counts successful external calls for one run. It is safe for
// concurrent use. Usage only grows on success, so failed calls are free.
type Budget struct {
	limit int64
	used  atomic.Int64
}

// New creates a budget allowing maxCalls successful calls.
// A non-positive maxCalls means DefaultMaxCalls.
func New(maxCalls int) *Budget {
	if maxCalls <= 0 {
		maxCalls = DefaultMaxCalls
	}
	return &Budget{limit: int64(maxCalls)}
}

// Check returns an *ExceededError when no calls are left
func (b *Budget) Check() error {
	if b == nil {
		return nil
	}
	if used := b.used.Load(); used >= b.limit {
		return &ExceededError{Used: used, Limit: b.limit}
	}
	return nil
}

// Record adds units to the usage counter after a successful call
func (b *Budget) Record(units int) {
	if b == nil || units <= 0 {
		return
	}
	b.used.Add(int64(units))
}

// Used returns the current usage
func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used.Load()
}

// Limit returns the ceiling
func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

// Remaining returns how many calls are left, never negative
func (b *Budget) Remaining() int64 {
	if b == nil {
		return 0
	}
	return max(0, b.limit-b.used.Load())
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying b
func NewContext(ctx context.Context, b *Budget) context.Context {
	return context.WithValue(ctx, contextKey{}, b)
}

// FromContext returns the budget attached to ctx, or nil when there is none.
// A nil *Budget allows every call.
func FromContext(ctx context.Context) *Budget {
	b, _ := ctx.Value(contextKey{}).(*Budget)
	return b
}
