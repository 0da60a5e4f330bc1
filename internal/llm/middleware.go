package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-hunter/internal/budget"
	"github.com/jonathan/job-hunter/internal/metrics"
)

// WithBudget wraps next so that every call is checked against the budget
// carried by the call's context. A refused call never reaches next; a
// successful call adds one unit to the budget. Contexts without a budget
// are not limited.
func WithBudget(next Completer) Completer {
	return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		b := budget.FromContext(ctx)
		if err := b.Check(); err != nil {
			metrics.CompletionCalls.WithLabelValues(metrics.CallRejected).Inc()
			return "", err
		}

		text, err := next.Complete(ctx, prompt)
		if err != nil {
			metrics.CompletionCalls.WithLabelValues(metrics.CallFailure).Inc()
			return "", err
		}

		b.Record(1)
		metrics.CompletionCalls.WithLabelValues(metrics.CallSuccess).Inc()
		return text, nil
	})
}

// WithLogging wraps next with debug logging of prompt sizes and latency
func WithLogging(next Completer, logger *zap.Logger) Completer {
	if logger == nil {
		return next
	}
	return CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		start := time.Now()
		text, err := next.Complete(ctx, prompt)
		fields := []zap.Field{
			zap.Int("prompt_chars", len(prompt)),
			zap.Int("response_chars", len(text)),
			zap.Duration("elapsed", time.Since(start)),
		}
		if err != nil {
			logger.Warn("completion failed", append(fields, zap.Error(err))...)
			return "", err
		}
		logger.Debug("completion finished", fields...)
		return text, nil
	})
}
