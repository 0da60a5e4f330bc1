package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-hunter/internal/metrics"
	"github.com/jonathan/job-hunter/internal/types"
)

// Outcome is the result of one supervised invocation. Exactly one of
// Message and Err is set.
type Outcome struct {
	Message types.Message
	Err     error
	Crashed bool
}

// supervise runs w.Process and converts every way it can end, including a
// panic, into an Outcome. It never panics itself.
func supervise(ctx context.Context, w Worker, msg types.Message, logger *zap.Logger) (out Outcome) {
	name := w.Name()
	started := time.Now()
	metrics.WorkersActive.WithLabelValues(name).Inc()
	defer metrics.WorkersActive.WithLabelValues(name).Dec()

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		logger.Error("worker crashed",
			zap.String("worker", name),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()))
		metrics.WorkerFailures.WithLabelValues(name, string(types.CodeWorkerCrash)).Inc()
		metrics.ObserveWorker(name, metrics.OutcomeCrash, started)
		out = Outcome{
			Err: &types.WorkerError{
				Code:    types.CodeWorkerCrash,
				Worker:  name,
				Message: fmt.Sprintf("panic: %v", r),
			},
			Crashed: true,
		}
	}()

	resp, err := w.Process(ctx, msg)
	if err == nil && resp == nil {
		err = &types.WorkerError{
			Code:    types.CodeUnexpectedMessage,
			Worker:  name,
			Message: "worker returned neither a message nor an error",
		}
	}
	if err != nil {
		code := types.CodeOf(err)
		logger.Warn("worker failed",
			zap.String("worker", name),
			zap.String("error_code", string(code)),
			zap.Error(err))
		metrics.WorkerFailures.WithLabelValues(name, string(code)).Inc()
		metrics.ObserveWorker(name, metrics.OutcomeFailure, started)
		return Outcome{Err: err}
	}

	metrics.ObserveWorker(name, metrics.OutcomeSuccess, started)
	return Outcome{Message: resp}
}
