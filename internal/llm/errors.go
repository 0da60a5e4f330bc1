package llm

import (
	"fmt"

	"github.com/jonathan/job-hunter/internal/types"
)

// CompletionError represents a failed call to a completion provider
type CompletionError struct {
	Provider   Provider
	Model      string
	StatusCode int
	Message    string
	Cause      error
}

func (e *CompletionError) Error() string {
	prefix := fmt.Sprintf("%s completion failed", e.Provider)
	if e.Model != "" {
		prefix = fmt.Sprintf("%s completion with %s failed", e.Provider, e.Model)
	}
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("%s (HTTP %d)", prefix, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}

// ErrorCode classifies provider failures for the worker error taxonomy
func (e *CompletionError) ErrorCode() types.ErrorCode {
	return types.CodeCompletionFailure
}
