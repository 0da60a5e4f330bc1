package decode

import (
	"fmt"

	"github.com/jonathan/job-hunter/internal/types"
)

// PreviewLimit bounds the number of runes of candidate text kept on an Error
const PreviewLimit = 120

// Error is returned when completion text could not be turned into an object
// after every recovery stage. Preview is for diagnostics only.
type Error struct {
	Stage   Stage
	Preview string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode failed after %s: %v (preview: %q)", e.Stage, e.Cause, e.Preview)
	}
	return fmt.Sprintf("decode failed after %s (preview: %q)", e.Stage, e.Preview)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode classifies decode failures for the worker error taxonomy
func (e *Error) ErrorCode() types.ErrorCode {
	return types.CodeDecodeFailure
}

// preview returns at most PreviewLimit runes of s
func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= PreviewLimit {
		return s
	}
	return string(runes[:PreviewLimit]) + "..."
}
