package types

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure for logs, metrics and error messages
type ErrorCode string

// Failure taxonomy
const (
	CodeCollectionFailure ErrorCode = "COLLECTION_FAILURE"
	CodeCompletionFailure ErrorCode = "COMPLETION_FAILURE"
	CodeDecodeFailure     ErrorCode = "DECODE_FAILURE"
	CodeValidationFailure ErrorCode = "VALIDATION_FAILURE"
	CodeBudgetExceeded    ErrorCode = "BUDGET_EXCEEDED"
	CodeWorkerCrash       ErrorCode = "WORKER_CRASH"
	CodeUnexpectedMessage ErrorCode = "UNEXPECTED_MESSAGE"
	CodeUnknown           ErrorCode = "UNKNOWN_ERROR"
)

// Coder is implemented by errors that know their own code
type Coder interface {
	ErrorCode() ErrorCode
}

// WorkerError is the typed failure a worker returns from Process
type WorkerError struct {
	Code    ErrorCode
	Worker  string
	Message string
	Cause   error
}

func (e *WorkerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Worker, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Worker, e.Code, e.Message)
}

func (e *WorkerError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the failure classification
func (e *WorkerError) ErrorCode() ErrorCode {
	return e.Code
}

// UnexpectedMessage builds the error a worker returns for a message it does not handle
func UnexpectedMessage(worker string, msg Message) *WorkerError {
	kind := MessageKind("nil")
	if msg != nil {
		kind = msg.Kind()
	}
	return &WorkerError{
		Code:    CodeUnexpectedMessage,
		Worker:  worker,
		Message: fmt.Sprintf("cannot process %s message", kind),
	}
}

// CodeOf returns the code of the first error in the chain that carries one
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var coder Coder
	if errors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return CodeUnknown
}
