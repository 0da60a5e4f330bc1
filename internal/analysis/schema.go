package analysis

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/job-hunter/internal/types"
)

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a decoded object does not have the shape of an analysis
type ValidationError struct {
	Errors []FieldError
	Cause  error
}

func (ve *ValidationError) Error() string {
	if ve.Cause != nil {
		return fmt.Sprintf("analysis validation failed: %v", ve.Cause)
	}
	var sb strings.Builder
	sb.WriteString("analysis validation failed:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %d. %s: %s;", i+1, err.Field, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

func (ve *ValidationError) Unwrap() error {
	return ve.Cause
}

// ErrorCode classifies shape failures for the worker error taxonomy
func (ve *ValidationError) ErrorCode() types.ErrorCode {
	return types.CodeValidationFailure
}

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Validate checks that raw has the shape of an analysis: an object with at
// least a title, a description or a match score, and no field of an
// unusable type.
func Validate(raw json.RawMessage) error {
	s, err := compiledSchema()
	if err != nil {
		return &ValidationError{Cause: fmt.Errorf("failed to load analysis schema: %w", err)}
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Cause: err}
	}
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}

// ParseValid validates raw and parses it into an Analysis
func ParseValid(raw json.RawMessage) (*Analysis, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	a, err := Parse(raw)
	if err != nil {
		return nil, &ValidationError{Cause: err}
	}
	return a, nil
}
