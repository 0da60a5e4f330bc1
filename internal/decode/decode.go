// Package decode turns free-form completion text into a JSON object.
//
// Model output is unreliable: it arrives wrapped in Markdown fences, preceded
// or followed by prose, cut off mid-value or with invalid escapes. Decode runs
// an ordered recovery chain and returns the first candidate that parses as an
// object. Each stage works on the output of the previous one.
package decode

import (
	"encoding/json"
	"errors"
	"strings"
)

// Stage names one step of the recovery chain
type Stage string

// Recovery stages, in the order they are attempted
const (
	StageDirect   Stage = "direct"
	StageFences   Stage = "strip_fences"
	StageExtract  Stage = "extract_object"
	StageSanitize Stage = "sanitize_escapes"
	StageClose    Stage = "close_structure"
	StageBind     Stage = "bind"
)

// ErrNotObject is the cause reported when text parses but is not a JSON object
var ErrNotObject = errors.New("value is not a JSON object")

const eofMessage = "unexpected end of JSON input"

// Decode returns the first recovery candidate of text that parses as a JSON object
func Decode(text string) (json.RawMessage, error) {
	candidate := strings.TrimSpace(text)
	stage := StageDirect

	err := parseObject(candidate)
	if err == nil {
		return json.RawMessage(candidate), nil
	}

	steps := []struct {
		stage     Stage
		transform func(string) string
	}{
		{StageFences, StripFences},
		{StageExtract, ExtractObject},
		{StageSanitize, SanitizeEscapes},
	}
	for _, step := range steps {
		candidate = step.transform(candidate)
		stage = step.stage
		if err = parseObject(candidate); err == nil {
			return json.RawMessage(candidate), nil
		}
	}

	if isTruncated(err, candidate) && strings.HasPrefix(candidate, "{") {
		candidate = CloseStructure(candidate)
		stage = StageClose
		if err = parseObject(candidate); err == nil {
			return json.RawMessage(candidate), nil
		}
	}

	return nil, &Error{Stage: stage, Preview: preview(candidate), Cause: err}
}

// DecodeInto decodes text and binds the recovered object into v
func DecodeInto(text string, v any) error {
	raw, err := Decode(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &Error{Stage: StageBind, Preview: preview(string(raw)), Cause: err}
	}
	return nil
}

// parseObject reports whether s is exactly one JSON object
func parseObject(s string) error {
	if s == "" {
		return errors.New(eofMessage)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ErrNotObject
		}
		return err
	}
	if obj == nil {
		return ErrNotObject
	}
	return nil
}

// isTruncated reports whether err was raised at the end of s. Input cut
// inside a number or literal fails on the scanner's final byte instead of
// with an unexpected end error.
func isTruncated(err error, s string) bool {
	if err == nil {
		return false
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) && syntaxErr.Offset >= int64(len(s)) {
		return true
	}
	return strings.Contains(err.Error(), eofMessage)
}
