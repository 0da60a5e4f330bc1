package decode

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-hunter/internal/types"
)

func decodeMap(t *testing.T, text string) map[string]any {
	t.Helper()
	raw, err := Decode(text)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestDecode_WrappedObjectsMatchUnwrapped(t *testing.T) {
	const object = `{"title": "Backend Engineer", "match_score": 0.8, "skills": ["go", "sql"], "nested": {"k": "v}"}}`
	want := decodeMap(t, object)

	tests := []struct {
		name  string
		input string
	}{
		{name: "json fence", input: "```json\n" + object + "\n```"},
		{name: "bare fence", input: "```\n" + object + "\n```"},
		{name: "fence with prose before", input: "Here is the analysis:\n```json\n" + object + "\n```\nLet me know!"},
		{name: "trailing prose", input: object + "\n\nI hope this helps. {not json}"},
		{name: "leading prose", input: "Sure! " + object},
		{name: "surrounding whitespace", input: "\n\t  " + object + "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, decodeMap(t, tt.input))
		})
	}
}

func TestDecode_TruncatedObjectIsClosed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "missing quote and brace",
			input: `{"title": "X", "notes": "cut off here`,
			want:  map[string]any{"title": "X", "notes": "cut off here"},
		},
		{
			name:  "missing nested closers",
			input: `{"title": "X", "skills": ["go", "rust"`,
			want:  map[string]any{"title": "X", "skills": []any{"go", "rust"}},
		},
		{
			name:  "dangling comma",
			input: `{"title": "X", "match_score": 0.5,`,
			want:  map[string]any{"title": "X", "match_score": 0.5},
		},
		{
			name:  "dangling colon",
			input: `{"title": "X", "company":`,
			want:  map[string]any{"title": "X", "company": nil},
		},
		{
			name:  "dangling key",
			input: `{"title": "X", "comp`,
			want:  map[string]any{"title": "X", "comp": nil},
		},
		{
			name:  "partial literal",
			input: `{"title": "X", "is_remote": tr`,
			want:  map[string]any{"title": "X", "is_remote": true},
		},
		{
			name:  "partial number",
			input: `{"title": "X", "match_score": 0.`,
			want:  map[string]any{"title": "X", "match_score": float64(0)},
		},
		{
			name:  "partial false",
			input: `{"title": "X", "is_remote": fa`,
			want:  map[string]any{"title": "X", "is_remote": false},
		},
		{
			name:  "partial exponent",
			input: `{"title": "X", "match_score": 1.5e`,
			want:  map[string]any{"title": "X", "match_score": 1.5},
		},
		{
			name:  "truncated inside fence",
			input: "```json\n{\"title\": \"X\", \"company\": {\"name\": \"Acme",
			want:  map[string]any{"title": "X", "company": map[string]any{"name": "Acme"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeMap(t, tt.input))
		})
	}
}

func TestIsTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "end of input", input: `{"a": "b`, want: true},
		{name: "inside number", input: `{"a": 0.`, want: true},
		{name: "inside literal", input: `{"a": tr`, want: true},
		{name: "error mid input", input: `{"a": 1 "b": 2}`, want: false},
		{name: "valid", input: `{"a": 1}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTruncated(parseObject(tt.input), tt.input))
		})
	}
}

func TestDecode_InvalidEscapes(t *testing.T) {
	input := "{\"description\": \"Paths like C:\\Users\\dev\nand a tab\there\r\", \"ok\": \"\\u00e9\\n\"}"
	got := decodeMap(t, input)
	assert.Equal(t, "Paths like C:\\Users\\dev\nand a tab\there", got["description"])
	assert.Equal(t, "é\n", got["ok"])
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStage Stage
	}{
		{name: "empty", input: "", wantStage: StageSanitize},
		{name: "prose only", input: "I cannot help with that.", wantStage: StageSanitize},
		{name: "array", input: `["a", "b"]`, wantStage: StageSanitize},
		{name: "broken structure", input: `{"a": 1 "b": 2}`, wantStage: StageSanitize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode(tt.input)
			require.Error(t, err)
			assert.Nil(t, raw)

			var decErr *Error
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, tt.wantStage, decErr.Stage)
			assert.Equal(t, types.CodeDecodeFailure, types.CodeOf(err))
		})
	}
}

func TestDecode_PreviewIsBounded(t *testing.T) {
	_, err := Decode(strings.Repeat("no json here ", 100))
	var decErr *Error
	require.True(t, errors.As(err, &decErr))
	assert.LessOrEqual(t, len([]rune(decErr.Preview)), PreviewLimit+3)
	assert.Contains(t, decErr.Error(), "decode failed")
}

func TestDecodeInto(t *testing.T) {
	var target struct {
		Action string `json:"action"`
		Query  string `json:"query"`
	}
	err := DecodeInto("```json\n{\"action\": \"search-document\", \"query\": \"salary\"}\n```", &target)
	require.NoError(t, err)
	assert.Equal(t, "search-document", target.Action)
	assert.Equal(t, "salary", target.Query)

	var wrongShape struct {
		Action int `json:"action"`
	}
	err = DecodeInto(`{"action": "finalize"}`, &wrongShape)
	var decErr *Error
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, StageBind, decErr.Stage)
}
