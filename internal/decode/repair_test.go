package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "json code block", input: "```json\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "generic code block", input: "```\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "code block with language", input: "```javascript\n{\"key\": \"value\"}\n```", expected: `{"key": "value"}`},
		{name: "plain JSON", input: `{"key": "value"}`, expected: `{"key": "value"}`},
		{name: "unclosed fence", input: "```json\n{\"key\": \"val", expected: `{"key": "val`},
		{name: "fence after preamble", input: "Result:\n```json\n{\"a\": 1}\n```\nDone.", expected: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "preamble", input: "As requested:\n{\"company\": \"Acme\"}", expected: `{"company": "Acme"}`},
		{name: "trailing text with braces", input: `{"a": {"b": 1}} and {"c": 2}`, expected: `{"a": {"b": 1}}`},
		{name: "brace inside string", input: `x {"a": "}"} y`, expected: `{"a": "}"}`},
		{name: "escaped quote inside string", input: `{"a": "say \"}\""} tail`, expected: `{"a": "say \"}\""}`},
		{name: "truncated runs to end", input: `note: {"a": [1, 2`, expected: `{"a": [1, 2`},
		{name: "no object", input: "nothing here", expected: "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractObject(tt.input))
		})
	}
}

func TestSanitizeEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "valid escapes kept", input: `{"a": "line\nnext \"q\" \u00e9 \\"}`, expected: `{"a": "line\nnext \"q\" \u00e9 \\"}`},
		{name: "invalid escape doubled", input: `{"a": "C:\dir"}`, expected: `{"a": "C:\\dir"}`},
		{name: "short unicode escape doubled", input: `{"a": "\u12"}`, expected: `{"a": "\\u12"}`},
		{name: "raw newline in string", input: "{\"a\": \"x\ny\"}", expected: `{"a": "x\ny"}`},
		{name: "raw tab in string", input: "{\"a\": \"x\ty\"}", expected: `{"a": "x\ty"}`},
		{name: "carriage return dropped", input: "{\"a\": \"x\r\"}", expected: `{"a": "x"}`},
		{name: "control byte escaped", input: "{\"a\": \"x\x01\"}", expected: `{"a": "x\u0001"}`},
		{name: "structural whitespace kept", input: "{\n\t\"a\": 1\n}", expected: "{\n\t\"a\": 1\n}"},
		{name: "trailing backslash", input: `{"a": "x\`, expected: `{"a": "x\\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeEscapes(tt.input))
		})
	}
}

func TestCloseStructure(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "open string", input: `{"a": "b`, expected: `{"a": "b"}`},
		{name: "nested order", input: `{"a": [{"b": [1`, expected: `{"a": [{"b": [1]}]}`},
		{name: "dangling comma", input: `{"a": 1, `, expected: `{"a": 1}`},
		{name: "dangling colon", input: `{"a":`, expected: `{"a":null}`},
		{name: "key without colon", input: `{"a": 1, "b"`, expected: `{"a": 1, "b":null}`},
		{name: "open key", input: `{"a": 1, "b`, expected: `{"a": 1, "b":null}`},
		{name: "partial false", input: `{"a": fal`, expected: `{"a": false}`},
		{name: "partial exponent", input: `{"a": 1e`, expected: `{"a": 1}`},
		{name: "lone minus", input: `{"a": -`, expected: `{"a": null}`},
		{name: "dangling escape", input: `{"a": "x\`, expected: `{"a": "x"}`},
		{name: "already closed", input: `{"a": 1}`, expected: `{"a": 1}`},
		{name: "not an object", input: `"a": 1`, expected: `"a": 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CloseStructure(tt.input))
		})
	}
}
