package decode

import (
	"fmt"
	"strings"
	"unicode"
)

// StripFences removes a Markdown code fence around the text, including an
// optional language identifier on the opening fence line. A missing closing
// fence (truncated output) keeps everything after the opening one.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "```")
	if start < 0 {
		return text
	}

	body := text[start+3:]
	// Skip potential language identifier on first line
	if idx := strings.Index(body, "\n"); idx >= 0 {
		firstLine := body[:idx]
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			body = body[idx+1:]
		}
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// ExtractObject returns the text from the first '{' to the brace closing it.
// When the object never closes the text runs to the end, which keeps a
// truncated tail available for CloseStructure.
func ExtractObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	if end := objectEnd(text[start:]); end > 0 {
		return text[start : start+end]
	}
	return strings.TrimSpace(text[start:])
}

// objectEnd returns the index just past the bracket that balances the one at
// s[0], or -1 when the text ends first.
func objectEnd(s string) int {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// SanitizeEscapes repairs string literals: a backslash that does not start a
// legal JSON escape is itself escaped, raw newlines and tabs become escapes,
// carriage returns are dropped and other control bytes are \u-escaped.
// Whitespace between tokens is left alone.
func SanitizeEscapes(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '"':
			inString = false
			b.WriteByte(c)
		case c == '\\':
			if validEscape(text[i+1:]) {
				b.WriteByte(c)
				b.WriteByte(text[i+1])
				i++
			} else {
				b.WriteString(`\\`)
			}
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
		case c < 0x20:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// validEscape reports whether rest (the text after a backslash) starts with a legal escape
func validEscape(rest string) bool {
	if rest == "" {
		return false
	}
	switch rest[0] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if len(rest) < 5 {
			return false
		}
		for _, h := range rest[1:5] {
			if !isHex(h) {
				return false
			}
		}
		return true
	}
	return false
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// CloseStructure completes an object that was cut off: an open string is
// closed, a dangling key or colon gets a null value, a partial literal is
// completed or trimmed, a dangling comma is dropped, and the missing closers
// are appended innermost first. Text that does not start with '{' is
// returned unchanged.
func CloseStructure(text string) string {
	s := strings.TrimRightFunc(text, unicode.IsSpace)
	if !strings.HasPrefix(strings.TrimSpace(s), "{") {
		return s
	}

	var stack []byte
	inString, escaped := false, false
	stringIsKey, awaitingColon := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				awaitingColon = stringIsKey
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			stringIsKey = len(stack) > 0 && stack[len(stack)-1] == '{' && isKeyPosition(s[:i])
		case ':':
			awaitingColon = false
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		if escaped {
			s = s[:len(s)-1]
		}
		s += `"`
		if stringIsKey {
			s += ":null"
		}
	} else {
		s = completeLiteral(s)
		switch {
		case awaitingColon:
			s += ":null"
		case strings.HasSuffix(s, ","):
			s = strings.TrimRightFunc(strings.TrimSuffix(s, ","), unicode.IsSpace)
		case strings.HasSuffix(s, ":"):
			s += "null"
		}
	}

	var b strings.Builder
	b.WriteString(s)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// isKeyPosition reports whether a string starting after prefix would be an object key
func isKeyPosition(prefix string) bool {
	trimmed := strings.TrimRightFunc(prefix, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	last := trimmed[len(trimmed)-1]
	return last == '{' || last == ','
}

// completeLiteral finishes a bare literal cut off at the end of s
func completeLiteral(s string) string {
	i := len(s)
	for i > 0 && isLiteralByte(s[i-1]) {
		i--
	}
	tail := s[i:]
	if tail == "" {
		return s
	}

	for _, word := range []string{"true", "false", "null"} {
		if strings.HasPrefix(word, tail) {
			return s[:i] + word
		}
	}

	trimmed := strings.TrimRight(tail, ".eE+-")
	if trimmed == "" {
		return s[:i] + "null"
	}
	return s[:i] + trimmed
}

func isLiteralByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '.' || c == '+' || c == '-'
}
