package evidence

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/job-hunter/internal/decode"
)

// ActionKind is the closed set of moves the model can make in one step
type ActionKind string

// Action kinds. ActionUnrecognized covers any label outside the vocabulary.
const (
	ActionSearchDocument ActionKind = "search-document"
	ActionSearchProfile  ActionKind = "search-candidate-profile"
	ActionFinalize       ActionKind = "finalize"
	ActionUnrecognized   ActionKind = "unrecognized"
)

// Queries used when the model's reply cannot be acted on as given
const (
	QueryUnparseable  = "skills"
	QueryUnrecognized = "requirements"
)

// Action is one decoded step decision
type Action struct {
	Kind     ActionKind
	Query    string
	Analysis json.RawMessage
	// Label is the action text the model actually sent
	Label string
	// Decoded is false when the reply could not be decoded at all
	Decoded bool
}

type actionWire struct {
	Action   string          `json:"action"`
	Query    json.RawMessage `json:"query"`
	Analysis json.RawMessage `json:"analysis"`
}

// ParseAction decodes a model reply into an Action. It never fails: a reply
// that cannot be decoded becomes a document search for QueryUnparseable.
func ParseAction(text string) Action {
	var wire actionWire
	if err := decode.DecodeInto(text, &wire); err != nil {
		return Action{Kind: ActionSearchDocument, Query: QueryUnparseable}
	}

	a := Action{
		Kind:    kindOf(wire.Action),
		Query:   queryText(wire.Query),
		Label:   wire.Action,
		Decoded: true,
	}
	if a.Kind == ActionFinalize && !isNull(wire.Analysis) {
		a.Analysis = wire.Analysis
	}
	return a
}

func kindOf(label string) ActionKind {
	normalized := strings.NewReplacer("_", "-", " ", "-").Replace(strings.ToLower(strings.TrimSpace(label)))
	switch normalized {
	case "search-document", "search", "search-job", "search-posting", "search-offer":
		return ActionSearchDocument
	case "search-candidate-profile", "search-profile", "search-cv", "read-cv", "read-profile":
		return ActionSearchProfile
	case "finalize", "final", "finish", "done":
		return ActionFinalize
	default:
		return ActionUnrecognized
	}
}

// queryText accepts a string query, or joins a list of strings
func queryText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
