package evidence

import (
	"fmt"
	"strings"
)

// Ledger is the evidence gathered while evaluating one record. It lives only
// for the duration of one Loop.Run.
type Ledger struct {
	b       strings.Builder
	entries int
}

// NewLedger starts a ledger with the objective of the evaluation
func NewLedger(objective string) *Ledger {
	l := &Ledger{}
	l.b.WriteString(objective)
	l.b.WriteString("\nINITIAL STATE: posting loaded in memory, not yet visible. Use the search actions to read it.\n")
	return l
}

// AppendSearch records the result of a search over target for query
func (l *Ledger) AppendSearch(target, query, result string) {
	fmt.Fprintf(&l.b, "\n[%s RESULT %q]:\n%s\n", strings.ToUpper(target), query, result)
	l.entries++
}

// AppendNote records a system note
func (l *Ledger) AppendNote(note string) {
	fmt.Fprintf(&l.b, "\n[SYSTEM] %s\n", note)
	l.entries++
}

// Entries returns the number of appended entries
func (l *Ledger) Entries() int {
	return l.entries
}

func (l *Ledger) String() string {
	return l.b.String()
}
