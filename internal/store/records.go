package store

import (
	"strings"

	"github.com/csirmaz/algebraic-reconciler/internal/session"
)

// Session is a stored session row: a unique name plus the exact source text
// the session was parsed from.
type Session struct {
	ID         string
	Name       string
	SourceText string
	CreatedSeq int64
}

// SequenceRecord summarizes one labeled sequence within a stored session.
type SequenceRecord struct {
	SessionID    string
	Label        string
	Position     int
	CommandCount int
}

// Merge run kinds.
const (
	KindGreedy    = "greedy"
	KindEnumerate = "enumerate"
)

// MergeRun records the outcome of a merge over a stored session.
//
// For greedy runs ResultText holds the merged set and ResultCount is 1.
// For enumerating runs ResultText holds one merger per line, ResultCount
// the number of mergers, Truncated whether enumeration stopped early, and
// MaxMergers the cap it ran under (0 means uncapped). The cap is stored so
// replay can reproduce a truncated run exactly.
type MergeRun struct {
	ID          string
	SessionID   string
	Labels      []string
	Kind        string
	MaxMergers  int
	ResultText  string
	ResultCount int
	Truncated   bool
	CreatedSeq  int64
}

// NewSessionRecords builds the storable rows for a parsed session.
// The id should come from an IDGenerator and seq from a Clock; sourceText
// is the notation the session was parsed from.
func NewSessionRecords(id, name, sourceText string, sess *session.Session, seq int64) (Session, []SequenceRecord) {
	row := Session{
		ID:         id,
		Name:       name,
		SourceText: sourceText,
		CreatedSeq: seq,
	}

	names := sess.Names()
	seqs := make([]SequenceRecord, 0, len(names))
	for i, label := range names {
		sq, _ := sess.Sequence(label)
		seqs = append(seqs, SequenceRecord{
			SessionID:    id,
			Label:        label,
			Position:     i,
			CommandCount: sq.Len(),
		})
	}

	return row, seqs
}

// Labels are stored comma-joined. Label characters are limited to
// [A-Za-z0-9_] by the session grammar, so the comma never collides.

func joinLabels(labels []string) string {
	return strings.Join(labels, ",")
}

func splitLabels(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
