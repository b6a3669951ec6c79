package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/csirmaz/algebraic-reconciler/internal/session"
)

// createTestStore creates a store backed by a temp-dir database.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testNotation is a small two-replica session used across store tests.
// Replica a builds a directory chain ending in a file; replica b edits
// the same file, so the sequences chain into one merged outcome.
const testNotation = "a=<d1|E|D>.<d1/d2|E|D>.<d1/d2/f3|E|Ff1>;b=<d1/d2/f3|Ff1|Ff2>"

// testMergedText is the single merger of testNotation, shared by the
// greedy and enumerating runs.
const testMergedText = "{<d1|E|D>, <d1/d2|E|D>, <d1/d2/f3|E|Ff2>}"

// conflictNotation has two replicas writing different content to the
// same file, so enumeration yields one merger per replica.
const conflictNotation = "a=<f|E|Ff1>;b=<f|E|Ff2>"

// recordTestSession parses notation and writes the session row plus its
// per-sequence rows, returning the stored session row.
func recordTestSession(t *testing.T, s *Store, id, name, notation string, seq int64) Session {
	t.Helper()
	sess, err := session.Parse(notation)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	row, seqs := NewSessionRecords(id, name, notation, sess, seq)
	if err := s.WriteSession(context.Background(), row, seqs); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	return row
}

// recordTestRun computes a merge run over a stored session and records it.
func recordTestRun(t *testing.T, s *Store, sess Session, id, kind string, maxMergers int, seq int64) MergeRun {
	t.Helper()
	parsed, err := session.Parse(sess.SourceText)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	result, err := ComputeRun(context.Background(), parsed, nil, kind, maxMergers)
	if err != nil {
		t.Fatalf("ComputeRun() failed: %v", err)
	}
	run := MergeRun{
		ID:          id,
		SessionID:   sess.ID,
		Labels:      parsed.Names(),
		Kind:        kind,
		MaxMergers:  maxMergers,
		ResultText:  result.Text,
		ResultCount: result.Count,
		Truncated:   result.Truncated,
		CreatedSeq:  seq,
	}
	if err := s.WriteMergeRun(context.Background(), run); err != nil {
		t.Fatalf("WriteMergeRun() failed: %v", err)
	}
	return run
}
