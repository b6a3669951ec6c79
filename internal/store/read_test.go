package store

import (
	"context"
	"database/sql"
	"testing"
)

func TestReadSession_Basic(t *testing.T) {
	s := createTestStore(t)

	want := recordTestSession(t, s, "sess-1", "trunk", testNotation, 1)

	got, err := s.ReadSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if got != want {
		t.Errorf("ReadSession() = %+v, want %+v", got, want)
	}
}

func TestReadSessionByName(t *testing.T) {
	s := createTestStore(t)

	want := recordTestSession(t, s, "sess-1", "trunk", testNotation, 1)

	got, err := s.ReadSessionByName(context.Background(), "trunk")
	if err != nil {
		t.Fatalf("ReadSessionByName() failed: %v", err)
	}
	if got != want {
		t.Errorf("ReadSessionByName() = %+v, want %+v", got, want)
	}

	if _, err := s.ReadSessionByName(context.Background(), "missing"); err != sql.ErrNoRows {
		t.Errorf("ReadSessionByName(missing) err = %v, want sql.ErrNoRows", err)
	}
}

func TestListSessions_Empty(t *testing.T) {
	s := createTestStore(t)

	sessions, err := s.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	if sessions == nil {
		t.Error("ListSessions() returned nil, want empty slice")
	}
	if len(sessions) != 0 {
		t.Errorf("len(sessions) = %d, want 0", len(sessions))
	}
}

func TestListSessions_LogicalTimeOrder(t *testing.T) {
	s := createTestStore(t)

	// Insert out of logical order; the listing follows created_seq.
	recordTestSession(t, s, "sess-b", "later", conflictNotation, 5)
	recordTestSession(t, s, "sess-a", "earlier", testNotation, 2)

	sessions, err := s.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	if sessions[0].Name != "earlier" || sessions[1].Name != "later" {
		t.Errorf("order = [%s, %s], want [earlier, later]", sessions[0].Name, sessions[1].Name)
	}
}

func TestReadSequences_Empty(t *testing.T) {
	s := createTestStore(t)

	seqs, err := s.ReadSequences(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ReadSequences() failed: %v", err)
	}
	if seqs == nil {
		t.Error("ReadSequences() returned nil, want empty slice")
	}
}

func TestReadMergeRuns_RoundTrip(t *testing.T) {
	s := createTestStore(t)

	sess := recordTestSession(t, s, "sess-1", "trunk", testNotation, 1)
	want := recordTestRun(t, s, sess, "run-2", KindEnumerate, 3, 3)
	recordTestRun(t, s, sess, "run-1", KindGreedy, 0, 2)

	runs, err := s.ReadMergeRuns(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("ReadMergeRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}

	// Logical time order, not insertion order
	if runs[0].ID != "run-1" || runs[1].ID != "run-2" {
		t.Errorf("order = [%s, %s], want [run-1, run-2]", runs[0].ID, runs[1].ID)
	}

	// Labels survive the comma join, and the cap comes back intact
	got := runs[1]
	if len(got.Labels) != 2 || got.Labels[0] != "a" || got.Labels[1] != "b" {
		t.Errorf("labels = %v, want [a b]", got.Labels)
	}
	if got.MaxMergers != want.MaxMergers {
		t.Errorf("max_mergers = %d, want %d", got.MaxMergers, want.MaxMergers)
	}
	if got.ResultText != want.ResultText {
		t.Errorf("result_text = %q, want %q", got.ResultText, want.ResultText)
	}
}

func TestReadMergeRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	sess := recordTestSession(t, s, "sess-1", "trunk", testNotation, 1)

	runs, err := s.ReadMergeRuns(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("ReadMergeRuns() failed: %v", err)
	}
	if runs == nil {
		t.Error("ReadMergeRuns() returned nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("len(runs) = %d, want 0", len(runs))
	}
}
