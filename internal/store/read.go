package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadSession retrieves a single session by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source_text, created_seq
		FROM sessions
		WHERE id = ?
	`, id)

	return scanSessionRow(row)
}

// ReadSessionByName retrieves a single session by its unique name.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSessionByName(ctx context.Context, name string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source_text, created_seq
		FROM sessions
		WHERE name = ?
	`, name)

	return scanSessionRow(row)
}

// ListSessions returns all stored sessions with deterministic ordering:
// ORDER BY created_seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the store holds no sessions.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source_text, created_seq
		FROM sessions
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	// Return empty slice instead of nil
	if sessions == nil {
		sessions = []Session{}
	}

	return sessions, nil
}

// ReadSequences returns the per-sequence summary rows for a session in
// declaration order.
//
// Returns an empty slice (not nil) if the session has no rows.
func (s *Store) ReadSequences(ctx context.Context, sessionID string) ([]SequenceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, label, position, command_count
		FROM sequences
		WHERE session_id = ?
		ORDER BY position ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query sequences: %w", err)
	}
	defer rows.Close()

	var seqs []SequenceRecord
	for rows.Next() {
		var sq SequenceRecord
		if err := rows.Scan(&sq.SessionID, &sq.Label, &sq.Position, &sq.CommandCount); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		seqs = append(seqs, sq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sequences: %w", err)
	}

	if seqs == nil {
		seqs = []SequenceRecord{}
	}

	return seqs, nil
}

// ReadMergeRuns returns all merge runs recorded for a session with
// deterministic ordering: ORDER BY created_seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs are recorded.
func (s *Store) ReadMergeRuns(ctx context.Context, sessionID string) ([]MergeRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, labels, kind, max_mergers, result_text, result_count, truncated, created_seq
		FROM merge_runs
		WHERE session_id = ?
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query merge runs: %w", err)
	}
	defer rows.Close()

	var runs []MergeRun
	for rows.Next() {
		run, err := scanMergeRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate merge runs: %w", err)
	}

	if runs == nil {
		runs = []MergeRun{}
	}

	return runs, nil
}

// scanSession scans a row into a Session struct.
func scanSession(rows *sql.Rows) (Session, error) {
	var sess Session
	if err := rows.Scan(&sess.ID, &sess.Name, &sess.SourceText, &sess.CreatedSeq); err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	return sess, nil
}

// scanSessionRow scans a single row into a Session struct.
func scanSessionRow(row *sql.Row) (Session, error) {
	var sess Session
	if err := row.Scan(&sess.ID, &sess.Name, &sess.SourceText, &sess.CreatedSeq); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// scanMergeRun scans a row into a MergeRun struct.
func scanMergeRun(rows *sql.Rows) (MergeRun, error) {
	var run MergeRun
	var labels string
	if err := rows.Scan(
		&run.ID, &run.SessionID, &labels, &run.Kind, &run.MaxMergers,
		&run.ResultText, &run.ResultCount, &run.Truncated, &run.CreatedSeq,
	); err != nil {
		return MergeRun{}, fmt.Errorf("scan merge run: %w", err)
	}
	run.Labels = splitLabels(labels)
	return run, nil
}
