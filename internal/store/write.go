package store

import (
	"context"
	"fmt"
)

// WriteSession inserts a session row and its per-sequence summary rows in
// a single transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored, and the existing sequence rows are left untouched.
// Other constraint violations (e.g., a reused name under a fresh id) will
// still return errors.
func (s *Store) WriteSession(ctx context.Context, sess Session, seqs []SequenceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO sessions
		(id, name, source_text, created_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.Name,
		sess.SourceText,
		sess.CreatedSeq,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if inserted == 0 {
		// Duplicate id: the session and its sequences are already stored.
		return nil
	}

	for _, sq := range seqs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sequences
			(session_id, label, position, command_count)
			VALUES (?, ?, ?, ?)
		`,
			sess.ID,
			sq.Label,
			sq.Position,
			sq.CommandCount,
		)
		if err != nil {
			return fmt.Errorf("write sequence %s: %w", sq.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

// WriteMergeRun inserts a merge run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored. Other constraint violations (e.g., an unknown kind)
// will still return errors.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) WriteMergeRun(ctx context.Context, run MergeRun) error {
	// A truncated run with no cap was cut off by a wall-clock deadline and
	// cannot be recomputed; recording it would guarantee a replay mismatch.
	if run.Truncated && run.MaxMergers == 0 {
		return fmt.Errorf("write merge run: truncated result without a merger cap is not replayable")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merge_runs
		(id, session_id, labels, kind, max_mergers, result_text, result_count, truncated, created_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.SessionID,
		joinLabels(run.Labels),
		run.Kind,
		run.MaxMergers,
		run.ResultText,
		run.ResultCount,
		run.Truncated,
		run.CreatedSeq,
	)
	if err != nil {
		return fmt.Errorf("write merge run: %w", err)
	}

	return nil
}
