package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
	"github.com/csirmaz/algebraic-reconciler/internal/merge"
	"github.com/csirmaz/algebraic-reconciler/internal/session"
)

// RunResult is the computed outcome of a merge run over a parsed session,
// encoded the way the store records it.
type RunResult struct {
	Text      string
	Count     int
	Truncated bool
}

// ComputeRun merges the named sequences of a session and encodes the result
// for storage. Both the recording path and ReplaySessions call this, so a
// recorded run and its replay go through identical code.
//
// An empty labels slice means every sequence in the session, in declaration
// order. maxMergers caps enumeration when positive; greedy runs ignore it.
func ComputeRun(ctx context.Context, sess *session.Session, labels []string, kind string, maxMergers int) (RunResult, error) {
	if len(labels) == 0 {
		labels = sess.Names()
	}

	sets := make([]*algebra.Set, 0, len(labels))
	for _, label := range labels {
		seq, ok := sess.Sequence(label)
		if !ok {
			return RunResult{}, fmt.Errorf("unknown sequence %q", label)
		}
		set, err := seq.CanonicalSet()
		if err != nil {
			return RunResult{}, fmt.Errorf("sequence %s: %w", label, err)
		}
		sets = append(sets, set)
	}

	switch kind {
	case KindGreedy:
		return RunResult{Text: merge.Greedy(sets).String(), Count: 1}, nil

	case KindEnumerate:
		var opts []merge.EnumerationOption
		if maxMergers > 0 {
			opts = append(opts, merge.WithMaxMergers(maxMergers))
		}
		enum, err := merge.AllMergers(ctx, sets, opts...)
		if err != nil {
			return RunResult{}, err
		}
		var lines []string
		for enum.Next() {
			lines = append(lines, enum.Merger().String())
		}
		slog.Debug("mergers enumerated", "count", len(lines), "truncated", enum.Truncated())
		return RunResult{
			Text:      strings.Join(lines, "\n"),
			Count:     len(lines),
			Truncated: enum.Truncated(),
		}, nil
	}

	return RunResult{}, fmt.Errorf("unknown merge kind %q", kind)
}

// ReplayMismatch describes one divergence between a recorded merge run and
// its recomputation.
type ReplayMismatch struct {
	SessionName string
	RunID       string // empty when the session itself failed to parse
	Field       string // "parse", "error", "text", "count", or "truncated"
	Recorded    string
	Recomputed  string
}

func (m ReplayMismatch) String() string {
	if m.RunID == "" {
		return fmt.Sprintf("session %s: %s: %s", m.SessionName, m.Field, m.Recomputed)
	}
	return fmt.Sprintf("session %s run %s: %s mismatch: recorded %q, recomputed %q",
		m.SessionName, m.RunID, m.Field, m.Recorded, m.Recomputed)
}

// ReplayReport summarizes a replay pass over the whole store.
type ReplayReport struct {
	SessionsChecked int
	RunsChecked     int
	Mismatches      []ReplayMismatch
}

// OK reports whether the replay reproduced every recorded run exactly.
func (r ReplayReport) OK() bool {
	return len(r.Mismatches) == 0
}

// ReplaySessions re-parses every stored session from its source text and
// recomputes every recorded merge run, comparing against the stored rows.
//
// A mismatch means the stored log and the current merge code disagree:
// either the database was edited, or the algebra changed behavior since
// the run was recorded. Database errors abort the replay; divergences do
// not, so one report covers the whole store.
func (s *Store) ReplaySessions(ctx context.Context) (ReplayReport, error) {
	var report ReplayReport

	slog.Info("replay starting")
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return report, fmt.Errorf("replay sessions: %w", err)
	}

	for _, row := range sessions {
		report.SessionsChecked++

		sess, err := session.Parse(row.SourceText)
		if err != nil {
			report.Mismatches = append(report.Mismatches, ReplayMismatch{
				SessionName: row.Name,
				Field:       "parse",
				Recorded:    row.SourceText,
				Recomputed:  err.Error(),
			})
			continue
		}

		runs, err := s.ReadMergeRuns(ctx, row.ID)
		if err != nil {
			return report, fmt.Errorf("replay sessions: %w", err)
		}
		slog.Debug("replaying session", "session", row.Name, "runs", len(runs))

		for _, run := range runs {
			report.RunsChecked++

			got, err := ComputeRun(ctx, sess, run.Labels, run.Kind, run.MaxMergers)
			if err != nil {
				report.Mismatches = append(report.Mismatches, ReplayMismatch{
					SessionName: row.Name,
					RunID:       run.ID,
					Field:       "error",
					Recomputed:  err.Error(),
				})
				continue
			}

			if got.Text != run.ResultText {
				report.Mismatches = append(report.Mismatches, ReplayMismatch{
					SessionName: row.Name,
					RunID:       run.ID,
					Field:       "text",
					Recorded:    run.ResultText,
					Recomputed:  got.Text,
				})
			}
			if got.Count != run.ResultCount {
				report.Mismatches = append(report.Mismatches, ReplayMismatch{
					SessionName: row.Name,
					RunID:       run.ID,
					Field:       "count",
					Recorded:    strconv.Itoa(run.ResultCount),
					Recomputed:  strconv.Itoa(got.Count),
				})
			}
			if got.Truncated != run.Truncated {
				report.Mismatches = append(report.Mismatches, ReplayMismatch{
					SessionName: row.Name,
					RunID:       run.ID,
					Field:       "truncated",
					Recorded:    strconv.FormatBool(run.Truncated),
					Recomputed:  strconv.FormatBool(got.Truncated),
				})
			}
		}
	}

	slog.Info("replay finished",
		"sessions", report.SessionsChecked,
		"runs", report.RunsChecked,
		"mismatches", len(report.Mismatches))
	return report, nil
}
