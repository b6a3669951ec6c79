package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csirmaz/algebraic-reconciler/internal/session"
	"github.com/csirmaz/algebraic-reconciler/internal/store"
)

// LogAddOptions holds configuration for the log add command.
type LogAddOptions struct {
	*LogOptions
	Name   string
	Kind   string
	Labels []string
	Max    int
}

// LogAddResult reports a newly recorded merge run.
type LogAddResult struct {
	DB            string   `json:"db"`
	SessionID     string   `json:"session_id"`
	SessionName   string   `json:"session_name"`
	SessionReused bool     `json:"session_reused"`
	RunID         string   `json:"run_id"`
	Kind          string   `json:"kind"`
	Labels        []string `json:"labels"`
	ResultCount   int      `json:"result_count"`
	Truncated     bool     `json:"truncated"`
}

func newLogAddCommand(logOpts *LogOptions) *cobra.Command {
	opts := &LogAddOptions{LogOptions: logOpts}

	cmd := &cobra.Command{
		Use:   "add <session-file>",
		Short: "Record a session and one merge run over it",
		Long: `Parse a session file, store its source text, and record one merge run.

The session is stored under --name (default: the file name without its
extension). Recording the same name twice is allowed only when the
source text is unchanged; the stored session row is then reused and only
the new run is added.

Enumerating runs may be capped with --max. There is no wall-clock bound:
a run that stopped on a timer could never be replayed bit for bit.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "name to store the session under (default: file basename)")
	cmd.Flags().StringVar(&opts.Kind, "kind", store.KindGreedy, `merge kind to record ("greedy" or "enumerate")`)
	cmd.Flags().StringSliceVar(&opts.Labels, "label", nil, "merge only the named sequences (default: all)")
	cmd.Flags().IntVar(&opts.Max, "max", 0, "cap for enumerating runs (0 = unbounded)")

	return cmd
}

func runLogAdd(opts *LogAddOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	configureLogging(formatter, opts.Verbose)

	if opts.Kind != store.KindGreedy && opts.Kind != store.KindEnumerate {
		message := fmt.Sprintf("invalid kind %q: must be %q or %q", opts.Kind, store.KindGreedy, store.KindEnumerate)
		formatter.Error("ERROR", message, nil)
		return NewExitError(ExitCommandError, message)
	}

	sess, sourceText, err := LoadSession(path)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	labels, err := selectLabels(sess, opts.Labels)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid label selection", err)
	}

	name := opts.Name
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ctx := context.Background()
	st, err := openStore(formatter, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	last, err := st.LastSeq(ctx)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read log database", err)
	}
	clock := store.NewClockAt(last)
	gen := store.UUIDv7Generator{}

	sessionRow, reused, err := ensureSession(ctx, st, gen, clock, name, sourceText, sess)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to record session", err)
	}

	computed, err := store.ComputeRun(ctx, sess, labels, opts.Kind, opts.Max)
	if err != nil {
		formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "family is not canonical", err)
	}

	run := store.MergeRun{
		ID:          gen.Generate(),
		SessionID:   sessionRow.ID,
		Labels:      labels,
		Kind:        opts.Kind,
		MaxMergers:  opts.Max,
		ResultText:  computed.Text,
		ResultCount: computed.Count,
		Truncated:   computed.Truncated,
		CreatedSeq:  clock.Next(),
	}
	if err := st.WriteMergeRun(ctx, run); err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to record merge run", err)
	}

	result := LogAddResult{
		DB:            opts.DB,
		SessionID:     sessionRow.ID,
		SessionName:   name,
		SessionReused: reused,
		RunID:         run.ID,
		Kind:          run.Kind,
		Labels:        labels,
		ResultCount:   run.ResultCount,
		Truncated:     run.Truncated,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s recorded %s run %s for session %q\n", okMark(), run.Kind, run.ID, name)
	if run.Kind == store.KindGreedy {
		fmt.Fprintf(formatter.Writer, "merged: %s\n", computed.Text)
	} else {
		fmt.Fprintf(formatter.Writer, "mergers: %d\n", computed.Count)
		if run.Truncated {
			fmt.Fprintf(formatter.Writer, "enumeration truncated at --max %d\n", run.MaxMergers)
		}
	}
	return nil
}

// ensureSession stores the session under name, or reuses the stored row
// when the same name already holds identical source text.
func ensureSession(ctx context.Context, st *store.Store, gen store.IDGenerator, clock *store.Clock, name, sourceText string, sess *session.Session) (store.Session, bool, error) {
	existing, err := st.ReadSessionByName(ctx, name)
	switch {
	case err == nil:
		if existing.SourceText != sourceText {
			return store.Session{}, false, fmt.Errorf("session %q is already recorded with different source text; pick another --name", name)
		}
		return existing, true, nil
	case errors.Is(err, sql.ErrNoRows):
	default:
		return store.Session{}, false, err
	}

	row, seqs := store.NewSessionRecords(gen.Generate(), name, sourceText, sess, clock.Next())
	if err := st.WriteSession(ctx, row, seqs); err != nil {
		return store.Session{}, false, err
	}
	return row, false, nil
}
