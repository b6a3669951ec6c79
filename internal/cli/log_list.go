package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// LogRunInfo summarizes one recorded merge run.
type LogRunInfo struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Labels      []string `json:"labels,omitempty"`
	MaxMergers  int      `json:"max_mergers,omitempty"`
	ResultCount int      `json:"result_count"`
	Truncated   bool     `json:"truncated"`
	CreatedSeq  int64    `json:"created_seq"`
}

// LogSessionInfo summarizes one stored session and its runs.
type LogSessionInfo struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	CreatedSeq int64        `json:"created_seq"`
	Sequences  []string     `json:"sequences"`
	Runs       []LogRunInfo `json:"runs"`
}

// LogListResult reports the contents of the log database.
type LogListResult struct {
	DB       string           `json:"db"`
	Sessions []LogSessionInfo `json:"sessions"`
}

func newLogListCommand(logOpts *LogOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions and their merge runs",
		Long: `List every session in the log database with its recorded merge runs.

Sessions appear in recording order, runs within a session likewise.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogList(logOpts, cmd)
		},
	}

	return cmd
}

func runLogList(opts *LogOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	configureLogging(formatter, opts.Verbose)

	st, err := openStore(formatter, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read log database", err)
	}

	result := LogListResult{DB: opts.DB, Sessions: make([]LogSessionInfo, 0, len(sessions))}
	for _, sess := range sessions {
		seqs, err := st.ReadSequences(ctx, sess.ID)
		if err != nil {
			formatter.Error("ERROR", err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read log database", err)
		}
		runs, err := st.ReadMergeRuns(ctx, sess.ID)
		if err != nil {
			formatter.Error("ERROR", err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read log database", err)
		}

		info := LogSessionInfo{
			ID:         sess.ID,
			Name:       sess.Name,
			CreatedSeq: sess.CreatedSeq,
			Sequences:  make([]string, 0, len(seqs)),
			Runs:       make([]LogRunInfo, 0, len(runs)),
		}
		for _, sq := range seqs {
			info.Sequences = append(info.Sequences, sq.Label)
		}
		for _, run := range runs {
			info.Runs = append(info.Runs, LogRunInfo{
				ID:          run.ID,
				Kind:        run.Kind,
				Labels:      run.Labels,
				MaxMergers:  run.MaxMergers,
				ResultCount: run.ResultCount,
				Truncated:   run.Truncated,
				CreatedSeq:  run.CreatedSeq,
			})
		}
		result.Sessions = append(result.Sessions, info)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Sessions) == 0 {
		fmt.Fprintf(formatter.Writer, "log %s holds no sessions\n", opts.DB)
		return nil
	}
	for _, info := range result.Sessions {
		fmt.Fprintf(formatter.Writer, "%s  id=%s  sequences=[%s]\n", info.Name, info.ID, strings.Join(info.Sequences, " "))
		for _, run := range info.Runs {
			line := fmt.Sprintf("  %s  run=%s  labels=[%s]  results=%d", run.Kind, run.ID, strings.Join(run.Labels, " "), run.ResultCount)
			if run.Truncated {
				line += fmt.Sprintf("  (truncated at %d)", run.MaxMergers)
			}
			fmt.Fprintln(formatter.Writer, line)
		}
	}
	return nil
}
