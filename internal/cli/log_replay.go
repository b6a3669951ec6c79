package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ReplayMismatchInfo reports one divergence between a recorded run and
// its recomputation.
type ReplayMismatchInfo struct {
	Session    string `json:"session"`
	RunID      string `json:"run_id,omitempty"`
	Field      string `json:"field"`
	Recorded   string `json:"recorded"`
	Recomputed string `json:"recomputed"`
}

// LogReplayResult reports the outcome of replaying the whole log.
type LogReplayResult struct {
	DB              string               `json:"db"`
	SessionsChecked int                  `json:"sessions_checked"`
	RunsChecked     int                  `json:"runs_checked"`
	Mismatches      []ReplayMismatchInfo `json:"mismatches,omitempty"`
}

func newLogReplayCommand(logOpts *LogOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Recompute every recorded run and compare",
		Long: `Re-parse every stored session and recompute every recorded merge run.

A divergence means the stored log and the current merge code disagree:
either the database was edited or the merge behavior changed since the
run was recorded.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogReplay(logOpts, cmd)
		},
	}

	return cmd
}

func runLogReplay(opts *LogOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	configureLogging(formatter, opts.Verbose)

	st, err := openStore(formatter, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := st.ReplaySessions(context.Background())
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to replay log", err)
	}

	result := LogReplayResult{
		DB:              opts.DB,
		SessionsChecked: report.SessionsChecked,
		RunsChecked:     report.RunsChecked,
	}
	for _, m := range report.Mismatches {
		result.Mismatches = append(result.Mismatches, ReplayMismatchInfo{
			Session:    m.SessionName,
			RunID:      m.RunID,
			Field:      m.Field,
			Recorded:   m.Recorded,
			Recomputed: m.Recomputed,
		})
	}

	if report.OK() {
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "%s replayed %d %s, %d %s: every recorded result reproduced\n",
			okMark(),
			report.SessionsChecked, pluralize(report.SessionsChecked, "session", "sessions"),
			report.RunsChecked, pluralize(report.RunsChecked, "run", "runs"))
		return nil
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "REPLAY_DIVERGED", Message: fmt.Sprintf("%d recorded results no longer reproduce", len(report.Mismatches))},
		}
		if err := formatter.encodeJSON(response); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%s replay of %s found %d %s\n", conflictMark(), opts.DB,
			len(report.Mismatches), pluralize(len(report.Mismatches), "divergence", "divergences"))
		for _, m := range report.Mismatches {
			fmt.Fprintf(formatter.Writer, "  %s\n", m)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("log replay found %d %s",
		len(report.Mismatches), pluralize(len(report.Mismatches), "divergence", "divergences")))
}
