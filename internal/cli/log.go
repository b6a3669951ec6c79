package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/csirmaz/algebraic-reconciler/internal/store"
)

// LogOptions holds configuration shared by the log subcommands.
type LogOptions struct {
	*RootOptions
	DB string
}

// NewLogCommand creates the log command group.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record and audit merge runs in a SQLite log",
		Long: `Record sessions and merge results in a SQLite database.

The log stores the exact source text of every session together with the
outcome of each merge run over it. Because runs are recomputed from the
stored text, the log can be replayed at any time to verify that the
recorded results still match what the current code produces.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to the SQLite log database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newLogAddCommand(opts))
	cmd.AddCommand(newLogListCommand(opts))
	cmd.AddCommand(newLogReplayCommand(opts))

	return cmd
}

// configureLogging routes store logging through the command's error
// stream, at debug level when --verbose is set.
func configureLogging(formatter *OutputFormatter, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	w := formatter.ErrWriter
	if w == nil {
		w = formatter.Writer
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// openStore opens the log database, reporting failures as command errors.
func openStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	slog.Info("opening log database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open log database", err)
	}
	slog.Info("log database ready")
	return st, nil
}
