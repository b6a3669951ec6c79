package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csirmaz/algebraic-reconciler/internal/merge"
)

// MergeOptions holds configuration for the merge command.
type MergeOptions struct {
	*RootOptions
	Labels []string
	Greedy bool
}

// MergeResult reports the merged command set for a family of sequences.
type MergeResult struct {
	Session  string   `json:"session"`
	Labels   []string `json:"labels"`
	Refluent bool     `json:"refluent"`
	Greedy   bool     `json:"greedy"` // true when divergent nodes were dropped
	Merged   string   `json:"merged"`
	Commands int      `json:"commands"`
	Replay   string   `json:"replay,omitempty"`
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <session-file>",
		Short: "Merge a family of sequences into one command set",
		Long: `Merge the sequences in a session file into a single command set.

A refluent family merges into the union of its canonical sets, losing
nothing any replica recorded. For a non-refluent family the merge fails
unless --greedy is given, in which case divergent nodes are dropped and
the remaining commands form the largest merger that keeps every
non-conflicting change.

The replay line orders the merged commands so they can be applied to a
filesystem in the state the sequences started from: destructors deepest
first, then constructors parents first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Labels, "label", nil, "merge only the named sequences (default: all)")
	cmd.Flags().BoolVar(&opts.Greedy, "greedy", false, "accept a lossy merge when the family is not refluent")

	return cmd
}

func runMerge(opts *MergeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, _, err := LoadSession(path)
	if err != nil {
		return reportLoadError(formatter, err)
	}

	labels, err := selectLabels(sess, opts.Labels)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid label selection", err)
	}

	sets, err := canonicalizeLabels(sess, labels)
	if err != nil {
		formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "family is not canonical", err)
	}

	refluent := merge.CheckRefluent(sets)
	if !refluent && !opts.Greedy {
		return outputMergeRefused(formatter, path, labels)
	}

	merged := merge.Greedy(sets)
	result := MergeResult{
		Session:  path,
		Labels:   labels,
		Refluent: refluent,
		Greedy:   !refluent,
		Merged:   merged.String(),
		Commands: merged.Len(),
		Replay:   merged.Ordered().String(),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if result.Greedy {
		dropped := len(findDivergences(sets))
		fmt.Fprintf(formatter.Writer, "%s greedy merge of {%s}: %d %s kept, %d divergent %s dropped\n",
			okMark(), strings.Join(labels, ", "),
			result.Commands, pluralize(result.Commands, "command", "commands"),
			dropped, pluralize(dropped, "node", "nodes"))
	} else {
		fmt.Fprintf(formatter.Writer, "%s merged {%s}: %d %s\n",
			okMark(), strings.Join(labels, ", "),
			result.Commands, pluralize(result.Commands, "command", "commands"))
	}
	fmt.Fprintf(formatter.Writer, "%s\n", result.Merged)
	if result.Replay != "" {
		fmt.Fprintf(formatter.Writer, "replay: %s\n", result.Replay)
	}
	return nil
}

func outputMergeRefused(formatter *OutputFormatter, path string, labels []string) error {
	message := "family is not refluent; pass --greedy for a lossy merge or use enumerate to list every maximal merger"
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   MergeResult{Session: path, Labels: labels},
			Error:  &CLIError{Code: "NOT_REFLUENT", Message: message},
		}
		if err := formatter.encodeJSON(response); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%s %s\n", conflictMark(), message)
	}
	return NewExitError(ExitFailure, "family is not refluent")
}
