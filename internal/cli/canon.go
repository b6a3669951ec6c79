package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CanonOptions holds configuration for the canon command.
type CanonOptions struct {
	*RootOptions
	Labels []string
}

// SequenceCanon reports the canonicalization outcome for one sequence.
type SequenceCanon struct {
	Label     string    `json:"label"`
	Canonical string    `json:"canonical,omitempty"`
	Commands  int       `json:"commands"`
	Error     *CLIError `json:"error,omitempty"`
}

// CanonResult aggregates canonicalization outcomes for a session.
type CanonResult struct {
	Session   string          `json:"session"`
	Sequences []SequenceCanon `json:"sequences"`
	Failed    int             `json:"failed"`
}

// NewCanonCommand creates the canon command.
func NewCanonCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CanonOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "canon <session-file>",
		Short: "Canonicalize recorded command sequences",
		Long: `Canonicalize each sequence in a session file.

Every sequence is ordered by node, simplified by composing the commands
recorded at the same node, and checked for consistency. The result is the
canonical set: the minimal set of commands with the same effect as the
recorded sequence.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanon(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Labels, "label", nil, "canonicalize only the named sequences (default: all)")

	return cmd
}

func runCanon(opts *CanonOptions, path string, cmd *cobra.Command) error {
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

	result := CanonResult{Session: path, Sequences: make([]SequenceCanon, 0, len(labels))}
	for _, label := range labels {
		seq, _ := sess.Sequence(label)
		set, cerr := seq.CanonicalSet()
		if cerr != nil {
			result.Failed++
			result.Sequences = append(result.Sequences, SequenceCanon{
				Label: label,
				Error: &CLIError{Code: errorCode(cerr), Message: cerr.Error()},
			})
			continue
		}
		formatter.VerboseLog("%s: %d recorded commands, %d canonical", label, seq.Len(), set.Len())
		result.Sequences = append(result.Sequences, SequenceCanon{
			Label:     label,
			Canonical: set.String(),
			Commands:  set.Len(),
		})
	}

	if result.Failed > 0 {
		return outputCanonFailure(formatter, result)
	}
	return outputCanonSuccess(formatter, result)
}

func outputCanonSuccess(formatter *OutputFormatter, result CanonResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, sc := range result.Sequences {
		fmt.Fprintf(formatter.Writer, "%s %s = %s\n", okMark(), sc.Label, sc.Canonical)
	}
	return nil
}

func outputCanonFailure(formatter *OutputFormatter, result CanonResult) error {
	if formatter.Format == "json" {
		var first *CLIError
		for _, sc := range result.Sequences {
			if sc.Error != nil {
				first = sc.Error
				break
			}
		}
		response := CLIResponse{Status: "error", Data: result, Error: first}
		if err := formatter.encodeJSON(response); err != nil {
			return err
		}
	} else {
		for _, sc := range result.Sequences {
			if sc.Error != nil {
				fmt.Fprintf(formatter.Writer, "%s %s: %s\n", conflictMark(), sc.Label, sc.Error.Message)
				continue
			}
			fmt.Fprintf(formatter.Writer, "%s %s = %s\n", okMark(), sc.Label, sc.Canonical)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("%d of %d %s failed to canonicalize",
		result.Failed, len(result.Sequences), pluralize(len(result.Sequences), "sequence", "sequences")))
}
