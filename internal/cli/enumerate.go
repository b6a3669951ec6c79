package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/csirmaz/algebraic-reconciler/internal/merge"
)

// EnumerateOptions holds configuration for the enumerate command.
type EnumerateOptions struct {
	*RootOptions
	Labels  []string
	Max     int
	Timeout time.Duration
}

// EnumerateResult reports every maximal merger found for a family.
type EnumerateResult struct {
	Session   string   `json:"session"`
	Labels    []string `json:"labels"`
	Refluent  bool     `json:"refluent"`
	Mergers   []string `json:"mergers"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated"`
}

// NewEnumerateCommand creates the enumerate command.
func NewEnumerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EnumerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "enumerate <session-file>",
		Short: "List every maximal merger of a family of sequences",
		Long: `List every maximal way to merge the sequences in a session file.

Each merger resolves the divergent nodes by picking one recorded command
per node (or none) such that no further command could be added back. A
refluent family has exactly one merger, the union of its canonical sets;
conflicting families have one merger per consistent combination of
choices, which can grow exponentially. Use --max or --timeout to bound
the search.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnumerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Labels, "label", nil, "enumerate only the named sequences (default: all)")
	cmd.Flags().IntVar(&opts.Max, "max", 0, "stop after this many mergers (0 = unbounded)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "stop enumerating after this long (0 = no limit)")

	return cmd
}

func runEnumerate(opts *EnumerateOptions, path string, cmd *cobra.Command) error {
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

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var enumOpts []merge.EnumerationOption
	if opts.Max > 0 {
		enumOpts = append(enumOpts, merge.WithMaxMergers(opts.Max))
	}

	formatter.VerboseLog("enumerating mergers of %d canonical sets", len(sets))
	enum, err := merge.AllMergers(ctx, sets, enumOpts...)
	if err != nil {
		formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "family is not canonical", err)
	}

	var mergers []string
	for enum.Next() {
		mergers = append(mergers, enum.Merger().String())
	}

	result := EnumerateResult{
		Session:   path,
		Labels:    labels,
		Refluent:  merge.CheckRefluent(sets),
		Mergers:   mergers,
		Count:     len(mergers),
		Truncated: enum.Truncated(),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%d maximal %s for {%s}:\n",
		result.Count, pluralize(result.Count, "merger", "mergers"), strings.Join(labels, ", "))
	for i, m := range result.Mergers {
		fmt.Fprintf(formatter.Writer, "%d. %s\n", i+1, m)
	}
	if result.Truncated {
		fmt.Fprintln(formatter.Writer, "enumeration truncated; raise --max or --timeout to see more")
	}
	return nil
}
