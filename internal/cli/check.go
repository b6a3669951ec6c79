package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
	"github.com/csirmaz/algebraic-reconciler/internal/merge"
	"github.com/csirmaz/algebraic-reconciler/internal/session"
)

// CheckOptions holds configuration for the check command.
type CheckOptions struct {
	*RootOptions
	Labels []string
}

// Divergence records a node where the canonical sets disagree.
type Divergence struct {
	Node     string   `json:"node"`
	Variants []string `json:"variants"`
}

// CheckResult reports the refluency verdict for a family of sequences.
type CheckResult struct {
	Session     string       `json:"session"`
	Labels      []string     `json:"labels"`
	Refluent    bool         `json:"refluent"`
	Divergences []Divergence `json:"divergences,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <session-file>",
		Short: "Check whether a family of sequences is refluent",
		Long: `Check whether the sequences in a session file are refluent.

A family is refluent when the union of its canonical sets is itself
canonical. Refluent replicas have made compatible changes and merge
losslessly with the merge command; a non-refluent family needs conflict
resolution, for which see enumerate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Labels, "label", nil, "check only the named sequences (default: all)")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
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

	result := CheckResult{
		Session:  path,
		Labels:   labels,
		Refluent: merge.CheckRefluent(sets),
	}
	if !result.Refluent {
		result.Divergences = findDivergences(sets)
	}

	if result.Refluent {
		return outputCheckSuccess(formatter, result)
	}
	return outputCheckFailure(formatter, result)
}

// canonicalizeLabels canonicalizes the named sequences in label order,
// stopping at the first failure.
func canonicalizeLabels(sess *session.Session, labels []string) ([]*algebra.Set, error) {
	sets := make([]*algebra.Set, 0, len(labels))
	for _, label := range labels {
		seq, ok := sess.Sequence(label)
		if !ok {
			return nil, fmt.Errorf("unknown sequence %q", label)
		}
		set, err := seq.CanonicalSet()
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", label, err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// findDivergences lists the nodes at which the canonical sets record
// conflicting commands, in node order. A family can also fail refluency
// without any single divergent node when commands at different nodes
// violate pairwise canonicality, so an empty result does not imply a
// refluent family.
func findDivergences(sets []*algebra.Set) []Divergence {
	variants := make(map[string][]string)
	nodes := make(map[string]algebra.Node)
	for _, set := range sets {
		for _, c := range set.Commands() {
			key := c.Node.String()
			form := c.String()
			known := false
			for _, v := range variants[key] {
				if v == form {
					known = true
					break
				}
			}
			if !known {
				variants[key] = append(variants[key], form)
				nodes[key] = c.Node
			}
		}
	}

	var divergences []Divergence
	for key, forms := range variants {
		if len(forms) > 1 {
			divergences = append(divergences, Divergence{Node: key, Variants: forms})
		}
	}
	sort.Slice(divergences, func(i, j int) bool {
		return nodes[divergences[i].Node].Compare(nodes[divergences[j].Node]) < 0
	})
	return divergences
}

func outputCheckSuccess(formatter *OutputFormatter, result CheckResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s family {%s} is refluent\n", okMark(), strings.Join(result.Labels, ", "))
	return nil
}

func outputCheckFailure(formatter *OutputFormatter, result CheckResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "NOT_REFLUENT", Message: "family is not refluent"},
		}
		if err := formatter.encodeJSON(response); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(formatter.Writer, "%s family {%s} is not refluent\n", conflictMark(), strings.Join(result.Labels, ", "))
		for _, d := range result.Divergences {
			fmt.Fprintf(formatter.Writer, "  node %s: %s\n", d.Node, strings.Join(d.Variants, " vs "))
		}
	}

	return NewExitError(ExitFailure, "family is not refluent")
}
