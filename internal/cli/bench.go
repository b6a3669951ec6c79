package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/csirmaz/algebraic-reconciler/internal/merge"
	"github.com/csirmaz/algebraic-reconciler/internal/workload"
)

// BenchOptions holds configuration for the bench command.
type BenchOptions struct {
	*RootOptions
	Config string
}

// BenchResult reports the shape and merge outcome of a synthetic workload.
type BenchResult struct {
	Config            string `json:"config"`
	Size              int    `json:"size"`
	Spread            int    `json:"spread"`
	Users             int    `json:"users"`
	SequenceLength    int    `json:"sequence_length"`
	Nodes             int    `json:"nodes"`
	CanonicalCommands int    `json:"canonical_commands"`
	Refluent          bool   `json:"refluent"`
	GreedyCommands    int    `json:"greedy_commands"`
	Mergers           int    `json:"mergers"`
	Truncated         bool   `json:"truncated"`
	Elapsed           string `json:"elapsed"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench --config <file>",
		Short: "Run the merge pipeline over a synthetic workload",
		Long: `Generate a synthetic multi-replica workload and push it through the
whole pipeline: canonicalization, the refluency check, the greedy
merger, and merger enumeration capped at the configured count.

The workload is described by a CUE configuration file:

	size:    4  // grid dimension
	spread:  2  // path sparsity
	users:   4  // replica count
	mergers: 8  // enumeration cap

The same parameters always generate the same family, so two runs of one
configuration are comparable.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "CUE workload configuration file (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runBench(opts *BenchOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	started := time.Now()

	cfg, err := workload.LoadConfig(opts.Config)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid workload config", err)
	}

	w, err := workload.Generate(cfg)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to generate workload", err)
	}
	formatter.VerboseLog("generated %d sequences of %d commands in %s",
		len(w.Sequences), w.SequenceLength(), time.Since(started).Round(time.Millisecond))

	phase := time.Now()
	sets, err := w.CanonicalSets()
	if err != nil {
		formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "workload did not canonicalize", err)
	}
	canonical := 0
	for _, set := range sets {
		canonical += set.Len()
	}
	formatter.VerboseLog("canonicalized in %s", time.Since(phase).Round(time.Millisecond))

	phase = time.Now()
	refluent := merge.CheckRefluent(sets)
	greedy := merge.Greedy(sets)
	formatter.VerboseLog("refluency and greedy merge in %s", time.Since(phase).Round(time.Millisecond))

	phase = time.Now()
	enum, err := merge.AllMergers(context.Background(), sets, merge.WithMaxMergers(cfg.Mergers))
	if err != nil {
		formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "workload did not canonicalize", err)
	}
	mergers := 0
	for enum.Next() {
		mergers++
	}
	formatter.VerboseLog("enumerated %d mergers in %s", mergers, time.Since(phase).Round(time.Millisecond))

	result := BenchResult{
		Config:            opts.Config,
		Size:              cfg.Size,
		Spread:            cfg.Spread,
		Users:             cfg.Users,
		SequenceLength:    w.SequenceLength(),
		Nodes:             w.NodeCount(),
		CanonicalCommands: canonical,
		Refluent:          refluent,
		GreedyCommands:    greedy.Len(),
		Mergers:           mergers,
		Truncated:         enum.Truncated(),
		Elapsed:           time.Since(started).Round(time.Millisecond).String(),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "workload size=%d spread=%d users=%d: %d commands per replica, %d nodes\n",
		result.Size, result.Spread, result.Users, result.SequenceLength, result.Nodes)
	fmt.Fprintf(formatter.Writer, "canonical sets: %d commands total\n", result.CanonicalCommands)
	fmt.Fprintf(formatter.Writer, "refluent: %t\n", result.Refluent)
	fmt.Fprintf(formatter.Writer, "greedy merger: %d commands\n", result.GreedyCommands)
	if result.Truncated {
		fmt.Fprintf(formatter.Writer, "mergers: %d (truncated at %d)\n", result.Mergers, cfg.Mergers)
	} else {
		fmt.Fprintf(formatter.Writer, "mergers: %d\n", result.Mergers)
	}
	fmt.Fprintf(formatter.Writer, "elapsed: %s\n", result.Elapsed)
	return nil
}
