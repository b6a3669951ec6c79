package cli

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csirmaz/algebraic-reconciler/internal/harness"
)

// TestOptions holds configuration for the test command.
type TestOptions struct {
	*RootOptions
	Filter string
	Update bool
}

// ScenarioOutcome reports one executed scenario.
type ScenarioOutcome struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Passed  bool     `json:"passed"`
	Updated bool     `json:"golden_updated,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// TestRunResult aggregates the outcomes of a scenario directory.
type TestRunResult struct {
	Directory string            `json:"directory"`
	Total     int               `json:"total"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Updated   int               `json:"updated,omitempty"`
	Scenarios []ScenarioOutcome `json:"scenarios"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-dir>",
		Short: "Run declarative reconciliation scenarios",
		Long: `Run every YAML scenario under a directory and report the outcomes.

A scenario declares a session and expectations over it: canonical sets,
the refluency verdict, the greedy merger, or the enumerated mergers.
Each run also produces a trace of the pipeline. When a golden trace file
exists in a golden directory beside the scenario directory, the trace
must match it; --update rewrites the golden files from the current
traces instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenarios whose name matches this glob")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden trace files from the current runs")

	return cmd
}

func runTest(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		formatter.Error("ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to discover scenarios", err)
	}
	if len(files) == 0 {
		message := fmt.Sprintf("no scenario files found in %s", dir)
		if opts.Filter != "" {
			message += fmt.Sprintf(" matching %q", opts.Filter)
		}
		formatter.Error("ERROR", message, nil)
		return NewExitError(ExitCommandError, message)
	}

	result := TestRunResult{Directory: dir, Total: len(files)}
	for _, path := range files {
		outcome := runTestScenario(path, opts.Update)
		if outcome.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		if outcome.Updated {
			result.Updated++
		}
		result.Scenarios = append(result.Scenarios, outcome)
	}

	if result.Failed > 0 {
		return outputTestFailure(formatter, result)
	}
	return outputTestSuccess(formatter, result)
}

// runTestScenario executes one scenario file. Expectation failures and a
// stale golden trace both fail the scenario; a missing golden file does
// not, so new scenarios can be written expectations first.
func runTestScenario(path string, update bool) ScenarioOutcome {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outcome := ScenarioOutcome{Name: name, Path: path}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		outcome.Errors = append(outcome.Errors, err.Error())
		return outcome
	}

	result, err := harness.Run(scenario)
	if err != nil {
		outcome.Errors = append(outcome.Errors, err.Error())
		return outcome
	}
	outcome.Errors = append(outcome.Errors, result.Errors...)

	traceJSON, err := harness.MarshalTrace(scenario.Name, result)
	if err != nil {
		outcome.Errors = append(outcome.Errors, err.Error())
		return outcome
	}

	goldenPath := goldenFilePath(path, name)
	if update {
		if err := writeGolden(goldenPath, traceJSON); err != nil {
			outcome.Errors = append(outcome.Errors, err.Error())
			return outcome
		}
		outcome.Updated = true
	} else if recorded, err := os.ReadFile(goldenPath); err == nil {
		if !bytes.Equal(recorded, traceJSON) {
			outcome.Errors = append(outcome.Errors,
				fmt.Sprintf("trace differs from %s; re-run with --update if the change is intended", goldenPath))
		}
	}

	outcome.Passed = len(outcome.Errors) == 0
	return outcome
}

// findScenarioFiles collects the .yaml/.yml files under dir, optionally
// keeping only those whose basename matches the filter glob.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			ok, merr := filepath.Match(filter, name)
			if merr != nil {
				return fmt.Errorf("invalid filter %q: %w", filter, merr)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// goldenFilePath locates the golden trace for a scenario file: a golden
// directory beside the directory the scenario lives in.
func goldenFilePath(scenarioPath, name string) string {
	return filepath.Clean(filepath.Join(filepath.Dir(scenarioPath), "..", "golden", name+".golden"))
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func outputTestSuccess(formatter *OutputFormatter, result TestRunResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	for _, outcome := range result.Scenarios {
		fmt.Fprintf(formatter.Writer, "%s %s\n", okMark(), outcome.Name)
	}
	summary := fmt.Sprintf("%d %s: %d passed",
		result.Total, pluralize(result.Total, "scenario", "scenarios"), result.Passed)
	if result.Updated > 0 {
		summary += fmt.Sprintf(", %d %s updated",
			result.Updated, pluralize(result.Updated, "golden", "goldens"))
	}
	fmt.Fprintln(formatter.Writer, summary)
	return nil
}

func outputTestFailure(formatter *OutputFormatter, result TestRunResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: "SCENARIO_FAILED", Message: fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total)},
		}
		if err := formatter.encodeJSON(response); err != nil {
			return err
		}
	} else {
		for _, outcome := range result.Scenarios {
			if outcome.Passed {
				fmt.Fprintf(formatter.Writer, "%s %s\n", okMark(), outcome.Name)
				continue
			}
			fmt.Fprintf(formatter.Writer, "%s %s\n", conflictMark(), outcome.Name)
			for _, msg := range outcome.Errors {
				for _, line := range strings.Split(msg, "\n") {
					fmt.Fprintf(formatter.Writer, "  %s\n", line)
				}
			}
		}
		fmt.Fprintf(formatter.Writer, "%d %s: %d passed, %d failed\n",
			result.Total, pluralize(result.Total, "scenario", "scenarios"), result.Passed, result.Failed)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
}
