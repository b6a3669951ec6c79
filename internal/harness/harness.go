// Package harness executes declarative reconciliation scenarios.
//
// A scenario names a session in command notation plus the expectations to
// check against it: canonical set texts per sequence, the family refluence
// verdict, the greedy merger, and the enumerated maximal mergers. The
// runner performs the full pipeline on the real algebra and records every
// step in a trace stamped by a deterministic clock, so a failing
// expectation reports the derivation that produced the unexpected value
// and a passing run can be compared against a golden trace snapshot.
package harness

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
	"github.com/csirmaz/algebraic-reconciler/internal/merge"
	"github.com/csirmaz/algebraic-reconciler/internal/session"
	"github.com/csirmaz/algebraic-reconciler/internal/testutil"
)

// outcome collects everything the pipeline computed for one scenario.
// Expectations are evaluated against it after tracing completes.
type outcome struct {
	parseErr  error
	labels    []string
	canonical map[string]string // label -> canonical set text
	canonErr  map[string]error  // label -> canonicalization error
	refluent  bool
	greedy    string
	mergers   []string
	ran       bool // family-level pipeline ran (all sequences canonicalized)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Parse the session
//  2. Canonicalize each sequence
//  3. Check family refluence, compute the greedy merger, enumerate all
//     maximal mergers (steps 3+ only when every sequence canonicalized)
//  4. Evaluate expectations against the computed values
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewDeterministicClock()
	result := NewResult()

	out, err := execute(scenario, result, clock)
	if err != nil {
		return nil, err
	}

	evaluate(scenario, out, result)
	return result, nil
}

// execute runs the pipeline and fills the trace.
func execute(scenario *Scenario, result *Result, clock *testutil.DeterministicClock) (*outcome, error) {
	out := &outcome{
		canonical: make(map[string]string),
		canonErr:  make(map[string]error),
	}

	sess, err := session.Parse(scenario.Session)
	if err != nil {
		out.parseErr = err
		result.AddTrace("parse", "", "error: "+err.Error(), clock.Next())
		return out, nil
	}

	out.labels = sess.Names()
	result.AddTrace("parse", "", strings.Join(out.labels, " "), clock.Next())

	var sets []*algebra.Set
	for _, label := range out.labels {
		seq, ok := sess.Sequence(label)
		if !ok {
			return nil, fmt.Errorf("session lost sequence %q", label)
		}
		set, err := seq.CanonicalSet()
		if err != nil {
			out.canonErr[label] = err
			result.AddTrace("canonical", label, "error: "+err.Error(), clock.Next())
			continue
		}
		text := set.String()
		out.canonical[label] = text
		result.AddTrace("canonical", label, text, clock.Next())
		sets = append(sets, set)
	}

	if len(out.canonErr) > 0 {
		return out, nil
	}

	out.ran = true
	out.refluent = merge.CheckRefluent(sets)
	result.AddTrace("refluent", "", strconv.FormatBool(out.refluent), clock.Next())

	out.greedy = merge.Greedy(sets).String()
	result.AddTrace("greedy", "", out.greedy, clock.Next())

	// Scenarios are small; enumeration runs uncapped.
	enum, err := merge.AllMergers(context.Background(), sets)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate mergers: %w", err)
	}
	for enum.Next() {
		text := enum.Merger().String()
		out.mergers = append(out.mergers, text)
		result.AddTrace("merger", "", text, clock.Next())
	}
	result.AddTrace("mergers", "", strconv.Itoa(len(out.mergers)), clock.Next())

	return out, nil
}

// evaluate checks every declared expectation against the computed outcome
// and records failures on the result.
func evaluate(scenario *Scenario, out *outcome, result *Result) {
	e := scenario.Expect

	if e.ParseError != "" {
		if err := assertParseError(e.ParseError, out.parseErr, result.Trace); err != nil {
			result.AddError(err.Error())
		}
		return
	}
	if out.parseErr != nil {
		result.AddError(fmt.Sprintf("failed to parse session: %v", out.parseErr))
		return
	}

	known := make(map[string]bool, len(out.labels))
	for _, label := range out.labels {
		known[label] = true
	}

	for _, label := range sortedKeys(e.Canonical) {
		if !known[label] {
			result.AddError(fmt.Sprintf("canonical expectation references unknown sequence %q", label))
			continue
		}
		actual, ok := out.canonical[label]
		if !ok {
			actual = "error: " + out.canonErr[label].Error()
		}
		if err := assertCanonical(label, e.Canonical[label], actual, result.Trace); err != nil {
			result.AddError(err.Error())
		}
	}

	for _, label := range sortedKeys(e.CanonicalError) {
		if !known[label] {
			result.AddError(fmt.Sprintf("canonical_error expectation references unknown sequence %q", label))
			continue
		}
		if err := assertCanonicalError(label, e.CanonicalError[label], out.canonErr[label], result.Trace); err != nil {
			result.AddError(err.Error())
		}
	}

	if !out.ran {
		for _, name := range familyExpectations(e) {
			result.AddError(fmt.Sprintf("cannot evaluate %s: not all sequences canonicalized", name))
		}
		return
	}

	if e.Refluent != nil {
		if err := assertRefluent(*e.Refluent, out.refluent, result.Trace); err != nil {
			result.AddError(err.Error())
		}
	}
	if e.Greedy != "" {
		if err := assertGreedy(e.Greedy, out.greedy, result.Trace); err != nil {
			result.AddError(err.Error())
		}
	}
	if e.Mergers != nil {
		if err := assertMergerCount(*e.Mergers, len(out.mergers), result.Trace); err != nil {
			result.AddError(err.Error())
		}
	}
	for _, want := range e.MergersInclude {
		if err := assertMergersInclude(want, out.mergers, result.Trace); err != nil {
			result.AddError(err.Error())
		}
	}
}

// familyExpectations names the declared expectations that need every
// sequence canonicalized before they can be evaluated.
func familyExpectations(e Expectations) []string {
	var names []string
	if e.Refluent != nil {
		names = append(names, "refluent")
	}
	if e.Greedy != "" {
		names = append(names, "greedy")
	}
	if e.Mergers != nil {
		names = append(names, "mergers")
	}
	if len(e.MergersInclude) > 0 {
		names = append(names, "mergers_include")
	}
	return names
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
