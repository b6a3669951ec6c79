package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
	"github.com/csirmaz/algebraic-reconciler/internal/session"
)

// AssertionError is returned when a scenario expectation fails.
// It includes the full trace so the failure shows the derivation that
// produced the unexpected value.
type AssertionError struct {
	Type     string       // Expectation type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with expectation type
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Full trace for context
	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		if event.Label != "" {
			fmt.Fprintf(&buf, "  [%d] %s %s: %s\n", i+1, event.Op, event.Label, event.Detail)
		} else {
			fmt.Fprintf(&buf, "  [%d] %s: %s\n", i+1, event.Op, event.Detail)
		}
	}

	return buf.String()
}

// assertParseError checks that session parsing failed with the expected code.
func assertParseError(expectedCode string, err error, trace []TraceEvent) error {
	var perr *session.ParseError
	switch {
	case err == nil:
		return &AssertionError{
			Type:     "parse_error",
			Expected: fmt.Sprintf("parse failure with code %s", expectedCode),
			Actual:   "session parsed without error",
			Trace:    trace,
		}
	case !errors.As(err, &perr):
		return &AssertionError{
			Type:     "parse_error",
			Expected: fmt.Sprintf("parse failure with code %s", expectedCode),
			Actual:   fmt.Sprintf("non-parse error: %v", err),
			Trace:    trace,
		}
	case perr.Code != expectedCode:
		return &AssertionError{
			Type:     "parse_error",
			Expected: fmt.Sprintf("code %s", expectedCode),
			Actual:   perr.Error(),
			Trace:    trace,
		}
	}
	return nil
}

// assertCanonical checks the canonical set text computed for one sequence.
func assertCanonical(label, expected, actual string, trace []TraceEvent) error {
	if actual == expected {
		return nil
	}
	return &AssertionError{
		Type:     fmt.Sprintf("canonical[%s]", label),
		Expected: expected,
		Actual:   actual,
		Trace:    trace,
	}
}

// assertCanonicalError checks that canonicalizing one sequence failed with
// the expected algebra error code.
func assertCanonicalError(label, expectedCode string, err error, trace []TraceEvent) error {
	typ := fmt.Sprintf("canonical_error[%s]", label)

	var aerr *algebra.Error
	switch {
	case err == nil:
		return &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("canonicalization failure with code %s", expectedCode),
			Actual:   "sequence canonicalized without error",
			Trace:    trace,
		}
	case !errors.As(err, &aerr):
		return &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("canonicalization failure with code %s", expectedCode),
			Actual:   fmt.Sprintf("non-algebra error: %v", err),
			Trace:    trace,
		}
	case aerr.Code != algebra.Code(expectedCode):
		return &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("code %s", expectedCode),
			Actual:   aerr.Error(),
			Trace:    trace,
		}
	}
	return nil
}

// assertRefluent checks the family refluence verdict.
func assertRefluent(expected, actual bool, trace []TraceEvent) error {
	if actual == expected {
		return nil
	}
	return &AssertionError{
		Type:     "refluent",
		Expected: fmt.Sprintf("%t", expected),
		Actual:   fmt.Sprintf("%t", actual),
		Trace:    trace,
	}
}

// assertGreedy checks the set text of the greedy merger.
func assertGreedy(expected, actual string, trace []TraceEvent) error {
	if actual == expected {
		return nil
	}
	return &AssertionError{
		Type:     "greedy",
		Expected: expected,
		Actual:   actual,
		Trace:    trace,
	}
}

// assertMergerCount checks the number of maximal mergers enumerated.
func assertMergerCount(expected, actual int, trace []TraceEvent) error {
	if actual == expected {
		return nil
	}
	return &AssertionError{
		Type:     "mergers",
		Expected: fmt.Sprintf("%d mergers", expected),
		Actual:   fmt.Sprintf("%d mergers", actual),
		Trace:    trace,
	}
}

// assertMergersInclude checks that one expected set text appears among the
// enumerated mergers.
func assertMergersInclude(expected string, mergers []string, trace []TraceEvent) error {
	for _, m := range mergers {
		if m == expected {
			return nil
		}
	}
	return &AssertionError{
		Type:     "mergers_include",
		Expected: expected,
		Actual:   fmt.Sprintf("not found among %d enumerated mergers", len(mergers)),
		Trace:    trace,
	}
}
