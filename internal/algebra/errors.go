package algebra

import (
	"errors"
	"fmt"
)

// Code categorizes algebra errors.
type Code string

const (
	// CodeBrokenChain indicates consecutive commands at one node whose
	// values do not chain during canonicalization.
	CodeBrokenChain Code = "BROKEN_CHAIN"

	// CodeConflict indicates multiple commands at one node that cannot be
	// merged into a single effective command.
	CodeConflict Code = "CONFLICT"

	// CodeInconsistent indicates a composed result that violates the
	// structural-consistency rules, i.e. the input described an
	// impossible history.
	CodeInconsistent Code = "INCONSISTENT"

	// CodeUnordered indicates an operation whose precondition is a
	// node-sorted sequence was called on an unsorted one.
	CodeUnordered Code = "UNORDERED"
)

// Error is the structured error type for algebra operations. Path names
// the offending node where one is known; Violation carries the failed
// canonicality rule for CodeInconsistent.
type Error struct {
	Code      Code
	Path      string
	Message   string
	Violation *Violation
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBrokenChainError creates an Error for a node whose commands do not
// follow one another.
func NewBrokenChainError(node Node) *Error {
	return &Error{
		Code:    CodeBrokenChain,
		Path:    node.String(),
		Message: "consecutive commands at node do not chain",
	}
}

// NewConflictError creates an Error for a node commanded in ways that
// cannot collapse to a single command.
func NewConflictError(node Node) *Error {
	return &Error{
		Code:    CodeConflict,
		Path:    node.String(),
		Message: "multiple non-chaining commands at node",
	}
}

// NewInconsistentError wraps a canonicality violation found in a composed
// result.
func NewInconsistentError(v *Violation) *Error {
	return &Error{
		Code:      CodeInconsistent,
		Path:      v.Command.Node.String(),
		Message:   v.String(),
		Violation: v,
	}
}

// NewUnorderedError creates an Error for a sequence that is not
// node-sorted at the given position.
func NewUnorderedError(pos int) *Error {
	return &Error{
		Code:    CodeUnordered,
		Message: fmt.Sprintf("sequence is not node-sorted at position %d", pos),
	}
}

// IsBrokenChain reports whether err is an algebra Error with
// CodeBrokenChain. Uses errors.As to handle wrapped errors.
func IsBrokenChain(err error) bool {
	return hasCode(err, CodeBrokenChain)
}

// IsConflict reports whether err is an algebra Error with CodeConflict.
func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

// IsInconsistent reports whether err is an algebra Error with
// CodeInconsistent.
func IsInconsistent(err error) bool {
	return hasCode(err, CodeInconsistent)
}

func hasCode(err error, code Code) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
