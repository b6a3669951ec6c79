package algebra

import "fmt"

// Rule identifies which canonical-form rule a Violation breaks.
type Rule int

const (
	// RuleMinimality forbids no-op commands.
	RuleMinimality Rule = iota + 1
	// RuleTypeValidity requires that whenever a commanded node carries
	// content before (after) the changes, its nearest commanded strict
	// ancestor provides a directory before (after) the changes.
	RuleTypeValidity
	// RuleCompleteness covers the uncommanded gap between a command and
	// its nearest commanded strict ancestor: nodes in the gap never
	// change state, so content below the gap forces the ancestor to hold
	// a directory on both sides.
	RuleCompleteness
)

func (r Rule) String() string {
	switch r {
	case RuleMinimality:
		return "minimality"
	case RuleTypeValidity:
		return "type-validity"
	case RuleCompleteness:
		return "completeness"
	default:
		return "unknown"
	}
}

// Violation describes one broken canonical-form rule: the offending
// command, the ancestor command involved when the rule relates two
// nodes, and a rendered message.
type Violation struct {
	Rule     Rule
	Command  Command
	Ancestor *Command
	Message  string
}

func (v *Violation) String() string {
	return v.Rule.String() + ": " + v.Message
}

// IsCanonical reports whether the set satisfies the canonical-form
// rules.
func (s *Set) IsCanonical() bool {
	return s.CanonicalityViolation() == nil
}

// CanonicalityViolation checks the set against the canonical-form rules
// and returns the first violation in node order, or nil if the set is
// canonical.
//
// The check is a single pass over the node-sorted commands with a stack
// of the current node's commanded ancestors, so each command is compared
// only against its nearest commanded strict ancestor. Violations against
// farther ancestors are implied: a passing (command, nearest ancestor)
// pair certifies the ancestor chain above it link by link.
func (s *Set) CanonicalityViolation() *Violation {
	cmds := s.Commands()
	stack := make([]Command, 0, 16)
	for _, c := range cmds {
		if c.IsNoop() {
			return &Violation{
				Rule:    RuleMinimality,
				Command: c,
				Message: fmt.Sprintf("%s is a no-op", c),
			}
		}
		for len(stack) > 0 && !stack[len(stack)-1].Node.IsAncestorOf(c.Node) {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			if v := PairViolation(c, stack[len(stack)-1]); v != nil {
				return v
			}
		}
		stack = append(stack, c)
	}
	return nil
}

// PairViolation checks command c against a, the command at c's nearest
// commanded strict ancestor, and returns the violated rule, or nil when
// the pair is compatible. a's node must be a strict ancestor of c's.
func PairViolation(c, a Command) *Violation {
	if Present(c.Before) && a.Before.Kind() != KindDir {
		return &Violation{
			Rule:     RuleTypeValidity,
			Command:  c,
			Ancestor: &a,
			Message:  fmt.Sprintf("%s carries content before the changes, but %s starts from %s, not a directory", c, a.Node, a.Before),
		}
	}
	if Present(c.After) && a.After.Kind() != KindDir {
		return &Violation{
			Rule:     RuleTypeValidity,
			Command:  c,
			Ancestor: &a,
			Message:  fmt.Sprintf("%s carries content after the changes, but %s ends at %s, not a directory", c, a.Node, a.After),
		}
	}
	if !a.Node.IsParentOf(c.Node) && (Present(c.Before) || Present(c.After)) {
		if a.Before.Kind() != KindDir || a.After.Kind() != KindDir {
			return &Violation{
				Rule:     RuleCompleteness,
				Command:  c,
				Ancestor: &a,
				Message:  fmt.Sprintf("nodes between %s and %s are uncommanded, so %s must be a directory on both sides", a.Node, c.Node, a.Node),
			}
		}
	}
	return nil
}
