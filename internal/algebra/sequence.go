package algebra

import (
	"slices"
	"strings"
)

// Sequence is an ordered list of commands as originally recorded, plus
// the Registry that minted their nodes. Construction enforces nothing
// beyond registry consistency: malformed histories are legal to
// represent so that they can be diagnosed, not silently dropped.
type Sequence struct {
	reg  *Registry
	cmds []Command

	// up holds the ephemeral ancestor annotation from AddUpPointers:
	// up[i] is the position of the nearest earlier command whose node is
	// a strict ancestor of cmds[i].Node, or -1. nil until computed;
	// scoped to this Sequence value and never carried into derived ones.
	up []int
}

// NewSequence creates a Sequence over the given commands. The slice is
// copied. Panics if any command's node was minted by a different
// Registry.
func NewSequence(reg *Registry, cmds []Command) *Sequence {
	for _, c := range cmds {
		if c.Node.reg != reg {
			panic("algebra: nodes from different registries")
		}
	}
	return &Sequence{reg: reg, cmds: slices.Clone(cmds)}
}

// Registry returns the Registry shared by the sequence's nodes.
func (s *Sequence) Registry() *Registry {
	return s.reg
}

// Len returns the number of commands.
func (s *Sequence) Len() int {
	return len(s.cmds)
}

// At returns the command at position i.
func (s *Sequence) At(i int) Command {
	return s.cmds[i]
}

// Commands returns a copy of the command list in sequence order.
func (s *Sequence) Commands() []Command {
	return slices.Clone(s.cmds)
}

// Equal reports whether both sequences hold equal commands in the same
// order.
func (s *Sequence) Equal(other *Sequence) bool {
	return slices.Equal(s.cmds, other.cmds)
}

// String renders the sequence in boundary notation, commands joined by ".".
func (s *Sequence) String() string {
	parts := make([]string, len(s.cmds))
	for i, c := range s.cmds {
		parts[i] = c.String()
	}
	return strings.Join(parts, ".")
}

// OrderByNode returns a new Sequence sorted by the node total order.
// The sort is stable: commands at the same node keep their recorded
// relative order. Up-pointer annotations do not carry over.
func (s *Sequence) OrderByNode() *Sequence {
	cmds := slices.Clone(s.cmds)
	slices.SortStableFunc(cmds, func(a, b Command) int {
		return a.Node.Compare(b.Node)
	})
	return &Sequence{reg: s.reg, cmds: cmds}
}

// AddUpPointers computes the ancestor annotation for a node-sorted
// sequence in a single pass.
//
// The pass keeps an explicit stack of positions forming the ancestor
// chain of the current node: before each command, positions whose nodes
// are not strict ancestors of the current node are popped; the remaining
// top, if any, is the up pointer. Node-sorted order visits a path's
// entire subtree as a contiguous run directly after the path itself, so
// the stack holds exactly the still-relevant ancestors and the total
// work is amortized linear.
//
// Returns CodeUnordered if the sequence is not node-sorted. The
// annotation is invalidated by any reordering; recompute after
// OrderByNode.
func (s *Sequence) AddUpPointers() error {
	up := make([]int, len(s.cmds))
	stack := make([]int, 0, 16)
	for i, c := range s.cmds {
		if i > 0 && s.cmds[i-1].Node.Compare(c.Node) > 0 {
			return NewUnorderedError(i)
		}
		for len(stack) > 0 && !s.cmds[stack[len(stack)-1]].Node.IsAncestorOf(c.Node) {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			up[i] = stack[len(stack)-1]
		} else {
			up[i] = -1
		}
		stack = append(stack, i)
	}
	s.up = up
	return nil
}

// UpPointer returns the position of the nearest earlier strict-ancestor
// command of the command at position i. ok is false when the command has
// no ancestor command in this sequence, or when AddUpPointers has not
// been run.
func (s *Sequence) UpPointer(i int) (pos int, ok bool) {
	if s.up == nil || s.up[i] < 0 {
		return 0, false
	}
	return s.up[i], true
}

// AsSet projects the sequence onto a Set, requiring one effective
// command per node. Commands at the same node collapse when identical
// and compose when they chain in sequence order; anything else is a
// CodeConflict error naming the node.
//
// Unlike CanonicalSet, AsSet neither sorts nor drops no-ops nor checks
// canonicality: it is the plain projection used when the sequence is
// already expected to describe one change per node.
func (s *Sequence) AsSet() (*Set, error) {
	out := NewSet(s.reg)
	for _, c := range s.cmds {
		prev, ok := out.Get(c.Node)
		if !ok {
			out.put(c)
			continue
		}
		switch {
		case prev == c:
			// Recorded twice; keep one.
		case prev.After == c.Before:
			out.put(compose(prev, c))
		default:
			return nil, NewConflictError(c.Node)
		}
	}
	return out, nil
}

// CanonicalSet computes the minimal canonical Set equivalent to the
// sequence: its semantic extension.
//
// Commands are grouped per node in sequence order (via a stable node
// sort) and composed into one net command from the first command's
// Before to the last command's After. Every adjacent pair in a group
// must chain, else CodeBrokenChain. Net no-ops are dropped. The result
// must be canonical; a violation means the sequence described an
// impossible history and is reported as CodeInconsistent.
func (s *Sequence) CanonicalSet() (*Set, error) {
	ordered := s.OrderByNode()
	out := NewSet(s.reg)

	cmds := ordered.cmds
	for i := 0; i < len(cmds); {
		j := i
		for j+1 < len(cmds) && cmds[j+1].Node == cmds[i].Node {
			if cmds[j].After != cmds[j+1].Before {
				return nil, NewBrokenChainError(cmds[i].Node)
			}
			j++
		}
		net := Command{Node: cmds[i].Node, Before: cmds[i].Before, After: cmds[j].After}
		if !net.IsNoop() {
			out.put(net)
		}
		i = j + 1
	}

	if v := out.CanonicalityViolation(); v != nil {
		return nil, NewInconsistentError(v)
	}
	return out, nil
}
