package algebra

import (
	"slices"
	"strings"
)

// Set is a collection of commands with at most one command per node,
// keyed by node identity. It is the unordered normal form the merge
// layer works over: which change happens at each path, with no claim
// about execution order. Use Ordered to recover an executable Sequence.
type Set struct {
	reg  *Registry
	cmds map[Node]Command
}

// NewSet creates an empty Set over the given Registry.
func NewSet(reg *Registry) *Set {
	return &Set{reg: reg, cmds: make(map[Node]Command)}
}

// Registry returns the Registry shared by the set's nodes.
func (s *Set) Registry() *Registry {
	return s.reg
}

// Add inserts a command. Re-adding an identical command is a no-op;
// adding a different command at an already-commanded node is a
// CodeConflict error. Panics if the command's node was minted by a
// different Registry.
func (s *Set) Add(c Command) error {
	if c.Node.reg != s.reg {
		panic("algebra: nodes from different registries")
	}
	if prev, ok := s.cmds[c.Node]; ok {
		if prev == c {
			return nil
		}
		return NewConflictError(c.Node)
	}
	s.cmds[c.Node] = c
	return nil
}

// put replaces whatever is stored at the command's node. Internal;
// callers have already resolved any collision.
func (s *Set) put(c Command) {
	s.cmds[c.Node] = c
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	out := NewSet(s.reg)
	for n, c := range s.cmds {
		out.cmds[n] = c
	}
	return out
}

// Len returns the number of commands.
func (s *Set) Len() int {
	return len(s.cmds)
}

// Get returns the command at the given node, if any.
func (s *Set) Get(n Node) (Command, bool) {
	c, ok := s.cmds[n]
	return c, ok
}

// Commands returns the commands in node order as a fresh slice.
func (s *Set) Commands() []Command {
	out := make([]Command, 0, len(s.cmds))
	for _, c := range s.cmds {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Command) int {
		return a.Node.Compare(b.Node)
	})
	return out
}

// Equal reports whether both sets hold exactly the same commands.
func (s *Set) Equal(other *Set) bool {
	if len(s.cmds) != len(other.cmds) {
		return false
	}
	for n, c := range s.cmds {
		oc, ok := other.cmds[n]
		if !ok || oc != c {
			return false
		}
	}
	return true
}

// Ordered arranges the set's commands into a Sequence that can be
// executed against a filesystem satisfying every command's Before
// state: destructors run first, deepest node first, so children are
// removed before their parents; constructors and edits follow in node
// order, so parents are built before their children.
//
// For a canonical set the result round-trips: Ordered().CanonicalSet()
// equals the original set.
func (s *Set) Ordered() *Sequence {
	all := s.Commands()

	cmds := make([]Command, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].IsDestructor() {
			cmds = append(cmds, all[i])
		}
	}
	for _, c := range all {
		if !c.IsDestructor() {
			cmds = append(cmds, c)
		}
	}
	return &Sequence{reg: s.reg, cmds: cmds}
}

// String renders the set in boundary notation, node-sorted, wrapped in
// braces.
func (s *Set) String() string {
	cmds := s.Commands()
	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = c.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
