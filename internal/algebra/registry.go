package algebra

import "strings"

// nodeID indexes the registry's entry arena.
type nodeID int32

// entry is one interned path in the arena. The parent relation is stored
// as an arena index, never as a pointer, so entries contain no cycles and
// reordering callers cannot leave dangling references.
type entry struct {
	parent    nodeID // -1 for top-level paths
	component string
	depth     int32
}

// childKey identifies one child slot under an interned parent. Keying the
// lookup map by (parent, component) avoids joining components into a
// string key, so components may contain any character.
type childKey struct {
	parent    nodeID
	component string
}

// Registry assigns a unique, comparable identity to every filesystem path
// referenced within one session scope. All Sequences and Sets that are
// operated on together must share a single Registry.
//
// Interning a path also interns all of its prefixes, so parent identities
// are always available without allocation.
//
// Thread-safety: NodeFor mutates the Registry and must be serialized
// (single-writer discipline). Lookups of already-interned paths and all
// Node methods are read-only and safe once population is complete.
// Distinct Registries share no state and may be used fully in parallel.
type Registry struct {
	entries []entry
	index   map[childKey]nodeID
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[childKey]nodeID),
	}
}

// NodeFor returns the unique Node for the given path components, interning
// the path (and its prefixes) on first use. Calling twice with equal paths
// returns identities that compare equal; distinct paths never share a Node.
//
// Panics if the path is empty or any component is the empty string; paths
// are non-empty sequences of non-empty components.
func (r *Registry) NodeFor(components ...string) Node {
	if len(components) == 0 {
		panic("algebra: empty path")
	}
	parent := nodeID(-1)
	for _, c := range components {
		if c == "" {
			panic("algebra: empty path component")
		}
		key := childKey{parent: parent, component: c}
		id, ok := r.index[key]
		if !ok {
			id = nodeID(len(r.entries))
			r.entries = append(r.entries, entry{
				parent:    parent,
				component: c,
				depth:     r.depthOf(parent) + 1,
			})
			r.index[key] = id
		}
		parent = id
	}
	return Node{reg: r, id: parent}
}

// Len reports how many distinct paths the Registry has interned,
// including prefixes created implicitly.
func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) depthOf(id nodeID) int32 {
	if id < 0 {
		return 0
	}
	return r.entries[id].depth
}

// Node is the canonical identity of one filesystem path within a Registry.
// Nodes are small value types; comparing with == tests path identity.
// Nodes carry no mutable state and remain valid for the Registry's lifetime.
type Node struct {
	reg *Registry
	id  nodeID
}

// sameRegistry panics unless both Nodes were minted by the same Registry.
// Mixing registries is a programming error, signaled rather than tolerated.
func (n Node) sameRegistry(other Node) {
	if n.reg != other.reg {
		panic("algebra: nodes from different registries")
	}
}

// Depth returns the number of path components.
func (n Node) Depth() int {
	return int(n.reg.entries[n.id].depth)
}

// Name returns the final path component.
func (n Node) Name() string {
	return n.reg.entries[n.id].component
}

// Path returns the node's components, outermost first. The returned slice
// is freshly allocated.
func (n Node) Path() []string {
	depth := n.Depth()
	out := make([]string, depth)
	id := n.id
	for i := depth - 1; i >= 0; i-- {
		out[i] = n.reg.entries[id].component
		id = n.reg.entries[id].parent
	}
	return out
}

// Parent returns the Node for all components but the last. ok is false
// for top-level paths, which have no parent Node.
func (n Node) Parent() (parent Node, ok bool) {
	p := n.reg.entries[n.id].parent
	if p < 0 {
		return Node{}, false
	}
	return Node{reg: n.reg, id: p}, true
}

// Compare implements the total order over Nodes: lexicographic comparison
// component by component, with a strict prefix sorting before its
// extensions. Returns -1, 0, or +1.
//
// The comparison walks parent chains in the arena and allocates nothing.
func (n Node) Compare(other Node) int {
	n.sameRegistry(other)
	if n.id == other.id {
		return 0
	}
	reg := n.reg

	// Align both nodes at the shallower depth.
	x, y := n.id, other.id
	dx, dy := reg.entries[x].depth, reg.entries[y].depth
	for dx > dy {
		x = reg.entries[x].parent
		dx--
	}
	for dy > dx {
		y = reg.entries[y].parent
		dy--
	}

	if x == y {
		// One path is a strict prefix of the other; the prefix sorts first.
		if n.Depth() < other.Depth() {
			return -1
		}
		return 1
	}

	// Walk up in lockstep until the parents merge; the entries just below
	// the merge point hold the first differing components.
	for reg.entries[x].parent != reg.entries[y].parent {
		x = reg.entries[x].parent
		y = reg.entries[y].parent
	}
	return strings.Compare(reg.entries[x].component, reg.entries[y].component)
}

// IsAncestorOf reports whether n's path is a strict prefix of other's.
// A node is not its own ancestor.
func (n Node) IsAncestorOf(other Node) bool {
	n.sameRegistry(other)
	d := other.Depth() - n.Depth()
	if d <= 0 {
		return false
	}
	id := other.id
	for ; d > 0; d-- {
		id = n.reg.entries[id].parent
	}
	return id == n.id
}

// IsParentOf reports whether n is the immediate parent of other.
func (n Node) IsParentOf(other Node) bool {
	n.sameRegistry(other)
	return other.reg.entries[other.id].parent == n.id
}

// String renders the path with components joined by "/".
func (n Node) String() string {
	return strings.Join(n.Path(), "/")
}
