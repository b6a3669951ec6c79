package merge

import (
	"slices"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
)

// familyRegistry returns the registry shared by all sets, panicking on a
// mix. Returns nil for an empty family.
func familyRegistry(sets []*algebra.Set) *algebra.Registry {
	if len(sets) == 0 {
		return nil
	}
	reg := sets[0].Registry()
	for _, s := range sets[1:] {
		if s.Registry() != reg {
			panic("merge: sets from different registries")
		}
	}
	return reg
}

// gather collects every command in the family, grouped by node. Within a
// node, commands keep family order: set order first, and sets themselves
// list commands in node order. The returned nodes are sorted in the node
// total order.
func gather(sets []*algebra.Set) ([]algebra.Node, map[algebra.Node][]algebra.Command) {
	byNode := make(map[algebra.Node][]algebra.Command)
	var nodes []algebra.Node
	for _, s := range sets {
		for _, c := range s.Commands() {
			if _, seen := byNode[c.Node]; !seen {
				nodes = append(nodes, c.Node)
			}
			byNode[c.Node] = append(byNode[c.Node], c)
		}
	}
	slices.SortFunc(nodes, func(a, b algebra.Node) int {
		return a.Compare(b)
	})
	return nodes, byNode
}

// resolution classifies how the commands recorded at one node relate
// across the family.
type resolution int

const (
	// unresolved: divergent or otherwise irreconcilable recordings.
	unresolved resolution = iota
	// resolvedSingle: one distinct command.
	resolvedSingle
	// resolvedConverged: several distinct commands ending in the same
	// state.
	resolvedConverged
	// resolvedChain: the commands form one unambiguous chain, each
	// starting where another ends.
	resolvedChain
)

// resolveNode reduces the commands recorded at one node to a single net
// command where possible. It returns the net command, the distinct
// commands in family order, and the classification.
//
// A single distinct command is its own net. Convergent commands resolve
// to the earliest recorded one, since they agree on the final state. A
// chain resolves to its composition, from the chain's first state to its
// last, which may be a no-op the caller drops. Anything else, divergent
// writes included, is unresolved and the net command is meaningless.
func resolveNode(cmds []algebra.Command) (algebra.Command, []algebra.Command, resolution) {
	distinct := make([]algebra.Command, 0, len(cmds))
	for _, c := range cmds {
		if !slices.Contains(distinct, c) {
			distinct = append(distinct, c)
		}
	}
	if len(distinct) == 1 {
		return distinct[0], distinct, resolvedSingle
	}

	converged := true
	for _, c := range distinct[1:] {
		if c.After != distinct[0].After {
			converged = false
			break
		}
	}
	if converged {
		return distinct[0], distinct, resolvedConverged
	}

	if net, ok := composeChain(distinct); ok {
		return net, distinct, resolvedChain
	}
	return algebra.Command{}, distinct, unresolved
}

// composeChain links the distinct commands into one sequence of states
// and returns the net command from the chain's first state to its last.
// There must be exactly one command whose input no other command
// produces, and from it every remaining command must follow uniquely.
func composeChain(cmds []algebra.Command) (algebra.Command, bool) {
	start := -1
	for i, c := range cmds {
		produced := false
		for j, o := range cmds {
			if j != i && o.After == c.Before {
				produced = true
				break
			}
		}
		if !produced {
			if start >= 0 {
				return algebra.Command{}, false
			}
			start = i
		}
	}
	if start < 0 {
		// Every input is produced by another command: a cycle.
		return algebra.Command{}, false
	}

	used := make([]bool, len(cmds))
	used[start] = true
	net := cmds[start]
	for range cmds[1:] {
		next := -1
		for i, c := range cmds {
			if used[i] || c.Before != net.After {
				continue
			}
			if next >= 0 {
				return algebra.Command{}, false
			}
			next = i
		}
		if next < 0 {
			return algebra.Command{}, false
		}
		used[next] = true
		net = algebra.Command{Node: net.Node, Before: net.Before, After: cmds[next].After}
	}
	return net, true
}
