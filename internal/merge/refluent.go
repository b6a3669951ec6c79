package merge

import "github.com/csirmaz/algebraic-reconciler/internal/algebra"

// CheckRefluent reports whether the family of command sets can be
// reconciled without discarding any recorded change.
//
// The family is refluent when every input set is canonical, every node
// commanded by more than one set resolves to a single net command, and
// the union of the resolutions, net no-ops dropped, is itself canonical.
// A family of one canonical set is always refluent, and so is the empty
// family.
func CheckRefluent(sets []*algebra.Set) bool {
	if len(sets) == 0 {
		return true
	}
	reg := familyRegistry(sets)
	for _, s := range sets {
		if !s.IsCanonical() {
			return false
		}
	}

	nodes, byNode := gather(sets)
	union := algebra.NewSet(reg)
	for _, n := range nodes {
		net, _, res := resolveNode(byNode[n])
		if res == unresolved {
			return false
		}
		if net.IsNoop() {
			continue
		}
		_ = union.Add(net)
	}
	return union.IsCanonical()
}
