package merge

import "github.com/csirmaz/algebraic-reconciler/internal/algebra"

// Greedy computes the union merger of a refluent family in one pass:
// every commanded node resolves to its net command, and net no-ops are
// dropped. For a refluent family the result is the unique largest
// merger, containing every change any replica recorded.
//
// On a non-refluent family Greedy does not fail; nodes that cannot be
// resolved are left out of the result, which then carries no particular
// guarantee. Callers that need a verdict run CheckRefluent first.
//
// Panics on an empty family.
func Greedy(sets []*algebra.Set) *algebra.Set {
	if len(sets) == 0 {
		panic("merge: empty family")
	}
	reg := familyRegistry(sets)

	nodes, byNode := gather(sets)
	out := algebra.NewSet(reg)
	for _, n := range nodes {
		net, _, res := resolveNode(byNode[n])
		if res == unresolved || net.IsNoop() {
			continue
		}
		_ = out.Add(net)
	}
	return out
}
