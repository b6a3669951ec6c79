package merge

import (
	"context"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
)

// EnumerationOption configures AllMergers.
type EnumerationOption func(*Enumeration)

// WithMaxMergers bounds how many mergers the enumeration yields before
// stopping with Truncated reporting true. Zero or negative means
// unbounded.
func WithMaxMergers(n int) EnumerationOption {
	return func(e *Enumeration) {
		e.limit = n
	}
}

// Enumeration iterates over the maximal mergers of a family of command
// sets, one Next call at a time:
//
//	en, err := merge.AllMergers(ctx, sets)
//	...
//	for en.Next() {
//	    use(en.Merger())
//	}
//	if en.Truncated() { ... }
//
// The search space is explored only as far as Next has been called; the
// full set of mergers is never materialized. Not safe for concurrent
// use.
type Enumeration struct {
	ctx context.Context
	reg *algebra.Registry

	// Union nodes in node order with the commands a merger may adopt at
	// each; descEnd[i] is one past the contiguous run of union nodes
	// strictly below nodes[i].
	nodes   []algebra.Node
	cands   [][]algebra.Command
	descEnd []int

	limit   int
	yielded int

	// Depth-first search state, kept explicitly so iteration can stop at
	// any yield and resume from it.
	stack   []frame
	chosen  map[algebra.Node]algebra.Command
	skipped []int

	current   *algebra.Set
	started   bool
	done      bool
	truncated bool
}

// frame is one level of the search: the union node it assigns and the
// choices still to try there. applied is the index of the choice
// currently in effect, or -1.
type frame struct {
	idx     int
	choices []choice
	next    int
	applied int
}

// choice either adopts one candidate command or leaves the node out of
// the merger.
type choice struct {
	skip bool
	cmd  algebra.Command
}

// AllMergers enumerates every maximal merger of the family as a lazy,
// restartable iterator. Each input set must be canonical; the first
// violation is returned as a CodeInconsistent error. The family need not
// be refluent: irreconcilable recordings are exactly what makes the
// enumeration branch, one merger per way of deciding them.
//
// Enumeration stops early, with Truncated reporting true, when ctx is
// cancelled or the WithMaxMergers bound is reached.
//
// Panics on an empty family.
func AllMergers(ctx context.Context, sets []*algebra.Set, opts ...EnumerationOption) (*Enumeration, error) {
	if len(sets) == 0 {
		panic("merge: empty family")
	}
	reg := familyRegistry(sets)
	for _, s := range sets {
		if v := s.CanonicalityViolation(); v != nil {
			return nil, algebra.NewInconsistentError(v)
		}
	}

	e := &Enumeration{
		ctx:    ctx,
		reg:    reg,
		chosen: make(map[algebra.Node]algebra.Command),
	}
	for _, opt := range opts {
		opt(e)
	}

	nodes, byNode := gather(sets)
	for _, n := range nodes {
		cands := candidates(byNode[n])
		if len(cands) == 0 {
			// The node's commands compose to a no-op; no merger commands it.
			continue
		}
		e.nodes = append(e.nodes, n)
		e.cands = append(e.cands, cands)
	}
	e.descEnd = make([]int, len(e.nodes))
	for i, n := range e.nodes {
		j := i + 1
		for j < len(e.nodes) && n.IsAncestorOf(e.nodes[j]) {
			j++
		}
		e.descEnd[i] = j
	}
	return e, nil
}

// candidates lists the commands a merger may adopt at one node. A node
// whose recordings resolve to a single net change offers exactly that
// change, or nothing when the net is a no-op. Convergent and divergent
// recordings offer each distinct command, one branch per recording.
func candidates(cmds []algebra.Command) []algebra.Command {
	net, distinct, res := resolveNode(cmds)
	switch res {
	case resolvedSingle, resolvedChain:
		if net.IsNoop() {
			return nil
		}
		return []algebra.Command{net}
	default:
		return distinct
	}
}

// Next advances to the next maximal merger, returning false when the
// search space is exhausted, the context is cancelled, or the merger
// bound is reached.
func (e *Enumeration) Next() bool {
	if e.done || e.truncated {
		return false
	}
	if e.limit > 0 && e.yielded >= e.limit {
		e.truncated = true
		return false
	}
	if !e.started {
		e.started = true
		if len(e.nodes) == 0 {
			// Nothing is commanded; the empty merger is the only one.
			e.done = true
			e.current = algebra.NewSet(e.reg)
			e.yielded++
			return true
		}
		e.stack = append(e.stack, e.newFrame(0))
	}

	for {
		if e.ctx.Err() != nil {
			e.truncated = true
			return false
		}
		if len(e.stack) == 0 {
			e.done = true
			return false
		}
		top := &e.stack[len(e.stack)-1]
		if top.applied >= 0 {
			e.undo(top)
		}
		if top.next >= len(top.choices) {
			e.stack = e.stack[:len(e.stack)-1]
			continue
		}
		ch := top.choices[top.next]
		top.applied = top.next
		top.next++
		e.apply(top.idx, ch)

		if top.idx+1 < len(e.nodes) {
			e.stack = append(e.stack, e.newFrame(top.idx+1))
			continue
		}
		if m, ok := e.leaf(); ok {
			e.current = m
			e.yielded++
			return true
		}
	}
}

// Merger returns the merger the last successful Next produced. The set
// is the caller's to keep; later calls do not modify it.
func (e *Enumeration) Merger() *algebra.Set {
	return e.current
}

// Truncated reports whether enumeration stopped at the configured bound
// or on context cancellation rather than by exhausting the search space.
func (e *Enumeration) Truncated() bool {
	return e.truncated
}

// newFrame prepares the choices at a union node given the commands
// already chosen at its ancestors. Candidates that cannot sit under the
// nearest chosen ancestor are unavailable on this branch. Leaving the
// node out is tried when nothing fits, and also when a fitting candidate
// could block a candidate at a node below: the skip then frees the
// descendants, and leaf keeps the branch only if the skip turned out
// necessary.
func (e *Enumeration) newFrame(idx int) frame {
	anc, hasAnc := e.nearestChosenAncestor(e.nodes[idx])
	var fits []algebra.Command
	for _, c := range e.cands[idx] {
		if hasAnc && algebra.PairViolation(c, anc) != nil {
			continue
		}
		fits = append(fits, c)
	}

	choices := make([]choice, 0, len(fits)+1)
	for _, c := range fits {
		choices = append(choices, choice{cmd: c})
	}
	if len(fits) == 0 || e.conflictsDown(idx, fits) {
		choices = append(choices, choice{skip: true})
	}
	return frame{idx: idx, choices: choices, applied: -1}
}

func (e *Enumeration) nearestChosenAncestor(n algebra.Node) (algebra.Command, bool) {
	for p, ok := n.Parent(); ok; p, ok = p.Parent() {
		if c, found := e.chosen[p]; found {
			return c, true
		}
	}
	return algebra.Command{}, false
}

// conflictsDown reports whether some fitting candidate at this node
// violates the pair rules against some candidate at a union node below
// it. The gap form of the rules is used even when intermediate nodes
// might end up commanded, which can only add skip branches; unnecessary
// ones are discarded at the leaves.
func (e *Enumeration) conflictsDown(idx int, fits []algebra.Command) bool {
	for _, c := range fits {
		for j := idx + 1; j < e.descEnd[idx]; j++ {
			for _, d := range e.cands[j] {
				if algebra.PairViolation(d, c) != nil {
					return true
				}
			}
		}
	}
	return false
}

func (e *Enumeration) apply(idx int, ch choice) {
	if ch.skip {
		e.skipped = append(e.skipped, idx)
		return
	}
	e.chosen[e.nodes[idx]] = ch.cmd
}

// undo reverts the frame's applied choice. Frames unwind strictly
// innermost first, so a skip to revert is always the last one recorded.
func (e *Enumeration) undo(f *frame) {
	if f.choices[f.applied].skip {
		e.skipped = e.skipped[:len(e.skipped)-1]
	} else {
		delete(e.chosen, e.nodes[f.idx])
	}
	f.applied = -1
}

// leaf builds the merger for the completed assignment and keeps it only
// if it is maximal: every skipped node must be genuinely blocked, with
// no candidate that the merger could still absorb. A skip with an
// absorbable candidate means a strictly larger merger exists on another
// branch, so this one is dropped rather than yielded.
func (e *Enumeration) leaf() (*algebra.Set, bool) {
	m := algebra.NewSet(e.reg)
	for _, c := range e.chosen {
		_ = m.Add(c)
	}
	for _, idx := range e.skipped {
		for _, c := range e.cands[idx] {
			ext := m.Clone()
			_ = ext.Add(c)
			if ext.IsCanonical() {
				return nil, false
			}
		}
	}
	return m, true
}

// Mergers drains the remaining mergers into a slice, in yield order.
// Families with many conflicts can have exponentially many mergers;
// combine with WithMaxMergers when draining untrusted input.
func (e *Enumeration) Mergers() []*algebra.Set {
	var out []*algebra.Set
	for e.Next() {
		out = append(out, e.Merger())
	}
	return out
}
