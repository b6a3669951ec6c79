package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
)

func drainStrings(t *testing.T, e *Enumeration) []string {
	t.Helper()
	var out []string
	for _, m := range e.Mergers() {
		out = append(out, m.String())
	}
	return out
}

func TestAllMergersSingleSet(t *testing.T) {
	reg := algebra.NewRegistry()

	// A full chain down to the file: branches that drop an ancestor are
	// explored and discarded as non-maximal, leaving the set itself.
	s := testSet(t, reg,
		cmd(reg, "a", algebra.Empty{}, algebra.Directory{}),
		cmd(reg, "a/b", algebra.Empty{}, algebra.Directory{}),
		cmd(reg, "a/b/c", algebra.Empty{}, file("fx")))

	e, err := AllMergers(context.Background(), []*algebra.Set{s})
	require.NoError(t, err)

	mergers := e.Mergers()
	require.Len(t, mergers, 1)
	assert.True(t, mergers[0].Equal(s))
	assert.False(t, e.Truncated())
}

func TestAllMergersDivergentNode(t *testing.T) {
	reg := algebra.NewRegistry()
	sets := []*algebra.Set{
		testSet(t, reg, cmd(reg, "a/b", algebra.Empty{}, file("f1"))),
		testSet(t, reg, cmd(reg, "a/b", algebra.Empty{}, file("f2"))),
	}

	e, err := AllMergers(context.Background(), sets)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"{<a/b|E|Ff1>}", "{<a/b|E|Ff2>}"},
		drainStrings(t, e))
}

func TestAllMergersDeleteVersusCreate(t *testing.T) {
	reg := algebra.NewRegistry()

	// One replica removed the directory, another created a file in it.
	// Each maximal merger honors one replica at the contested pair.
	sets := []*algebra.Set{
		testSet(t, reg, cmd(reg, "a", algebra.Directory{}, algebra.Empty{})),
		testSet(t, reg, cmd(reg, "a/b", algebra.Empty{}, file("f1"))),
	}

	e, err := AllMergers(context.Background(), sets)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"{<a|D|E>}", "{<a/b|E|Ff1>}"},
		drainStrings(t, e))
}

func TestAllMergersIndependentConflictsMultiply(t *testing.T) {
	reg := algebra.NewRegistry()
	sets := []*algebra.Set{
		testSet(t, reg,
			cmd(reg, "x", algebra.Empty{}, file("f1")),
			cmd(reg, "y", algebra.Empty{}, file("f1"))),
		testSet(t, reg,
			cmd(reg, "x", algebra.Empty{}, file("f2")),
			cmd(reg, "y", algebra.Empty{}, file("f2"))),
	}

	e, err := AllMergers(context.Background(), sets)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"{<x|E|Ff1>, <y|E|Ff1>}",
		"{<x|E|Ff1>, <y|E|Ff2>}",
		"{<x|E|Ff2>, <y|E|Ff1>}",
		"{<x|E|Ff2>, <y|E|Ff2>}",
	}, drainStrings(t, e))
}

func TestAllMergersSharedAncestorsDivergentLeaf(t *testing.T) {
	reg := algebra.NewRegistry()

	// Both replicas built the same directories but wrote different
	// content to the file. The shared ancestors appear in every merger;
	// only the leaf splits.
	sets := []*algebra.Set{
		testSet(t, reg,
			cmd(reg, "d1", algebra.Empty{}, algebra.Directory{}),
			cmd(reg, "d1/d2", algebra.Empty{}, algebra.Directory{}),
			cmd(reg, "d1/d2/f3", algebra.Empty{}, file("f1"))),
		testSet(t, reg,
			cmd(reg, "d1", algebra.Empty{}, algebra.Directory{}),
			cmd(reg, "d1/d2", algebra.Empty{}, algebra.Directory{}),
			cmd(reg, "d1/d2/f3", algebra.Empty{}, file("f2"))),
	}

	e, err := AllMergers(context.Background(), sets)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"{<d1|E|D>, <d1/d2|E|D>, <d1/d2/f3|E|Ff1>}",
		"{<d1|E|D>, <d1/d2|E|D>, <d1/d2/f3|E|Ff2>}",
	}, drainStrings(t, e))
}

func TestAllMergersConvergedNodeBranches(t *testing.T) {
	reg := algebra.NewRegistry()
	sets := []*algebra.Set{
		testSet(t, reg, cmd(reg, "f", algebra.Empty{}, algebra.Directory{})),
		testSet(t, reg, cmd(reg, "f", file("f1"), algebra.Directory{})),
	}

	e, err := AllMergers(context.Background(), sets)
	require.NoError(t, err)
	mergers := e.Mergers()

	require.Len(t, mergers, 2)

	// The greedy merger is among the enumerated ones.
	greedy := Greedy(sets)
	found := false
	for _, m := range mergers {
		if m.Equal(greedy) {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAllMergersFamilyYieldsGreedy(t *testing.T) {
	_, sets := compatibleFamily(t)
	require.True(t, CheckRefluent(sets))

	e, err := AllMergers(context.Background(), sets)
	require.NoError(t, err)
	mergers := e.Mergers()

	require.Len(t, mergers, 1)
	assert.True(t, mergers[0].Equal(Greedy(sets)))
	assert.False(t, e.Truncated())
}

func TestAllMergersRejectsNonCanonicalInput(t *testing.T) {
	reg := algebra.NewRegistry()
	bad := testSet(t, reg, cmd(reg, "f", file("f1"), file("f1")))

	_, err := AllMergers(context.Background(), []*algebra.Set{bad})

	assert.True(t, algebra.IsInconsistent(err))
}

func TestAllMergersEmptyFamilyPanics(t *testing.T) {
	assert.PanicsWithValue(t, "merge: empty family", func() {
		_, _ = AllMergers(context.Background(), nil)
	})
}

func TestAllMergersEmptyUnion(t *testing.T) {
	reg := algebra.NewRegistry()
	sets := []*algebra.Set{algebra.NewSet(reg), algebra.NewSet(reg)}

	e, err := AllMergers(context.Background(), sets)
	require.NoError(t, err)

	require.True(t, e.Next())
	assert.Equal(t, 0, e.Merger().Len())
	assert.False(t, e.Next())
	assert.False(t, e.Truncated())
}

func TestAllMergersMaxMergers(t *testing.T) {
	reg := algebra.NewRegistry()
	sets := []*algebra.Set{
		testSet(t, reg, cmd(reg, "f", algebra.Empty{}, file("f1"))),
		testSet(t, reg, cmd(reg, "f", algebra.Empty{}, file("f2"))),
	}

	e, err := AllMergers(context.Background(), sets, WithMaxMergers(1))
	require.NoError(t, err)

	assert.True(t, e.Next())
	assert.False(t, e.Next())
	assert.True(t, e.Truncated())
}

func TestAllMergersMaxMergersNotReached(t *testing.T) {
	reg := algebra.NewRegistry()
	sets := []*algebra.Set{
		testSet(t, reg, cmd(reg, "f", algebra.Empty{}, file("f1"))),
		testSet(t, reg, cmd(reg, "f", algebra.Empty{}, file("f2"))),
	}

	e, err := AllMergers(context.Background(), sets, WithMaxMergers(5))
	require.NoError(t, err)

	assert.Len(t, e.Mergers(), 2)
	assert.False(t, e.Truncated())
}

func TestAllMergersContextCancel(t *testing.T) {
	reg := algebra.NewRegistry()
	sets := []*algebra.Set{
		testSet(t, reg, cmd(reg, "f", algebra.Empty{}, file("f1"))),
		testSet(t, reg, cmd(reg, "f", algebra.Empty{}, file("f2"))),
	}

	ctx, cancel := context.WithCancel(context.Background())
	e, err := AllMergers(ctx, sets)
	require.NoError(t, err)

	require.True(t, e.Next())
	cancel()
	assert.False(t, e.Next())
	assert.True(t, e.Truncated())
}
