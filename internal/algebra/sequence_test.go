package algebra

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cmd(reg *Registry, path string, before, after Value) Command {
	return Command{Node: reg.NodeFor(strings.Split(path, "/")...), Before: before, After: after}
}

func file(content string) File {
	return File{Content: content}
}

func TestNewSequenceCopiesInput(t *testing.T) {
	reg := NewRegistry()
	in := []Command{cmd(reg, "d1", Empty{}, Directory{})}

	s := NewSequence(reg, in)
	in[0] = cmd(reg, "d2", Empty{}, Directory{})

	assert.Equal(t, "d1", s.At(0).Node.String())
}

func TestNewSequencePanicsOnForeignNode(t *testing.T) {
	reg := NewRegistry()
	other := NewRegistry()
	foreign := cmd(other, "d1", Empty{}, Directory{})

	assert.PanicsWithValue(t, "algebra: nodes from different registries", func() {
		NewSequence(reg, []Command{foreign})
	})
}

func TestSequenceString(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "d1", Empty{}, Directory{}),
		cmd(reg, "d1/d2", Empty{}, file("f1")),
	})

	assert.Equal(t, "<d1|E|D>.<d1/d2|E|Ff1>", s.String())
	assert.Equal(t, "", NewSequence(reg, nil).String())
}

func TestSequenceEqual(t *testing.T) {
	reg := NewRegistry()
	a := NewSequence(reg, []Command{cmd(reg, "d1", Empty{}, Directory{})})
	b := NewSequence(reg, []Command{cmd(reg, "d1", Empty{}, Directory{})})
	c := NewSequence(reg, []Command{cmd(reg, "d1", Directory{}, Empty{})})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestOrderByNodeIsStable(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "b", Empty{}, Directory{}),
		cmd(reg, "a", Empty{}, file("f1")),
		cmd(reg, "a", file("f1"), file("f2")),
	})

	got := s.OrderByNode()

	// Commands at the same node keep their recorded relative order.
	require.Equal(t, 3, got.Len())
	assert.Equal(t, "<a|E|Ff1>", got.At(0).String())
	assert.Equal(t, "<a|Ff1|Ff2>", got.At(1).String())
	assert.Equal(t, "<b|E|D>", got.At(2).String())

	// The receiver is untouched.
	assert.Equal(t, "<b|E|D>", s.At(0).String())
}

func TestAddUpPointers(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "d1", Empty{}, Directory{}),
		cmd(reg, "d1/d2", Empty{}, Directory{}),
		cmd(reg, "d1/d2/f3", Empty{}, file("f1")),
		cmd(reg, "d1/x", Empty{}, file("f2")),
		cmd(reg, "d5", Empty{}, Directory{}),
	})

	require.NoError(t, s.AddUpPointers())

	want := []int{-1, 0, 1, 0, -1}
	for i, w := range want {
		pos, ok := s.UpPointer(i)
		if w < 0 {
			assert.False(t, ok, "position %d", i)
		} else {
			require.True(t, ok, "position %d", i)
			assert.Equal(t, w, pos, "position %d", i)
		}
	}
}

func TestAddUpPointersSkipsEqualNodes(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "d1", Empty{}, Directory{}),
		cmd(reg, "d1/f", Empty{}, file("f1")),
		cmd(reg, "d1/f", file("f1"), file("f2")),
	})

	require.NoError(t, s.AddUpPointers())

	// The second command at d1/f points past its twin to the strict
	// ancestor.
	pos, ok := s.UpPointer(2)
	require.True(t, ok)
	assert.Equal(t, 0, pos)
}

func TestAddUpPointersRejectsUnordered(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "d2", Empty{}, Directory{}),
		cmd(reg, "d1", Empty{}, Directory{}),
	})

	err := s.AddUpPointers()

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeUnordered, e.Code)

	_, ok := s.UpPointer(0)
	assert.False(t, ok)
}

func TestUpPointerBeforeComputing(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{cmd(reg, "d1", Empty{}, Directory{})})

	_, ok := s.UpPointer(0)
	assert.False(t, ok)
}

func TestAsSetCollapsesDuplicates(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "d1", Empty{}, Directory{}),
		cmd(reg, "d1", Empty{}, Directory{}),
	})

	set, err := s.AsSet()

	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestAsSetComposesChains(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "f", Empty{}, file("f1")),
		cmd(reg, "f", file("f1"), file("f2")),
	})

	set, err := s.AsSet()

	require.NoError(t, err)
	c, ok := set.Get(reg.NodeFor("f"))
	require.True(t, ok)
	assert.Equal(t, "<f|E|Ff2>", c.String())
}

func TestAsSetKeepsNetNoops(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "f", Empty{}, file("f1")),
		cmd(reg, "f", file("f1"), Empty{}),
	})

	set, err := s.AsSet()

	require.NoError(t, err)
	c, ok := set.Get(reg.NodeFor("f"))
	require.True(t, ok)
	assert.True(t, c.IsNoop())
}

func TestAsSetConflict(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "f", Empty{}, Directory{}),
		cmd(reg, "f", Empty{}, file("f1")),
	})

	_, err := s.AsSet()

	require.True(t, IsConflict(err))
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "f", e.Path)
}

func TestCanonicalSetComposesAndSorts(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "d1/d2", Empty{}, Directory{}),
		cmd(reg, "d1/d2/f3", Empty{}, file("f1")),
		cmd(reg, "d1", Empty{}, Directory{}),
	})

	set, err := s.CanonicalSet()

	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	got := set.Commands()
	assert.Equal(t, "<d1|E|D>", got[0].String())
	assert.Equal(t, "<d1/d2|E|D>", got[1].String())
	assert.Equal(t, "<d1/d2/f3|E|Ff1>", got[2].String())
}

func TestCanonicalSetComposesInterleavedRuns(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "p", Empty{}, file("f1")),
		cmd(reg, "q", Empty{}, Directory{}),
		cmd(reg, "p", file("f1"), file("f2")),
	})

	set, err := s.CanonicalSet()

	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	c, ok := set.Get(reg.NodeFor("p"))
	require.True(t, ok)
	assert.Equal(t, "<p|E|Ff2>", c.String())
}

func TestCanonicalSetDropsNetNoops(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "f", Empty{}, file("f1")),
		cmd(reg, "f", file("f1"), Empty{}),
	})

	set, err := s.CanonicalSet()

	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestCanonicalSetEmpty(t *testing.T) {
	reg := NewRegistry()

	set, err := NewSequence(reg, nil).CanonicalSet()

	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestCanonicalSetBrokenChain(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		cmds []Command
	}{
		{
			"mismatched states",
			[]Command{
				cmd(reg, "f", Empty{}, file("f1")),
				cmd(reg, "f", file("f2"), Empty{}),
			},
		},
		{
			// Two identical constructors cannot both have run.
			"repeated command",
			[]Command{
				cmd(reg, "f", Empty{}, Directory{}),
				cmd(reg, "f", Empty{}, Directory{}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSequence(reg, tt.cmds).CanonicalSet()
			assert.True(t, IsBrokenChain(err))
		})
	}
}

func TestCanonicalSetInconsistent(t *testing.T) {
	reg := NewRegistry()
	s := NewSequence(reg, []Command{
		cmd(reg, "d1", Empty{}, Directory{}),
		cmd(reg, "d1/d2/f3", Empty{}, file("f1")),
	})

	_, err := s.CanonicalSet()

	require.True(t, IsInconsistent(err))
	var e *Error
	require.ErrorAs(t, err, &e)
	require.NotNil(t, e.Violation)
	assert.Equal(t, RuleCompleteness, e.Violation.Rule)
}
