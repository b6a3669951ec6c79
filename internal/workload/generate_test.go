package workload

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csirmaz/algebraic-reconciler/internal/merge"
)

func TestGenerateFullGrid(t *testing.T) {
	// With size = 2*spread+1 every gap is within spread, so no path is
	// filtered: 5*5 file deletes + 5 directory deletes, then per column
	// (4 of them) 3 neighborhood slots with 1 conversion + 5 creations.
	w, err := Generate(Config{Size: 5, Spread: 2, Users: 2, Mergers: 1})
	require.NoError(t, err)

	require.Len(t, w.Sequences, 2)
	assert.Equal(t, 390, w.SequenceLength())
	for u, seq := range w.Sequences {
		assert.Equal(t, 390, seq.Len(), "user %d", u)
		assert.Same(t, w.Registry, seq.Registry(), "user %d", u)
	}
	assert.Greater(t, w.NodeCount(), 0)
}

func TestGenerateSpreadFiltersPaths(t *testing.T) {
	// At spread 1 on a size-6 grid only 3 of 6 residues are adjacent to
	// any component, cutting each stage down accordingly.
	w, err := Generate(Config{Size: 6, Spread: 1, Users: 2, Mergers: 1})
	require.NoError(t, err)

	assert.Equal(t, 138, w.SequenceLength())
}

func TestGenerateCommandLayout(t *testing.T) {
	w, err := Generate(Config{Size: 5, Spread: 2, Users: 2, Mergers: 1})
	require.NoError(t, err)

	seq := w.Sequences[0]

	// User 0 starts by deleting its own column, files before directory.
	assert.Equal(t, "<0/0/0|F0:0:0|E>", seq.At(0).String())
	assert.Equal(t, "<0/0/4|F0:0:4|E>", seq.At(4).String())
	assert.Equal(t, "<0/0|D|E>", seq.At(5).String())

	// The rebuild stage follows: convert a neighbor's file, then fill it.
	assert.Equal(t, "<0/1/4|F0:1:4|D>", seq.At(30).String())
	assert.Equal(t, "<0/1/4/0|E|F::1>", seq.At(31).String())
}

func TestGeneratePerReplicaCanonical(t *testing.T) {
	w, err := Generate(Config{Size: 5, Spread: 2, Users: 3, Mergers: 1})
	require.NoError(t, err)

	sets, err := w.CanonicalSets()
	require.NoError(t, err)
	require.Len(t, sets, 3)

	for u, set := range sets {
		assert.True(t, set.IsCanonical(), "replica %d set should be canonical", u)
		assert.Greater(t, set.Len(), 0, "replica %d", u)
	}
}

func TestGenerateFamilyConflicts(t *testing.T) {
	w, err := Generate(Config{Size: 5, Spread: 2, Users: 2, Mergers: 1})
	require.NoError(t, err)

	sets, err := w.CanonicalSets()
	require.NoError(t, err)

	// Replicas delete subtrees their neighbors rebuild, so the family is
	// never refluent.
	assert.False(t, merge.CheckRefluent(sets))
}

func TestGenerateUniqueContent(t *testing.T) {
	w, err := Generate(Config{Size: 5, Spread: 2, Users: 2, Mergers: 1})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, seq := range w.Sequences {
		for i := 0; i < seq.Len(); i++ {
			after := seq.At(i).After.String()
			if !strings.HasPrefix(after, "F::") {
				continue
			}
			assert.False(t, seen[after], "content %s issued twice", after)
			seen[after] = true
		}
	}
	assert.NotEmpty(t, seen)
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{Size: 6, Spread: 1, Users: 2, Mergers: 1}

	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)

	for u := range a.Sequences {
		assert.Equal(t, a.Sequences[u].String(), b.Sequences[u].String(), "user %d", u)
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero spread", Config{Size: 5, Spread: 0, Users: 2, Mergers: 1}},
		{"grid too small", Config{Size: 4, Spread: 1, Users: 2, Mergers: 1}},
		{"neighborhood overflow", Config{Size: 5, Spread: 3, Users: 2, Mergers: 1}},
		{"single user", Config{Size: 5, Spread: 2, Users: 1, Mergers: 1}},
		{"too many users", Config{Size: 5, Spread: 2, Users: 5, Mergers: 1}},
		{"zero mergers", Config{Size: 5, Spread: 2, Users: 2, Mergers: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestGenerateEnumerationFindsMerger(t *testing.T) {
	w, err := Generate(Config{Size: 5, Spread: 2, Users: 2, Mergers: 1})
	require.NoError(t, err)

	sets, err := w.CanonicalSets()
	require.NoError(t, err)

	enum, err := merge.AllMergers(context.Background(), sets, merge.WithMaxMergers(1))
	require.NoError(t, err)

	require.True(t, enum.Next(), "a conflicting family still has mergers")
	merger := enum.Merger()
	assert.True(t, merger.IsCanonical())
	assert.Greater(t, merger.Len(), 0)

	assert.False(t, enum.Next(), "the cap stops enumeration after one merger")
	assert.True(t, enum.Truncated())
}
