package workload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
)

// Workload is a family of synthetic per-replica command sequences sharing
// one registry.
type Workload struct {
	Config    Config
	Registry  *algebra.Registry
	Sequences []*algebra.Sequence
}

// Generate builds one command sequence per user over a size*size*size grid.
//
// The filesystem every replica starts from has directories at depths 1 and
// 2 and files at depth 3 whose content spells out the path ("i:j:k").
// Paths only exist where adjacent components are within spread of each
// other modulo size, which keeps the grid sparse but regular.
//
// User u records, in order:
//   - deletion of every file under */u, then of the directories */u
//   - for each x in {u-1, u, u+1} mod size: conversion of the files i/j/x
//     (j != u) into directories, each immediately filled with size fresh
//     files carrying globally unique content
//
// Each replica's sequence collapses to a canonical set on its own. Across
// replicas the family conflicts on purpose: neighbors rebuild the very
// subtrees their peers delete, and the depth-4 files diverge because every
// replica invents its own content.
func Generate(cfg Config) (*Workload, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	g := &generator{cfg: cfg, reg: algebra.NewRegistry()}
	seqs := make([]*algebra.Sequence, cfg.Users)
	for u := 0; u < cfg.Users; u++ {
		seqs[u] = algebra.NewSequence(g.reg, g.userCommands(u))
	}

	return &Workload{Config: cfg, Registry: g.reg, Sequences: seqs}, nil
}

// SequenceLength returns the number of commands each replica records.
// The grid is rotation-symmetric, so every replica records the same count.
func (w *Workload) SequenceLength() int {
	if len(w.Sequences) == 0 {
		return 0
	}
	return w.Sequences[0].Len()
}

// NodeCount returns the number of distinct nodes the workload touched,
// intermediate directories included.
func (w *Workload) NodeCount() int {
	return w.Registry.Len()
}

// CanonicalSets collapses each replica's sequence into its canonical set.
func (w *Workload) CanonicalSets() ([]*algebra.Set, error) {
	sets := make([]*algebra.Set, len(w.Sequences))
	for i, seq := range w.Sequences {
		set, err := seq.CanonicalSet()
		if err != nil {
			return nil, fmt.Errorf("replica %d: %w", i, err)
		}
		sets[i] = set
	}
	return sets, nil
}

type generator struct {
	cfg     Config
	reg     *algebra.Registry
	content int
}

func (g *generator) userCommands(user int) []algebra.Command {
	size := g.cfg.Size
	var cmds []algebra.Command

	// Tear down the user's own column: files first, then the directory
	// above them, so destructors run deepest first.
	for i := 0; i < size; i++ {
		for k := 0; k < size; k++ {
			path := []int{i, user, (user + k) % size}
			if !g.validPath(path) {
				continue
			}
			cmds = append(cmds, g.command(path, algebra.Empty{}))
		}
		path := []int{i, user}
		if !g.validPath(path) {
			continue
		}
		cmds = append(cmds, g.command(path, algebra.Empty{}))
	}

	// Rebuild the neighborhood of the user's index in every other column:
	// existing files become directories and gain size fresh children.
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if j == user {
				continue
			}
			for x := -1; x <= 1; x++ {
				k := ((user+x)%size + size) % size
				path := []int{i, j, k}
				if !g.validPath(path) {
					continue
				}
				cmds = append(cmds, g.command(path, algebra.Directory{}))
				for l := 0; l < size; l++ {
					cmds = append(cmds, g.command([]int{i, j, k, l}, g.uniqueContent()))
				}
			}
		}
	}

	return cmds
}

// validPath reports whether adjacent components stay within spread of each
// other modulo size. Only the first two gaps are constrained; the fourth
// level can spread out freely.
func (g *generator) validPath(path []int) bool {
	limit := min(len(path), 3) - 1
	for i := 0; i < limit; i++ {
		d := ((path[i]-path[i+1])%g.cfg.Size + g.cfg.Size) % g.cfg.Size
		if d > g.cfg.Spread && d < g.cfg.Size-g.cfg.Spread {
			return false
		}
	}
	return true
}

func (g *generator) command(path []int, after algebra.Value) algebra.Command {
	components := make([]string, len(path))
	for i, p := range path {
		components[i] = strconv.Itoa(p)
	}
	return algebra.Command{
		Node:   g.reg.NodeFor(components...),
		Before: g.originalValue(path),
		After:  after,
	}
}

// originalValue is the value a path holds in the starting filesystem:
// directories down to depth 2, content-bearing files at depth 3, nothing
// below that.
func (g *generator) originalValue(path []int) algebra.Value {
	switch {
	case len(path) < 3:
		return algebra.Directory{}
	case len(path) == 3:
		parts := make([]string, len(path))
		for i, p := range path {
			parts[i] = strconv.Itoa(p)
		}
		return algebra.File{Content: strings.Join(parts, ":")}
	default:
		return algebra.Empty{}
	}
}

// uniqueContent returns file content no other command in the workload
// carries, so concurrent creations always diverge.
func (g *generator) uniqueContent() algebra.Value {
	g.content++
	return algebra.File{Content: fmt.Sprintf("::%d", g.content)}
}
