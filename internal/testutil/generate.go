package testutil

import (
	"math/rand"
	"strconv"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
)

// Generator mints pseudo-random nodes, values, and commands over a small
// path alphabet, so generated nodes nest and collide often. A fixed seed
// reproduces the exact stream, keeping cross-check failures replayable.
type Generator struct {
	rng *rand.Rand
	reg *algebra.Registry
}

// NewGenerator creates a Generator with its own Registry.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		reg: algebra.NewRegistry(),
	}
}

// Registry returns the registry backing every generated node.
func (g *Generator) Registry() *algebra.Registry {
	return g.reg
}

// Node returns a node between one and maxDepth components deep, each
// component drawn from a three-letter alphabet.
func (g *Generator) Node(maxDepth int) algebra.Node {
	parts := make([]string, 1+g.rng.Intn(maxDepth))
	for i := range parts {
		parts[i] = string(rune('a' + g.rng.Intn(3)))
	}
	return g.reg.NodeFor(parts...)
}

// Value returns E, D, or a file with one of three contents.
func (g *Generator) Value() algebra.Value {
	switch g.rng.Intn(3) {
	case 0:
		return algebra.Empty{}
	case 1:
		return algebra.Directory{}
	}
	return algebra.File{Content: "f" + strconv.Itoa(g.rng.Intn(3))}
}

// Command returns a command at a random node with random endpoints.
// No-ops come out at the natural rate; filter with IsNoop if unwanted.
func (g *Generator) Command(maxDepth int) algebra.Command {
	return algebra.Command{Node: g.Node(maxDepth), Before: g.Value(), After: g.Value()}
}

// Sequence returns n random commands in generation order.
func (g *Generator) Sequence(n, maxDepth int) *algebra.Sequence {
	cmds := make([]algebra.Command, n)
	for i := range cmds {
		cmds[i] = g.Command(maxDepth)
	}
	return algebra.NewSequence(g.reg, cmds)
}

// Set returns a set of at most n commands, one per distinct node.
// Node collisions keep the earlier command, so the set usually comes
// out smaller than n.
func (g *Generator) Set(n, maxDepth int) *algebra.Set {
	set := algebra.NewSet(g.reg)
	for i := 0; i < n; i++ {
		c := g.Command(maxDepth)
		if _, ok := set.Get(c.Node); ok {
			continue
		}
		_ = set.Add(c)
	}
	return set
}
