package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
)

// Session holds the named command sequences of one parsed text, all
// minted against one shared Registry.
type Session struct {
	reg   *algebra.Registry
	names []string
	seqs  map[string]*algebra.Sequence
}

// Registry returns the registry shared by every sequence in the
// session.
func (s *Session) Registry() *algebra.Registry {
	return s.reg
}

// Names returns the sequence names in declaration order.
func (s *Session) Names() []string {
	return slices.Clone(s.names)
}

// Sequence returns the named sequence, if declared.
func (s *Session) Sequence(name string) (*algebra.Sequence, bool) {
	seq, ok := s.seqs[name]
	return seq, ok
}

// CanonicalSets computes the canonical set of every sequence, in
// declaration order. The first failure is returned wrapped with the
// sequence name; the underlying *algebra.Error remains available to
// errors.As.
func (s *Session) CanonicalSets() ([]*algebra.Set, error) {
	out := make([]*algebra.Set, 0, len(s.names))
	for _, name := range s.names {
		set, err := s.seqs[name].CanonicalSet()
		if err != nil {
			return nil, fmt.Errorf("sequence %s: %w", name, err)
		}
		out = append(out, set)
	}
	return out, nil
}

// String renders the session back into the session notation, one
// sequence per line, in declaration order. The result parses back into
// an equal session.
func (s *Session) String() string {
	var b strings.Builder
	for i, name := range s.names {
		if i > 0 {
			b.WriteString(";\n")
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(s.seqs[name].String())
	}
	return b.String()
}
