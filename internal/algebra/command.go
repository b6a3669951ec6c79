package algebra

import "fmt"

// Command is the atomic unit of recorded change: it asserts that the
// state at Node went from Before to After. Commands are value types and
// comparable; == tests node identity and structural value equality.
//
// Before and After must be non-nil; Commands are built from a parsed
// session or from Registry-minted nodes, never from zero values.
type Command struct {
	Node   Node
	Before Value
	After  Value
}

// IsNoop reports whether the command changes nothing.
func (c Command) IsNoop() bool {
	return c.Before == c.After
}

// IsConstructor reports whether the command raises the type at its node
// (Empty toward Directory).
func (c Command) IsConstructor() bool {
	return c.After.Kind() > c.Before.Kind()
}

// IsDestructor reports whether the command lowers the type at its node
// (Directory toward Empty).
func (c Command) IsDestructor() bool {
	return c.After.Kind() < c.Before.Kind()
}

// String renders the command in boundary notation, e.g. "<d1/d2|E|D>".
func (c Command) String() string {
	return fmt.Sprintf("<%s|%s|%s>", c.Node, c.Before, c.After)
}

// compose merges two chained commands at one node into their net effect.
// The caller has already verified a.After == b.Before.
func compose(a, b Command) Command {
	return Command{Node: a.Node, Before: a.Before, After: b.After}
}
