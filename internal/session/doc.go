// Package session parses and renders the text notation for named
// command sequences:
//
//	a=<d1/d2|E|D>.<d1/d2/f3|E|Ff1>;
//	b=<d1|D|E>
//
// where ";" separates sequence definitions, "=" binds a name to a
// sequence, "." separates commands, "|" separates the path and the two
// values inside a command, "/" separates path components, and the first
// character of a value gives its type: E for empty, F for a file with
// the rest as content, D for a directory. Whitespace around names,
// commands and values is ignored; path components are NFC-normalized.
//
// All sequences in one session share one algebra.Registry, so equal
// paths across sequences intern to the same node.
package session
