package algebra

// Kind identifies the shape of a filesystem position. The constants are
// ordered: KindEmpty < KindFile < KindDir. This order runs from leaves
// toward roots and is what makes a command a constructor or destructor.
type Kind int

const (
	// KindEmpty marks the absence of any filesystem object.
	KindEmpty Kind = iota
	// KindFile marks a regular file.
	KindFile
	// KindDir marks a directory.
	KindDir
)

// String returns the kind's single-letter notation.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "E"
	case KindFile:
		return "F"
	case KindDir:
		return "D"
	default:
		return "?"
	}
}

// Value is a sealed interface over the closed set of filesystem states:
// Empty, File, and Directory. Only those three types implement it, so a
// type switch over Value is exhaustive. All three are comparable; == on
// Values is structural equality.
type Value interface {
	Kind() Kind
	String() string
	value() // sealed
}

// Empty denotes that nothing exists at a node.
type Empty struct{}

func (Empty) value() {}

// Kind returns KindEmpty.
func (Empty) Kind() Kind { return KindEmpty }

// String returns the boundary notation "E".
func (Empty) String() string { return "E" }

// File denotes a regular file. Content stands in for the file's contents
// or a summary of them; equality is by content.
type File struct {
	Content string
}

func (File) value() {}

// Kind returns KindFile.
func (File) Kind() Kind { return KindFile }

// String returns the boundary notation "F" followed by the content.
func (f File) String() string { return "F" + f.Content }

// Directory denotes a directory. Directories carry no content of their
// own; their children are separate nodes.
type Directory struct{}

func (Directory) value() {}

// Kind returns KindDir.
func (Directory) Kind() Kind { return KindDir }

// String returns the boundary notation "D".
func (Directory) String() string { return "D" }

// Present reports whether the value denotes an existing object, that is,
// a File or Directory rather than Empty.
func Present(v Value) bool {
	return v.Kind() != KindEmpty
}
