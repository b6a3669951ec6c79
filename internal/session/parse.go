package session

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/csirmaz/algebraic-reconciler/internal/algebra"
)

// Parse processes session text into named sequences over one fresh
// Registry. The first syntax error is returned as a *ParseError.
func Parse(text string) (*Session, error) {
	p := &parser{src: text, reg: algebra.NewRegistry()}
	s := &Session{reg: p.reg, seqs: make(map[string]*algebra.Sequence)}

	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		if _, dup := s.seqs[name]; dup {
			return nil, p.errorf(ErrDuplicateName, "sequence %q defined twice", name)
		}
		cmds, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		s.names = append(s.names, name)
		s.seqs[name] = algebra.NewSequence(p.reg, cmds)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return s, nil
		}
		if p.src[p.pos] != ';' {
			return nil, p.errorf(ErrMalformedInput, "expected ';' between sequences, found %q", p.src[p.pos])
		}
		p.pos++
	}
}

type parser struct {
	src string
	pos int
	reg *algebra.Registry
}

func (p *parser) errorf(code string, format string, args ...any) *ParseError {
	return &ParseError{Offset: p.pos, Code: code, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

func (p *parser) parseName() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	name := p.src[start:p.pos]
	if name == "" {
		return "", p.errorf(ErrMissingName, "sequence name expected")
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '=' {
		return "", p.errorf(ErrMissingAssign, "expected '=' after sequence name %q", name)
	}
	p.pos++
	return name, nil
}

func (p *parser) parseSequence() ([]algebra.Command, error) {
	var cmds []algebra.Command
	for {
		c, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == '.' {
			p.pos++
			continue
		}
		return cmds, nil
	}
}

func (p *parser) parseCommand() (algebra.Command, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return algebra.Command{}, p.errorf(ErrMalformedInput, "expected '<' to open a command")
	}
	p.pos++

	pathField, err := p.field('|')
	if err != nil {
		return algebra.Command{}, err
	}
	node, err := p.pathNode(pathField)
	if err != nil {
		return algebra.Command{}, err
	}
	beforeField, err := p.field('|')
	if err != nil {
		return algebra.Command{}, err
	}
	before, err := p.value(beforeField)
	if err != nil {
		return algebra.Command{}, err
	}
	afterField, err := p.field('>')
	if err != nil {
		return algebra.Command{}, err
	}
	after, err := p.value(afterField)
	if err != nil {
		return algebra.Command{}, err
	}
	return algebra.Command{Node: node, Before: before, After: after}, nil
}

// field consumes input up to the delimiter, which is also consumed, and
// returns the text between with surrounding whitespace trimmed.
func (p *parser) field(delim byte) (string, error) {
	start := p.pos
	for p.pos < len(p.src) {
		if p.src[p.pos] == delim {
			text := strings.TrimSpace(p.src[start:p.pos])
			p.pos++
			return text, nil
		}
		p.pos++
	}
	return "", p.errorf(ErrMalformedInput, "expected %q before end of input", string(delim))
}

func (p *parser) pathNode(field string) (algebra.Node, error) {
	if field == "" {
		return algebra.Node{}, p.errorf(ErrEmptyPath, "command path is empty")
	}
	parts := strings.Split(field, "/")
	for i, part := range parts {
		if part == "" {
			return algebra.Node{}, p.errorf(ErrEmptyPath, "empty component in path %q", field)
		}
		parts[i] = norm.NFC.String(part)
	}
	return p.reg.NodeFor(parts...), nil
}

func (p *parser) value(field string) (algebra.Value, error) {
	if field == "" {
		return nil, p.errorf(ErrBadValue, "value expected")
	}
	kind, content := field[0], field[1:]
	switch kind {
	case 'E':
		if content != "" {
			return nil, p.errorf(ErrTrailingContent, "empty value carries content %q", content)
		}
		return algebra.Empty{}, nil
	case 'F':
		return algebra.File{Content: content}, nil
	case 'D':
		if content != "" {
			return nil, p.errorf(ErrTrailingContent, "directory value carries content %q", content)
		}
		return algebra.Directory{}, nil
	default:
		return nil, p.errorf(ErrBadValue, "value must start with E, F or D, found %q", string(kind))
	}
}
