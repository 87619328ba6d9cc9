// Package selector implements the CSS-like compound selectors filter tokens are
// written in, matched against item classes, element ids and fields.
//
// Supported forms, freely concatenated:
//
//	*            any item
//	tag          type selectors match any item (items carry no element type)
//	.class       item has class
//	#id          item element id
//	[field]      item has field
//	[field=v]    field text equals v (v may be quoted)
//	:not(...)    none of the comma-separated compounds inside match
package selector

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/itemfilter/internal/domain/item"
)

type kind int

const (
	kindAny kind = iota
	kindClass
	kindID
	kindAttr
	kindNot
)

type simple struct {
	kind   kind
	name   string
	value  string
	hasVal bool
	not    []Selector
}

// Selector is a parsed compound selector: every part must match.
type Selector struct {
	src   string
	parts []simple
}

// String returns the source text.
func (s Selector) String() string { return s.src }

// Match reports whether it satisfies every part of the selector.
func (s Selector) Match(it item.Item) bool {
	for _, p := range s.parts {
		if !p.match(it) {
			return false
		}
	}
	return true
}

func (p simple) match(it item.Item) bool {
	switch p.kind {
	case kindAny:
		return true
	case kindClass:
		return it.HasClass(p.name)
	case kindID:
		return it.ElementID() == p.name
	case kindAttr:
		v, ok := it.Field(p.name)
		if !ok {
			return false
		}
		return !p.hasVal || v == p.value
	case kindNot:
		for _, n := range p.not {
			if n.Match(it) {
				return false
			}
		}
		return true
	}
	return false
}

// Parse parses a compound selector.
func Parse(src string) (Selector, error) {
	p := &parser{src: src}
	sel, err := p.compound()
	if err != nil {
		return Selector{}, err
	}
	if p.pos != len(p.src) {
		return Selector{}, p.errorf("unexpected %q", p.src[p.pos])
	}
	return sel, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("selector %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// compound parses parts until end of input, ',' or ')'.
func (p *parser) compound() (Selector, error) {
	start := p.pos
	var parts []simple

loop:
	for p.pos < len(p.src) {
		switch c := p.peek(); {
		case c == ',' || c == ')':
			break loop
		case c == '*':
			p.pos++
			parts = append(parts, simple{kind: kindAny})
		case c == '.':
			p.pos++
			name, err := p.ident()
			if err != nil {
				return Selector{}, err
			}
			parts = append(parts, simple{kind: kindClass, name: name})
		case c == '#':
			p.pos++
			name, err := p.ident()
			if err != nil {
				return Selector{}, err
			}
			parts = append(parts, simple{kind: kindID, name: name})
		case c == '[':
			part, err := p.attr()
			if err != nil {
				return Selector{}, err
			}
			parts = append(parts, part)
		case c == ':':
			part, err := p.pseudo()
			if err != nil {
				return Selector{}, err
			}
			parts = append(parts, part)
		case isIdentByte(c):
			if _, err := p.ident(); err != nil {
				return Selector{}, err
			}
			parts = append(parts, simple{kind: kindAny})
		default:
			return Selector{}, p.errorf("unexpected %q", c)
		}
	}

	if len(parts) == 0 {
		return Selector{}, p.errorf("empty selector")
	}
	return Selector{src: p.src[start:p.pos], parts: parts}, nil
}

func (p *parser) ident() (string, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("identifier expected")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) attr() (simple, error) {
	p.pos++ // [
	name, err := p.ident()
	if err != nil {
		return simple{}, err
	}
	part := simple{kind: kindAttr, name: name}

	if p.peek() == '=' {
		p.pos++
		part.hasVal = true
		switch q := p.peek(); q {
		case '"', '\'':
			p.pos++
			end := strings.IndexByte(p.src[p.pos:], q)
			if end < 0 {
				return simple{}, p.errorf("unterminated string")
			}
			part.value = p.src[p.pos : p.pos+end]
			p.pos += end + 1
		default:
			start := p.pos
			for p.pos < len(p.src) && p.src[p.pos] != ']' {
				p.pos++
			}
			part.value = p.src[start:p.pos]
		}
	}

	if p.peek() != ']' {
		return simple{}, p.errorf("']' expected")
	}
	p.pos++
	return part, nil
}

func (p *parser) pseudo() (simple, error) {
	const notOpen = ":not("
	if !strings.HasPrefix(p.src[p.pos:], notOpen) {
		return simple{}, p.errorf("only :not() is supported")
	}
	p.pos += len(notOpen)

	part := simple{kind: kindNot}
	for {
		sel, err := p.compound()
		if err != nil {
			return simple{}, err
		}
		part.not = append(part.not, sel)

		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return part, nil
		default:
			return simple{}, p.errorf("')' expected")
		}
	}
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
