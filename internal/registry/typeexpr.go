package registry

import (
	"fmt"
	"strings"
	"unicode"
)

// TypeExpr is a parsed field type such as "Deque<String>" or "Employee[]".
type TypeExpr struct {
	Name      string
	Args      []TypeExpr
	ArrayDims int
}

func (e TypeExpr) String() string {
	var b strings.Builder
	b.WriteString(e.Name)
	if len(e.Args) > 0 {
		b.WriteByte('<')
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	for i := 0; i < e.ArrayDims; i++ {
		b.WriteString("[]")
	}
	return b.String()
}

// Elem strips one array dimension.
func (e TypeExpr) Elem() TypeExpr {
	if e.ArrayDims == 0 {
		return e
	}
	e.ArrayDims--
	return e
}

// ParseTypeExpr parses a type expression of the form
//
//	Name ('<' Expr (',' Expr)* '>')? ('[]')*
//
// Qualified names ("java.util.List") keep only the last segment.
func ParseTypeExpr(s string) (TypeExpr, error) {
	p := &exprParser{src: s}
	expr, err := p.parse()
	if err != nil {
		return TypeExpr{}, fmt.Errorf("invalid type expression %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeExpr{}, fmt.Errorf("invalid type expression %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return expr, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) parse() (TypeExpr, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '.' && r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return TypeExpr{}, fmt.Errorf("expected a type name at offset %d", start)
	}
	name := p.src[start:p.pos]
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return TypeExpr{}, fmt.Errorf("empty type name at offset %d", start)
	}
	expr := TypeExpr{Name: name}

	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		for {
			arg, err := p.parse()
			if err != nil {
				return TypeExpr{}, err
			}
			expr.Args = append(expr.Args, arg)
			p.skipSpace()
			switch p.peek() {
			case ',':
				p.pos++
				continue
			case '>':
				p.pos++
			default:
				return TypeExpr{}, fmt.Errorf("expected ',' or '>' at offset %d", p.pos)
			}
			break
		}
	}

	for {
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "[]") {
			break
		}
		p.pos += 2
		expr.ArrayDims++
	}
	return expr, nil
}
