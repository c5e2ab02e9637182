package typesys

import (
	"strconv"
	"strings"
	"unicode"
)

// primitiveNames maps the bare-word spellings ParseTypeString recognizes to
// their singleton Type, per §4.2's "primitive names" clause.
var primitiveNames = map[string]*Type{
	"any":      Any,
	"unknown":  Unknown,
	"nil":      Nil,
	"void":     Void,
	"boolean":  Boolean,
	"number":   Number,
	"integer":  Integer,
	"string":   String,
	"function": Function,
}

// ParseTypeString parses the type-string grammar used by the definition
// registry JSON: primitive names; "T[]" arrays; "T | U | ..." unions
// (left-associative, flattened); "{ k: T, k2: T2 }" ad-hoc tables (a
// trailing "?" on the key marks it optional); bare identifiers resolving to
// Ref; quoted-string / numeric / boolean literal singletons. Anything that
// does not parse cleanly degrades to Unknown rather than erroring, since
// this feeds editor services where a bad definition file must not crash
// completion.
func ParseTypeString(s string) *Type {
	p := &typeStringParser{src: s}
	p.skipSpace()
	t := p.parseUnion()
	p.skipSpace()
	if t == nil || p.pos != len(p.src) {
		return Unknown
	}
	return t
}

type typeStringParser struct {
	src string
	pos int
}

func (p *typeStringParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeStringParser) peekByte() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeStringParser) parseUnion() *Type {
	first := p.parsePostfix()
	if first == nil {
		return nil
	}
	members := []*Type{first}
	for {
		save := p.pos
		p.skipSpace()
		if p.peekByte() != '|' {
			p.pos = save
			break
		}
		p.pos++
		p.skipSpace()
		next := p.parsePostfix()
		if next == nil {
			p.pos = save
			break
		}
		members = append(members, next)
	}
	if len(members) == 1 {
		return members[0]
	}
	return NewUnion(members...)
}

func (p *typeStringParser) parsePostfix() *Type {
	base := p.parsePrimary()
	if base == nil {
		return nil
	}
	for {
		save := p.pos
		p.skipSpace()
		if strings.HasPrefix(p.src[p.pos:], "[]") {
			p.pos += 2
			base = NewArray(base)
			continue
		}
		p.pos = save
		break
	}
	return base
}

func (p *typeStringParser) parsePrimary() *Type {
	p.skipSpace()
	switch {
	case p.peekByte() == '{':
		return p.parseTable()
	case strings.HasPrefix(p.src[p.pos:], "fun("):
		return p.parseFunctionType()
	case p.peekByte() == '"' || p.peekByte() == '\'':
		return p.parseStringLiteral()
	case p.peekByte() == '-' || isDigit(p.peekByte()):
		return p.parseNumberLiteral()
	default:
		return p.parseWordOrLiteral()
	}
}

// parseFunctionType parses "fun(name: T, ...rest: T2): R" / "fun(): void" /
// "fun(): [T, U]" — the syntax Format's formatFunction emits for a
// FunctionType, so the two round-trip. This extends beyond the bare
// grammar §4.2 enumerates for named-type fields, but the registry's own
// definition JSON describes globals and helpers as callables, so
// ParseTypeString must be able to round-trip what Format produces for them.
func (p *typeStringParser) parseFunctionType() *Type {
	p.pos += len("fun(")
	var params []*Param
	p.skipSpace()
	if p.peekByte() != ')' {
		for {
			p.skipSpace()
			vararg := false
			if strings.HasPrefix(p.src[p.pos:], "...") {
				vararg = true
				p.pos += 3
			}
			optional := false
			if !vararg && p.peekByte() == '?' {
				optional = true
				p.pos++
			}
			name := p.parseIdentRaw()
			p.skipSpace()
			if p.peekByte() != ':' {
				return nil
			}
			p.pos++
			p.skipSpace()
			paramType := p.parseUnion()
			if paramType == nil {
				return nil
			}
			params = append(params, &Param{Name: name, Type: paramType, Vararg: vararg, Optional: optional})
			p.skipSpace()
			if p.peekByte() == ',' {
				p.pos++
				continue
			}
			break
		}
	}
	p.skipSpace()
	if p.peekByte() != ')' {
		return nil
	}
	p.pos++
	p.skipSpace()
	if p.peekByte() != ':' {
		return nil
	}
	p.pos++
	p.skipSpace()

	var returns []*Type
	switch {
	case strings.HasPrefix(p.src[p.pos:], "void"):
		p.pos += len("void")
	case p.peekByte() == '[':
		p.pos++
		for {
			p.skipSpace()
			rt := p.parseUnion()
			if rt == nil {
				return nil
			}
			returns = append(returns, rt)
			p.skipSpace()
			if p.peekByte() == ',' {
				p.pos++
				continue
			}
			break
		}
		p.skipSpace()
		if p.peekByte() != ']' {
			return nil
		}
		p.pos++
	default:
		rt := p.parseUnion()
		if rt == nil {
			return nil
		}
		returns = append(returns, rt)
	}
	return NewFunctionType(params, returns)
}

func (p *typeStringParser) parseTable() *Type {
	p.pos++ // consume '{'
	table := NewTable()
	p.skipSpace()
	if p.peekByte() == '}' {
		p.pos++
		return table
	}
	for {
		p.skipSpace()
		name := p.parseIdentRaw()
		if name == "" {
			return nil
		}
		optional := false
		if p.peekByte() == '?' {
			optional = true
			p.pos++
		}
		p.skipSpace()
		if p.peekByte() != ':' {
			return nil
		}
		p.pos++
		p.skipSpace()
		fieldType := p.parseUnion()
		if fieldType == nil {
			return nil
		}
		table.AddField(&Field{Name: name, Type: fieldType, Optional: optional})
		p.skipSpace()
		if p.peekByte() == ',' {
			p.pos++
			continue
		}
		break
	}
	p.skipSpace()
	if p.peekByte() != '}' {
		return nil
	}
	p.pos++
	return table
}

func (p *typeStringParser) parseStringLiteral() *Type {
	quote := p.src[p.pos]
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil
	}
	value := p.src[start:p.pos]
	p.pos++ // consume closing quote
	return NewStringLiteral(value)
}

func (p *typeStringParser) parseNumberLiteral() *Type {
	start := p.pos
	if p.peekByte() == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	if p.pos == start {
		return nil
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil
	}
	return NewNumberLiteral(v)
}

func (p *typeStringParser) parseWordOrLiteral() *Type {
	name := p.parseIdentRaw()
	if name == "" {
		return nil
	}
	switch name {
	case "true":
		return NewBooleanLiteral(true)
	case "false":
		return NewBooleanLiteral(false)
	}
	if t, ok := primitiveNames[name]; ok {
		return t
	}
	return NewRef(name)
}

func (p *typeStringParser) parseIdentRaw() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentByte(b byte) bool {
	return b == '_' || b == '.' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || isDigit(b)
}
