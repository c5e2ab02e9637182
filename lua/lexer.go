package lua

import (
	"fmt"
	"strings"
)

// Lexer scans Lua source text into a stream of tokens. It is line/column
// aware so tokens carry a full Loc in addition to a byte Range, matching
// what the parser needs to build node locations without a second pass.
type Lexer struct {
	src    []byte
	offset int
	line   int
	column int
}

// NewLexer creates a scanner positioned at the start of src.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src, line: 1, column: 1}
}

func (l *Lexer) pos() Position { return Position{Line: l.line, Column: l.column} }

func (l *Lexer) peekByte() byte {
	if l.offset >= len(l.src) {
		return 0
	}
	return l.src[l.offset]
}

func (l *Lexer) peekByteAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}

func (l *Lexer) advance() byte {
	c := l.src[l.offset]
	l.offset++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.offset < len(l.src) {
		c := l.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '-' && l.peekByteAt(1) == '-':
			l.advance()
			l.advance()
			if ok, _ := l.tryLongBracket(); ok {
				continue
			}
			for l.offset < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// tryLongBracket consumes a `[=*[ ... ]=*]` long-bracket body if one begins
// at the current offset. Used for both long comments and long strings.
func (l *Lexer) tryLongBracket() (bool, string) {
	start := l.offset
	startLine, startCol := l.line, l.column
	if l.peekByte() != '[' {
		return false, ""
	}
	save := *l
	l.advance()
	level := 0
	for l.peekByte() == '=' {
		level++
		l.advance()
	}
	if l.peekByte() != '[' {
		*l = save
		return false, ""
	}
	l.advance()
	if l.peekByte() == '\n' {
		l.advance()
	}
	contentStart := l.offset
	closer := "]" + strings.Repeat("=", level) + "]"
	idx := strings.Index(string(l.src[l.offset:]), closer)
	if idx < 0 {
		// Unterminated long bracket: consume to EOF, caller's retry-on-error
		// handles reporting.
		for l.offset < len(l.src) {
			l.advance()
		}
		_ = start
		_ = startLine
		_ = startCol
		return true, string(l.src[contentStart:l.offset])
	}
	content := string(l.src[contentStart : contentStart+idx])
	for l.offset < contentStart+idx+len(closer) {
		l.advance()
	}
	return true, content
}

// Scan returns the next token, or a TokenEOF at end of input.
func (l *Lexer) Scan() Token {
	l.skipWhitespaceAndComments()
	startOffset := l.offset
	startPos := l.pos()
	if l.offset >= len(l.src) {
		return Token{Kind: TokenEOF, Range: Range{startOffset, startOffset}, Loc: Loc{startPos, startPos}}
	}

	c := l.peekByte()
	switch {
	case isNameStart(c):
		for l.offset < len(l.src) && isNamePart(l.peekByte()) {
			l.advance()
		}
		name := string(l.src[startOffset:l.offset])
		kind := TokenName
		if isKeyword(name) {
			kind = TokenKeyword
		}
		return Token{Kind: kind, Value: name, Range: Range{startOffset, l.offset}, Loc: Loc{startPos, l.pos()}}

	case isDigit(c) || (c == '.' && isDigit(l.peekByteAt(1))):
		return l.scanNumber(startOffset, startPos)

	case c == '"' || c == '\'':
		return l.scanQuotedString(startOffset, startPos)

	case c == '[' && (l.peekByteAt(1) == '[' || l.peekByteAt(1) == '='):
		if ok, content := l.tryLongBracket(); ok {
			return Token{Kind: TokenString, Value: content, Range: Range{startOffset, l.offset}, Loc: Loc{startPos, l.pos()}}
		}
		l.advance()
		return Token{Kind: TokenSymbol, Value: "[", Range: Range{startOffset, l.offset}, Loc: Loc{startPos, l.pos()}}

	default:
		return l.scanSymbol(startOffset, startPos)
	}
}

func (l *Lexer) scanNumber(startOffset int, startPos Position) Token {
	if l.peekByte() == '0' && (l.peekByteAt(1) == 'x' || l.peekByteAt(1) == 'X') {
		l.advance()
		l.advance()
		for isHexDigit(l.peekByte()) || l.peekByte() == '.' {
			l.advance()
		}
		if l.peekByte() == 'p' || l.peekByte() == 'P' {
			l.advance()
			if l.peekByte() == '+' || l.peekByte() == '-' {
				l.advance()
			}
			for isDigit(l.peekByte()) {
				l.advance()
			}
		}
	} else {
		for isDigit(l.peekByte()) {
			l.advance()
		}
		if l.peekByte() == '.' {
			l.advance()
			for isDigit(l.peekByte()) {
				l.advance()
			}
		}
		if l.peekByte() == 'e' || l.peekByte() == 'E' {
			l.advance()
			if l.peekByte() == '+' || l.peekByte() == '-' {
				l.advance()
			}
			for isDigit(l.peekByte()) {
				l.advance()
			}
		}
	}
	raw := string(l.src[startOffset:l.offset])
	return Token{Kind: TokenNumber, Value: raw, Range: Range{startOffset, l.offset}, Loc: Loc{startPos, l.pos()}}
}

func (l *Lexer) scanQuotedString(startOffset int, startPos Position) Token {
	quote := l.advance()
	var b strings.Builder
	for l.offset < len(l.src) && l.peekByte() != quote {
		c := l.peekByte()
		if c == '\n' {
			break // unterminated string; let caller's recovery handle it
		}
		if c == '\\' {
			l.advance()
			if l.offset < len(l.src) {
				esc := l.advance()
				switch esc {
				case 'n':
					b.WriteByte('\n')
				case 't':
					b.WriteByte('\t')
				case 'r':
					b.WriteByte('\r')
				default:
					b.WriteByte(esc)
				}
			}
			continue
		}
		b.WriteByte(l.advance())
	}
	if l.offset < len(l.src) && l.peekByte() == quote {
		l.advance()
	}
	return Token{Kind: TokenString, Value: b.String(), Range: Range{startOffset, l.offset}, Loc: Loc{startPos, l.pos()}}
}

var multiCharSymbols = []string{
	"...", "..", "==", "~=", "<=", ">=", "::", "//",
}

func (l *Lexer) scanSymbol(startOffset int, startPos Position) Token {
	rest := l.src[l.offset:]
	for _, sym := range multiCharSymbols {
		if strings.HasPrefix(string(rest), sym) {
			for range sym {
				l.advance()
			}
			return Token{Kind: TokenSymbol, Value: sym, Range: Range{startOffset, l.offset}, Loc: Loc{startPos, l.pos()}}
		}
	}
	c := l.advance()
	return Token{Kind: TokenSymbol, Value: string(c), Range: Range{startOffset, l.offset}, Loc: Loc{startPos, l.pos()}}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool { return isNameStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func tokenDescription(t Token) string {
	if t.Kind == TokenEOF {
		return "<eof>"
	}
	return fmt.Sprintf("%q", t.Value)
}
