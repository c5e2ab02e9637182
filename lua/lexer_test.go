package lua

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexerScansKeywordsAndSymbols(t *testing.T) {
	lex := NewLexer([]byte("local x = 1 -- comment\nreturn x"))
	var kinds []TokenKind
	for {
		tok := lex.Scan()
		if tok.Kind == TokenEOF {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{TokenKeyword, TokenName, TokenSymbol, TokenNumber, TokenKeyword, TokenName}, kinds)
}

func TestLexerLongString(t *testing.T) {
	lex := NewLexer([]byte(`[[hello world]]`))
	tok := lex.Scan()
	assert.Equal(t, TokenString, tok.Kind)
	assert.Equal(t, "hello world", tok.Value)
}

func TestLexerLineTracking(t *testing.T) {
	lex := NewLexer([]byte("a\nb"))
	first := lex.Scan()
	assert.Equal(t, 1, first.Loc.Start.Line)
	second := lex.Scan()
	assert.Equal(t, 2, second.Loc.Start.Line)
}
