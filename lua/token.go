package lua

// TokenKind discriminates lexical tokens.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenName
	TokenNumber
	TokenString
	TokenKeyword
	TokenSymbol
)

// Token is a single lexical token with its source range.
type Token struct {
	Kind    TokenKind
	Value   string
	Range   Range
	Loc     Loc
	Message string // populated when Kind == TokenError
}

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

func isKeyword(s string) bool { return keywords[s] }
