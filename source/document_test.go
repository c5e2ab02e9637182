package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionOffsetRoundTrip(t *testing.T) {
	doc := New("mem://t1", "local x = 1\nreturn x\n")
	for _, offset := range []int{0, 6, 11, 12, 20} {
		pos := doc.OffsetToPosition(offset)
		back := doc.PositionToOffset(pos)
		assert.Equal(t, offset, back)
	}
}

func TestPositionToOffsetClampsOutOfRange(t *testing.T) {
	doc := New("mem://t2", "abc\ndef")
	assert.Equal(t, len(doc.GetText()), doc.PositionToOffset(Position{Line: 99, Character: 0}))
	assert.Equal(t, 0, doc.PositionToOffset(Position{Line: -1, Character: -1}))
}

func TestGetWordAtPosition(t *testing.T) {
	doc := New("mem://t3", "local userId = 1")
	word := doc.GetWordAtPosition(Position{Line: 0, Character: 8})
	assert.Equal(t, "userId", word)

	assert.Equal(t, "", doc.GetWordAtPosition(Position{Line: 0, Character: 5}))
}

func TestGetASTCachesResult(t *testing.T) {
	doc := New("mem://t4", "return 1")
	first := doc.GetAST()
	second := doc.GetAST()
	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Nil(t, doc.GetParseError())
}

func TestParseRecoveryRetriesOnceWithBlankedLine(t *testing.T) {
	src := "local x = 1\nlocal y = \nreturn x"
	doc := New("mem://t5", src)

	ast := doc.GetAST()
	require.NotNil(t, ast, "retry should recover a partial tree")
	require.NotNil(t, doc.GetParseError(), "the original error is preserved even after recovery")
	assert.Equal(t, 2, doc.GetParseError().Line)

	require.Len(t, ast.Body.Statements, 2, "blanking the bad line should let the rest of the chunk parse normally")
}

func TestApplyChangesBumpsVersionAndIsImmutable(t *testing.T) {
	doc := New("mem://t6", "local x = 1")
	next := doc.ApplyChanges([]Edit{{
		Range:   Range{Start: Position{Line: 0, Character: 6}, End: Position{Line: 0, Character: 7}},
		NewText: "y",
	}})

	assert.Equal(t, "local x = 1", doc.GetText(), "original document must not be mutated")
	assert.Equal(t, "local y = 1", next.GetText())
	assert.Equal(t, doc.Version()+1, next.Version())
}

func TestApplyChangesAppliesMultipleEditsInDescendingOrder(t *testing.T) {
	doc := New("mem://t7", "aaaa bbbb cccc")
	next := doc.ApplyChanges([]Edit{
		{Range: Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 4}}, NewText: "AAAA"},
		{Range: Range{Start: Position{Line: 0, Character: 10}, End: Position{Line: 0, Character: 14}}, NewText: "CCCC"},
	})
	assert.Equal(t, "AAAA bbbb CCCC", next.GetText())
}

func TestNewAnonymousMintsUniqueUntitledURI(t *testing.T) {
	a := NewAnonymous("return 1")
	b := NewAnonymous("return 1")

	assert.True(t, strings.HasPrefix(a.URI(), "untitled:"))
	assert.True(t, strings.HasSuffix(a.URI(), ".lua"))
	assert.NotEqual(t, a.URI(), b.URI(), "each anonymous buffer gets its own identity")
	assert.Equal(t, "return 1", a.GetText())
}
