package typesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeStringPrimitives(t *testing.T) {
	assert.Same(t, String, ParseTypeString("string"))
	assert.Same(t, Number, ParseTypeString("number"))
	assert.Same(t, Any, ParseTypeString("any"))
}

func TestParseTypeStringArray(t *testing.T) {
	ty := ParseTypeString("string[]")
	require.Equal(t, KindArray, ty.Kind)
	assert.Same(t, String, ty.Elem)
}

func TestParseTypeStringUnion(t *testing.T) {
	ty := ParseTypeString("string | number | nil")
	require.Equal(t, KindUnion, ty.Kind)
	assert.Len(t, ty.Members, 3)
}

func TestParseTypeStringTable(t *testing.T) {
	ty := ParseTypeString("{ userId: string, age?: number }")
	require.Equal(t, KindTable, ty.Kind)
	require.Len(t, ty.Fields, 2)
	assert.Equal(t, "userId", ty.Fields[0].Name)
	assert.False(t, ty.Fields[0].Optional)
	assert.True(t, ty.Fields[1].Optional)
	assert.Same(t, Number, ty.Fields[1].Type)
}

func TestParseTypeStringLiteralsAndIdentifiers(t *testing.T) {
	str := ParseTypeString(`"ok"`)
	assert.Equal(t, KindStringLiteral, str.Kind)
	assert.Equal(t, "ok", str.StrValue)

	num := ParseTypeString("42")
	assert.Equal(t, KindNumberLiteral, num.Kind)
	assert.Equal(t, float64(42), num.NumValue)

	ref := ParseTypeString("HookContext")
	assert.Equal(t, KindRef, ref.Kind)
	assert.Equal(t, "HookContext", ref.RefName)
}

func TestParseTypeStringUnknownTokenDegrades(t *testing.T) {
	assert.Same(t, Unknown, ParseTypeString("!!!not-a-type"))
}

func TestFormatRoundTripsSimpleShapes(t *testing.T) {
	table := NewTable()
	table.AddField(&Field{Name: "allowed", Type: Boolean})
	rendered := Format(table, FormatOptions{})
	reparsed := ParseTypeString(rendered)
	assert.True(t, TypesEqual(table, reparsed))
}
