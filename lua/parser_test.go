package lua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalAndReturn(t *testing.T) {
	chunk, err := Parse([]byte("local x = 1\nreturn x"))
	require.Nil(t, err)
	require.Len(t, chunk.Body.Statements, 2)

	local, ok := chunk.Body.Statements[0].(*LocalStatement)
	require.True(t, ok)
	assert.Equal(t, "x", local.Names[0].Name)
	require.Len(t, local.Init, 1)
	_, ok = local.Init[0].(*NumberLiteral)
	assert.True(t, ok)
}

func TestParseReturnTable(t *testing.T) {
	src := `return { allowed = true, data = { userId = "u1" } }`
	chunk, err := Parse([]byte(src))
	require.Nil(t, err)
	require.Len(t, chunk.Body.Statements, 1)
	ret, ok := chunk.Body.Statements[0].(*ReturnStatement)
	require.True(t, ok)
	require.Len(t, ret.Arguments, 1)
	table, ok := ret.Arguments[0].(*TableConstructor)
	require.True(t, ok)
	assert.Len(t, table.Fields, 2)
}

func TestParseIfAssertAndMember(t *testing.T) {
	src := "if x then return end\nprint(x)"
	chunk, err := Parse([]byte(src))
	require.Nil(t, err)
	require.Len(t, chunk.Body.Statements, 2)
	_, ok := chunk.Body.Statements[0].(*IfStatement)
	assert.True(t, ok)
}

func TestParseErrorRecordsPosition(t *testing.T) {
	chunk, err := Parse([]byte("local x = \nreturn x"))
	require.NotNil(t, err)
	assert.NotNil(t, chunk) // partial tree still returned
	assert.Greater(t, err.Line, 0)
}

func TestParseFunctionDeclarationMethodHasImplicitSelf(t *testing.T) {
	src := "function helpers:greet(name) return name end"
	chunk, err := Parse([]byte(src))
	require.Nil(t, err)
	fn, ok := chunk.Body.Statements[0].(*FunctionDeclaration)
	require.True(t, ok)
	require.True(t, fn.IsMethod)
	require.Len(t, fn.Parameters, 2)
	assert.Equal(t, "self", fn.Parameters[0].Name)
	assert.Equal(t, "name", fn.Parameters[1].Name)
}

func TestParseBinaryPrecedence(t *testing.T) {
	chunk, err := Parse([]byte("return 1 + 2 * 3"))
	require.Nil(t, err)
	ret := chunk.Body.Statements[0].(*ReturnStatement)
	bin := ret.Arguments[0].(*BinaryExpression)
	assert.Equal(t, "+", bin.Operator)
	_, ok := bin.Right.(*BinaryExpression)
	assert.True(t, ok, "multiplication should bind tighter than addition")
}

func TestParseAssertCallStatement(t *testing.T) {
	chunk, err := Parse([]byte("assert(u)\nprint(u.name)"))
	require.Nil(t, err)
	require.Len(t, chunk.Body.Statements, 2)
	callStmt, ok := chunk.Body.Statements[0].(*CallStatement)
	require.True(t, ok)
	call, ok := callStmt.Call.(*CallExpression)
	require.True(t, ok)
	ident, ok := call.Base.(*Identifier)
	require.True(t, ok)
	assert.Equal(t, "assert", ident.Name)
}
