package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/typesys"
)

type fakeContext struct {
	reg     *registry.Registry
	hook    string
	symbols map[string]*typesys.Type
}

func (f *fakeContext) LookupSymbolType(name string, offset int) (*typesys.Type, bool) {
	t, ok := f.symbols[name]
	return t, ok
}

func (f *fakeContext) InferType(expr lua.Expression) *typesys.Type {
	return Infer(f, expr)
}

func (f *fakeContext) Registry() *registry.Registry { return f.reg }
func (f *fakeContext) HookName() string              { return f.hook }

func newFakeContext(t *testing.T, hook string, symbols map[string]*typesys.Type) *fakeContext {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	if symbols == nil {
		symbols = map[string]*typesys.Type{}
	}
	return &fakeContext{reg: reg, hook: hook, symbols: symbols}
}

func firstReturnArg(t *testing.T, src string) lua.Expression {
	t.Helper()
	chunk, perr := lua.Parse([]byte(src))
	require.Nil(t, perr)
	require.NotEmpty(t, chunk.Body.Statements)
	ret, ok := chunk.Body.Statements[len(chunk.Body.Statements)-1].(*lua.ReturnStatement)
	require.True(t, ok)
	require.NotEmpty(t, ret.Arguments)
	return ret.Arguments[0]
}

func TestInferLiteralsAndComparison(t *testing.T) {
	ctx := newFakeContext(t, "", nil)

	num := Infer(ctx, firstReturnArg(t, "return 1"))
	assert.Equal(t, typesys.KindNumberLiteral, num.Kind)

	cmp := Infer(ctx, firstReturnArg(t, "return 1 < 2"))
	assert.Same(t, typesys.Boolean, cmp)

	concat := Infer(ctx, firstReturnArg(t, "return 'a' .. 'b'"))
	assert.Same(t, typesys.String, concat)
}

func TestInferIdentifierFromSymbolTable(t *testing.T) {
	ctx := newFakeContext(t, "", map[string]*typesys.Type{"x": typesys.String})
	ty := Infer(ctx, firstReturnArg(t, "return x"))
	assert.Same(t, typesys.String, ty)
}

func TestInferSandboxHelperMember(t *testing.T) {
	ctx := newFakeContext(t, "", nil)
	ty := Infer(ctx, firstReturnArg(t, "return helpers.hashPassword"))
	require.Equal(t, typesys.KindFunctionType, ty.Kind)
}

func TestInferCallOnSandboxHelper(t *testing.T) {
	ctx := newFakeContext(t, "", nil)
	ty := Infer(ctx, firstReturnArg(t, "return helpers.now()"))
	assert.Same(t, typesys.Integer, ty)
}

func TestInferContextFieldRespectsHook(t *testing.T) {
	ctx := newFakeContext(t, "pre-userinfo", nil)
	ty := Infer(ctx, firstReturnArg(t, "return context.userId"))
	assert.Same(t, typesys.String, ty)

	generic := newFakeContext(t, "", nil)
	merged := Infer(generic, firstReturnArg(t, "return context.clientId"))
	assert.Same(t, typesys.String, merged)
}

func TestInferLogicalUnionsBothSides(t *testing.T) {
	ctx := newFakeContext(t, "", map[string]*typesys.Type{"x": typesys.String})
	ty := Infer(ctx, firstReturnArg(t, "return x or nil"))
	require.Equal(t, typesys.KindUnion, ty.Kind)
	assert.Len(t, ty.Members, 2)
}

func TestInferTableConstructorPositionalIsArray(t *testing.T) {
	ctx := newFakeContext(t, "", nil)
	ty := Infer(ctx, firstReturnArg(t, "return {1, 2, 3}"))
	require.Equal(t, typesys.KindArray, ty.Kind)
	assert.Equal(t, typesys.KindUnion, ty.Elem.Kind)
}

func TestInferTableConstructorNamedIsTableType(t *testing.T) {
	ctx := newFakeContext(t, "", nil)
	ty := Infer(ctx, firstReturnArg(t, `return { allowed = true, data = { userId = "u1" } }`))
	require.Equal(t, typesys.KindTable, ty.Kind)

	allowed := ty.GetField("allowed")
	require.NotNil(t, allowed)
	assert.Equal(t, typesys.KindBooleanLiteral, allowed.Type.Kind)

	data := ty.GetField("data")
	require.NotNil(t, data)
	require.Equal(t, typesys.KindTable, data.Type.Kind)
	userID := data.Type.GetField("userId")
	require.NotNil(t, userID)
	assert.Equal(t, "u1", userID.Type.StrValue)
}
