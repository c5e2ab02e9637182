package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefault(t *testing.T) *Registry {
	t.Helper()
	r, err := Default()
	require.NoError(t, err)
	return r
}

func TestGetGlobalAndKeywords(t *testing.T) {
	r := mustDefault(t)
	g, ok := r.GetGlobal("print")
	require.True(t, ok)
	assert.Contains(t, g.Type, "fun(")

	assert.Contains(t, r.GetKeywords(), "local")
	_, ok = r.GetGlobal("doesNotExist")
	assert.False(t, ok)
}

func TestGetLibraryMethod(t *testing.T) {
	r := mustDefault(t)
	m, ok := r.GetLibraryMethod("string", "format")
	require.True(t, ok)
	assert.Equal(t, "string", m.Returns)

	_, ok = r.GetLibraryMethod("string", "nope")
	assert.False(t, ok)
}

func TestGetHelperNamesSorted(t *testing.T) {
	r := mustDefault(t)
	names := r.GetHelperNames()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
	assert.Contains(t, names, "hashPassword")
}

func TestGetContextFieldsForHookMergesBaseAndVariant(t *testing.T) {
	r := mustDefault(t)

	base := r.GetContextFieldsForHook("")
	_, hasRequestID := base["requestId"]
	assert.True(t, hasRequestID)

	preToken := r.GetContextFieldsForHook("pre-token-issuance")
	_, hasClientID := preToken["clientId"]
	assert.True(t, hasClientID, "pre-token-issuance variant should add clientId")

	postToken := r.GetContextFieldsForHook("post-token-issuance")
	_, hasClientIDInPost := postToken["clientId"]
	assert.False(t, hasClientIDInPost, "a different hook's variant fields must not leak in")
}

func TestIsDisabledAndMessage(t *testing.T) {
	r := mustDefault(t)
	assert.True(t, r.IsDisabled("io"))
	msg, ok := r.GetDisabledMessage("io")
	require.True(t, ok)
	assert.NotEmpty(t, msg)
	assert.False(t, r.IsDisabled("helpers"))
}

func TestResolveMemberPathHelperFunction(t *testing.T) {
	r := mustDefault(t)
	member, ok := r.ResolveMemberPath([]string{"helpers", "hashPassword"})
	require.True(t, ok)
	assert.Contains(t, member.Type, "fun(")
}

func TestResolveMemberPathNestedContextPrev(t *testing.T) {
	r := mustDefault(t)
	member, ok := r.ResolveMemberPath([]string{"context", "prev", "allowed"})
	require.True(t, ok)
	assert.Equal(t, "boolean", member.Type)
}

func TestResolveMemberPathLibraryMethod(t *testing.T) {
	r := mustDefault(t)
	member, ok := r.ResolveMemberPath([]string{"table", "insert"})
	require.True(t, ok)
	assert.Equal(t, "void", member.Type)
}

func TestResolveMemberPathUnknownRootFails(t *testing.T) {
	r := mustDefault(t)
	_, ok := r.ResolveMemberPath([]string{"notARoot", "x"})
	assert.False(t, ok)
}

func TestGetMemberCompletionsForContextRespectsHook(t *testing.T) {
	r := mustDefault(t)
	generic := r.GetMemberCompletions("context", "")
	assert.Contains(t, generic, "requestId")

	scoped := r.GetMemberCompletions("context", "pre-userinfo")
	assert.Contains(t, scoped, "userId")
}
