package semantic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/source"
	"github.com/viant/luasentry/typesys"
)

func analyze(t *testing.T, src string, opts Options) *Result {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	doc := source.New("test://script.lua", src)
	return Analyze(doc, reg, opts)
}

func codes(r *Result) []string {
	var out []string
	for _, d := range r.Diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func TestAnalyzeSyntaxError(t *testing.T) {
	r := analyze(t, "local x = ", DefaultOptions())
	assert.False(t, r.Success)
	assert.Contains(t, codes(r), CodeSyntaxError)
}

func TestAnalyzeScriptTooLarge(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxScriptSize = 4
	r := analyze(t, "local x = 1", opts)
	assert.Contains(t, codes(r), CodeScriptTooLarge)
}

func TestAnalyzeUndefinedVariable(t *testing.T) {
	r := analyze(t, "return totallyUnknownName", DefaultOptions())
	require.False(t, r.Success)
	assert.Contains(t, codes(r), CodeUndefinedVariable)
}

func TestAnalyzeSelfAndUnderscoreExemptFromUndefined(t *testing.T) {
	r := analyze(t, "function t:m() return self end", DefaultOptions())
	for _, d := range r.Diagnostics {
		assert.NotEqual(t, CodeUndefinedVariable, d.Code)
	}
}

func TestAnalyzeDisabledGlobalDoesNotAlsoReportUndefined(t *testing.T) {
	r := analyze(t, "return io", DefaultOptions())
	require.False(t, r.Success)
	assert.Contains(t, codes(r), CodeDisabledGlobal)
	assert.NotContains(t, codes(r), CodeUndefinedVariable)
}

func TestAnalyzeRecognizesSandboxAndHelperGlobals(t *testing.T) {
	r := analyze(t, "return helpers.now()", DefaultOptions())
	assert.NotContains(t, codes(r), CodeUndefinedVariable)
	assert.NotContains(t, codes(r), CodeDisabledGlobal)
}

func TestAnalyzeAssignmentDeclaresNewGlobal(t *testing.T) {
	r := analyze(t, "total = 1\nreturn total", DefaultOptions())
	assert.NotContains(t, codes(r), CodeUndefinedVariable)

	var found bool
	for _, sym := range r.SymbolTable.GetAllSymbols() {
		if sym.Name == "total" {
			found = true
		}
	}
	assert.True(t, found, "assignment to an undeclared identifier should declare a global symbol")
}

func TestAnalyzeUnusedLocalVariable(t *testing.T) {
	r := analyze(t, "local unused = 1\nreturn 2", DefaultOptions())
	assert.Contains(t, codes(r), CodeUnusedVariable)
}

func TestAnalyzeUnderscorePrefixedLocalIsExemptFromUnused(t *testing.T) {
	r := analyze(t, "local _ignored = 1\nreturn 2", DefaultOptions())
	assert.NotContains(t, codes(r), CodeUnusedVariable)
}

func TestAnalyzeUnusedParameter(t *testing.T) {
	r := analyze(t, "local function f(unused) return 1 end\nreturn f()", DefaultOptions())
	assert.Contains(t, codes(r), CodeUnusedParameter)
}

func TestAnalyzeUsedLocalIsNotFlagged(t *testing.T) {
	r := analyze(t, "local x = 1\nreturn x", DefaultOptions())
	assert.NotContains(t, codes(r), CodeUnusedVariable)
}

func TestAnalyzeShadowedVariable(t *testing.T) {
	r := analyze(t, "local x = 1\nlocal x = 2\nreturn x", DefaultOptions())
	assert.Contains(t, codes(r), CodeShadowedVariable)
}

func TestAnalyzeShadowingDisabledViaOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.CheckShadowing = false
	r := analyze(t, "local x = 1\nlocal x = 2\nreturn x", opts)
	assert.NotContains(t, codes(r), CodeShadowedVariable)
}

func TestAnalyzeDeeplyNestedLoop(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLoopDepth = 2
	src := `
for i = 1, 10 do
  for j = 1, 10 do
    for k = 1, 10 do
      local z = k
    end
  end
end
`
	r := analyze(t, src, opts)
	assert.Contains(t, codes(r), CodeDeeplyNestedLoop)
}

func TestAnalyzeAsyncHelperWithoutAwaitIsFlagged(t *testing.T) {
	r := analyze(t, "return helpers.httpGet('https://example.com')", DefaultOptions())
	assert.Contains(t, codes(r), CodeAsyncWithoutAwait)
}

func TestAnalyzeAsyncHelperWrappedInAwaitIsNotFlagged(t *testing.T) {
	r := analyze(t, "return await(helpers.httpGet('https://example.com'))", DefaultOptions())
	assert.NotContains(t, codes(r), CodeAsyncWithoutAwait)
}

func TestAnalyzeAsyncHelperNestedInsideAwaitArgumentIsNotFlagged(t *testing.T) {
	src := "return await((function() return helpers.httpGet('https://example.com') end)())"
	r := analyze(t, src, DefaultOptions())
	assert.NotContains(t, codes(r), CodeAsyncWithoutAwait)
}

func TestAnalyzeReturnsCollectsLastReturnType(t *testing.T) {
	r := analyze(t, "return 1", DefaultOptions())
	require.Len(t, r.Returns, 1)
	assert.NotNil(t, r.Returns[0].Type)
}

func TestAnalyzeAssertNarrowsSubsequentFlow(t *testing.T) {
	src := `
local x = nil
assert(x)
local y = x
return y
`
	r := analyze(t, src, DefaultOptions())
	require.True(t, r.Success)
	require.NotNil(t, r.FlowGraph)

	offset := strings.LastIndex(src, "x")
	narrowed, ok := r.TypeAt(offset)
	require.True(t, ok)
	assert.Equal(t, typesys.KindUnknown, narrowed.Kind,
		"assert(x) should have excluded Nil from x's type by the time `local y = x` reads it")
}

func TestAnalyzeIfElseBothReturnLeavesNoLiveJoin(t *testing.T) {
	src := `
local function f(x)
  if x then
    return 1
  else
    return 2
  end
end
return f
`
	r := analyze(t, src, DefaultOptions())
	assert.True(t, r.Success)
}

func TestAnalyzeNilASTReturnsUnsuccessfulResult(t *testing.T) {
	// Two malformed lines: blanking the first (the recovery protocol's one
	// retry) still leaves the second broken, so GetAST gives up with a nil
	// tree and Analyze must degrade gracefully instead of panicking.
	src := "local x = \nlocal y = \nreturn x"
	r := analyze(t, src, DefaultOptions())
	assert.False(t, r.Success)
	assert.NotNil(t, r.SymbolTable)
}

func TestResultTypeAt(t *testing.T) {
	r := analyze(t, "return 1", DefaultOptions())
	require.True(t, r.Success)
	ret := r.Returns[0]
	_, ok := r.TypeAt(ret.Range.Start)
	assert.True(t, ok)
}
