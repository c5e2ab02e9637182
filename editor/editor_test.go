package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
	"github.com/viant/luasentry/typesys"
)

func setup(t *testing.T, src string) (*source.Document, *semantic.Result, *registry.Registry) {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	doc := source.New("test://script.lua", src)
	result := semantic.Analyze(doc, reg, semantic.DefaultOptions())
	hasError := false
	for _, d := range result.Diagnostics {
		if d.Severity == semantic.SeverityError {
			hasError = true
		}
	}
	require.Equal(t, !hasError, result.Success)
	return doc, result, reg
}

func offsetOf(src, needle string) int {
	return strings.Index(src, needle)
}

func TestCompleteAfterDotOnSandboxNamespace(t *testing.T) {
	src := "return helpers."
	doc, result, reg := setup(t, src)
	list := Complete(doc, result, reg, "", len(src))
	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "now")
}

func TestCompleteAfterDotOnLocalTable(t *testing.T) {
	src := "local t = { alpha = 1, beta = 'x' }\nreturn t."
	doc, result, reg := setup(t, src)
	list := Complete(doc, result, reg, "", len(src))
	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "alpha")
	assert.Contains(t, labels, "beta")
}

func TestCompleteTopLevelIncludesKeywordsAndLocals(t *testing.T) {
	src := "local total = 1\nreturn total"
	doc, result, reg := setup(t, src)
	list := Complete(doc, result, reg, "", len(src))
	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "total")
	assert.Contains(t, labels, "function")
}

func TestHoverOnLocalIdentifierShowsDeclaration(t *testing.T) {
	src := "local x = 1\nreturn x"
	doc, result, reg := setup(t, src)
	offset := offsetOf(src, "return x") + len("return ")
	hover := HoverAt(doc, result, reg, offset)
	require.NotNil(t, hover)
	assert.NotNil(t, hover.Info.Declaration)
}

func TestHoverOnSandboxHelperMember(t *testing.T) {
	src := "return helpers.now"
	doc, result, reg := setup(t, src)
	offset := offsetOf(src, "now") + 1
	hover := HoverAt(doc, result, reg, offset)
	require.NotNil(t, hover)
	assert.True(t, hover.Info.IsTableField)
	assert.Equal(t, "now", hover.Info.FieldName)
}

func TestHoverOnLocalAfterAssertNarrowsNonNil(t *testing.T) {
	src := "local cond = true\nlocal u = cond and 1 or nil\nassert(u)\nreturn u"
	doc, result, reg := setup(t, src)
	offset := offsetOf(src, "return u") + len("return ")
	hover := HoverAt(doc, result, reg, offset)
	require.NotNil(t, hover)
	assert.False(t, typesys.MayBeNil(hover.Info.Type), "assert(u) should have narrowed u to exclude Nil")
}

func TestHoverOnDisabledGlobalStillResolvesType(t *testing.T) {
	src := "return io"
	doc, result, reg := setup(t, src)
	hover := HoverAt(doc, result, reg, len(src)-1)
	// io is not a registered global/sandbox item, so hover falls back to
	// the cached inferred type (Unknown) rather than panicking.
	if hover != nil {
		assert.NotNil(t, hover.Info.Type)
	}
}

func TestSignatureHelpForLibraryMethod(t *testing.T) {
	src := "return string.format('%s', "
	doc, result, reg := setup(t, src)
	help := SignatureHelpAt(doc, result, reg, len(src))
	require.NotNil(t, help)
	assert.True(t, help.ActiveParamValid)
	assert.Equal(t, 1, help.ActiveParameter)
}

func TestSignatureHelpForAsyncHelper(t *testing.T) {
	src := "return helpers.httpGet("
	doc, result, reg := setup(t, src)
	help := SignatureHelpAt(doc, result, reg, len(src))
	require.NotNil(t, help)
	require.Len(t, help.Parameters, 1)
	assert.Equal(t, 0, help.ActiveParameter)
}

func TestSignatureHelpOutsideAnyCallReturnsNil(t *testing.T) {
	src := "local x = 1"
	doc, result, reg := setup(t, src)
	help := SignatureHelpAt(doc, result, reg, 3)
	assert.Nil(t, help)
}

func TestDefinitionAtLocalPointsToDeclarationRange(t *testing.T) {
	src := "local x = 1\nreturn x"
	doc, result, reg := setup(t, src)
	offset := offsetOf(src, "return x") + len("return ")
	def := DefinitionAt(doc, result, reg, offset)
	require.NotNil(t, def)
	require.NotNil(t, def.Range)
	assert.Equal(t, offsetOf(src, "x = 1"), def.Range.Start)
}

func TestDefinitionAtSandboxMemberYieldsBuiltinURI(t *testing.T) {
	src := "return helpers.now()"
	doc, result, reg := setup(t, src)
	offset := offsetOf(src, "now") + 1
	def := DefinitionAt(doc, result, reg, offset)
	require.NotNil(t, def)
	assert.Equal(t, "luasentry://builtin/helpers.now", def.BuiltinURI)
}

func TestReferencesAtCollectsDeclarationAndReads(t *testing.T) {
	src := "local x = 1\nreturn x + x"
	doc, result, reg := setup(t, src)
	_ = reg
	offset := offsetOf(src, "x = 1")
	refs := ReferencesAt(doc, result, offset)
	require.Len(t, refs, 3)
	assert.True(t, refs[0].IsDeclaration)
	assert.False(t, refs[1].IsDeclaration)
	assert.False(t, refs[2].IsDeclaration)
}

func TestReferencesAtUnknownIdentifierReturnsNil(t *testing.T) {
	src := "return unknownThing"
	doc, result, _ := setup(t, src)
	offset := offsetOf(src, "unknownThing")
	refs := ReferencesAt(doc, result, offset)
	assert.Nil(t, refs)
}

func TestOutlineListsTopLevelFunctionsAndLocals(t *testing.T) {
	src := `
local function handler(ctx)
  local inner = 1
  return inner
end
local config = { allowed = true }
return handler
`
	doc, result, _ := setup(t, src)
	_ = result
	outline := Outline(doc.GetAST())

	var names []string
	for _, sym := range outline {
		names = append(names, sym.Name)
	}
	assert.Contains(t, names, "handler")
	assert.Contains(t, names, "config")
}

func TestOutlineNestsLocalsUnderEnclosingFunction(t *testing.T) {
	src := `
local function handler()
  local inner = 1
  return inner
end
`
	doc, _, _ := setup(t, src)
	outline := Outline(doc.GetAST())
	require.Len(t, outline, 1)
	require.NotEmpty(t, outline[0].Children)
	assert.Equal(t, "inner", outline[0].Children[0].Name)
}

func TestOutlineFlattensControlFlowBodies(t *testing.T) {
	src := `
if true then
  local insideIf = 1
end
return 1
`
	doc, _, _ := setup(t, src)
	outline := Outline(doc.GetAST())
	var names []string
	for _, sym := range outline {
		names = append(names, sym.Name)
	}
	assert.Contains(t, names, "insideIf")
}

func TestExpressionAtFindsDeepestNode(t *testing.T) {
	src := "return helpers.now()"
	doc, _, _ := setup(t, src)
	chunk := doc.GetAST()
	offset := offsetOf(src, "now") + 1
	node := ExpressionAt(chunk, offset)
	require.NotNil(t, node)
	assert.Equal(t, "MemberExpression", node.Kind())
}

func TestTypeFormatRoundTripsThroughCompletionDetail(t *testing.T) {
	doc, result, reg := setup(t, "return helpers.now()")
	list := Complete(doc, result, reg, "", len("return helpers."))
	for _, item := range list.Items {
		if item.Label == "now" {
			assert.Contains(t, item.Detail, "fun(")
			return
		}
	}
	t.Fatal("expected 'now' in completion list")
}

func TestDiagnosticsSnapshotMatchesGolden(t *testing.T) {
	_, result, _ := setup(t, "local unused = 1\nreturn totallyUnknownName")
	require.Len(t, result.Diagnostics, 2)

	snapshot, err := DiagnosticsSnapshot(result.Diagnostics)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(snapshot), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, "semantic/undefined-variable", decoded[0]["code"])
	assert.Equal(t, "error", decoded[0]["severity"])
	assert.Equal(t, 24, decoded[0]["start"])
	assert.Equal(t, 42, decoded[0]["end"])
	assert.Equal(t, `"totallyUnknownName" is not defined`, decoded[0]["message"])

	assert.Equal(t, "style/unused-variable", decoded[1]["code"])
	assert.Equal(t, "hint", decoded[1]["severity"])
	assert.Equal(t, 6, decoded[1]["start"])
	assert.Equal(t, 12, decoded[1]["end"])
	assert.Equal(t, `"unused" is never used`, decoded[1]["message"])
}
