package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/source"
)

func newFacade(t *testing.T) *Facade {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return New(reg, zaptest.NewLogger(t))
}

func TestFacadeAnalyzeReturnsSuccessfulResult(t *testing.T) {
	f := newFacade(t)
	doc := source.New("test://a.lua", "return helpers.now()")

	result := f.Analyze(doc, DefaultOptions())

	require.True(t, result.Success)
	assert.Empty(t, result.Diagnostics)
}

func TestFacadeAnalyzeCachesByContentHashAndHook(t *testing.T) {
	f := newFacade(t)
	doc := source.New("test://a.lua", "return helpers.now()")

	first := f.Analyze(doc, DefaultOptions())
	second := f.Analyze(doc, DefaultOptions())

	assert.Same(t, first, second)
}

func TestFacadeAnalyzeDoesNotReuseResultAcrossHooks(t *testing.T) {
	f := newFacade(t)
	doc := source.New("test://a.lua", "return context.prev")

	optsA := DefaultOptions()
	optsA.HookName = "preTokenIssuance"
	optsB := DefaultOptions()
	optsB.HookName = "postAuthentication"

	first := f.Analyze(doc, optsA)
	second := f.Analyze(doc, optsB)

	assert.NotSame(t, first, second)
}

func TestFacadeGetCompletionsDelegatesToEditor(t *testing.T) {
	f := newFacade(t)
	src := "return helpers."
	doc := source.New("test://a.lua", src)

	list := f.GetCompletions(doc, len(src), DefaultOptions())

	var labels []string
	for _, item := range list.Items {
		labels = append(labels, item.Label)
	}
	assert.Contains(t, labels, "now")
}

func TestFacadeGetHoverDelegatesToEditor(t *testing.T) {
	f := newFacade(t)
	src := "local x = 1\nreturn x"
	doc := source.New("test://a.lua", src)

	hover := f.GetHover(doc, len(src)-1, DefaultOptions())

	require.NotNil(t, hover)
	assert.NotNil(t, hover.Info.Declaration)
}

func TestFacadeGetSignatureHelpDelegatesToEditor(t *testing.T) {
	f := newFacade(t)
	src := "return helpers.httpGet("
	doc := source.New("test://a.lua", src)

	help := f.GetSignatureHelp(doc, len(src), DefaultOptions())

	require.NotNil(t, help)
	require.Len(t, help.Parameters, 1)
}

func TestFacadeGetDiagnosticsSurfacesUndefinedVariable(t *testing.T) {
	f := newFacade(t)
	doc := source.New("test://a.lua", "return totallyUnknownName")

	diags := f.GetDiagnostics(doc, DefaultOptions())

	require.Len(t, diags, 1)
	assert.Equal(t, "semantic/undefined-variable", diags[0].Code)
}

func TestFacadeGetDefinitionDelegatesToEditor(t *testing.T) {
	f := newFacade(t)
	src := "local x = 1\nreturn x"
	doc := source.New("test://a.lua", src)

	def := f.GetDefinition(doc, len(src)-1, DefaultOptions())

	require.NotNil(t, def)
	require.NotNil(t, def.Range)
}

func TestFacadeGetReferencesDelegatesToEditor(t *testing.T) {
	f := newFacade(t)
	src := "local x = 1\nreturn x + x"
	doc := source.New("test://a.lua", src)

	refs := f.GetReferences(doc, 6, DefaultOptions())

	assert.Len(t, refs, 3)
}

func TestFacadeGetDocumentSymbolsDoesNotRequireAnalysis(t *testing.T) {
	f := newFacade(t)
	src := "local function handler() return 1 end\nreturn handler"
	doc := source.New("test://a.lua", src)

	symbols := f.GetDocumentSymbols(doc, DefaultOptions())

	require.Len(t, symbols, 1)
	assert.Equal(t, "handler", symbols[0].Name)
}
