package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/luasentry/typesys"
)

func TestDeclareAndLookupInSameScope(t *testing.T) {
	table := NewTable(Range{0, 100})
	sym, shadowed := table.DeclareSymbol("x", Local, typesys.Number, Range{6, 7}, 6)
	assert.Nil(t, shadowed)

	found, ok := table.LookupSymbol("x", 50, true)
	require.True(t, ok)
	assert.Equal(t, sym.ID, found.ID)
}

func TestLookupHonorsDeclarationOffset(t *testing.T) {
	table := NewTable(Range{0, 100})
	table.DeclareSymbol("x", Local, typesys.Number, Range{20, 21}, 20)

	_, ok := table.LookupSymbol("x", 5, true)
	assert.False(t, ok, "x is not declared yet at offset 5")

	_, ok = table.LookupSymbol("x", 21, true)
	assert.True(t, ok)
}

func TestHoistedSymbolVisibleBeforeDeclarationOffset(t *testing.T) {
	table := NewTable(Range{0, 100})
	table.DeclareHoistedSymbol("helper", Local, typesys.Function, Range{50, 51}, 50)

	_, ok := table.LookupSymbol("helper", 0, true)
	assert.True(t, ok, "function declarations are visible throughout the enclosing scope")
}

func TestLookupWalksOutwardThenGlobalLast(t *testing.T) {
	table := NewTable(Range{0, 100})
	table.AddGlobalSymbol(&Symbol{ID: "g1", Name: "context", Kind: Global, Type: typesys.Any})

	outer := table.EnterScope(ScopeFunction, Range{10, 90})
	_ = outer
	table.DeclareSymbol("context", Local, typesys.String, Range{15, 16}, 15)

	found, ok := table.LookupSymbol("context", 50, true)
	require.True(t, ok)
	assert.Equal(t, Local, found.Kind, "the nearer local shadows the global")

	table.ExitScope()
	found, ok = table.LookupSymbol("context", 0, true)
	require.True(t, ok)
	assert.Equal(t, Global, found.Kind)
}

func TestDeclareSymbolReportsShadowingOfEnclosingLocal(t *testing.T) {
	table := NewTable(Range{0, 200})
	table.EnterScope(ScopeFunction, Range{0, 200})
	table.DeclareSymbol("x", Local, typesys.Number, Range{6, 7}, 6)

	table.EnterScope(ScopeBlock, Range{10, 190})
	_, shadowed := table.DeclareSymbol("x", Local, typesys.String, Range{20, 21}, 20)

	require.NotNil(t, shadowed, "x declared in the enclosing function scope should be reported as shadowed")
	assert.Equal(t, 6, shadowed.Offset)
}

func TestGetAllSymbolsCoversEveryScope(t *testing.T) {
	table := NewTable(Range{0, 100})
	table.DeclareSymbol("a", Local, typesys.Number, Range{0, 1}, 0)
	table.EnterScope(ScopeBlock, Range{10, 90})
	table.DeclareSymbol("b", Local, typesys.String, Range{11, 12}, 11)
	table.ExitScope()

	all := table.GetAllSymbols()
	names := map[string]bool{}
	for _, s := range all {
		names[s.Name] = true
	}
	assert.True(t, names["a"])
	assert.True(t, names["b"])
}

func TestAddReferenceAppendsOffset(t *testing.T) {
	table := NewTable(Range{0, 100})
	sym, _ := table.DeclareSymbol("x", Local, typesys.Number, Range{0, 1}, 0)
	table.AddReference(sym.ID, 42)
	table.AddReference(sym.ID, 55)

	assert.Equal(t, []int{42, 55}, sym.References)
}
