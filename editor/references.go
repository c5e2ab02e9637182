package editor

import (
	"sort"

	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
)

// ReferencesAt implements §4.10: resolve the node at offset to a symbol
// and report its declaration plus every recorded read, in source order.
// Names that resolve outside the symbol table (registry globals, sandbox
// members) have no reference set to report — only the symbol table
// tracks reads, since a registry name's "uses" would span every document
// the host has open, not this one.
func ReferencesAt(doc *source.Document, result *semantic.Result, offset int) []Reference {
	chunk := doc.GetAST()
	id, ok := ExpressionAt(chunk, offset).(*lua.Identifier)
	if !ok {
		return nil
	}

	sym, ok := result.SymbolTable.LookupSymbol(id.Name, id.Range().Start, true)
	if !ok {
		return nil
	}

	refs := []Reference{{
		Range:         lua.Range{Start: sym.Range.Start, End: sym.Range.End},
		IsDeclaration: true,
	}}
	for _, off := range sym.References {
		refs = append(refs, Reference{Range: lua.Range{Start: off, End: off + len(id.Name)}})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Range.Start < refs[j].Range.Start })
	return refs
}
