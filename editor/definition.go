package editor

import (
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
)

// DefinitionAt implements §4.10's go-to-definition: a local's own
// declaration range within the document, or a synthetic builtin URI for
// globals/sandbox members the registry documents out-of-band.
func DefinitionAt(doc *source.Document, result *semantic.Result, reg *registry.Registry, offset int) *DefinitionResult {
	chunk := doc.GetAST()
	node := ExpressionAt(chunk, offset)
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *lua.Identifier:
		if sym, ok := result.SymbolTable.LookupSymbol(n.Name, n.Range().Start, true); ok {
			r := lua.Range{Start: sym.Range.Start, End: sym.Range.End}
			return &DefinitionResult{Range: &r}
		}
		if meta, ok := reg.GetSandboxItemMetadata(n.Name); ok && meta.BuiltinURI != "" {
			return &DefinitionResult{BuiltinURI: meta.BuiltinURI}
		}
		return &DefinitionResult{BuiltinURI: "luasentry://builtin/" + n.Name}
	case *lua.MemberExpression:
		if path, ok := memberPathOf(n); ok {
			return &DefinitionResult{BuiltinURI: "luasentry://builtin/" + joinDotted(path)}
		}
	}
	return nil
}

func joinDotted(path []string) string {
	out := path[0]
	for _, seg := range path[1:] {
		out += "." + seg
	}
	return out
}
