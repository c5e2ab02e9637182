package editor

import (
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
	"github.com/viant/luasentry/symbol"
	"github.com/viant/luasentry/typesys"
)

// HoverAt implements §4.10's hover resolution. For identifiers, the
// lookup order mirrors identifier inference (sandbox → library → global
// → local symbol) — deliberately checking registry names before the
// symbol table, so hovering a name a script mistakenly shadows still
// surfaces the builtin's documentation. For `a.b`, try the base's member
// map first, then the library-method fallback, then the cached inferred
// type, per §4.10's explicit fallback order.
func HoverAt(doc *source.Document, result *semantic.Result, reg *registry.Registry, offset int) *Hover {
	chunk := doc.GetAST()
	node := ExpressionAt(chunk, offset)
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *lua.Identifier:
		return hoverIdentifier(result, reg, n)
	case *lua.MemberExpression:
		return hoverMember(result, reg, n)
	default:
		t, ok := result.TypeAt(n.Range().Start)
		if !ok {
			return nil
		}
		return &Hover{Info: SemanticInfo{Type: t}, Range: n.Range()}
	}
}

func hoverIdentifier(result *semantic.Result, reg *registry.Registry, id *lua.Identifier) *Hover {
	if item, ok := reg.GetSandboxItem(id.Name); ok {
		return &Hover{
			Info: SemanticInfo{
				Type:          typesys.ParseTypeString(item.SemanticType),
				Documentation: "",
			},
			Range: id.Range(),
		}
	}
	if lib, ok := reg.GetLibrary(id.Name); ok {
		return &Hover{
			Info:  SemanticInfo{Type: typesys.NewRef(id.Name), Documentation: lib.Description},
			Range: id.Range(),
		}
	}
	if g, ok := reg.GetGlobal(id.Name); ok {
		return &Hover{
			Info:  SemanticInfo{Type: typesys.ParseTypeString(g.Type), Documentation: g.Description},
			Range: id.Range(),
		}
	}
	if sym, ok := result.SymbolTable.LookupSymbol(id.Name, id.Range().Start, true); ok {
		return &Hover{
			Info: SemanticInfo{
				Type:          narrowedSymbolType(result, id, sym),
				Declaration:   rangeOf(sym),
				Documentation: sym.Documentation,
			},
			Range: id.Range(),
		}
	}
	if t, ok := result.TypeAt(id.Range().Start); ok {
		return &Hover{Info: SemanticInfo{Type: t}, Range: id.Range()}
	}
	return nil
}

// narrowedSymbolType resolves id's declared type through the flow graph's
// recorded narrowing at this specific reference: `local u = context.user;
// assert(u); return u.name` must hover `u` as the non-nil variant, not the
// raw declared union (§4.5, Testable Property S6). Falling back to
// sym.Type when the offset was never bound keeps hover working for a
// document whose analysis failed before pass two built a flow graph.
func narrowedSymbolType(result *semantic.Result, id *lua.Identifier, sym *symbol.Symbol) *typesys.Type {
	if result.FlowGraph == nil {
		return sym.Type
	}
	flowID, ok := result.FlowGraph.FlowAt(id.Range().Start)
	if !ok {
		return sym.Type
	}
	return semantic.NarrowType(result.FlowGraph, flowID, id.Name, sym.Type)
}

func rangeOf(sym *symbol.Symbol) *lua.Range {
	r := lua.Range{Start: sym.Range.Start, End: sym.Range.End}
	return &r
}

func hoverMember(result *semantic.Result, reg *registry.Registry, m *lua.MemberExpression) *Hover {
	if path, ok := memberPathOf(m); ok {
		if member, ok := reg.ResolveMemberPath(path); ok {
			return &Hover{
				Info: SemanticInfo{
					Type:          typesys.ParseTypeString(member.Type),
					IsTableField:  true,
					FieldName:     m.Property.Name,
					Documentation: member.Description,
				},
				Range: m.Range(),
			}
		}
		if len(path) == 2 {
			if method, ok := reg.GetLibraryMethod(path[0], path[1]); ok {
				returns := method.Returns
				if returns == "" {
					returns = "void"
				}
				return &Hover{
					Info: SemanticInfo{
						Type:          typesys.ParseTypeString(returns),
						IsTableField:  true,
						FieldName:     path[1],
						Documentation: method.Description,
					},
					Range: m.Range(),
				}
			}
		}
	}
	if t, ok := result.TypeAt(m.Range().Start); ok {
		return &Hover{
			Info: SemanticInfo{Type: t, IsTableField: true, FieldName: m.Property.Name},
			Range: m.Range(),
		}
	}
	return nil
}

func memberPathOf(e lua.Expression) ([]string, bool) {
	switch ex := e.(type) {
	case *lua.Identifier:
		return []string{ex.Name}, true
	case *lua.MemberExpression:
		base, ok := memberPathOf(ex.Base)
		if !ok {
			return nil, false
		}
		return append(base, ex.Property.Name), true
	default:
		return nil, false
	}
}
