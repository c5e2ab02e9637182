package editor

import (
	"strings"

	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
	"github.com/viant/luasentry/symbol"
	"github.com/viant/luasentry/typesys"
)

// Complete implements §4.10's completion trigger classification: a dotted
// member completion immediately after `.`, otherwise the scope candidate
// set (locals/params visible at offset, keywords, and the sandbox item
// roots helpers/context/config/await). Registry globals and libraries are
// not offered outside a member completion. The host is expected to filter the
// returned list against whatever partial word the user has typed — this
// mirrors how LSP servers commonly leave prefix filtering to the client,
// and keeps this function a pure function of (document, result, offset)
// rather than also threading a filter string through every branch.
func Complete(doc *source.Document, result *semantic.Result, reg *registry.Registry, hookName string, offset int) CompletionList {
	text := doc.GetText()
	if offset > 0 && offset <= len(text) && text[offset-1] == '.' {
		path := identifierPathBefore(text, offset-1)
		if len(path) > 0 {
			return memberCompletions(path, result, reg, hookName, offset)
		}
	}
	return scopeCompletions(result, reg, hookName, offset)
}

// identifierPathBefore scans backward from dotOffset (the index of the
// triggering `.`) over a run of identifier characters and interior dots,
// returning the dotted path segments, e.g. "context.prev" -> ["context",
// "prev"].
func identifierPathBefore(text string, dotOffset int) []string {
	start := dotOffset
	for start > 0 && isIdentPathByte(text[start-1]) {
		start--
	}
	raw := text[start:dotOffset]
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ".")
}

func isIdentPathByte(b byte) bool {
	return b == '.' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func memberCompletions(path []string, result *semantic.Result, reg *registry.Registry, hookName string, offset int) CompletionList {
	if baseType := resolveLocalPathType(path, result, offset); baseType != nil {
		return tableFieldCompletions(baseType)
	}

	root := path[0]
	if len(path) == 1 {
		return namesToCompletions(reg.GetMemberCompletions(root, hookName), root, reg)
	}

	member, ok := reg.ResolveMemberPath(path)
	if !ok {
		return CompletionList{}
	}
	t := typesys.ParseTypeString(member.Type)
	if t == nil {
		return CompletionList{}
	}
	if t.Kind == typesys.KindRef {
		fields := reg.GetTypeFields(t.RefName)
		items := make([]CompletionItem, 0, len(fields))
		for name, f := range fields {
			items = append(items, CompletionItem{
				Label:         name,
				Kind:          fieldCompletionKind(f.Type),
				Detail:        f.Type,
				Documentation: f.Description,
			})
		}
		return CompletionList{Items: items}
	}
	if t.Kind == typesys.KindTable {
		return tableFieldCompletions(t)
	}
	return CompletionList{}
}

// resolveLocalPathType walks path through the symbol table's locally
// inferred types rather than the registry, so `local t = {a = 1}; t.`
// completes from t's actual constructor shape instead of falling through
// to registry lookup (which knows nothing about local tables).
func resolveLocalPathType(path []string, result *semantic.Result, offset int) *typesys.Type {
	sym, ok := result.SymbolTable.LookupSymbol(path[0], offset, true)
	if !ok {
		return nil
	}
	t := sym.Type
	for _, seg := range path[1:] {
		if t == nil || t.Kind != typesys.KindTable {
			return nil
		}
		f := t.GetField(seg)
		if f == nil {
			return nil
		}
		t = f.Type
	}
	if t == nil || t.Kind != typesys.KindTable {
		return nil
	}
	return t
}

func tableFieldCompletions(t *typesys.Type) CompletionList {
	items := make([]CompletionItem, 0, len(t.Fields))
	for _, f := range t.Fields {
		items = append(items, CompletionItem{
			Label:         f.Name,
			Kind:          fieldCompletionKind(typesys.Format(f.Type, typesys.FormatOptions{})),
			Detail:        typesys.Format(f.Type, typesys.FormatOptions{}),
			Documentation: f.Description,
		})
	}
	return CompletionList{Items: items}
}

func fieldCompletionKind(typeStr string) CompletionKind {
	if strings.HasPrefix(typeStr, "fun(") {
		return CompletionFunction
	}
	return CompletionField
}

func namesToCompletions(names []string, root string, reg *registry.Registry) CompletionList {
	items := make([]CompletionItem, 0, len(names))
	for _, name := range names {
		member, _ := reg.ResolveMemberPath([]string{root, name})
		items = append(items, CompletionItem{
			Label:         name,
			Kind:          fieldCompletionKind(member.Type),
			Detail:        member.Type,
			Documentation: member.Description,
		})
	}
	return CompletionList{Items: items}
}

// scopeCompletions returns every candidate visible at offset with no
// dotted prefix: locals/parameters in scope, keywords, and sandbox item
// roots — deduplicated by label, since a local can legitimately shadow a
// registry name and the host only needs to see it once. Registry globals
// and libraries (e.g. `print`, `string`) are not part of this list.
func scopeCompletions(result *semantic.Result, reg *registry.Registry, hookName string, offset int) CompletionList {
	seen := map[string]bool{}
	var items []CompletionItem

	add := func(item CompletionItem) {
		if seen[item.Label] {
			return
		}
		seen[item.Label] = true
		items = append(items, item)
	}

	for _, sym := range visibleLocalSymbols(result.SymbolTable, offset) {
		add(CompletionItem{
			Label:  sym.Name,
			Kind:   CompletionVariable,
			Detail: typesys.Format(sym.Type, typesys.FormatOptions{}),
		})
	}

	for _, kw := range reg.GetKeywords() {
		add(CompletionItem{Label: kw, Kind: CompletionKeyword})
	}

	for _, root := range []string{"helpers", "context", "config", "await"} {
		if _, ok := reg.GetSandboxItem(root); ok {
			add(CompletionItem{Label: root, Kind: CompletionModule})
		}
	}

	return CompletionList{Items: items}
}

// visibleLocalSymbols approximates the scope-chain walk LookupSymbol
// performs per-name: every non-global symbol whose declaration offset has
// already been passed (or which is a hoisted function declaration,
// AlwaysVisible) is a plausible completion candidate. It is intentionally
// permissive about scope nesting (GetAllSymbols flattens every scope) —
// a symbol declared in a sibling, already-exited block can still surface,
// which is the tradeoff symbol.Table.GetAllSymbols' doc comment accepts for
// "outline and whole-document queries" and is no worse for completion,
// which hosts typically further filter against the typed prefix anyway.
func visibleLocalSymbols(table *symbol.Table, offset int) []*symbol.Symbol {
	var out []*symbol.Symbol
	for _, sym := range table.GetAllSymbols() {
		if sym.Kind == symbol.Global {
			continue
		}
		if !sym.AlwaysVisible && sym.Offset > offset {
			continue
		}
		out = append(out, sym)
	}
	return out
}
