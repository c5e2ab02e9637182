package symbol

import (
	"fmt"

	"github.com/viant/luasentry/typesys"
)

// Table is the scope tree plus declaration/lookup operations for a single
// analysis. It is built bottom-up by the semantic analyzer as it walks the
// AST: EnterScope on every block-opening node, DeclareSymbol for every
// binding form, ExitScope on the matching close.
type Table struct {
	global  *Scope
	current *Scope
	all     []*Scope
	nextID  int
}

// NewTable creates a Table seeded with the global scope, spanning the
// whole document.
func NewTable(documentRange Range) *Table {
	t := &Table{}
	t.global = newScope(t.newScopeID(), ScopeBlock, documentRange, nil)
	t.current = t.global
	t.all = append(t.all, t.global)
	return t
}

func (t *Table) newScopeID() string {
	id := fmt.Sprintf("scope-%d", t.nextID)
	t.nextID++
	return id
}

// EnterScope pushes a new child scope of the given kind and range onto the
// stack, making it the target of subsequent DeclareSymbol calls.
func (t *Table) EnterScope(kind ScopeKind, r Range) *Scope {
	s := newScope(t.newScopeID(), kind, r, t.current)
	t.current.children = append(t.current.children, s)
	t.all = append(t.all, s)
	t.current = s
	return s
}

// ExitScope pops the current scope, returning to its parent. Calling
// ExitScope past the global scope is a no-op: callers that mismatch
// enter/exit calls should not be able to corrupt the global scope.
func (t *Table) ExitScope() {
	if t.current.Parent != nil {
		t.current = t.current.Parent
	}
}

// CurrentScope returns the scope DeclareSymbol would target right now.
func (t *Table) CurrentScope() *Scope { return t.current }

// GlobalScope returns the outermost scope, searched last by LookupSymbol.
func (t *Table) GlobalScope() *Scope { return t.global }

// DeclareSymbol declares name in the current scope and returns the new
// Symbol. If a same-named, non-global symbol is already visible in an
// enclosing non-global scope, the second return value is that earlier
// Symbol — the shadowing-detection hook §4.4 describes as opt-in, left for
// the caller to turn into a diagnostic (this package has no notion of
// Diagnostic, to keep it a leaf dependency).
func (t *Table) DeclareSymbol(name string, kind SymbolKind, typ *typesys.Type, r Range, offset int) (*Symbol, *Symbol) {
	sym := &Symbol{
		ID:     fmt.Sprintf("sym-%d", t.nextID),
		Name:   name,
		Kind:   kind,
		Type:   typ,
		Range:  r,
		Offset: offset,
	}
	t.nextID++

	var shadowed *Symbol
	for s := t.current; s != nil && !s.isGlobal(); s = s.Parent {
		if existing, ok := s.Get(name); ok {
			shadowed = existing
			break
		}
	}

	t.current.Declare(sym)
	return sym, shadowed
}

// DeclareHoistedSymbol declares a function-declaration symbol, visible
// throughout the enclosing scope regardless of its position relative to a
// lookup offset (§4.4's exception to position-gated visibility).
func (t *Table) DeclareHoistedSymbol(name string, kind SymbolKind, typ *typesys.Type, r Range, offset int) (*Symbol, *Symbol) {
	sym, shadowed := t.DeclareSymbol(name, kind, typ, r, offset)
	sym.AlwaysVisible = true
	return sym, shadowed
}

// AddGlobalSymbol declares a symbol directly in the global scope,
// bypassing the current scope — used for sandbox items and registry
// globals that are visible everywhere regardless of where they are first
// referenced.
func (t *Table) AddGlobalSymbol(sym *Symbol) {
	t.global.Declare(sym)
}

// AddReference records a read of a symbol at offset.
func (t *Table) AddReference(symbolID string, offset int) {
	for _, s := range t.all {
		for _, sym := range s.symbols {
			if sym.ID == symbolID {
				sym.References = append(sym.References, offset)
				return
			}
		}
	}
}

// GetAllSymbols returns every symbol across every scope, for outline and
// whole-document queries (e.g. unused-variable diagnostics).
func (t *Table) GetAllSymbols() []*Symbol {
	var out []*Symbol
	for _, s := range t.all {
		out = append(out, s.Symbols()...)
	}
	return out
}

// LookupSymbol implements §4.4's three-step resolution:
//  1. If offset is provided (ok), find the deepest scope containing it and
//     search outward; a symbol is visible only once its declaration offset
//     is <= the lookup offset, except function declarations, which the
//     analyzer declares through DeclareHoistedSymbol (AlwaysVisible) so
//     they read as visible throughout their scope.
//  2. If offset is omitted, search from the current scope outward.
//  3. The global scope is always searched last.
func (t *Table) LookupSymbol(name string, offset int, hasOffset bool) (*Symbol, bool) {
	start := t.current
	if hasOffset {
		start = t.deepestScopeContaining(offset)
	}
	for s := start; s != nil; s = s.Parent {
		sym, ok := s.Get(name)
		if !ok {
			continue
		}
		if hasOffset && !s.isGlobal() && !sym.visibleAt(offset) {
			continue
		}
		return sym, true
	}
	return nil, false
}

func (t *Table) deepestScopeContaining(offset int) *Scope {
	best := t.global
	bestSpan := best.Range.End - best.Range.Start
	for _, s := range t.all {
		if !s.Contains(offset) {
			continue
		}
		span := s.Range.End - s.Range.Start
		if span <= bestSpan {
			best = s
			bestSpan = span
		}
	}
	return best
}
