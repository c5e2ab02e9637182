// Package semantic implements the two-pass orchestrator described in
// §4.7: pass one walks the AST once to build the complete symbol-table
// scope tree and every declaration; pass two re-walks it to drive type
// inference, flow-graph construction, and diagnostics, using the
// now-complete symbol table for position-aware lookups.
package semantic

import (
	"fmt"

	"github.com/viant/luasentry/flow"
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/source"
	"github.com/viant/luasentry/symbol"
	"github.com/viant/luasentry/typesys"
)

// Analyzer holds the per-document arenas a single analysis run builds and
// discards (§5's resource-discipline rule: nothing survives past the call
// that drops its Result).
type Analyzer struct {
	doc      *source.Document
	registry *registry.Registry
	options  Options

	table  *symbol.Table
	binder *flow.Binder

	// currentFlow is the flow node active for whatever expression is being
	// inferred right now. bindAndInfer sets it once per statement-level
	// expression; every recursive InferType call it fans out to (nested
	// identifiers, member bases, call arguments) reads the same value,
	// since none of those recursive calls change it.
	currentFlow int

	typeByOffset map[int]*typesys.Type
	diagnostics  []Diagnostic
	returns      []ReturnInfo

	hookName   string
	awaitDepth int
	autoID     int
}

// Analyze runs a complete analysis of doc under opts, against the given
// registry. It never mutates doc; the returned Result is immutable once
// returned (nothing else holds a reference to its arenas).
func Analyze(doc *source.Document, reg *registry.Registry, opts Options) *Result {
	a := &Analyzer{
		doc:          doc,
		registry:     reg,
		options:      opts,
		hookName:     opts.HookName,
		typeByOffset: make(map[int]*typesys.Type),
	}

	text := doc.GetText()
	if opts.MaxScriptSize > 0 && len(text) > opts.MaxScriptSize {
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Code:     CodeScriptTooLarge,
			Severity: SeverityWarning,
			Range:    lua.Range{Start: 0, End: len(text)},
			Message:  fmt.Sprintf("script is %d bytes, exceeding the %d byte limit", len(text), opts.MaxScriptSize),
		})
	}

	if perr := doc.GetParseError(); perr != nil {
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Code:     CodeSyntaxError,
			Severity: SeverityError,
			Range:    perr.Range,
			Message:  perr.Message,
		})
	}

	chunk := doc.GetAST()
	if chunk == nil {
		return &Result{
			SymbolTable:  symbol.NewTable(symbol.Range{Start: 0, End: len(text)}),
			Diagnostics:  a.diagnostics,
			TypeByOffset: a.typeByOffset,
			Success:      false,
		}
	}

	a.table = symbol.NewTable(rangeOf(chunk.Range()))
	a.binder = flow.NewBinder()

	a.declareBlock(chunk.Body)

	current := a.binder.Start()
	a.analyzeBlock(chunk.Body, &current, 0)

	if opts.CheckUnused {
		a.checkUnusedSymbols()
	}

	success := true
	for _, d := range a.diagnostics {
		if d.Severity == SeverityError {
			success = false
			break
		}
	}

	return &Result{
		SymbolTable:  a.table,
		Diagnostics:  a.diagnostics,
		TypeByOffset: a.typeByOffset,
		Returns:      a.returns,
		FlowGraph:    a.binder.Finish(),
		Success:      success,
	}
}

func rangeOf(r lua.Range) symbol.Range { return symbol.Range{Start: r.Start, End: r.End} }

func (a *Analyzer) nextAutoID(prefix string) string {
	a.autoID++
	return fmt.Sprintf("%s-%d", prefix, a.autoID)
}
