package semantic

import (
	"github.com/viant/luasentry/flow"
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/symbol"
	"github.com/viant/luasentry/typesys"
)

// ReturnInfo records one `return` statement's argument range and inferred
// type, collected during the second pass; the last one (per §4.8) is the
// script's effective result shape.
type ReturnInfo struct {
	Range lua.Range
	Type  *typesys.Type
}

// Options configures one analysis run, mirroring §3's AnalyzerOptions.
type Options struct {
	// HookName selects which hookVariant of `context` is visible; empty
	// means "no hook context", in which case `context` exposes the union
	// of every variant's fields (registry.GetContextFieldsForHook("")).
	HookName string

	// PreviousLayerType carries a merged prior-layer shape such as
	// shape.MergePriorLayer computes. The analyzer does not read it:
	// `context.prev` resolves to the registry's static `PrevLayerResult`
	// named type whether or not this field is set.
	PreviousLayerType *typesys.Type

	MaxScriptSize int
	MaxLoopDepth  int

	CheckUnused    bool
	CheckShadowing bool
}

// DefaultOptions returns the conservative defaults a caller gets by not
// tuning anything: a 5 KiB script ceiling (§1's stated script size) and a
// loop-nesting ceiling generous enough never to fire on idiomatic scripts.
func DefaultOptions() Options {
	return Options{
		MaxScriptSize:  5 * 1024,
		MaxLoopDepth:   4,
		CheckUnused:    true,
		CheckShadowing: true,
	}
}

// Result is the immutable aggregate analysis output described in §3's
// "Analysis result" data model.
type Result struct {
	SymbolTable  *symbol.Table
	Diagnostics  []Diagnostic
	TypeByOffset map[int]*typesys.Type
	Returns      []ReturnInfo
	FlowGraph    *flow.Tree
	Success      bool
}

// TypeAt returns the cached type for the expression whose range starts at
// offset, if analysis inferred one.
func (r *Result) TypeAt(offset int) (*typesys.Type, bool) {
	t, ok := r.TypeByOffset[offset]
	return t, ok
}
