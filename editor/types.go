// Package editor implements §4.10's editor services: completion, hover,
// signature help, go-to-definition, references, and document outline.
// Every operation here is read-only over a *semantic.Result plus a byte
// offset or source range — none of them re-run analysis or touch the
// flow graph's mutable Binder, only the frozen Tree a finished Result
// carries.
package editor

import (
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/typesys"
)

// CompletionKind classifies a CompletionItem for the host's icon/sort
// logic, mirroring the handful of categories §4.10 names: keywords,
// variables, functions, fields, and modules (libraries/sandbox
// namespaces).
type CompletionKind int

const (
	CompletionKeyword CompletionKind = iota
	CompletionVariable
	CompletionFunction
	CompletionField
	CompletionModule
)

// CompletionItem is one candidate, deduplicated by Label before it
// reaches the host.
type CompletionItem struct {
	Label         string
	Kind          CompletionKind
	Detail        string // formatted type, e.g. "fun(url: string): { status: number, body: string }"
	Documentation string
}

// CompletionList is the full candidate set for one request.
type CompletionList struct {
	Items []CompletionItem
}

// SemanticInfo is the resolved node description Hover renders, per
// §4.10's exact field list.
type SemanticInfo struct {
	Type          *typesys.Type
	Declaration   *lua.Range
	IsTableField  bool
	FieldName     string
	Documentation string
}

// Hover is the full payload for a hover request at a position: the
// resolved semantic info plus the source range it applies to (so the
// host can highlight exactly the hovered token).
type Hover struct {
	Info  SemanticInfo
	Range lua.Range
}

// ParameterInfo is one parameter of the signature SignatureHelp reports.
type ParameterInfo struct {
	Label string
	Type  *typesys.Type
}

// SignatureHelp is the parameter list and active-parameter index for the
// call expression enclosing the cursor.
type SignatureHelp struct {
	Label            string
	Parameters       []ParameterInfo
	ActiveParameter  int
	ActiveParamValid bool
}

// DefinitionResult points at where a name was declared: either a range
// within the current document (locals/parameters/loop variables) or a
// synthetic builtin URI (globals, sandbox members) the host resolves to
// its own documentation view.
type DefinitionResult struct {
	Range      *lua.Range
	BuiltinURI string
}

// Reference is one read (or the declaration) of a resolved symbol.
type Reference struct {
	Range         lua.Range
	IsDeclaration bool
}

// OutlineKind classifies an OutlineSymbol node.
type OutlineKind int

const (
	OutlineFunction OutlineKind = iota
	OutlineVariable
	OutlineTable
)

// OutlineSymbol is one entry of the hierarchical document outline.
type OutlineSymbol struct {
	Name     string
	Kind     OutlineKind
	Range    lua.Range
	Children []OutlineSymbol
}
