// Package shape implements §4.8's Return-Shape Extractor and §4.9's
// Prior-Layer Merger: two standalone analyses over raw script text that
// never touch the symbol table, flow graph, or registry — only literal
// and table-constructor shape, which is all a script's `return { ... }`
// value can be meaningfully summarized by without running it.
package shape

import (
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/typesys"
)

// ExtractReturnType parses src standalone, collects every `return`
// statement reachable anywhere in the chunk (including ones nested in
// `if`/`while`/`for`/`do` bodies), and infers the shape of the **last**
// one's first argument. A script with no return statement, or a bare
// `return` with no arguments, yields Nil; a parse error yields Unknown
// rather than propagating — this extractor feeds completion/hover for
// the *next* layer's `context.prev`, where a malformed upstream script
// must degrade silently rather than blocking analysis of the one being
// edited.
func ExtractReturnType(src string) *typesys.Type {
	chunk, perr := lua.Parse([]byte(src))
	if perr != nil || chunk == nil {
		return typesys.Unknown
	}

	returns := collectReturns(chunk.Body)
	if len(returns) == 0 {
		return typesys.Nil
	}
	last := returns[len(returns)-1]
	if len(last.Arguments) == 0 {
		return typesys.Nil
	}
	return literalShape(last.Arguments[0])
}

// ExtractReturnDataType returns the `data` field of ExtractReturnType's
// shape, or Unknown if the return value isn't a table or has no `data`
// field.
func ExtractReturnDataType(src string) *typesys.Type {
	shape := ExtractReturnType(src)
	if shape == nil || shape.Kind != typesys.KindTable {
		return typesys.Unknown
	}
	if f := shape.GetField("data"); f != nil {
		return f.Type
	}
	return typesys.Unknown
}

// collectReturns walks block and every nested block reachable from it
// (if/while/repeat/for/do bodies; function bodies are NOT descended into
// — a `return` inside a nested function is that function's result, not
// the script's) in source order, so the last element of the result is the
// chunk's last top-level-reachable return.
func collectReturns(block *lua.Block) []*lua.ReturnStatement {
	var out []*lua.ReturnStatement
	for _, stmt := range block.Statements {
		switch st := stmt.(type) {
		case *lua.ReturnStatement:
			out = append(out, st)
		case *lua.DoStatement:
			out = append(out, collectReturns(st.Body)...)
		case *lua.WhileStatement:
			out = append(out, collectReturns(st.Body)...)
		case *lua.RepeatStatement:
			out = append(out, collectReturns(st.Body)...)
		case *lua.NumericForStatement:
			out = append(out, collectReturns(st.Body)...)
		case *lua.GenericForStatement:
			out = append(out, collectReturns(st.Body)...)
		case *lua.IfStatement:
			for _, clause := range st.Clauses {
				out = append(out, collectReturns(clause.Body)...)
			}
		}
	}
	return out
}

// literalShape recognizes boolean/number/string/nil/table-constructor
// literals, recursing into nested table constructors field by field.
// Anything else (an identifier, a call result, an arithmetic expression)
// has no statically-known shape without the symbol table and registry
// this extractor deliberately avoids depending on, so it resolves to
// Unknown.
func literalShape(expr lua.Expression) *typesys.Type {
	switch e := expr.(type) {
	case *lua.NilLiteral:
		return typesys.Nil
	case *lua.BooleanLiteral:
		return typesys.Boolean
	case *lua.NumberLiteral:
		if e.IsInteger {
			return typesys.Integer
		}
		return typesys.Number
	case *lua.StringLiteral:
		return typesys.String
	case *lua.ParenExpression:
		return literalShape(e.Argument)
	case *lua.TableConstructor:
		return literalTableShape(e)
	default:
		return typesys.Unknown
	}
}

func literalTableShape(e *lua.TableConstructor) *typesys.Type {
	table := typesys.NewTable()
	for _, f := range e.Fields {
		if f.Key == nil {
			continue // positional entries carry no field name for a return-shape's purposes
		}
		name, ok := fieldKeyName(f.Key)
		if !ok {
			continue
		}
		table.AddField(&typesys.Field{Name: name, Type: literalShape(f.Value)})
	}
	return table
}

func fieldKeyName(key lua.Expression) (string, bool) {
	switch k := key.(type) {
	case *lua.Identifier:
		return k.Name, true
	case *lua.StringLiteral:
		return k.Value, true
	default:
		return "", false
	}
}
