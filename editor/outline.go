package editor

import "github.com/viant/luasentry/lua"

// Outline implements §4.10's document outline: a hierarchical symbol list
// built by walking the AST directly (not the symbol table, which
// flattens scope nesting) so nested function declarations nest under
// their enclosing function in the result, matching how an editor's
// outline view is expected to render.
func Outline(chunk *lua.Chunk) []OutlineSymbol {
	if chunk == nil || chunk.Body == nil {
		return nil
	}
	return outlineBlock(chunk.Body)
}

func outlineBlock(block *lua.Block) []OutlineSymbol {
	var out []OutlineSymbol
	for _, stmt := range block.Statements {
		out = append(out, outlineStatement(stmt)...)
	}
	return out
}

// outlineStatement returns zero or more outline entries for one
// statement. Control-flow constructs (do/while/repeat/if/for) are not
// outline nodes themselves — an outline reader wants "the functions and
// tables in this script", not a tree shaped like the control flow that
// happens to contain them — so their nested declarations splice directly
// into the caller's result at the same level instead of nesting under a
// synthetic "if" entry.
func outlineStatement(s lua.Statement) []OutlineSymbol {
	switch st := s.(type) {
	case *lua.FunctionDeclaration:
		name := "<anonymous>"
		if st.Identifier != nil {
			name = st.Identifier.Name
		}
		return []OutlineSymbol{{
			Name:     name,
			Kind:     OutlineFunction,
			Range:    st.Range(),
			Children: outlineBlock(st.Body),
		}}

	case *lua.LocalStatement:
		if len(st.Names) == 0 {
			return nil
		}
		name := st.Names[0].Name
		kind := OutlineVariable
		if len(st.Init) > 0 {
			if _, ok := st.Init[0].(*lua.TableConstructor); ok {
				kind = OutlineTable
			}
			if _, ok := st.Init[0].(*lua.FunctionExpression); ok {
				kind = OutlineFunction
			}
		}
		return []OutlineSymbol{{Name: name, Kind: kind, Range: st.Range()}}

	case *lua.DoStatement:
		return outlineBlock(st.Body)
	case *lua.WhileStatement:
		return outlineBlock(st.Body)
	case *lua.RepeatStatement:
		return outlineBlock(st.Body)
	case *lua.NumericForStatement:
		return outlineBlock(st.Body)
	case *lua.GenericForStatement:
		return outlineBlock(st.Body)
	case *lua.IfStatement:
		var out []OutlineSymbol
		for _, clause := range st.Clauses {
			out = append(out, outlineBlock(clause.Body)...)
		}
		return out
	}
	return nil
}
