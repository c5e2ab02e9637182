package editor

import "github.com/viant/luasentry/lua"

func contains(r lua.Range, offset int) bool {
	return offset >= r.Start && offset <= r.End
}

// ExpressionAt returns the deepest expression node whose range contains
// offset, descending into every statement form (including nested
// function bodies, unlike the semantic package's pass-one/two walkers,
// since editor services query the whole document regardless of where
// analysis itself stopped recursing).
func ExpressionAt(chunk *lua.Chunk, offset int) lua.Expression {
	if chunk == nil || chunk.Body == nil {
		return nil
	}
	return blockExprAt(chunk.Body, offset)
}

func blockExprAt(block *lua.Block, offset int) lua.Expression {
	for _, stmt := range block.Statements {
		if !contains(stmt.Range(), offset) {
			continue
		}
		if e := stmtExprAt(stmt, offset); e != nil {
			return e
		}
	}
	return nil
}

func stmtExprAt(s lua.Statement, offset int) lua.Expression {
	switch st := s.(type) {
	case *lua.LocalStatement:
		for _, n := range st.Names {
			if contains(n.Range(), offset) {
				return n
			}
		}
		return firstExprAt(offset, st.Init...)
	case *lua.AssignmentStatement:
		if e := firstExprAt(offset, st.Targets...); e != nil {
			return e
		}
		return firstExprAt(offset, st.Init...)
	case *lua.CallStatement:
		return exprAt(st.Call, offset)
	case *lua.DoStatement:
		return blockExprAt(st.Body, offset)
	case *lua.WhileStatement:
		if e := exprAt(st.Condition, offset); e != nil {
			return e
		}
		return blockExprAt(st.Body, offset)
	case *lua.RepeatStatement:
		if e := blockExprAt(st.Body, offset); e != nil {
			return e
		}
		return exprAt(st.Condition, offset)
	case *lua.IfStatement:
		for _, clause := range st.Clauses {
			if clause.Condition != nil {
				if e := exprAt(clause.Condition, offset); e != nil {
					return e
				}
			}
			if contains(clause.Body.Range(), offset) {
				if e := blockExprAt(clause.Body, offset); e != nil {
					return e
				}
			}
		}
		return nil
	case *lua.NumericForStatement:
		if e := firstExprAt(offset, st.Start, st.Stop, st.Step); e != nil {
			return e
		}
		if contains(st.Variable.Range(), offset) {
			return st.Variable
		}
		return blockExprAt(st.Body, offset)
	case *lua.GenericForStatement:
		if e := firstExprAt(offset, st.Iterators...); e != nil {
			return e
		}
		for _, v := range st.Variables {
			if contains(v.Range(), offset) {
				return v
			}
		}
		return blockExprAt(st.Body, offset)
	case *lua.FunctionDeclaration:
		for _, p := range st.Parameters {
			if contains(p.Range(), offset) {
				return p
			}
		}
		if st.Identifier != nil && contains(st.Identifier.Range(), offset) {
			return st.Identifier
		}
		return blockExprAt(st.Body, offset)
	case *lua.ReturnStatement:
		return firstExprAt(offset, st.Arguments...)
	}
	return nil
}

func firstExprAt(offset int, exprs ...lua.Expression) lua.Expression {
	for _, e := range exprs {
		if e == nil {
			continue
		}
		if result := exprAt(e, offset); result != nil {
			return result
		}
	}
	return nil
}

// exprAt assumes e's own range has already been (or is about to be)
// checked and returns the deepest descendant containing offset, falling
// back to e itself once no child matches.
func exprAt(e lua.Expression, offset int) lua.Expression {
	if e == nil || !contains(e.Range(), offset) {
		return nil
	}
	switch ex := e.(type) {
	case *lua.MemberExpression:
		if contains(ex.Property.Range(), offset) {
			return ex
		}
		if child := exprAt(ex.Base, offset); child != nil {
			return child
		}
		return ex
	case *lua.IndexExpression:
		if child := exprAt(ex.Index, offset); child != nil {
			return child
		}
		if child := exprAt(ex.Base, offset); child != nil {
			return child
		}
		return ex
	case *lua.CallExpression:
		for _, arg := range ex.Arguments {
			if child := exprAt(arg, offset); child != nil {
				return child
			}
		}
		if ex.Method != nil && contains(ex.Method.Range(), offset) {
			return ex
		}
		if child := exprAt(ex.Base, offset); child != nil {
			return child
		}
		return ex
	case *lua.BinaryExpression:
		if child := exprAt(ex.Left, offset); child != nil {
			return child
		}
		if child := exprAt(ex.Right, offset); child != nil {
			return child
		}
		return ex
	case *lua.LogicalExpression:
		if child := exprAt(ex.Left, offset); child != nil {
			return child
		}
		if child := exprAt(ex.Right, offset); child != nil {
			return child
		}
		return ex
	case *lua.UnaryExpression:
		if child := exprAt(ex.Argument, offset); child != nil {
			return child
		}
		return ex
	case *lua.ParenExpression:
		if child := exprAt(ex.Argument, offset); child != nil {
			return child
		}
		return ex
	case *lua.TableConstructor:
		for _, f := range ex.Fields {
			if f.Key != nil {
				if child := exprAt(f.Key, offset); child != nil {
					return child
				}
			}
			if child := exprAt(f.Value, offset); child != nil {
				return child
			}
		}
		return ex
	case *lua.FunctionExpression:
		for _, p := range ex.Parameters {
			if contains(p.Range(), offset) {
				return p
			}
		}
		if contains(ex.Body.Range(), offset) {
			if child := blockExprAt(ex.Body, offset); child != nil {
				return child
			}
		}
		return ex
	default:
		return e
	}
}

// CallExpressionAt returns the nearest enclosing CallExpression whose
// range (callee and argument list together) contains offset, for
// signature help — unlike
// ExpressionAt this deliberately does not return the deepest node, since
// the cursor is typically inside an argument (itself a valid expression)
// rather than on the call node.
func CallExpressionAt(chunk *lua.Chunk, offset int) *lua.CallExpression {
	if chunk == nil || chunk.Body == nil {
		return nil
	}
	return callExprInBlock(chunk.Body, offset)
}

func callExprInBlock(block *lua.Block, offset int) *lua.CallExpression {
	var best *lua.CallExpression
	var visitStmt func(lua.Statement)
	var visitExpr func(lua.Expression)

	visitExpr = func(e lua.Expression) {
		if e == nil || !contains(e.Range(), offset) {
			return
		}
		switch ex := e.(type) {
		case *lua.CallExpression:
			if best == nil || narrower(ex.Range(), best.Range()) {
				best = ex
			}
			visitExpr(ex.Base)
			for _, arg := range ex.Arguments {
				visitExpr(arg)
			}
		case *lua.MemberExpression:
			visitExpr(ex.Base)
		case *lua.IndexExpression:
			visitExpr(ex.Base)
			visitExpr(ex.Index)
		case *lua.BinaryExpression:
			visitExpr(ex.Left)
			visitExpr(ex.Right)
		case *lua.LogicalExpression:
			visitExpr(ex.Left)
			visitExpr(ex.Right)
		case *lua.UnaryExpression:
			visitExpr(ex.Argument)
		case *lua.ParenExpression:
			visitExpr(ex.Argument)
		case *lua.TableConstructor:
			for _, f := range ex.Fields {
				visitExpr(f.Key)
				visitExpr(f.Value)
			}
		case *lua.FunctionExpression:
			visitBlock(ex.Body)
		}
	}

	var visitBlock func(*lua.Block)
	visitBlock = func(b *lua.Block) {
		for _, s := range b.Statements {
			if contains(s.Range(), offset) {
				visitStmt(s)
			}
		}
	}

	visitStmt = func(s lua.Statement) {
		switch st := s.(type) {
		case *lua.LocalStatement:
			for _, e := range st.Init {
				visitExpr(e)
			}
		case *lua.AssignmentStatement:
			for _, e := range st.Targets {
				visitExpr(e)
			}
			for _, e := range st.Init {
				visitExpr(e)
			}
		case *lua.CallStatement:
			visitExpr(st.Call)
		case *lua.DoStatement:
			visitBlock(st.Body)
		case *lua.WhileStatement:
			visitExpr(st.Condition)
			visitBlock(st.Body)
		case *lua.RepeatStatement:
			visitBlock(st.Body)
			visitExpr(st.Condition)
		case *lua.IfStatement:
			for _, clause := range st.Clauses {
				visitExpr(clause.Condition)
				visitBlock(clause.Body)
			}
		case *lua.NumericForStatement:
			visitExpr(st.Start)
			visitExpr(st.Stop)
			visitExpr(st.Step)
			visitBlock(st.Body)
		case *lua.GenericForStatement:
			for _, e := range st.Iterators {
				visitExpr(e)
			}
			visitBlock(st.Body)
		case *lua.FunctionDeclaration:
			visitBlock(st.Body)
		case *lua.ReturnStatement:
			for _, e := range st.Arguments {
				visitExpr(e)
			}
		}
	}

	visitBlock(block)
	return best
}

// narrower reports whether a spans fewer bytes than b, used to prefer the
// innermost of several nested enclosing calls.
func narrower(a, b lua.Range) bool {
	return (a.End - a.Start) < (b.End - b.Start)
}
