package semantic

import (
	"fmt"
	"strings"

	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/symbol"
	"github.com/viant/luasentry/typesys"
)

// analyzeBlock re-walks block's statements threading the current flow
// node through each one in turn. Scopes are never entered here — pass one
// already built the scope tree; lookups are offset-addressed.
func (a *Analyzer) analyzeBlock(block *lua.Block, current *int, loopDepth int) {
	for _, stmt := range block.Statements {
		a.analyzeStatement(stmt, current, loopDepth)
	}
}

func (a *Analyzer) analyzeStatement(s lua.Statement, current *int, loopDepth int) {
	ctx := &analysisContext{a: a}

	switch st := s.(type) {
	case *lua.LocalStatement:
		for _, init := range st.Init {
			a.bindAndInfer(ctx, init, *current)
		}

	case *lua.AssignmentStatement:
		for _, target := range st.Targets {
			if id, ok := target.(*lua.Identifier); ok {
				a.bindOffset(id.Range().Start, *current)
				a.checkDisabled(id.Name, id.Range())
				continue
			}
			a.bindAndInfer(ctx, target, *current)
		}
		for _, init := range st.Init {
			a.bindAndInfer(ctx, init, *current)
		}

	case *lua.CallStatement:
		a.analyzeCallStatement(st, current)

	case *lua.DoStatement:
		a.analyzeBlock(st.Body, current, loopDepth)

	case *lua.WhileStatement:
		a.bindAndInfer(ctx, st.Condition, *current)
		a.checkLoopDepth(st.Range(), loopDepth)
		bodyFlow := *current
		a.analyzeBlock(st.Body, &bodyFlow, loopDepth+1)
		// No back-edge narrowing (§4.5): the loop body's flow never feeds
		// back into `current`, so a later iteration's narrowing can't leak
		// past the loop.

	case *lua.RepeatStatement:
		bodyFlow := *current
		a.analyzeBlock(st.Body, &bodyFlow, loopDepth+1)
		a.checkLoopDepth(st.Range(), loopDepth)
		a.bindAndInfer(ctx, st.Condition, bodyFlow)

	case *lua.NumericForStatement:
		a.bindAndInfer(ctx, st.Start, *current)
		a.bindAndInfer(ctx, st.Stop, *current)
		if st.Step != nil {
			a.bindAndInfer(ctx, st.Step, *current)
		}
		a.checkLoopDepth(st.Range(), loopDepth)
		bodyFlow := *current
		a.analyzeBlock(st.Body, &bodyFlow, loopDepth+1)

	case *lua.GenericForStatement:
		for _, it := range st.Iterators {
			a.bindAndInfer(ctx, it, *current)
		}
		a.checkLoopDepth(st.Range(), loopDepth)
		bodyFlow := *current
		a.analyzeBlock(st.Body, &bodyFlow, loopDepth+1)

	case *lua.IfStatement:
		a.analyzeIf(st, current, loopDepth)

	case *lua.FunctionDeclaration:
		a.analyzeFunctionBody(st.Parameters, st.Body)

	case *lua.ReturnStatement:
		var types []*typesys.Type
		for _, arg := range st.Arguments {
			types = append(types, a.bindAndInfer(ctx, arg, *current))
		}
		a.returns = append(a.returns, ReturnInfo{Range: st.Range(), Type: returnTupleType(types)})
		a.binder.AddAntecedent(a.binder.Unreachable(), *current)
		*current = a.binder.Unreachable()

	case *lua.BreakStatement:
		// Loop exits aren't modeled as flow edges (no back-edges at all are
		// built for loops), so there is nothing to bind here.
	}
}

func returnTupleType(types []*typesys.Type) *typesys.Type {
	switch len(types) {
	case 0:
		return typesys.Nil
	case 1:
		return types[0]
	default:
		return typesys.NewTuple(types)
	}
}

// analyzeCallStatement handles the two flow-affecting builtin call forms
// §4.5 calls out specially (`assert`, `error`) before falling back to
// plain expression analysis for everything else.
func (a *Analyzer) analyzeCallStatement(st *lua.CallStatement, current *int) {
	ctx := &analysisContext{a: a}
	call, ok := st.Call.(*lua.CallExpression)
	if ok {
		if id, ok := call.Base.(*lua.Identifier); ok {
			switch id.Name {
			case "assert":
				a.bindAndInfer(ctx, st.Call, *current)
				if len(call.Arguments) > 0 {
					key, negate := narrowTarget(call.Arguments[0])
					var node int
					if negate {
						node = a.binder.CreateFalseCondition(key)
					} else {
						node = a.binder.CreateTrueCondition(key)
					}
					a.binder.AddAntecedent(node, *current)
					*current = node
				}
				return
			case "error":
				a.bindAndInfer(ctx, st.Call, *current)
				a.binder.AddAntecedent(a.binder.Unreachable(), *current)
				*current = a.binder.Unreachable()
				return
			}
		}
	}
	a.bindAndInfer(ctx, st.Call, *current)
}

// analyzeIf builds the TrueCondition/FalseCondition/Join shape §4.5
// describes: each clause spawns a true branch (the body) and a false
// branch (the next clause's entry); once every clause has been visited,
// every branch tail still reachable joins at a single BranchLabel, which
// becomes the statement's outgoing flow. A clause whose body ends in
// `return`/`error` never contributes its tail to the join, so e.g. an
// `if not x then return end` leaves the fallthrough path proven non-nil.
func (a *Analyzer) analyzeIf(st *lua.IfStatement, current *int, loopDepth int) {
	ctx := &analysisContext{a: a}
	var liveTails []int
	branchFlow := *current
	hasElse := false

	for _, clause := range st.Clauses {
		if clause.Condition == nil {
			hasElse = true
			tail := branchFlow
			a.analyzeBlock(clause.Body, &tail, loopDepth)
			if !a.binder.IsUnreachable(tail) {
				liveTails = append(liveTails, tail)
			}
			continue
		}

		a.bindAndInfer(ctx, clause.Condition, branchFlow)
		key, negate := narrowTarget(clause.Condition)

		var thenEntry, elseEntry int
		if negate {
			thenEntry = a.binder.CreateFalseCondition(key)
			elseEntry = a.binder.CreateTrueCondition(key)
		} else {
			thenEntry = a.binder.CreateTrueCondition(key)
			elseEntry = a.binder.CreateFalseCondition(key)
		}
		a.binder.AddAntecedent(thenEntry, branchFlow)
		a.binder.AddAntecedent(elseEntry, branchFlow)

		thenTail := thenEntry
		a.analyzeBlock(clause.Body, &thenTail, loopDepth)
		if !a.binder.IsUnreachable(thenTail) {
			liveTails = append(liveTails, thenTail)
		}

		branchFlow = elseEntry
	}

	if !hasElse && !a.binder.IsUnreachable(branchFlow) {
		liveTails = append(liveTails, branchFlow)
	}

	switch len(liveTails) {
	case 0:
		*current = a.binder.Unreachable()
	case 1:
		*current = liveTails[0]
	default:
		join := a.binder.CreateBranchLabel()
		for _, tail := range liveTails {
			a.binder.AddAntecedent(join, tail)
		}
		*current = join
	}
}

// analyzeFunctionBody walks a function body with its own, independent flow
// — a non-interprocedural analyzer has no caller flow to narrow against,
// so the body starts at a fresh node with no antecedents.
func (a *Analyzer) analyzeFunctionBody(_ []*lua.Identifier, body *lua.Block) {
	entry := a.binder.CreateBranchLabel()
	a.analyzeBlock(body, &entry, 0)
}

func (a *Analyzer) bindAndInfer(ctx *analysisContext, e lua.Expression, flowID int) *typesys.Type {
	if e == nil {
		return typesys.Unknown
	}
	a.currentFlow = flowID
	a.bindOffset(e.Range().Start, flowID)
	return ctx.InferType(e)
}

func (a *Analyzer) bindOffset(offset, flowID int) {
	a.binder.BindOffset(offset, flowID)
}

func (a *Analyzer) checkLoopDepth(r lua.Range, loopDepth int) {
	if a.options.MaxLoopDepth > 0 && loopDepth+1 > a.options.MaxLoopDepth {
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Code:     CodeDeeplyNestedLoop,
			Severity: SeverityWarning,
			Range:    r,
			Message:  fmt.Sprintf("loop nesting depth %d exceeds the configured limit of %d", loopDepth+1, a.options.MaxLoopDepth),
		})
	}
}

func (a *Analyzer) checkIdentifierDefined(id *lua.Identifier) {
	if id.Name == "self" || id.Name == "_" {
		return
	}
	if _, ok := a.table.LookupSymbol(id.Name, id.Range().Start, true); ok {
		return
	}
	if _, ok := a.registry.GetSandboxItem(id.Name); ok {
		return
	}
	if _, ok := a.registry.GetLibrary(id.Name); ok {
		return
	}
	if _, ok := a.registry.GetGlobal(id.Name); ok {
		return
	}
	if a.registry.IsDisabled(id.Name) {
		return
	}
	a.diagnostics = append(a.diagnostics, Diagnostic{
		Code:     CodeUndefinedVariable,
		Severity: SeverityError,
		Range:    id.Range(),
		Message:  fmt.Sprintf("%q is not defined", id.Name),
	})
}

func (a *Analyzer) checkDisabled(name string, r lua.Range) {
	if msg, ok := a.registry.GetDisabledMessage(name); ok {
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Code:     CodeDisabledGlobal,
			Severity: SeverityError,
			Range:    r,
			Message:  msg,
		})
	}
}

// checkAsyncWithoutAwait flags a call to a helper marked `async: true`
// whose nearest enclosing call is not `await(...)`. `await` is tracked
// with a simple depth counter rather than a parent pointer: any call
// reached while walking await's own argument list — at any nesting depth
// — counts as enclosed, matching "lexically enclosed in an await(...)
// call" for the common case of `await(helpers.httpGet(url))` as well as
// `await(f(helpers.httpGet(url)))`.
func (a *Analyzer) checkAsyncWithoutAwait(c *analysisContext, call *lua.CallExpression) {
	path, ok := memberPath(call.Base)
	if !ok {
		return
	}
	if len(path) == 1 && path[0] == "await" {
		a.awaitDepth++
		for _, arg := range call.Arguments {
			c.InferType(arg)
		}
		a.awaitDepth--
		return
	}
	if len(path) == 2 && path[0] == "helpers" && a.awaitDepth == 0 {
		if field, ok := a.registry.GetHelper(path[1]); ok && field.Async {
			a.diagnostics = append(a.diagnostics, Diagnostic{
				Code:     CodeAsyncWithoutAwait,
				Severity: SeverityWarning,
				Range:    call.Range(),
				Message:  fmt.Sprintf("helpers.%s is asynchronous; wrap the call in await(...)", path[1]),
			})
		}
	}
}

// memberPath flattens an Identifier/MemberExpression chain into its
// dotted segments, mirroring the infer package's own helper — duplicated
// here rather than exported, since the two packages use it for different
// purposes (type resolution vs. diagnostic name matching) and the logic
// is a handful of lines.
func memberPath(expr lua.Expression) ([]string, bool) {
	switch e := expr.(type) {
	case *lua.Identifier:
		return []string{e.Name}, true
	case *lua.MemberExpression:
		base, ok := memberPath(e.Base)
		if !ok {
			return nil, false
		}
		return append(base, e.Property.Name), true
	default:
		return nil, false
	}
}

// narrowTarget picks the flow ConditionKey a condition expression narrows
// and whether the then-branch corresponds to the condition's target being
// truthy (negate=false) or falsy (negate=true, for `not x` / `if not x`
// forms). Conditions with no clear single target (e.g. `x == 1`) get a
// positional key derived from their own offset, so distinct anonymous
// conditions never collide, at the cost of narrowing nothing useful for
// later queries — exactly the coarseness §4.5 accepts for a DAG-only flow
// graph with no general expression equivalence.
func narrowTarget(e lua.Expression) (string, bool) {
	switch c := e.(type) {
	case *lua.Identifier:
		return c.Name, false
	case *lua.UnaryExpression:
		if c.Operator == "not" {
			key, negate := narrowTarget(c.Argument)
			return key, !negate
		}
	case *lua.MemberExpression:
		if path, ok := memberPath(c); ok {
			return strings.Join(path, "."), false
		}
	}
	return fmt.Sprintf("@%d", e.Range().Start), false
}

// checkUnusedSymbols runs after pass two has recorded every reference,
// flagging Local/Parameter symbols nothing ever read. Globals and loop
// variables are exempt (a loop variable unused in the body is common and
// not a mistake; globals may be read by a later script layer this
// analysis never sees). A leading underscore is the conventional
// "intentionally unused" escape hatch, mirrored from the teacher's own
// lint conventions.
func (a *Analyzer) checkUnusedSymbols() {
	for _, sym := range a.table.GetAllSymbols() {
		if sym.Kind != symbol.Local && sym.Kind != symbol.Parameter {
			continue
		}
		if len(sym.References) > 0 {
			continue
		}
		if strings.HasPrefix(sym.Name, "_") {
			continue
		}
		code := CodeUnusedVariable
		if sym.Kind == symbol.Parameter {
			code = CodeUnusedParameter
		}
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Code:     code,
			Severity: SeverityHint,
			Range:    lua.Range{Start: sym.Range.Start, End: sym.Range.End},
			Message:  fmt.Sprintf("%q is never used", sym.Name),
			Tags:     []string{TagUnused},
		})
	}
}
