package semantic

import (
	"fmt"
	"strings"

	"github.com/viant/luasentry/infer"
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/symbol"
	"github.com/viant/luasentry/typesys"
)

// declareContext is the InferContext pass one uses to seed a `local x = e`
// declaration's initial type. It deliberately does not share the
// analyzer's typeByOffset cache: that cache is pass two's, built once the
// full symbol table exists, and is what editor services read.
type declareContext struct {
	a *Analyzer
}

func (c *declareContext) LookupSymbolType(name string, offset int) (*typesys.Type, bool) {
	sym, ok := c.a.table.LookupSymbol(name, offset, true)
	if !ok {
		return nil, false
	}
	return sym.Type, true
}

func (c *declareContext) InferType(expr lua.Expression) *typesys.Type { return infer.Infer(c, expr) }
func (c *declareContext) Registry() *registry.Registry                { return c.a.registry }
func (c *declareContext) HookName() string                            { return c.a.hookName }

// declareBlock walks every statement of block, declaring symbols and
// opening the scopes that own loop variables, parameters, and nested
// function bodies. It never infers types beyond a local's initializer,
// and never touches the flow graph or diagnostics — those belong to the
// second pass.
func (a *Analyzer) declareBlock(block *lua.Block) {
	for _, stmt := range block.Statements {
		a.declareStatement(stmt)
	}
}

func (a *Analyzer) declareStatement(s lua.Statement) {
	switch st := s.(type) {
	case *lua.LocalStatement:
		dc := &declareContext{a: a}
		for i, name := range st.Names {
			t := typesys.Unknown
			if i < len(st.Init) {
				t = infer.Infer(dc, st.Init[i])
			}
			sym, shadowed := a.table.DeclareSymbol(name.Name, symbol.Local, t, rangeOf(name.Range()), name.Range().Start)
			_ = sym
			if a.options.CheckShadowing && shadowed != nil {
				a.emitShadow(name, shadowed)
			}
		}
		for _, init := range st.Init {
			a.declareExpr(init)
		}

	case *lua.AssignmentStatement:
		for _, target := range st.Targets {
			if id, ok := target.(*lua.Identifier); ok {
				a.declareGlobalIfUndeclared(id)
				continue
			}
			a.declareExpr(target)
		}
		for _, init := range st.Init {
			a.declareExpr(init)
		}

	case *lua.CallStatement:
		a.declareExpr(st.Call)

	case *lua.DoStatement:
		a.declareBlock(st.Body)

	case *lua.WhileStatement:
		a.declareExpr(st.Condition)
		a.declareBlock(st.Body)

	case *lua.RepeatStatement:
		a.declareBlock(st.Body)
		a.declareExpr(st.Condition)

	case *lua.IfStatement:
		for _, clause := range st.Clauses {
			if clause.Condition != nil {
				a.declareExpr(clause.Condition)
			}
			a.declareBlock(clause.Body)
		}

	case *lua.NumericForStatement:
		a.declareExpr(st.Start)
		a.declareExpr(st.Stop)
		if st.Step != nil {
			a.declareExpr(st.Step)
		}
		a.table.EnterScope(symbol.ScopeFor, rangeOf(st.Body.Range()))
		a.table.DeclareSymbol(st.Variable.Name, symbol.LoopVariable, typesys.Number, rangeOf(st.Variable.Range()), st.Variable.Range().Start)
		a.declareBlock(st.Body)
		a.table.ExitScope()

	case *lua.GenericForStatement:
		for _, it := range st.Iterators {
			a.declareExpr(it)
		}
		a.table.EnterScope(symbol.ScopeForIn, rangeOf(st.Body.Range()))
		for _, v := range st.Variables {
			a.table.DeclareSymbol(v.Name, symbol.LoopVariable, typesys.Unknown, rangeOf(v.Range()), v.Range().Start)
		}
		a.declareBlock(st.Body)
		a.table.ExitScope()

	case *lua.FunctionDeclaration:
		a.declareFunctionDeclaration(st)

	case *lua.ReturnStatement:
		for _, arg := range st.Arguments {
			a.declareExpr(arg)
		}

	case *lua.BreakStatement:
		// nothing to declare
	}
}

// declareGlobalIfUndeclared implements §4.7's "assignment to an identifier
// not previously declared declares a new Global" rule. A true Lua global
// is visible everywhere, so it is added directly to the global scope
// rather than the current (possibly nested) scope.
func (a *Analyzer) declareGlobalIfUndeclared(id *lua.Identifier) {
	if _, found := a.table.LookupSymbol(id.Name, id.Range().Start, true); found {
		return
	}
	a.table.AddGlobalSymbol(&symbol.Symbol{
		ID:     a.nextAutoID("global"),
		Name:   id.Name,
		Kind:   symbol.Global,
		Type:   typesys.Unknown,
		Range:  rangeOf(id.Range()),
		Offset: id.Range().Start,
	})
}

// declareFunctionDeclaration handles all three surface forms the parser
// flattens onto FunctionDeclaration: `local function f`, `function f`
// (global), and `function t.f` / `function t:m` (a field assignment on an
// existing value, not a new binding — see identifierFromTarget in the lua
// package). Only the first two introduce a name; all three open a new
// scope for their parameter list and body.
func (a *Analyzer) declareFunctionDeclaration(fd *lua.FunctionDeclaration) {
	params := make([]*typesys.Param, 0, len(fd.Parameters)+1)
	for _, p := range fd.Parameters {
		params = append(params, &typesys.Param{Name: p.Name, Type: typesys.Unknown})
	}
	if fd.IsVararg {
		params = append(params, &typesys.Param{Name: "...", Type: typesys.Unknown, Vararg: true})
	}
	fnType := typesys.NewFunctionType(params, []*typesys.Type{typesys.Unknown})

	if fd.Identifier != nil && !strings.Contains(fd.Identifier.Name, ".") {
		if fd.IsLocal {
			_, shadowed := a.table.DeclareHoistedSymbol(fd.Identifier.Name, symbol.Local, fnType, rangeOf(fd.Identifier.Range()), fd.Identifier.Range().Start)
			if a.options.CheckShadowing && shadowed != nil {
				a.emitShadow(fd.Identifier, shadowed)
			}
		} else if _, found := a.table.LookupSymbol(fd.Identifier.Name, fd.Identifier.Range().Start, true); !found {
			a.table.AddGlobalSymbol(&symbol.Symbol{
				ID:            a.nextAutoID("global"),
				Name:          fd.Identifier.Name,
				Kind:          symbol.Global,
				Type:          fnType,
				Range:         rangeOf(fd.Identifier.Range()),
				Offset:        fd.Identifier.Range().Start,
				AlwaysVisible: true,
			})
		}
	}

	scopeKind := symbol.ScopeFunction
	if fd.IsMethod {
		scopeKind = symbol.ScopeMethod
	}
	a.table.EnterScope(scopeKind, rangeOf(fd.Body.Range()))
	for _, p := range fd.Parameters {
		a.table.DeclareSymbol(p.Name, symbol.Parameter, typesys.Unknown, rangeOf(p.Range()), p.Range().Start)
	}
	a.declareBlock(fd.Body)
	a.table.ExitScope()
}

// declareExpr descends into every expression purely to find nested
// FunctionExpression literals, which each need their own scope opened for
// their parameters and body — expression type inference itself is a
// second-pass concern.
func (a *Analyzer) declareExpr(e lua.Expression) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *lua.FunctionExpression:
		a.table.EnterScope(symbol.ScopeFunction, rangeOf(ex.Body.Range()))
		for _, p := range ex.Parameters {
			a.table.DeclareSymbol(p.Name, symbol.Parameter, typesys.Unknown, rangeOf(p.Range()), p.Range().Start)
		}
		a.declareBlock(ex.Body)
		a.table.ExitScope()
	case *lua.MemberExpression:
		a.declareExpr(ex.Base)
	case *lua.IndexExpression:
		a.declareExpr(ex.Base)
		a.declareExpr(ex.Index)
	case *lua.CallExpression:
		a.declareExpr(ex.Base)
		for _, arg := range ex.Arguments {
			a.declareExpr(arg)
		}
	case *lua.BinaryExpression:
		a.declareExpr(ex.Left)
		a.declareExpr(ex.Right)
	case *lua.LogicalExpression:
		a.declareExpr(ex.Left)
		a.declareExpr(ex.Right)
	case *lua.UnaryExpression:
		a.declareExpr(ex.Argument)
	case *lua.ParenExpression:
		a.declareExpr(ex.Argument)
	case *lua.TableConstructor:
		for _, f := range ex.Fields {
			if f.Key != nil {
				a.declareExpr(f.Key)
			}
			a.declareExpr(f.Value)
		}
	}
}

func (a *Analyzer) emitShadow(name *lua.Identifier, shadowed *symbol.Symbol) {
	a.diagnostics = append(a.diagnostics, Diagnostic{
		Code:     CodeShadowedVariable,
		Severity: SeverityWarning,
		Range:    name.Range(),
		Message:  fmt.Sprintf("%q shadows an outer declaration", name.Name),
		Data:     map[string]int{"declaredAt": shadowed.Offset},
	})
}
