package semantic

import (
	"strings"

	"github.com/viant/luasentry/flow"
	"github.com/viant/luasentry/infer"
	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/typesys"
)

// analysisContext is the pass-two InferContext. Every call to InferType
// caches its result in typeByOffset (§4.6's "every inferred type is
// cached in typeByOffset keyed by the start offset") and, before
// delegating to infer.Infer, runs the identifier/member/call diagnostic
// checks that need to see every node exactly once during the same walk
// that drives inference.
type analysisContext struct {
	a *Analyzer
}

func (c *analysisContext) LookupSymbolType(name string, offset int) (*typesys.Type, bool) {
	sym, ok := c.a.table.LookupSymbol(name, offset, true)
	if !ok {
		return nil, false
	}
	c.a.table.AddReference(sym.ID, offset)
	return NarrowType(c.a.binder, c.a.currentFlow, name, sym.Type), true
}

// NarrowType applies the flow graph's §4.5 narrowing for conditionKey at
// flowID to t: `assert(x)` and an `if x then` then-branch prove x truthy
// (Nil and `false` excluded); the corresponding else-branch proves it
// falsy. n is either the Analyzer's live Binder mid-walk or a finished
// Tree queried later by an editor service (e.g. editor.HoverAt) — both
// satisfy flow.Narrower.
func NarrowType(n flow.Narrower, flowID int, conditionKey string, t *typesys.Type) *typesys.Type {
	switch {
	case n.IsNarrowedTruthy(flowID, conditionKey):
		return typesys.NarrowTruthy(t)
	case n.IsNarrowedFalsy(flowID, conditionKey):
		return typesys.NarrowFalsy(t)
	default:
		return t
	}
}

func (c *analysisContext) InferType(expr lua.Expression) *typesys.Type {
	if expr == nil {
		return typesys.Unknown
	}
	offset := expr.Range().Start
	if t, ok := c.a.typeByOffset[offset]; ok {
		return t
	}

	// Bind every expression offset to the flow node active when it was
	// first visited, not just the top-level expressions bindAndInfer sees
	// directly — a post-hoc caller (editor.HoverAt) needs FlowAt to resolve
	// for an arbitrary sub-expression's own offset, e.g. hovering `u` inside
	// `return u.name`.
	c.a.binder.BindOffset(offset, c.a.currentFlow)

	switch e := expr.(type) {
	case *lua.Identifier:
		c.a.checkIdentifierDefined(e)
		c.a.checkDisabled(e.Name, e.Range())
	case *lua.MemberExpression:
		if path, ok := memberPath(e); ok {
			c.a.checkDisabled(strings.Join(path, "."), e.Range())
		}
	case *lua.CallExpression:
		c.a.checkAsyncWithoutAwait(c, e)
	case *lua.FunctionExpression:
		c.a.analyzeFunctionBody(e.Parameters, e.Body)
	}

	t := infer.Infer(c, expr)
	if t == nil {
		t = typesys.Unknown
	}
	c.a.typeByOffset[offset] = t
	return t
}

func (c *analysisContext) Registry() *registry.Registry { return c.a.registry }
func (c *analysisContext) HookName() string              { return c.a.hookName }
