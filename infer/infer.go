// Package infer implements §4.6's per-expression type inference rules over
// the lua AST, producing typesys.Type values. Every rule is a pure
// function of an InferContext plus the expression node; caching into
// typeByOffset and reference-tracking side effects are the analyzer's
// responsibility, reached back through InferContext.InferType so a single
// recursive entry point sees every sub-expression exactly once.
package infer

import (
	"strconv"

	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/typesys"
)

// InferContext is the capability surface a rule needs: position-aware
// symbol lookup, a way to recurse that lets the caller intercept every
// sub-expression (for typeByOffset caching and reference tracking),
// read-only registry access, and the hook identity the current document is
// analyzed under (so `context`'s field set picks the right variant).
type InferContext interface {
	LookupSymbolType(name string, offset int) (*typesys.Type, bool)
	InferType(expr lua.Expression) *typesys.Type
	Registry() *registry.Registry
	HookName() string
}

// Infer dispatches on the dynamic type of expr and applies the matching
// §4.6 rule. Callers normally don't call Infer directly — they call
// ctx.InferType, whose analyzer-side implementation wraps Infer with
// caching — except the analyzer's own InferType implementation, which
// calls Infer once it has decided the result isn't already cached.
func Infer(ctx InferContext, expr lua.Expression) *typesys.Type {
	switch e := expr.(type) {
	case *lua.NilLiteral:
		return typesys.Nil
	case *lua.BooleanLiteral:
		return typesys.NewBooleanLiteral(e.Value)
	case *lua.NumberLiteral:
		return typesys.NewNumberLiteral(e.Value)
	case *lua.StringLiteral:
		return typesys.NewStringLiteral(e.Value)
	case *lua.VarargLiteral:
		return typesys.NewVariadic(typesys.Unknown)
	case *lua.Identifier:
		return inferIdentifier(ctx, e)
	case *lua.MemberExpression:
		return inferMember(ctx, e)
	case *lua.IndexExpression:
		return inferIndex(ctx, e)
	case *lua.CallExpression:
		return inferCall(ctx, e)
	case *lua.TableConstructor:
		return inferTable(ctx, e)
	case *lua.BinaryExpression:
		return inferBinary(ctx, e)
	case *lua.UnaryExpression:
		return inferUnary(e)
	case *lua.LogicalExpression:
		return inferLogical(ctx, e)
	case *lua.FunctionExpression:
		return inferFunctionExpr(e)
	case *lua.ParenExpression:
		return ctx.InferType(e.Argument)
	default:
		return typesys.Unknown
	}
}

func inferIdentifier(ctx InferContext, id *lua.Identifier) *typesys.Type {
	if t, ok := ctx.LookupSymbolType(id.Name, id.Range().Start); ok {
		return t
	}
	if item, ok := ctx.Registry().GetSandboxItem(id.Name); ok {
		return sandboxItemType(ctx, id.Name, item)
	}
	if lib, ok := ctx.Registry().GetLibrary(id.Name); ok {
		return libraryType(lib)
	}
	if g, ok := ctx.Registry().GetGlobal(id.Name); ok {
		return typesys.ParseTypeString(g.Type)
	}
	return typesys.Unknown
}

func sandboxItemType(ctx InferContext, name string, item registry.SandboxItemDef) *typesys.Type {
	if item.Kind == "function" {
		return typesys.ParseTypeString(item.SemanticType)
	}

	fields := item.Fields
	if item.HasHookVariants {
		fields = ctx.Registry().GetContextFieldsForHook(ctx.HookName())
	}
	table := typesys.NewTable()
	for fieldName, f := range fields {
		table.AddField(&typesys.Field{
			Name:        fieldName,
			Type:        typesys.ParseTypeString(f.Type),
			Optional:    f.Optional,
			Description: f.Description,
		})
	}
	return table
}

func libraryType(lib registry.LibraryDef) *typesys.Type {
	table := typesys.NewTable()
	for name, m := range lib.Methods {
		var returns []*typesys.Type
		if m.Returns != "" {
			returns = []*typesys.Type{typesys.ParseTypeString(m.Returns)}
		}
		table.AddField(&typesys.Field{
			Name:        name,
			Type:        typesys.NewFunctionType(nil, returns),
			Description: m.Description,
		})
	}
	return table
}

func inferMember(ctx InferContext, m *lua.MemberExpression) *typesys.Type {
	baseType := ctx.InferType(m.Base)
	name := m.Property.Name

	if baseType != nil {
		switch baseType.Kind {
		case typesys.KindTable:
			if f := baseType.GetField(name); f != nil {
				return f.Type
			}
		case typesys.KindRef:
			if f, ok := ctx.Registry().GetTypeFields(baseType.RefName)[name]; ok {
				return typesys.ParseTypeString(f.Type)
			}
		}
	}

	if path, ok := memberPath(m); ok {
		if member, ok := ctx.Registry().ResolveMemberPath(path); ok {
			return typesys.ParseTypeString(member.Type)
		}
	}
	return typesys.Unknown
}

func inferIndex(ctx InferContext, e *lua.IndexExpression) *typesys.Type {
	baseType := ctx.InferType(e.Base)
	indexType := ctx.InferType(e.Index)
	return indexInto(ctx, baseType, indexType)
}

func indexInto(ctx InferContext, baseType, indexType *typesys.Type) *typesys.Type {
	if baseType == nil {
		return typesys.Unknown
	}
	switch baseType.Kind {
	case typesys.KindArray:
		return baseType.Elem
	case typesys.KindTuple:
		if indexType != nil && indexType.Kind == typesys.KindNumberLiteral {
			idx := int(indexType.NumValue) - 1
			if idx >= 0 && idx < len(baseType.Tuple) {
				return baseType.Tuple[idx]
			}
		}
		return typesys.Unknown
	case typesys.KindTable:
		if indexType != nil {
			switch indexType.Kind {
			case typesys.KindStringLiteral:
				if f := baseType.GetField(indexType.StrValue); f != nil {
					return f.Type
				}
			case typesys.KindNumberLiteral:
				key := strconv.FormatFloat(indexType.NumValue, 'g', -1, 64)
				if f := baseType.GetField(key); f != nil {
					return f.Type
				}
			}
		}
		if baseType.ValueType != nil {
			return baseType.ValueType
		}
		return typesys.Unknown
	case typesys.KindRef:
		fields := ctx.Registry().GetTypeFields(baseType.RefName)
		if indexType != nil && indexType.Kind == typesys.KindStringLiteral {
			if f, ok := fields[indexType.StrValue]; ok {
				return typesys.ParseTypeString(f.Type)
			}
		}
		return typesys.Unknown
	case typesys.KindUnion:
		for _, member := range baseType.Members {
			if member.Kind == typesys.KindNil {
				continue
			}
			if result := indexInto(ctx, member, indexType); result.Kind != typesys.KindUnknown {
				return result
			}
		}
		return typesys.Unknown
	default:
		return typesys.Unknown
	}
}

func inferCall(ctx InferContext, e *lua.CallExpression) *typesys.Type {
	for _, arg := range e.Arguments {
		ctx.InferType(arg)
	}

	if e.Method != nil {
		baseType := ctx.InferType(e.Base)
		if baseType != nil && baseType.Kind == typesys.KindTable {
			if f := baseType.GetField(e.Method.Name); f != nil && f.Type.Kind == typesys.KindFunctionType {
				return callReturn(f.Type)
			}
		}
		return typesys.Unknown
	}

	baseType := ctx.InferType(e.Base)
	if baseType != nil && baseType.Kind == typesys.KindFunctionType {
		return callReturn(baseType)
	}

	if path, ok := memberPath(e.Base); ok {
		if member, ok := ctx.Registry().ResolveMemberPath(path); ok {
			return typesys.ParseTypeString(member.Type)
		}
	}
	return typesys.Unknown
}

func callReturn(fn *typesys.Type) *typesys.Type {
	switch len(fn.Returns) {
	case 0:
		return typesys.Void
	case 1:
		return fn.Returns[0]
	default:
		return typesys.NewTuple(fn.Returns)
	}
}

// memberPath flattens `a.b.c` into ["a", "b", "c"] for registry path
// resolution; it returns false for any base that isn't itself an
// identifier-or-member chain (e.g. a call result).
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

func inferTable(ctx InferContext, e *lua.TableConstructor) *typesys.Type {
	if len(e.Fields) == 0 {
		return typesys.NewTable()
	}

	allPositional := true
	for _, f := range e.Fields {
		if f.Key != nil {
			allPositional = false
			break
		}
	}
	if allPositional {
		elems := make([]*typesys.Type, 0, len(e.Fields))
		for _, f := range e.Fields {
			elems = append(elems, ctx.InferType(f.Value))
		}
		return typesys.NewArray(typesys.NewUnion(elems...))
	}

	table := typesys.NewTable()
	for _, f := range e.Fields {
		valueType := ctx.InferType(f.Value)
		name, ok := fieldKeyName(f.Key)
		if !ok {
			continue // computed or positional key in a mixed constructor: no static name to attach
		}
		table.AddField(&typesys.Field{Name: name, Type: valueType})
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

func inferBinary(ctx InferContext, e *lua.BinaryExpression) *typesys.Type {
	ctx.InferType(e.Left)
	ctx.InferType(e.Right)
	switch e.Operator {
	case "==", "~=", "<", ">", "<=", ">=":
		return typesys.Boolean
	case "..":
		return typesys.String
	case "//", "#", "&", "|", "~", "<<", ">>":
		return typesys.Integer
	case "+", "-", "*", "/", "%", "^":
		return typesys.Number
	default:
		return typesys.Unknown
	}
}

func inferUnary(e *lua.UnaryExpression) *typesys.Type {
	switch e.Operator {
	case "not":
		return typesys.Boolean
	case "-":
		return typesys.Number
	case "#", "~":
		return typesys.Integer
	default:
		return typesys.Unknown
	}
}

func inferLogical(ctx InferContext, e *lua.LogicalExpression) *typesys.Type {
	left := ctx.InferType(e.Left)
	right := ctx.InferType(e.Right)
	return typesys.NewUnion(left, right)
}

func inferFunctionExpr(e *lua.FunctionExpression) *typesys.Type {
	params := make([]*typesys.Param, 0, len(e.Parameters)+1)
	for _, p := range e.Parameters {
		params = append(params, &typesys.Param{Name: p.Name, Type: typesys.Unknown})
	}
	if e.IsVararg {
		params = append(params, &typesys.Param{Name: "...", Type: typesys.Unknown, Vararg: true})
	}
	return typesys.NewFunctionType(params, []*typesys.Type{typesys.Unknown})
}
