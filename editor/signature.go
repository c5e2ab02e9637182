package editor

import (
	"strings"

	"github.com/viant/luasentry/lua"
	"github.com/viant/luasentry/registry"
	"github.com/viant/luasentry/semantic"
	"github.com/viant/luasentry/source"
	"github.com/viant/luasentry/typesys"
)

// SignatureHelpAt implements §4.10: find the call expression whose
// parentheses enclose offset, resolve its callee's FunctionType (via the
// cached inferred type, falling back to the registry for a dotted
// `helpers.f`/`<lib>.f` callee whose signature string the type lattice
// doesn't already carry as a FunctionType), and report the active
// parameter as the number of top-level commas before offset among the
// call's own arguments.
func SignatureHelpAt(doc *source.Document, result *semantic.Result, reg *registry.Registry, offset int) *SignatureHelp {
	chunk := doc.GetAST()
	call := CallExpressionAt(chunk, offset)
	if call == nil {
		return nil
	}

	fnType := calleeFunctionType(result, reg, call)
	if fnType == nil {
		return nil
	}

	active := activeParameterIndex(doc.GetText(), call, offset)
	params := make([]ParameterInfo, len(fnType.Params))
	labels := make([]string, len(fnType.Params))
	for i, p := range fnType.Params {
		params[i] = ParameterInfo{Label: p.Name, Type: p.Type}
		labels[i] = p.Name + ": " + typesys.Format(p.Type, typesys.FormatOptions{})
	}

	return &SignatureHelp{
		Label:            "(" + strings.Join(labels, ", ") + ")",
		Parameters:       params,
		ActiveParameter:  active,
		ActiveParamValid: active >= 0 && active < len(params),
	}
}

func calleeFunctionType(result *semantic.Result, reg *registry.Registry, call *lua.CallExpression) *typesys.Type {
	if t, ok := result.TypeAt(call.Base.Range().Start); ok && t.Kind == typesys.KindFunctionType {
		return t
	}
	path, ok := memberPathOf(call.Base)
	if !ok {
		return nil
	}
	if member, ok := reg.ResolveMemberPath(path); ok {
		if t := typesys.ParseTypeString(member.Type); t != nil && t.Kind == typesys.KindFunctionType {
			return t
		}
	}
	if len(path) == 2 {
		if method, ok := reg.GetLibraryMethod(path[0], path[1]); ok && method.Signature != "" {
			if t := typesys.ParseTypeString(method.Signature); t != nil && t.Kind == typesys.KindFunctionType {
				return t
			}
		}
	}
	return nil
}

// activeParameterIndex counts top-level commas (not nested inside
// parens/braces/brackets or string literals) between the call's opening
// parenthesis and offset.
func activeParameterIndex(text string, call *lua.CallExpression, offset int) int {
	start := call.Range().Start
	openParen := strings.IndexByte(text[start:], '(')
	if openParen < 0 {
		return -1
	}
	scanStart := start + openParen + 1
	if offset < scanStart {
		return -1
	}
	end := offset
	if end > len(text) {
		end = len(text)
	}

	depth := 0
	var quote byte
	count := 0
	for i := scanStart; i < end; i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		}
	}
	return count
}
