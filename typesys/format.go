package typesys

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatOptions controls Format's rendering, mirroring the two knobs §4.2
// names: Multiline for hover-card rendering of table types, and MaxDepth to
// bound recursion on self-referential Ref chains.
type FormatOptions struct {
	Multiline bool
	MaxDepth  int
}

const defaultMaxDepth = 6

// Format renders t in the type-string syntax ParseTypeString accepts for
// primitives, boolean/number/plain-string literals, arrays, unions,
// tables, refs and function types, so those round-trip. Tuples,
// variadics and intersections render in forms ParseTypeString does not
// read back (they parse as Unknown), and a type parameter reads back as a
// Ref.
func Format(t *Type, opts FormatOptions) string {
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = defaultMaxDepth
	}
	return formatAt(t, opts, depth)
}

func formatAt(t *Type, opts FormatOptions, depth int) string {
	if t == nil {
		return "unknown"
	}
	if depth <= 0 {
		return "..."
	}
	switch t.Kind {
	case KindAny, KindUnknown, KindNil, KindVoid, KindBoolean, KindNumber, KindInteger, KindString, KindFunction:
		return t.Kind.String()
	case KindBooleanLiteral:
		return strconv.FormatBool(t.BoolValue)
	case KindNumberLiteral:
		return strconv.FormatFloat(t.NumValue, 'g', -1, 64)
	case KindStringLiteral:
		return strconv.Quote(t.StrValue)
	case KindArray:
		return formatAt(t.Elem, opts, depth-1) + "[]"
	case KindVariadic:
		return "..." + formatAt(t.Elem, opts, depth-1)
	case KindTuple:
		parts := make([]string, len(t.Tuple))
		for i, m := range t.Tuple {
			parts[i] = formatAt(m, opts, depth-1)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindTable:
		return formatTable(t, opts, depth)
	case KindRef:
		return t.RefName
	case KindUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = formatAt(m, opts, depth-1)
		}
		return strings.Join(parts, " | ")
	case KindIntersection:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = formatAt(m, opts, depth-1)
		}
		return strings.Join(parts, " & ")
	case KindFunctionType:
		return formatFunction(t, opts, depth)
	case KindTypeParameter:
		return t.Name
	}
	return "unknown"
}

func formatTable(t *Type, opts FormatOptions, depth int) string {
	if len(t.Fields) == 0 {
		return "{}"
	}
	sep, indent, close := ", ", "", ""
	if opts.Multiline {
		sep, indent, close = ",\n", "  ", "\n"
	}
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		opt := ""
		if f.Optional {
			opt = "?"
		}
		parts[i] = fmt.Sprintf("%s%s%s: %s", indent, f.Name, opt, formatAt(f.Type, opts, depth-1))
	}
	return "{ " + strings.Join(parts, sep) + close + " }"
}

func formatFunction(t *Type, opts FormatOptions, depth int) string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		mark := ""
		if p.Vararg {
			mark = "..."
		} else if p.Optional {
			mark = "?"
		}
		params[i] = fmt.Sprintf("%s%s: %s", mark, p.Name, formatAt(p.Type, opts, depth-1))
	}
	returns := make([]string, len(t.Returns))
	for i, r := range t.Returns {
		returns[i] = formatAt(r, opts, depth-1)
	}
	ret := "void"
	switch len(returns) {
	case 0:
	case 1:
		ret = returns[0]
	default:
		ret = "[" + strings.Join(returns, ", ") + "]"
	}
	return "fun(" + strings.Join(params, ", ") + "): " + ret
}

// SortedFieldNames returns a table type's field names in sorted order,
// regardless of insertion order.
func SortedFieldNames(t *Type) []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	sort.Strings(names)
	return names
}
