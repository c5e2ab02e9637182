// Package typesys implements the type lattice: the sum type of shapes that
// every inferred expression, declared symbol and registry definition is
// expressed in, plus the operations (equality, assignability, widening,
// formatting, parsing) that the rest of the analysis pipeline builds on.
package typesys

// Kind discriminates the variants of Type. A Type is a tagged union: only
// the fields relevant to its Kind are populated, mirroring the AST node
// shape in the lua package (one Go struct, a Kind tag, and payload fields
// that are meaningful only for certain tags).
type Kind int

const (
	KindAny Kind = iota
	KindUnknown
	KindNil
	KindVoid
	KindBoolean
	KindNumber
	KindInteger
	KindString
	KindFunction
	KindBooleanLiteral
	KindNumberLiteral
	KindStringLiteral
	KindArray
	KindTuple
	KindTable
	KindRef
	KindUnion
	KindIntersection
	KindFunctionType
	KindVariadic
	KindTypeParameter
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindUnknown:
		return "unknown"
	case KindNil:
		return "nil"
	case KindVoid:
		return "void"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindBooleanLiteral:
		return "boolean-literal"
	case KindNumberLiteral:
		return "number-literal"
	case KindStringLiteral:
		return "string-literal"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindTable:
		return "table"
	case KindRef:
		return "ref"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindFunctionType:
		return "function-type"
	case KindVariadic:
		return "variadic"
	case KindTypeParameter:
		return "type-parameter"
	}
	return "?"
}

// Field is one entry of a TableType, in declaration order. Description
// carries through from definition JSON so hover can render it verbatim.
type Field struct {
	Name        string
	Type        *Type
	Optional    bool
	Description string
}

// Param is one parameter of a FunctionType.
type Param struct {
	Name     string
	Type     *Type
	Vararg   bool
	Optional bool
}

// Type is immutable once constructed: every "with X" style mutation used
// while building a TableType (AddField) must happen before the Type is
// published to any reader.
type Type struct {
	Kind Kind

	BoolValue bool
	NumValue  float64
	StrValue  string

	Elem *Type // Array element, Variadic element

	Tuple []*Type // Tuple members, in order

	Fields    []*Field // TableType fields, insertion order preserved
	ValueType *Type    // TableType index-access fallback (optional)
	fieldMap  map[string]int

	RefName string // Ref target name

	Members []*Type // Union / Intersection members, deduplicated

	Params  []*Param // FunctionType parameters, in order
	Returns []*Type  // FunctionType return types; Tuple-wrap at call sites when len > 1

	Name string // TypeParameter name
}

var (
	Any      = &Type{Kind: KindAny}
	Unknown  = &Type{Kind: KindUnknown}
	Nil      = &Type{Kind: KindNil}
	Void     = &Type{Kind: KindVoid}
	Boolean  = &Type{Kind: KindBoolean}
	Number   = &Type{Kind: KindNumber}
	Integer  = &Type{Kind: KindInteger}
	String   = &Type{Kind: KindString}
	Function = &Type{Kind: KindFunction}
)

func NewBooleanLiteral(v bool) *Type   { return &Type{Kind: KindBooleanLiteral, BoolValue: v} }
func NewNumberLiteral(v float64) *Type { return &Type{Kind: KindNumberLiteral, NumValue: v} }
func NewStringLiteral(v string) *Type  { return &Type{Kind: KindStringLiteral, StrValue: v} }

func NewArray(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }

func NewTuple(members []*Type) *Type {
	return &Type{Kind: KindTuple, Tuple: append([]*Type(nil), members...)}
}

// NewTable returns an empty TableType ready for AddField.
func NewTable() *Type {
	return &Type{Kind: KindTable, fieldMap: make(map[string]int)}
}

// NewTableWithValueType returns an empty TableType whose index-access
// fallback (for keys with no declared field) is valueType.
func NewTableWithValueType(valueType *Type) *Type {
	t := NewTable()
	t.ValueType = valueType
	return t
}

// AddField appends or replaces a field, following the fieldMap pattern used
// throughout the registry for O(1) lookup by name.
func (t *Type) AddField(f *Field) {
	if t.fieldMap == nil {
		t.fieldMap = make(map[string]int)
	}
	if idx, ok := t.fieldMap[f.Name]; ok {
		t.Fields[idx] = f
		return
	}
	t.Fields = append(t.Fields, f)
	t.fieldMap[f.Name] = len(t.Fields) - 1
}

// GetField looks up a TableType field by name in O(1).
func (t *Type) GetField(name string) *Field {
	if t == nil || t.fieldMap == nil {
		return nil
	}
	if idx, ok := t.fieldMap[name]; ok && idx < len(t.Fields) {
		return t.Fields[idx]
	}
	return nil
}

func NewRef(name string) *Type { return &Type{Kind: KindRef, RefName: name} }

// NewUnion flattens nested unions, deduplicates by structural equality, and
// collapses a single-member union to that member, per the §3 invariant
// "Union({T}) simplifies to T".
func NewUnion(members ...*Type) *Type {
	flat := flattenUnion(members)
	deduped := dedupeTypes(flat)
	if len(deduped) == 1 {
		return deduped[0]
	}
	return &Type{Kind: KindUnion, Members: deduped}
}

func flattenUnion(members []*Type) []*Type {
	var out []*Type
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.Kind == KindUnion {
			out = append(out, flattenUnion(m.Members)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

func dedupeTypes(members []*Type) []*Type {
	var out []*Type
	for _, m := range members {
		dup := false
		for _, existing := range out {
			if TypesEqual(existing, m) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	return out
}

func NewIntersection(members ...*Type) *Type {
	return &Type{Kind: KindIntersection, Members: append([]*Type(nil), members...)}
}

func NewFunctionType(params []*Param, returns []*Type) *Type {
	return &Type{Kind: KindFunctionType, Params: params, Returns: returns}
}

func NewVariadic(elem *Type) *Type { return &Type{Kind: KindVariadic, Elem: elem} }

func NewTypeParameter(name string) *Type { return &Type{Kind: KindTypeParameter, Name: name} }

// Clone deep-copies a Type so a caller can mutate a TableType (AddField)
// without affecting a shared definition-registry instance.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	clone := &Type{
		Kind:      t.Kind,
		BoolValue: t.BoolValue,
		NumValue:  t.NumValue,
		StrValue:  t.StrValue,
		RefName:   t.RefName,
		Name:      t.Name,
	}
	if t.Elem != nil {
		clone.Elem = t.Elem.Clone()
	}
	if t.ValueType != nil {
		clone.ValueType = t.ValueType.Clone()
	}
	for _, m := range t.Tuple {
		clone.Tuple = append(clone.Tuple, m.Clone())
	}
	for _, m := range t.Members {
		clone.Members = append(clone.Members, m.Clone())
	}
	for _, r := range t.Returns {
		clone.Returns = append(clone.Returns, r.Clone())
	}
	for _, p := range t.Params {
		clone.Params = append(clone.Params, &Param{Name: p.Name, Type: p.Type.Clone(), Vararg: p.Vararg, Optional: p.Optional})
	}
	if len(t.Fields) > 0 {
		clone.fieldMap = make(map[string]int, len(t.Fields))
		for _, f := range t.Fields {
			clone.AddField(&Field{Name: f.Name, Type: f.Type.Clone(), Optional: f.Optional, Description: f.Description})
		}
	}
	return clone
}
