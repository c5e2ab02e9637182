package typesys

// TypesEqual is structural equality, not identity: two independently
// constructed TableTypes with the same fields in the same order are equal.
func TypesEqual(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBooleanLiteral:
		return a.BoolValue == b.BoolValue
	case KindNumberLiteral:
		return a.NumValue == b.NumValue
	case KindStringLiteral:
		return a.StrValue == b.StrValue
	case KindArray, KindVariadic:
		return TypesEqual(a.Elem, b.Elem)
	case KindTuple:
		return typeSlicesEqual(a.Tuple, b.Tuple)
	case KindTable:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, af := range a.Fields {
			bf := b.GetField(af.Name)
			if bf == nil || af.Optional != bf.Optional || !TypesEqual(af.Type, bf.Type) {
				return false
			}
		}
		return true
	case KindRef:
		return a.RefName == b.RefName
	case KindUnion, KindIntersection:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for _, am := range a.Members {
			found := false
			for _, bm := range b.Members {
				if TypesEqual(am, bm) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case KindFunctionType:
		if len(a.Params) != len(b.Params) || !typeSlicesEqual(a.Returns, b.Returns) {
			return false
		}
		for i, ap := range a.Params {
			bp := b.Params[i]
			if ap.Name != bp.Name || ap.Vararg != bp.Vararg || ap.Optional != bp.Optional || !TypesEqual(ap.Type, bp.Type) {
				return false
			}
		}
		return true
	case KindTypeParameter:
		return a.Name == b.Name
	default:
		return true // stateless primitives: Any/Unknown/Nil/Void/Boolean/Number/Integer/String/Function
	}
}

func typeSlicesEqual(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Widen strips literal singletons to their base primitive, and recurses
// into containers so a widened Array/Tuple/TableType never retains a
// literal leaf.
func Widen(t *Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindBooleanLiteral:
		return Boolean
	case KindNumberLiteral:
		return Number
	case KindStringLiteral:
		return String
	case KindArray:
		return NewArray(Widen(t.Elem))
	case KindTuple:
		widened := make([]*Type, len(t.Tuple))
		for i, m := range t.Tuple {
			widened[i] = Widen(m)
		}
		return NewTuple(widened)
	case KindUnion:
		widened := make([]*Type, len(t.Members))
		for i, m := range t.Members {
			widened[i] = Widen(m)
		}
		return NewUnion(widened...)
	default:
		return t
	}
}

// MayBeNil reports whether a value of type t could ever be nil: Nil itself,
// Any/Unknown (no information to the contrary), or a union containing Nil.
func MayBeNil(t *Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind {
	case KindNil, KindAny, KindUnknown:
		return true
	case KindUnion:
		for _, m := range t.Members {
			if MayBeNil(m) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Truthiness is the three-valued result of IsTruthy: Lua's only falsy
// values are nil and false, so anything else is provably truthy.
type Truthiness int

const (
	MaybeTruthy Truthiness = iota
	AlwaysTruthy
	NeverTruthy
)

// IsTruthy classifies whether t's values are provably truthy, provably
// falsy, or ambiguous — the primitive the flow graph's narrowing builds on.
func IsTruthy(t *Type) Truthiness {
	if t == nil {
		return MaybeTruthy
	}
	switch t.Kind {
	case KindNil, KindVoid:
		return NeverTruthy
	case KindBooleanLiteral:
		if t.BoolValue {
			return AlwaysTruthy
		}
		return NeverTruthy
	case KindAny, KindUnknown, KindBoolean:
		return MaybeTruthy
	case KindUnion:
		allTrue, allFalse := true, true
		for _, m := range t.Members {
			switch IsTruthy(m) {
			case AlwaysTruthy:
				allFalse = false
			case NeverTruthy:
				allTrue = false
			default:
				allTrue, allFalse = false, false
			}
		}
		if allTrue {
			return AlwaysTruthy
		}
		if allFalse {
			return NeverTruthy
		}
		return MaybeTruthy
	default:
		return AlwaysTruthy
	}
}

// NarrowTruthy returns t restricted to the members IsTruthy cannot rule
// out once a value is proven truthy — by `assert(x)` or the then-branch of
// `if x then` (§4.5). A union drops every NeverTruthy member (Nil, the
// `false` literal); a bare NeverTruthy type has nothing left and widens to
// Unknown rather than producing an empty, unrepresentable type.
func NarrowTruthy(t *Type) *Type {
	return narrowBy(t, false)
}

// NarrowFalsy is NarrowTruthy's complement, for `assert(not x)` and the
// else-branch of `if x then`: keeps only the members that could be falsy.
func NarrowFalsy(t *Type) *Type {
	return narrowBy(t, true)
}

func narrowBy(t *Type, keepFalsy bool) *Type {
	if t == nil {
		return t
	}
	exclude := NeverTruthy
	if keepFalsy {
		exclude = AlwaysTruthy
	}
	if t.Kind != KindUnion {
		if IsTruthy(t) == exclude {
			return Unknown
		}
		return t
	}
	var kept []*Type
	for _, m := range t.Members {
		if IsTruthy(m) != exclude {
			kept = append(kept, m)
		}
	}
	switch len(kept) {
	case 0:
		return Unknown
	case 1:
		return kept[0]
	default:
		return NewUnion(kept...)
	}
}

// IsAssignableTo implements the abridged rule set from §4.2: reflexive on
// equal types; Any absorbs in both directions; Nil only flows into a union
// containing Nil or into Any; literals widen to their base; tuples compare
// element-wise; table assignability is structural on required fields;
// unions on the right are or-reduced, unions on the left are and-reduced;
// functions are parameter-contravariant and return-covariant.
func IsAssignableTo(sub, sup *Type) bool {
	if sub == nil || sup == nil {
		return false
	}
	if TypesEqual(sub, sup) {
		return true
	}
	if sup.Kind == KindAny || sub.Kind == KindAny {
		return true
	}
	if sub.Kind == KindUnion {
		for _, m := range sub.Members {
			if !IsAssignableTo(m, sup) {
				return false
			}
		}
		return true
	}
	if sup.Kind == KindUnion {
		for _, m := range sup.Members {
			if IsAssignableTo(sub, m) {
				return true
			}
		}
		return false
	}
	if sub.Kind == KindNil {
		return false // Union/Any cases already handled above
	}
	switch sub.Kind {
	case KindBooleanLiteral:
		if sup.Kind == KindBoolean {
			return true
		}
	case KindNumberLiteral:
		if sup.Kind == KindNumber || sup.Kind == KindInteger && sub.NumValue == float64(int64(sub.NumValue)) {
			return true
		}
	case KindStringLiteral:
		if sup.Kind == KindString {
			return true
		}
	case KindInteger:
		if sup.Kind == KindNumber {
			return true
		}
	}
	if sub.Kind != sup.Kind {
		return false
	}
	switch sub.Kind {
	case KindArray:
		return IsAssignableTo(sub.Elem, sup.Elem)
	case KindVariadic:
		return IsAssignableTo(sub.Elem, sup.Elem)
	case KindTuple:
		if len(sub.Tuple) != len(sup.Tuple) {
			return false
		}
		for i := range sub.Tuple {
			if !IsAssignableTo(sub.Tuple[i], sup.Tuple[i]) {
				return false
			}
		}
		return true
	case KindTable:
		for _, supField := range sup.Fields {
			if supField.Optional {
				continue
			}
			subField := sub.GetField(supField.Name)
			if subField == nil || !IsAssignableTo(subField.Type, supField.Type) {
				return false
			}
		}
		return true
	case KindRef:
		return sub.RefName == sup.RefName
	case KindFunctionType:
		if len(sub.Params) != len(sup.Params) || len(sub.Returns) != len(sup.Returns) {
			return false
		}
		for i := range sub.Params {
			// contravariant: sup's param must be assignable to sub's param
			if !IsAssignableTo(sup.Params[i].Type, sub.Params[i].Type) {
				return false
			}
		}
		for i := range sub.Returns {
			if !IsAssignableTo(sub.Returns[i], sup.Returns[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
