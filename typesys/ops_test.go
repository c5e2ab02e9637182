package typesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWidenStripsLiteralSingletons(t *testing.T) {
	assert.Same(t, Number, Widen(NewNumberLiteral(3)))
	assert.Same(t, String, Widen(NewStringLiteral("u1")))
	assert.Same(t, Boolean, Widen(NewBooleanLiteral(true)))
}

func TestMayBeNil(t *testing.T) {
	assert.True(t, MayBeNil(Nil))
	assert.True(t, MayBeNil(Any))
	assert.True(t, MayBeNil(Unknown))
	assert.True(t, MayBeNil(NewUnion(String, Nil)))
	assert.False(t, MayBeNil(String))
}

func TestIsTruthy(t *testing.T) {
	assert.Equal(t, NeverTruthy, IsTruthy(Nil))
	assert.Equal(t, NeverTruthy, IsTruthy(NewBooleanLiteral(false)))
	assert.Equal(t, AlwaysTruthy, IsTruthy(NewBooleanLiteral(true)))
	assert.Equal(t, AlwaysTruthy, IsTruthy(String))
	assert.Equal(t, MaybeTruthy, IsTruthy(Boolean))
	assert.Equal(t, MaybeTruthy, IsTruthy(NewUnion(Nil, String)))
}

func TestIsAssignableToReflexiveAndAny(t *testing.T) {
	assert.True(t, IsAssignableTo(String, String))
	assert.True(t, IsAssignableTo(String, Any))
	assert.True(t, IsAssignableTo(Any, String))
}

func TestIsAssignableToNilOnlyIntoUnionOrAny(t *testing.T) {
	assert.True(t, IsAssignableTo(Nil, NewUnion(String, Nil)))
	assert.True(t, IsAssignableTo(Nil, Any))
	assert.False(t, IsAssignableTo(Nil, String))
}

func TestIsAssignableToLiteralToBase(t *testing.T) {
	assert.True(t, IsAssignableTo(NewStringLiteral("u1"), String))
	assert.True(t, IsAssignableTo(NewBooleanLiteral(true), Boolean))
	assert.False(t, IsAssignableTo(NewStringLiteral("u1"), Number))
}

func TestIsAssignableToTableStructural(t *testing.T) {
	sup := NewTable()
	sup.AddField(&Field{Name: "allowed", Type: Boolean})
	sup.AddField(&Field{Name: "error", Type: String, Optional: true})

	sub := NewTable()
	sub.AddField(&Field{Name: "allowed", Type: NewBooleanLiteral(true)})

	assert.True(t, IsAssignableTo(sub, sup), "sub satisfies every required field of sup")

	missingRequired := NewTable()
	assert.False(t, IsAssignableTo(missingRequired, sup))
}

func TestIsAssignableToUnionOnRightOrReduced(t *testing.T) {
	assert.True(t, IsAssignableTo(String, NewUnion(String, Number)))
	assert.False(t, IsAssignableTo(Boolean, NewUnion(String, Number)))
}

func TestIsAssignableToUnionOnLeftAndReduced(t *testing.T) {
	assert.True(t, IsAssignableTo(NewUnion(NewStringLiteral("a"), NewStringLiteral("b")), String))
	assert.False(t, IsAssignableTo(NewUnion(String, Number), String))
}

func TestIsAssignableToFunctionContravariantParamsCovariantReturns(t *testing.T) {
	sub := NewFunctionType([]*Param{{Name: "x", Type: Any}}, []*Type{NewStringLiteral("ok")})
	sup := NewFunctionType([]*Param{{Name: "x", Type: String}}, []*Type{String})

	assert.True(t, IsAssignableTo(sub, sup))
}
