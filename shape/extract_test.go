package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/luasentry/typesys"
)

func TestExtractReturnTypeNoReturnYieldsNil(t *testing.T) {
	ty := ExtractReturnType("local x = 1")
	assert.Same(t, typesys.Nil, ty)
}

func TestExtractReturnTypeBareReturnYieldsNil(t *testing.T) {
	ty := ExtractReturnType("return")
	assert.Same(t, typesys.Nil, ty)
}

func TestExtractReturnTypeParseErrorYieldsUnknown(t *testing.T) {
	ty := ExtractReturnType("local x = ")
	assert.Same(t, typesys.Unknown, ty)
}

func TestExtractReturnTypeLiteralTable(t *testing.T) {
	ty := ExtractReturnType(`return { allowed = true, data = { userId = "u1" } }`)
	require := assert.New(t)
	require.Equal(typesys.KindTable, ty.Kind)

	allowed := ty.GetField("allowed")
	require.NotNil(allowed)
	assert.Same(t, typesys.Boolean, allowed.Type)

	data := ty.GetField("data")
	require.NotNil(data)
	assert.Equal(typesys.KindTable, data.Type.Kind)
}

func TestExtractReturnTypeTakesLastReturnAcrossBranches(t *testing.T) {
	src := `
if true then
  return { allowed = false }
else
  return { allowed = true, error = "denied" }
end
`
	ty := ExtractReturnType(src)
	errField := ty.GetField("error")
	assert := assert.New(t)
	assert.NotNil(errField)
	assert.Same(t, typesys.String, errField.Type)
}

func TestExtractReturnTypeDoesNotDescendIntoNestedFunctionBodies(t *testing.T) {
	src := `
local function helper()
  return { allowed = false }
end
return { allowed = true }
`
	ty := ExtractReturnType(src)
	allowed := ty.GetField("allowed")
	assert := assert.New(t)
	assert.NotNil(allowed)
	assert.Equal(typesys.NewBooleanLiteral(true).Kind, typesys.Boolean.Kind)
	assert.Same(t, typesys.Boolean, allowed.Type)
}

func TestExtractReturnDataTypeMissingFieldYieldsUnknown(t *testing.T) {
	ty := ExtractReturnDataType(`return { allowed = true }`)
	assert.Same(t, typesys.Unknown, ty)
}

func TestExtractReturnDataTypeNonTableReturnYieldsUnknown(t *testing.T) {
	ty := ExtractReturnDataType(`return true`)
	assert.Same(t, typesys.Unknown, ty)
}

func TestExtractReturnDataTypePresent(t *testing.T) {
	ty := ExtractReturnDataType(`return { allowed = true, data = { score = 1 } }`)
	assert.Equal(t, typesys.KindTable, ty.Kind)
	score := ty.GetField("score")
	assert.NotNil(t, score)
}
