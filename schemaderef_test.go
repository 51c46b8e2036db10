package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDereference_LocalRef(t *testing.T) {
	schema := mustCompile(t, `{
		"$defs": {"name": {"type": "string", "minLength": 1}},
		"properties": {"a": {"$ref": "#/$defs/name"}}
	}`)

	sub := (*schema.Properties)["a"]
	require.NotNil(t, sub)
	assert.Equal(t, "string", sub.Type.First())
	assert.Equal(t, float64(1), *sub.MinLength)
	assert.Equal(t, "#/$defs/name", sub.Ref)
}

func TestDereference_CycleBreaksToEmptySchema(t *testing.T) {
	schema, err := newSchema([]byte(`{
		"$defs": {"node": {"properties": {"child": {"$ref": "#/$defs/node"}}}},
		"$ref": "#/$defs/node"
	}`))
	require.NoError(t, err)

	deref, err := Dereference(schema)
	require.NoError(t, err)
	require.NotNil(t, deref.Properties)
	child := (*deref.Properties)["child"]
	require.NotNil(t, child)
	// the cyclic occurrence resolves to an empty schema rather than recursing
	assert.Nil(t, child.Properties)
}

func TestSelectChildSchema_PropertiesWins(t *testing.T) {
	schema := mustCompile(t, `{
		"properties": {"a": {"type": "string"}},
		"patternProperties": {"^a.*$": {"type": "integer"}},
		"additionalProperties": {"type": "boolean"}
	}`)

	sel, ok := selectChildSchema(schema, "a")
	require.True(t, ok)
	assert.Equal(t, "string", sel.Schema.Type.First())
	assert.True(t, sel.ExplicitlyDecl)
}

func TestSelectChildSchema_PatternPropertiesFallback(t *testing.T) {
	schema := mustCompile(t, `{
		"properties": {"a": {"type": "string"}},
		"patternProperties": {"^ab.*$": {"type": "integer"}},
		"additionalProperties": {"type": "boolean"}
	}`)

	sel, ok := selectChildSchema(schema, "abc")
	require.True(t, ok)
	assert.Equal(t, "integer", sel.Schema.Type.First())
	assert.False(t, sel.ExplicitlyDecl)
}

func TestSelectChildSchema_AdditionalPropertiesFallback(t *testing.T) {
	schema := mustCompile(t, `{
		"properties": {"a": {"type": "string"}},
		"additionalProperties": {"type": "boolean"}
	}`)

	sel, ok := selectChildSchema(schema, "z")
	require.True(t, ok)
	assert.Equal(t, "boolean", sel.Schema.Type.First())
}

func TestSelectChildSchema_AdditionalPropertiesFalseRejects(t *testing.T) {
	schema := mustCompile(t, `{
		"properties": {"a": {"type": "string"}},
		"additionalProperties": false
	}`)

	_, ok := selectChildSchema(schema, "z")
	assert.False(t, ok)
}

func TestSelectChildSchema_ArrayPrefixAndItems(t *testing.T) {
	schema := mustCompile(t, `{
		"prefixItems": [{"type": "string"}],
		"items": {"type": "integer"}
	}`)

	sel, ok := selectChildSchema(schema, "0")
	require.True(t, ok)
	assert.Equal(t, "string", sel.Schema.Type.First())
	assert.True(t, sel.ExplicitlyDecl)

	sel, ok = selectChildSchema(schema, "1")
	require.True(t, ok)
	assert.Equal(t, "integer", sel.Schema.Type.First())
	assert.False(t, sel.ExplicitlyDecl)
}

func TestCanAddChild(t *testing.T) {
	withItems := mustCompile(t, `{"items": {"type": "string"}}`)
	assert.True(t, canAddChild(withItems, true))

	noItems := mustCompile(t, `{}`)
	assert.False(t, canAddChild(noItems, true))

	withAdditional := mustCompile(t, `{"additionalProperties": {"type": "string"}}`)
	assert.True(t, canAddChild(withAdditional, false))

	additionalFalse := mustCompile(t, `{"additionalProperties": false}`)
	assert.False(t, canAddChild(additionalFalse, false))
}
