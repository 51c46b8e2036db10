package kaptinlin

import (
	"testing"

	reactive "github.com/kaptinlin/reactive-jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_ValidInstancePasses(t *testing.T) {
	schema, err := reactive.CompileSchema([]byte(`{
		"type": "object",
		"properties": {"name": {"type": "string", "minLength": 1}},
		"required": ["name"]
	}`))
	require.NoError(t, err)

	a := New()
	result := a.Validate(reactive.ValidationRequest{
		Schema:   schema,
		Instance: map[string]any{"name": "Ada"},
	})
	assert.True(t, result.Valid)
}

func TestAdapter_InvalidInstanceReportsErrors(t *testing.T) {
	schema, err := reactive.CompileSchema([]byte(`{
		"type": "object",
		"properties": {"name": {"type": "string", "minLength": 3}},
		"required": ["name"]
	}`))
	require.NoError(t, err)

	a := New()
	result := a.Validate(reactive.ValidationRequest{
		Schema:           schema,
		Instance:         map[string]any{"name": "x"},
		InstanceLocation: "/user",
	})
	require.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
}

func TestAdapter_CachesCompiledSchemaByPointer(t *testing.T) {
	schema, err := reactive.CompileSchema([]byte(`{"type": "string"}`))
	require.NoError(t, err)

	a := New()
	first, err := a.compile(schema)
	require.NoError(t, err)
	second, err := a.compile(schema)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
