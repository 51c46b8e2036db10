package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSchemas_RequiredAndEnumUnioned(t *testing.T) {
	dst := mustCompile(t, `{"required": ["a"], "enum": [1, 2]}`)
	src := mustCompile(t, `{"required": ["b"], "enum": [2, 3]}`)

	out := mergeSchemas(dst, src)
	assert.ElementsMatch(t, []string{"a", "b"}, out.Required)
	assert.ElementsMatch(t, []any{1.0, 2.0, 3.0}, out.Enum)
}

func TestMergeSchemas_PropertiesMergedRecursively(t *testing.T) {
	dst := mustCompile(t, `{"properties": {"a": {"type": "string"}}}`)
	src := mustCompile(t, `{"properties": {"a": {"minLength": 3}, "b": {"type": "integer"}}}`)

	out := mergeSchemas(dst, src)
	a := (*out.Properties)["a"]
	require.NotNil(t, a)
	assert.Equal(t, "string", a.Type.First())
	assert.Equal(t, float64(3), *a.MinLength)
	assert.Contains(t, *out.Properties, "b")
}

func TestMergeSchemas_MinimumTakesMax(t *testing.T) {
	dst := mustCompile(t, `{"minimum": 5}`)
	src := mustCompile(t, `{"minimum": 10}`)

	out := mergeSchemas(dst, src)
	f := out.Minimum.Float64()
	assert.Equal(t, float64(10), f)
}

func TestMergeSchemas_MaximumTakesMin(t *testing.T) {
	dst := mustCompile(t, `{"maximum": 100}`)
	src := mustCompile(t, `{"maximum": 50}`)

	out := mergeSchemas(dst, src)
	f := out.Maximum.Float64()
	assert.Equal(t, float64(50), f)
}

func TestMergeSchemas_ScalarTakenFromSrc(t *testing.T) {
	dst := mustCompile(t, `{"type": "string"}`)
	src := mustCompile(t, `{"type": "integer"}`)

	out := mergeSchemas(dst, src)
	assert.Equal(t, "integer", out.Type.First())
}

func TestMergeSchemas_FalseBooleanDominates(t *testing.T) {
	dst := mustCompile(t, `{"type": "string"}`)
	src := mustCompile(t, `false`)

	out := mergeSchemas(dst, src)
	require.NotNil(t, out.Boolean)
	assert.False(t, *out.Boolean)
}

func TestMergeSchemas_TrueBooleanContributesNothing(t *testing.T) {
	dst := mustCompile(t, `true`)
	src := mustCompile(t, `{"type": "string"}`)

	out := mergeSchemas(dst, src)
	assert.Equal(t, "string", out.Type.First())
}

func TestMergeSchemas_NilOperands(t *testing.T) {
	schema := mustCompile(t, `{"type": "string"}`)
	assert.Same(t, schema, mergeSchemas(nil, schema))
	assert.Same(t, schema, mergeSchemas(schema, nil))
}
