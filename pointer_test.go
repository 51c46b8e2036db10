package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	assert.Nil(t, ParsePointer(""))
	assert.Nil(t, ParsePointer("#"))
	assert.Equal(t, []string{"a", "b"}, ParsePointer("/a/b"))
	assert.Equal(t, []string{"a/b", "c~d"}, ParsePointer("/a~1b/c~0d"))
}

func TestFormatPointerRoundTrip(t *testing.T) {
	tokens := []string{"a/b", "c~d", "0"}
	ptr := FormatPointer(tokens...)
	assert.Equal(t, tokens, ParsePointer(ptr))
}

func TestGetSetPointer(t *testing.T) {
	var instance any = map[string]any{
		"name": "t",
		"tags": []any{"x", "y"},
	}

	v, ok := GetPointer(instance, "/name")
	require.True(t, ok)
	assert.Equal(t, "t", v)

	v, ok = GetPointer(instance, "/tags/1")
	require.True(t, ok)
	assert.Equal(t, "y", v)

	_, ok = GetPointer(instance, "/missing")
	assert.False(t, ok)

	ok = SetPointer(&instance, "/name", "u")
	require.True(t, ok)
	v, _ = GetPointer(instance, "/name")
	assert.Equal(t, "u", v)

	ok = SetPointer(&instance, "/nested/deep", 1.0)
	require.True(t, ok)
	v, ok = GetPointer(instance, "/nested/deep")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestSetPointerKindMismatch(t *testing.T) {
	var instance any = map[string]any{"name": "t"}
	ok := SetPointer(&instance, "/name/x", 1.0)
	assert.False(t, ok)
}

func TestRemovePointerArraySplice(t *testing.T) {
	var instance any = map[string]any{"tags": []any{"a", "b", "c"}}
	ok := RemovePointer(&instance, "/tags/1")
	require.True(t, ok)
	v, _ := GetPointer(instance, "")
	assert.Equal(t, map[string]any{"tags": []any{"a", "c"}}, v)
}

func TestRemovePointerObjectKey(t *testing.T) {
	var instance any = map[string]any{"a": 1.0, "b": 2.0}
	ok := RemovePointer(&instance, "/a")
	require.True(t, ok)
	v, _ := GetPointer(instance, "")
	assert.Equal(t, map[string]any{"b": 2.0}, v)
}

func TestRemovePointerRootFails(t *testing.T) {
	var instance any = map[string]any{"a": 1.0}
	assert.False(t, RemovePointer(&instance, ""))
}
