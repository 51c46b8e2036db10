package jsonschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRuntime(t testingT, schemaJSON string, value any, opts *RuntimeOptions) *Runtime {
	schema := mustCompile(t, schemaJSON)
	rt, err := NewRuntime(stubValidator{}, schema, value, opts)
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	return rt
}

func TestBuildNode_ValidatorErrorSurfacesOnNode(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"name": {"type": "string", "minLength": 3}},
		"required": ["name"]
	}`, map[string]any{"name": "x"}, nil)

	node, ok := rt.FindNode("/name")
	require.True(t, ok)
	require.NotNil(t, node.Error)
	assert.Equal(t, "minLength", node.Error.Code)
}

func TestBuildNode_ValidChildHasNoError(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"name": {"type": "string", "minLength": 1}}
	}`, map[string]any{"name": "ok"}, nil)

	node, ok := rt.FindNode("/name")
	require.True(t, ok)
	assert.Nil(t, node.Error)
}

func TestBuildNode_BranchSwitchFillsThenDefaults(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"kind": {"type": "string"}},
		"if": {"properties": {"kind": {"const": "premium"}}},
		"then": {
			"properties": {"tier": {"type": "string", "default": "gold"}},
			"required": ["tier"]
		}
	}`, map[string]any{"kind": "premium"}, nil)

	value, _ := rt.GetValue("")
	obj := value.(map[string]any)
	assert.Equal(t, "gold", obj["tier"])
}

// TestBuildNode_BranchSwitchSkipsOptionalDeclaredDefault pins §8 S4's
// explicit-strategy gate applied at branch-switch time too: a property
// revealed by a newly-applicable "then" branch that merely declares a
// literal default, without being required, stays absent.
func TestBuildNode_BranchSwitchSkipsOptionalDeclaredDefault(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"kind": {"type": "string"}},
		"if": {"properties": {"kind": {"const": "premium"}}},
		"then": {"properties": {"priority": {"type": "number", "default": 0}}}
	}`, map[string]any{"kind": "premium"}, nil)

	value, _ := rt.GetValue("")
	obj := value.(map[string]any)
	_, present := obj["priority"]
	assert.False(t, present, "priority is optional in the then branch and must stay absent under explicit strategy")
}

func TestReconcileChildren_PropertiesThenPatternThenAdditional(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"id": {"type": "string"}},
		"patternProperties": {"^x_.*$": {"type": "integer"}},
		"additionalProperties": {"type": "boolean"}
	}`, map[string]any{"id": "a", "x_count": 1.0, "flag": true}, nil)

	idNode, ok := rt.FindNode("/id")
	require.True(t, ok)
	assert.False(t, idNode.CanRemove)

	patternNode, ok := rt.FindNode("/x_count")
	require.True(t, ok)
	assert.True(t, patternNode.CanRemove)
	assert.Equal(t, "integer", patternNode.Type)

	additionalNode, ok := rt.FindNode("/flag")
	require.True(t, ok)
	assert.True(t, additionalNode.CanRemove)
	assert.Equal(t, "boolean", additionalNode.Type)
}

func TestReconcileChildren_ArrayPrefixItemsThenItems(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "array",
		"prefixItems": [{"type": "string"}],
		"items": {"type": "integer"}
	}`, []any{"a", 1.0, 2.0}, nil)

	first, ok := rt.FindNode("/0")
	require.True(t, ok)
	assert.False(t, first.CanRemove)

	second, ok := rt.FindNode("/1")
	require.True(t, ok)
	assert.True(t, second.CanRemove)
}

// TestReconcileChildren_ChildOrderIsAlphabeticalWithinEachPass pins
// DESIGN.md's Open Question 5: the instance tree is a plain map[string]any
// end to end, which does not survive JSON object key insertion order, so
// reconcileChildren orders the declared-properties pass, the
// patternProperties pass and the additional-keys pass each alphabetically
// rather than in true instance order.
func TestReconcileChildren_ChildOrderIsAlphabeticalWithinEachPass(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"zeta": {"type": "string"}, "alpha": {"type": "string"}},
		"additionalProperties": {"type": "boolean"}
	}`, map[string]any{
		"zeta": "z", "alpha": "a", "omega": true, "beta": true,
	}, nil)

	root, ok := rt.FindNode("")
	require.True(t, ok)

	var order []string
	for _, c := range root.Children {
		_, tok := ParentPointer(c.InstanceLocation)
		order = append(order, tok)
	}

	assert.Equal(t, []string{"alpha", "zeta", "beta", "omega"}, order,
		"declared properties sorted first, then additional keys sorted")
}

func TestSetValue_ReconcilesParentAndNotifies(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"name": {"type": "string", "minLength": 3}}
	}`, map[string]any{"name": "abc"}, nil)

	var events []Event
	rt.SubscribeAll(func(e Event) { events = append(events, e) })

	ok := rt.SetValue("/name", "x")
	require.True(t, ok)

	node, _ := rt.FindNode("/name")
	require.NotNil(t, node.Error)
	assert.NotEmpty(t, events)
}

func TestAddChild_RequiresCanAdd(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"name": {"type": "string"}}
	}`, map[string]any{"name": "a"}, nil)

	root, _ := rt.FindNode("")
	assert.False(t, root.CanAdd)
	assert.False(t, rt.AddChild("", "extra", "v"))
}

func TestAddChild_AdditionalPropertiesAllowsInsert(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"additionalProperties": {"type": "string"}
	}`, map[string]any{}, nil)

	root, _ := rt.FindNode("")
	require.True(t, root.CanAdd)

	ok := rt.AddChild("", "extra", "value")
	require.True(t, ok)

	v, found := rt.GetValue("/extra")
	require.True(t, found)
	assert.Equal(t, "value", v)
}

func TestAddChild_ArrayAppendsAtNextIndex(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "array",
		"items": {"type": "string"}
	}`, []any{"a", "b"}, nil)

	ok := rt.AddChild("", "", "c")
	require.True(t, ok)

	v, _ := rt.GetValue("")
	assert.Equal(t, []any{"a", "b", "c"}, v)
}

func TestRemoveValue_RequiresCanRemove(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"name": {"type": "string"}}
	}`, map[string]any{"name": "a"}, nil)

	assert.False(t, rt.RemoveValue("/name"))
}

func TestRemoveValue_AdditionalPropertyRemovable(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"additionalProperties": {"type": "string"}
	}`, map[string]any{"extra": "v"}, nil)

	ok := rt.RemoveValue("/extra")
	require.True(t, ok)
	_, found := rt.GetValue("/extra")
	assert.False(t, found)
}

func TestRemoveValue_CleanupEmptyContainerAuto(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {
			"tags": {
				"type": "object",
				"additionalProperties": {"type": "string"}
			}
		}
	}`, map[string]any{"tags": map[string]any{"a": "x"}}, nil)

	ok := rt.RemoveValue("/tags/a")
	require.True(t, ok)

	_, found := rt.GetValue("/tags")
	// "tags" is a declared, non-required property: the auto cleanup policy
	// removes it once emptied.
	assert.False(t, found, "auto-cleanup should remove the now-empty optional container")
}

func TestRemoveValue_NeverPolicyKeepsEmptyContainer(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {
			"tags": {
				"type": "object",
				"additionalProperties": {"type": "string"}
			}
		}
	}`, map[string]any{"tags": map[string]any{"a": "x"}}, &RuntimeOptions{RemoveEmptyContainers: RemoveNever})

	ok := rt.RemoveValue("/tags/a")
	require.True(t, ok)

	v, found := rt.GetValue("/tags")
	require.True(t, found)
	assert.Equal(t, map[string]any{}, v)
}

// TestDependentNodeRebuildsAcrossLevels demonstrates why the dependency
// index's post-rebuild fan-out (§4.8, C8) is needed, not just the ancestor
// walk SetValue already performs: the root's `if` here depends on the
// *group* sub-object (one hop below root), while the mutated leaf lives one
// further hop down, inside group. SetValue's own reconcile(parent) call
// only reaches the group node directly; root is reached purely via the
// dependency index's fan-out at the end of buildNode(group).
func TestDependentNodeRebuildsAcrossLevels(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {
			"group": {
				"type": "object",
				"properties": {"flag": {"type": "boolean"}}
			},
			"status": {"type": "string"}
		},
		"if": {"properties": {"group": {"properties": {"flag": {"const": true}}}}},
		"then": {"properties": {"status": {"enum": ["on"]}}},
		"else": {"properties": {"status": {"enum": ["off"]}}}
	}`, map[string]any{"group": map[string]any{"flag": false}, "status": "off"}, nil)

	statusNode, ok := rt.FindNode("/status")
	require.True(t, ok)
	assert.Nil(t, statusNode.Error)

	ok = rt.SetValue("/group/flag", true)
	require.True(t, ok)

	statusNode, ok = rt.FindNode("/status")
	require.True(t, ok)
	require.NotNil(t, statusNode.Error, "root's if now holds; status's effective enum switched to [\"on\"] but value is still \"off\"")
	assert.Equal(t, "enum", statusNode.Error.Code)
}

func TestSetSchema_RebuildsWholeTree(t *testing.T) {
	rt := newTestRuntime(t, `{
		"type": "object",
		"properties": {"a": {"type": "string"}}
	}`, map[string]any{"a": "x"}, nil)

	newSchema := mustCompile(t, `{
		"type": "object",
		"properties": {"b": {"type": "integer"}}
	}`)
	err := rt.SetSchema(newSchema)
	require.NoError(t, err)

	_, ok := rt.FindNode("/a")
	assert.False(t, ok, "old schema's declared property should no longer form a node")
}

func TestRuntime_DefaultFuncsRegisteredBeforeInitialBuild(t *testing.T) {
	schema := mustCompile(t, `{
		"type": "object",
		"properties": {"id": {"type": "string", "default": "seq()"}}
	}`)
	rt, err := NewRuntime(stubValidator{}, schema, map[string]any{}, &RuntimeOptions{
		FillDefaults: StrategyAlways,
		DefaultFuncs: map[string]DefaultFunc{
			"seq": func(args ...any) (any, error) { return "seq-1", nil },
		},
	})
	require.NoError(t, err)

	v, _ := rt.GetValue("/id")
	assert.Equal(t, "seq-1", v)
}
