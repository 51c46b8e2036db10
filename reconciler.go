package jsonschema

import (
	"sort"
	"strconv"
	"strings"
)

// Reconciler (C7, §4.6-4.7): rebuilds FieldNode subtrees in place against
// the current instance value. Grounded on the teacher's conditional.go
// evaluate-then-branch shape, generalized from "evaluate one if/then/else
// during validation" to "rebuild a live node tree after every mutation".

// buildNode implements §4.6's buildNode contract. schema, when non-nil, is
// a newly-assigned originalSchema (setSchema or a parent's child-schema
// recompute); nil means "rebuild against the existing originalSchema".
// updating is the per-top-level-mutation re-entrancy guard (§5): a node
// already present is skipped.
func (rt *Runtime) buildNode(node *FieldNode, schema *Schema, updating map[string]bool) {
	if node == nil || updating[node.InstanceLocation] {
		return
	}
	updating[node.InstanceLocation] = true

	if schema != nil && !schemasEqual(schema, node.OriginalSchema) {
		rt.index.unregisterAll(node)
		node.OriginalSchema = schema
	}

	value, _ := GetPointer(rt.value, node.InstanceLocation)

	deps := collectDependencies(node.OriginalSchema, node.InstanceLocation)
	for p := range node.Dependencies {
		if !deps[p] {
			rt.index.unregister(p, node)
		}
	}
	for p := range deps {
		rt.index.register(p, node)
	}
	node.Dependencies = deps

	resolved := resolveEffectiveSchema(node.OriginalSchema, value, rt.validator, node.InstanceLocation)

	effectiveChanged := !schemasEqual(node.Schema, resolved.Effective) || node.Type != resolved.Type
	oldErrMsg := errorMessage(node.Error)

	if effectiveChanged {
		rt.applyBranchSwitchDefaults(node, resolved.Effective, resolved.Type)
		// Re-read value: branch-switch defaults may have just written it.
		value, _ = GetPointer(rt.value, node.InstanceLocation)
	}

	node.Schema = resolved.Effective
	node.Type = resolved.Type
	node.Error = firstError(resolved.Error, rt.validate(resolved.Effective, value, node.InstanceLocation))
	node.Version++

	rt.reconcileChildren(node, resolved.Effective, resolved.Type, value, updating)

	if effectiveChanged {
		rt.index.notify(Event{Kind: EventSchema, Path: node.InstanceLocation, Node: node})
	}
	if errorMessage(node.Error) != oldErrMsg {
		rt.index.notify(Event{Kind: EventError, Path: node.InstanceLocation, Node: node})
	}

	for _, dep := range rt.index.dependentsOf(node.InstanceLocation) {
		rt.buildNode(dep, nil, updating)
	}
}

// validate implements §4.5 step 8: runs the validator against the node's
// resolved effective schema and current value, returning its first
// reported error (if any). A nil validator or a passing result yields nil.
func (rt *Runtime) validate(effective *Schema, value any, instanceLocation string) *ValidationError {
	if rt.validator == nil || effective == nil {
		return nil
	}
	result := rt.validator.Validate(ValidationRequest{
		Schema:           effective,
		Instance:         value,
		InstanceLocation: instanceLocation,
	})
	if result.Valid {
		return nil
	}
	if len(result.Errors) > 0 {
		return &result.Errors[0]
	}
	return &ValidationError{Error: result.Error, InstanceLocation: instanceLocation}
}

// firstError prefers a schema-anomaly error (e.g. a type mismatch detected
// during resolution, §4.5 step 7) over the validator's own verdict, since
// the former reflects a structural problem the validator may not be able
// to express in terms of the already-narrowed effective schema.
func firstError(errs ...*ValidationError) *ValidationError {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func errorMessage(e *ValidationError) string {
	if e == nil {
		return ""
	}
	return e.Error
}

// applyBranchSwitchDefaults implements §4.7.1: when the effective schema at
// an object/array node just changed, fill missing declared-property/
// prefixItems positions with their generated default, without ever
// overwriting an existing value.
func (rt *Runtime) applyBranchSwitchDefaults(node *FieldNode, effective *Schema, typ string) {
	if effective == nil || effective.Boolean != nil {
		return
	}
	switch typ {
	case "object":
		if effective.Properties == nil {
			return
		}
		required := map[string]bool{}
		for _, r := range effective.Required {
			required[r] = true
		}
		for key, propSchema := range *effective.Properties {
			if rt.options.FillDefaults == StrategyExplicit && !required[key] {
				continue
			}
			childPath := JoinPointer(node.InstanceLocation, key)
			if _, ok := GetPointer(rt.value, childPath); ok {
				continue
			}
			if d := computeDefault(propSchema, nil, rt.options.FillDefaults, rt.defaults); d != nil {
				SetPointer(&rt.value, childPath, d)
			}
		}
	case "array":
		for i, itemSchema := range effective.PrefixItems {
			childPath := JoinPointer(node.InstanceLocation, itoa(i))
			if _, ok := GetPointer(rt.value, childPath); ok {
				continue
			}
			if d := computeDefault(itemSchema, nil, rt.options.FillDefaults, rt.defaults); d != nil {
				SetPointer(&rt.value, childPath, d)
			}
		}
	}
}

// reconcileChildren implements §4.7.2: recompute the ordered child list for
// object/array nodes, reusing existing FieldNodes by instance location and
// destroying (and unregistering) any no-longer-produced child.
func (rt *Runtime) reconcileChildren(node *FieldNode, effective *Schema, typ string, value any, updating map[string]bool) {
	if effective == nil || effective.Boolean != nil {
		rt.destroyChildren(node, node.Children)
		node.Children = nil
		return
	}

	reuse := node.childSnapshot()
	var ordered []*FieldNode

	switch typ {
	case "object":
		obj, _ := value.(map[string]any)
		emitted := map[string]bool{}

		if effective.Properties != nil {
			keys := make([]string, 0, len(*effective.Properties))
			for k := range *effective.Properties {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, key := range keys {
				sub := (*effective.Properties)[key]
				ordered = append(ordered, rt.childNode(node, reuse, key, sub, FormatPointer("properties", key), false, updating))
				emitted[key] = true
			}
		}
		// The Go decoder's map[string]any instance representation does not
		// retain object-key insertion order (§3 names order-preserving
		// mappings; go-json-experiment/json, like the teacher's codec
		// choice, decodes objects into plain maps). Keys are therefore
		// iterated in sorted order here for deterministic child-list
		// construction rather than true insertion order.
		objKeys := make([]string, 0, len(obj))
		for k := range obj {
			objKeys = append(objKeys, k)
		}
		sort.Strings(objKeys)

		// First pass: keys matched by patternProperties; second pass: the
		// remaining (additionalProperties) keys.
		patternPrefix := FormatPointer("patternProperties") + "/"
		for _, patternPass := range []bool{true, false} {
			for _, key := range objKeys {
				if emitted[key] {
					continue
				}
				sel, ok := selectChildSchema(effective, key)
				if !ok || strings.HasPrefix(sel.KeywordToken, patternPrefix) != patternPass {
					continue
				}
				ordered = append(ordered, rt.childNode(node, reuse, key, sel.Schema, sel.KeywordToken, true, updating))
				emitted[key] = true
			}
		}

	case "array":
		arr, _ := value.([]any)
		for i := range effective.PrefixItems {
			if i >= len(arr) {
				break
			}
			key := itoa(i)
			ordered = append(ordered, rt.childNode(node, reuse, key, effective.PrefixItems[i], FormatPointer("prefixItems", key), false, updating))
		}
		if effective.Items != nil {
			for i := len(effective.PrefixItems); i < len(arr); i++ {
				key := itoa(i)
				ordered = append(ordered, rt.childNode(node, reuse, key, effective.Items, FormatPointer("items"), true, updating))
			}
		}
	}

	node.Children = ordered

	for loc, old := range reuse {
		if !childStillPresent(ordered, loc) {
			rt.destroyChildren(old, old.Children)
			rt.index.unregisterAll(old)
		}
	}

	node.CanAdd = canAddChild(effective, typ == "array")
}

func childStillPresent(ordered []*FieldNode, loc string) bool {
	for _, c := range ordered {
		if c.InstanceLocation == loc {
			return true
		}
	}
	return false
}

// childNode reuses an existing FieldNode at the computed instance location
// when present, otherwise creates one, then recursively rebuilds it.
func (rt *Runtime) childNode(parent *FieldNode, reuse map[string]*FieldNode, key string, sub *Schema, keywordToken string, canRemove bool, updating map[string]bool) *FieldNode {
	loc := JoinPointer(parent.InstanceLocation, key)
	child, ok := reuse[loc]
	if !ok {
		child = newFieldNode(loc, keywordToken, sub, canRemove)
	} else {
		child.KeywordLocation = keywordToken
		child.CanRemove = canRemove
		delete(reuse, loc)
	}
	rt.buildNode(child, sub, updating)
	return child
}

// destroyChildren unregisters the dependency-index contribution of an
// entire subtree being dropped (§3 lifecycle).
func (rt *Runtime) destroyChildren(node *FieldNode, children []*FieldNode) {
	for _, c := range children {
		rt.destroyChildren(c, c.Children)
		rt.index.unregisterAll(c)
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
