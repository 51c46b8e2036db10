package jsonschema

import (
	"fmt"
	"strconv"
	"strings"
)

// Dereferencing (C2) and sub-schema selection (§4.2). Dereferencing is a
// pure, local pre-pass over an already-parsed Schema tree: it resolves
// "#/..."-style JSON Pointer $ref values against the root schema and
// replaces each $ref node with a deep clone of its target. There is no
// network fetching and no external-document resolution — that machinery
// belongs to a general-purpose validator, not this runtime (§1 Out of
// scope); the teacher's ref.go HTTP/URI resolution is deliberately not
// carried over.

// Dereference walks root and returns a deep copy with every local $ref
// replaced by the resolved target sub-schema. A $ref cycle is broken by
// leaving the innermost occurrence as an empty schema (Open Question 2,
// resolved here: leave empty rather than reject at construction, matching
// the teacher's permissive behavior).
func Dereference(root *Schema) (*Schema, error) {
	if root == nil {
		return nil, nil
	}
	clone := cloneSchema(root)
	visiting := map[*Schema]bool{}
	if err := dereferenceNode(clone, clone, visiting); err != nil {
		return nil, err
	}
	return clone, nil
}

func dereferenceNode(node, root *Schema, visiting map[*Schema]bool) error {
	if node == nil || node.Boolean != nil {
		return nil
	}
	if visiting[node] {
		return nil
	}
	visiting[node] = true
	defer delete(visiting, node)

	if node.Ref != "" {
		target, err := resolveLocalRef(root, node.Ref)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrReferenceResolution, node.Ref)
		}
		if target == nil || visiting[target] {
			// Cycle: replace with an empty schema rather than recursing forever.
			*node = Schema{}
			return nil
		}
		// Mark the target itself (not just its freshly-cloned substitute) as
		// being visited: every $ref to the same $defs entry clones it anew,
		// so only the target's own identity is stable across recursive hops.
		visiting[target] = true
		resolved := cloneSchema(target)
		ref := node.Ref
		err = dereferenceNode(resolved, root, visiting)
		delete(visiting, target)
		if err != nil {
			return err
		}
		*node = *resolved
		node.Ref = ref // keep informational trace of the original $ref
		return nil
	}

	for _, def := range node.Defs {
		if err := dereferenceNode(def, root, visiting); err != nil {
			return err
		}
	}
	for _, s := range node.AllOf {
		if err := dereferenceNode(s, root, visiting); err != nil {
			return err
		}
	}
	for _, s := range node.AnyOf {
		if err := dereferenceNode(s, root, visiting); err != nil {
			return err
		}
	}
	for _, s := range node.OneOf {
		if err := dereferenceNode(s, root, visiting); err != nil {
			return err
		}
	}
	if err := dereferenceNode(node.Not, root, visiting); err != nil {
		return err
	}
	if err := dereferenceNode(node.If, root, visiting); err != nil {
		return err
	}
	if err := dereferenceNode(node.Then, root, visiting); err != nil {
		return err
	}
	if err := dereferenceNode(node.Else, root, visiting); err != nil {
		return err
	}
	for _, s := range node.DependentSchemas {
		if err := dereferenceNode(s, root, visiting); err != nil {
			return err
		}
	}
	for _, s := range node.PrefixItems {
		if err := dereferenceNode(s, root, visiting); err != nil {
			return err
		}
	}
	if err := dereferenceNode(node.Items, root, visiting); err != nil {
		return err
	}
	if err := dereferenceNode(node.Contains, root, visiting); err != nil {
		return err
	}
	if node.Properties != nil {
		for _, s := range *node.Properties {
			if err := dereferenceNode(s, root, visiting); err != nil {
				return err
			}
		}
	}
	if node.PatternProperties != nil {
		for _, s := range *node.PatternProperties {
			if err := dereferenceNode(s, root, visiting); err != nil {
				return err
			}
		}
	}
	if err := dereferenceNode(node.AdditionalProperties, root, visiting); err != nil {
		return err
	}
	if err := dereferenceNode(node.PropertyNames, root, visiting); err != nil {
		return err
	}
	if err := dereferenceNode(node.UnevaluatedProperties, root, visiting); err != nil {
		return err
	}
	if err := dereferenceNode(node.UnevaluatedItems, root, visiting); err != nil {
		return err
	}
	if err := dereferenceNode(node.ContentSchema, root, visiting); err != nil {
		return err
	}
	return nil
}

// resolveLocalRef resolves a "#/a/b/c"-style JSON Pointer against root.
// Only local (same-document) references are supported — this runtime never
// fetches another schema document over the network (§1).
func resolveLocalRef(root *Schema, ref string) (*Schema, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, fmt.Errorf("%w: only local \"#/...\" refs are supported, got %q", ErrReferenceResolution, ref)
	}
	ref = strings.TrimPrefix(ref, "#")
	if ref == "" {
		return root, nil
	}
	ref = strings.TrimPrefix(ref, "/")
	if ref == "" {
		return root, nil
	}

	segments := strings.Split(ref, "/")
	current := root
	prev := ""
	for _, raw := range segments {
		seg := unescapeToken(raw)
		next, ok := findSchemaInSegment(current, seg, prev)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrJSONPointerSegmentNotFound, ref)
		}
		current = next
		prev = seg
	}
	return current, nil
}

// findSchemaInSegment finds the sub-schema named by segment, given that the
// previous path segment selected a schema-valued keyword. A segment that is
// itself one of the keywords properties/prefixItems/$defs/definitions returns
// current unchanged for the next segment to index into.
func findSchemaInSegment(current *Schema, segment, prevSegment string) (*Schema, bool) {
	switch prevSegment {
	case "properties":
		if current.Properties != nil {
			if s, ok := (*current.Properties)[segment]; ok {
				return s, true
			}
		}
	case "prefixItems":
		idx, err := strconv.Atoi(segment)
		if err == nil && current.PrefixItems != nil && idx >= 0 && idx < len(current.PrefixItems) {
			return current.PrefixItems[idx], true
		}
	case "$defs", "definitions":
		if s, ok := current.Defs[segment]; ok {
			return s, true
		}
	case "items":
		if current.Items != nil {
			return current.Items, true
		}
	default:
		// segment itself names a schema-map or schema-list keyword of
		// current: keep current so the next segment selects the entry.
		switch segment {
		case "properties", "prefixItems", "$defs", "definitions":
			return current, true
		}
	}
	return nil, false
}

// cloneSchema returns a deep copy of s (nil-safe).
func cloneSchema(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	c := *s
	c.compiledPatterns = nil
	c.compiledStringPattern = nil

	if s.Boolean != nil {
		b := *s.Boolean
		c.Boolean = &b
		return &c
	}

	c.Defs = cloneSchemaMapPlain(s.Defs)
	c.AllOf = cloneSchemaSlice(s.AllOf)
	c.AnyOf = cloneSchemaSlice(s.AnyOf)
	c.OneOf = cloneSchemaSlice(s.OneOf)
	c.Not = cloneSchema(s.Not)
	c.If = cloneSchema(s.If)
	c.Then = cloneSchema(s.Then)
	c.Else = cloneSchema(s.Else)
	c.DependentSchemas = cloneSchemaMapPlain(s.DependentSchemas)
	c.PrefixItems = cloneSchemaSlice(s.PrefixItems)
	c.Items = cloneSchema(s.Items)
	c.Contains = cloneSchema(s.Contains)
	if s.Properties != nil {
		m := cloneSchemaMapPlain(map[string]*Schema(*s.Properties))
		sm := SchemaMap(m)
		c.Properties = &sm
	}
	if s.PatternProperties != nil {
		m := cloneSchemaMapPlain(map[string]*Schema(*s.PatternProperties))
		sm := SchemaMap(m)
		c.PatternProperties = &sm
	}
	c.AdditionalProperties = cloneSchema(s.AdditionalProperties)
	c.PropertyNames = cloneSchema(s.PropertyNames)
	c.UnevaluatedItems = cloneSchema(s.UnevaluatedItems)
	c.UnevaluatedProperties = cloneSchema(s.UnevaluatedProperties)
	c.ContentSchema = cloneSchema(s.ContentSchema)
	return &c
}

func cloneSchemaSlice(in []*Schema) []*Schema {
	if in == nil {
		return nil
	}
	out := make([]*Schema, len(in))
	for i, s := range in {
		out[i] = cloneSchema(s)
	}
	return out
}

func cloneSchemaMapPlain(in map[string]*Schema) map[string]*Schema {
	if in == nil {
		return nil
	}
	out := make(map[string]*Schema, len(in))
	for k, s := range in {
		out[k] = cloneSchema(s)
	}
	return out
}

// subschemaSelection is the result of selecting a child sub-schema per §4.2.
type subschemaSelection struct {
	Schema         *Schema
	KeywordToken   string // e.g. "/properties/name", "/items"
	ExplicitlyDecl bool   // true for declared properties / prefixItems (canRemove=false)
}

// selectChildSchema implements the six-rule lookup of §4.2 for child key k
// (a property name or, for arrays, a decimal index string) under parent
// schema s.
func selectChildSchema(s *Schema, key string) (subschemaSelection, bool) {
	if s == nil {
		return subschemaSelection{}, false
	}

	if idx, err := strconv.Atoi(key); err == nil {
		if idx >= 0 && idx < len(s.PrefixItems) {
			return subschemaSelection{
				Schema:         s.PrefixItems[idx],
				KeywordToken:   FormatPointer("prefixItems", key),
				ExplicitlyDecl: true,
			}, true
		}
		if s.Items != nil {
			return subschemaSelection{
				Schema:       s.Items,
				KeywordToken: FormatPointer("items"),
			}, true
		}
		return subschemaSelection{}, false
	}

	if s.Properties != nil {
		if sub, ok := (*s.Properties)[key]; ok {
			return subschemaSelection{
				Schema:         sub,
				KeywordToken:   FormatPointer("properties", key),
				ExplicitlyDecl: true,
			}, true
		}
	}

	if s.PatternProperties != nil {
		for pattern, sub := range *s.PatternProperties {
			re, err := s.patternPropertyRegexp(pattern)
			if err != nil || re == nil {
				continue
			}
			if re.MatchString(key) {
				return subschemaSelection{
					Schema:       sub,
					KeywordToken: FormatPointer("patternProperties", pattern),
				}, true
			}
		}
	}

	if s.AdditionalProperties != nil && s.AdditionalProperties.Boolean == nil {
		return subschemaSelection{
			Schema:       s.AdditionalProperties,
			KeywordToken: FormatPointer("additionalProperties"),
		}, true
	}

	return subschemaSelection{}, false
}

// canAddChild reports whether s permits adding a new child at all (object
// additionalProperties schema, or array items schema).
func canAddChild(s *Schema, isArray bool) bool {
	if s == nil {
		return false
	}
	if isArray {
		return s.Items != nil
	}
	return s.AdditionalProperties != nil && s.AdditionalProperties.Boolean == nil
}
