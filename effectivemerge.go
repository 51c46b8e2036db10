package jsonschema

// Merge rules for the effective-schema resolver (C5, §4.5 step 2 and the
// allOf merge described there). These rules are deliberately NOT the
// teacher's schemamerge.go union-merge semantics (which implement a
// superset/intersection algebra suited to merging independently-authored
// schemas for documentation purposes). §4.5 calls for a different,
// last-wins-with-clamping contract suited to accumulating conditional
// branches against one evolving instance: scalars are overwritten by the
// later-merged branch except minimum/maximum-family keywords, which clamp.
// The file/function shape (one mergeX per keyword family) is kept from
// schemamerge.go; the merge direction and semantics are not.

// mergeSchemas merges src into a shallow copy of dst and returns the result,
// per §4.5 step 2: required/enum unioned, properties merged key-wise
// (recursively), array-of-schema keywords concatenated, scalars taken from
// src (the later arm) when present, with minimum/minLength taking the max
// and maximum/maxLength taking the min across dst/src.
func mergeSchemas(dst, src *Schema) *Schema {
	if dst == nil {
		return src
	}
	if src == nil {
		return dst
	}
	if dst.Boolean != nil || src.Boolean != nil {
		// A `false` boolean schema anywhere makes the merge unsatisfiable;
		// a `true` boolean schema contributes nothing. Treat conservatively
		// by preferring whichever is non-permissive.
		if dst.Boolean != nil && !*dst.Boolean {
			return dst
		}
		if src.Boolean != nil && !*src.Boolean {
			return src
		}
		if dst.Boolean != nil && *dst.Boolean {
			return src
		}
		return dst
	}

	out := *dst

	out.Required = unionStrings(dst.Required, src.Required)
	out.Enum = unionValues(dst.Enum, src.Enum)

	out.AllOf = append(append([]*Schema{}, dst.AllOf...), src.AllOf...)
	out.AnyOf = append(append([]*Schema{}, dst.AnyOf...), src.AnyOf...)
	out.OneOf = append(append([]*Schema{}, dst.OneOf...), src.OneOf...)

	out.Properties = mergeSchemaMaps(dst.Properties, src.Properties)
	out.PatternProperties = mergeSchemaMaps(dst.PatternProperties, src.PatternProperties)
	out.DependentSchemas = mergeSchemaMapPlainByKey(dst.DependentSchemas, src.DependentSchemas)
	out.DependentRequired = mergeDependentRequired(dst.DependentRequired, src.DependentRequired)

	if src.Type != nil {
		out.Type = src.Type
	}
	if src.Items != nil {
		out.Items = src.Items
	}
	if src.PrefixItems != nil {
		out.PrefixItems = src.PrefixItems
	}
	if src.AdditionalProperties != nil {
		out.AdditionalProperties = src.AdditionalProperties
	}
	if src.Title != nil {
		out.Title = src.Title
	}
	if src.Description != nil {
		out.Description = src.Description
	}
	if src.Default != nil {
		out.Default = src.Default
	}
	if src.ReadOnly != nil {
		out.ReadOnly = src.ReadOnly
	}
	if src.WriteOnly != nil {
		out.WriteOnly = src.WriteOnly
	}
	if src.Format != nil {
		out.Format = src.Format
	}
	if src.Const != nil {
		out.Const = src.Const
	}
	if src.Pattern != nil {
		out.Pattern = src.Pattern
	}

	// Clamp: minimum-family takes the max (tighter lower bound), maximum-
	// family takes the min (tighter upper bound).
	out.Minimum = maxRat(dst.Minimum, src.Minimum)
	out.ExclusiveMinimum = maxRat(dst.ExclusiveMinimum, src.ExclusiveMinimum)
	out.Maximum = minRat(dst.Maximum, src.Maximum)
	out.ExclusiveMaximum = minRat(dst.ExclusiveMaximum, src.ExclusiveMaximum)
	out.MinLength = maxFloatPtr(dst.MinLength, src.MinLength)
	out.MaxLength = minFloatPtr(dst.MaxLength, src.MaxLength)
	out.MinItems = maxFloatPtr(dst.MinItems, src.MinItems)
	out.MaxItems = minFloatPtr(dst.MaxItems, src.MaxItems)
	out.MinProperties = maxFloatPtr(dst.MinProperties, src.MinProperties)
	out.MaxProperties = minFloatPtr(dst.MaxProperties, src.MaxProperties)

	if src.MultipleOf != nil {
		out.MultipleOf = src.MultipleOf
	}
	if src.UniqueItems != nil {
		out.UniqueItems = src.UniqueItems
	}

	return &out
}

func unionStrings(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func unionValues(a, b []any) []any {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := append([]any{}, a...)
	for _, v := range b {
		dup := false
		for _, existing := range out {
			if valuesEqual(existing, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func mergeSchemaMaps(a, b *SchemaMap) *SchemaMap {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make(SchemaMap, len(*a)+len(*b))
	for k, v := range *a {
		out[k] = v
	}
	for k, v := range *b {
		if existing, ok := out[k]; ok {
			out[k] = mergeSchemas(existing, v)
		} else {
			out[k] = v
		}
	}
	return &out
}

func mergeSchemaMapPlainByKey(a, b map[string]*Schema) map[string]*Schema {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make(map[string]*Schema, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok {
			out[k] = mergeSchemas(existing, v)
		} else {
			out[k] = v
		}
	}
	return out
}

func mergeDependentRequired(a, b map[string][]string) map[string][]string {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make(map[string][]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = unionStrings(out[k], v)
	}
	return out
}

func maxFloatPtr(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a >= *b {
		return a
	}
	return b
}

func minFloatPtr(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *a <= *b {
		return a
	}
	return b
}
