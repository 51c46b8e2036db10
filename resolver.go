package jsonschema

import (
	"fmt"
)

// Effective-schema resolver (C5, §4.5). Grounded on the shape of the
// teacher's conditional.go (if/then/else evaluation) generalized to allOf /
// anyOf / oneOf / dependentSchemas, using mergeSchemas (effectivemerge.go)
// instead of the teacher's validate-time evaluation machinery, since this
// runtime resolves against the *current instance value* directly rather
// than accumulating annotations during a single validator pass.

// ResolvedSchema is the output of resolveEffectiveSchema: §4.5's
// {type, effectiveSchema, error}.
type ResolvedSchema struct {
	Type      string
	Effective *Schema
	Error     *ValidationError
}

// resolveEffectiveSchema implements §4.5 steps 1-7. Step 8 (invoking the
// validator against the resolved effective schema) is performed by the
// reconciler, which owns the Validator handle.
func resolveEffectiveSchema(original *Schema, value any, validator Validator, instanceLocation string) *ResolvedSchema {
	if original == nil {
		return &ResolvedSchema{Effective: &Schema{}}
	}
	if original.Boolean != nil {
		return &ResolvedSchema{Effective: original}
	}

	// Step 1: base.
	acc := shallowCopySchema(original)

	// Step 2: allOf.
	for _, arm := range original.AllOf {
		resolved := resolveEffectiveSchema(arm, value, validator, instanceLocation)
		acc = mergeSchemas(acc, resolved.Effective)
	}

	// Step 3: if/then/else.
	acc = mergeSchemas(acc, resolveConditional(original, value, validator, instanceLocation))

	// Step 4: anyOf — every arm whose own `if` validates (or is absent)
	// contributes; multiple arms may apply simultaneously.
	for _, arm := range original.AnyOf {
		if armPredicateHolds(arm, value, validator, instanceLocation) {
			resolved := resolveEffectiveSchema(arm, value, validator, instanceLocation)
			acc = mergeSchemas(acc, resolved.Effective)
		}
	}

	// Step 5: oneOf — the first arm that validates as a whole against the
	// value is selected.
	if len(original.OneOf) > 0 {
		matched := selectOneOfArm(original.OneOf, value, validator, instanceLocation)
		if matched != nil {
			resolved := resolveEffectiveSchema(matched, value, validator, instanceLocation)
			acc = mergeSchemas(acc, resolved.Effective)
		}
	}

	// Step 6: dependentSchemas.
	if obj, ok := value.(map[string]any); ok {
		for key, depSchema := range original.DependentSchemas {
			if _, present := obj[key]; present {
				resolved := resolveEffectiveSchema(depSchema, value, validator, instanceLocation)
				acc = mergeSchemas(acc, resolved.Effective)
			}
		}
	}

	// Step 7: type resolution.
	resolvedType, typeErr := resolveType(acc, value)

	return &ResolvedSchema{
		Type:      resolvedType,
		Effective: acc,
		Error:     typeErr,
	}
}

// resolveConditional evaluates if/then/else (§4.5 step 3) and returns the
// merged then/else branch, or an empty schema if no branch applies. A
// vacuously-true `if` (nil) is treated as validating.
func resolveConditional(schema *Schema, value any, validator Validator, instanceLocation string) *Schema {
	holds := evaluatesTrue(schema.If, value, validator, instanceLocation)

	var branch *Schema
	if holds {
		branch = schema.Then
	} else {
		branch = schema.Else
	}
	if branch == nil {
		return &Schema{}
	}
	resolved := resolveEffectiveSchema(branch, value, validator, instanceLocation)
	return resolved.Effective
}

// armPredicateHolds reports whether an anyOf arm applies: true if the arm
// has no `if` (vacuously true), or if its `if` validates.
func armPredicateHolds(arm *Schema, value any, validator Validator, instanceLocation string) bool {
	if arm == nil {
		return false
	}
	if arm.If == nil {
		return true
	}
	return evaluatesTrue(arm.If, value, validator, instanceLocation)
}

// selectOneOfArm picks the first oneOf arm that validates against value.
// On a tie the first match is kept and nothing is recorded here:
// ResolvedSchema.Error carries only the step-7 type error. The effective
// schema keeps its oneOf list, so the step-8 validator call sees the tie.
func selectOneOfArm(arms []*Schema, value any, validator Validator, instanceLocation string) *Schema {
	var matched *Schema
	for _, arm := range arms {
		ok := evaluatesTrue(arm, value, validator, instanceLocation)
		if ok {
			if matched == nil {
				matched = arm
			}
			// Tie: keep the first match (documented Open Question 1
			// resolution); do not overwrite `matched`.
		}
	}
	return matched
}

// evaluatesTrue runs validator against predicate/value and reports validity.
// A nil predicate is vacuously true.
func evaluatesTrue(predicate *Schema, value any, validator Validator, instanceLocation string) bool {
	if predicate == nil {
		return true
	}
	if validator == nil {
		return true
	}
	result := validator.Validate(ValidationRequest{
		Schema:           predicate,
		Instance:         value,
		InstanceLocation: instanceLocation,
	})
	return result.Valid
}

// resolveType implements §4.5 step 7: use the declared type if present,
// otherwise infer from value; flag a mismatch without discarding the
// declared type.
func resolveType(effective *Schema, value any) (string, *ValidationError) {
	declared := effective.Type.First()
	if declared == "" {
		return inferType(value), nil
	}
	if value == nil {
		// Absent/undefined value: nothing to compare against.
		return declared, nil
	}
	actual := inferType(value)
	if typesCompatible(declared, actual) {
		return declared, nil
	}
	return declared, &ValidationError{
		Error:  fmt.Sprintf("must be %s", declared),
		Code:   "type",
		Params: map[string]any{"field": "value", "type": declared},
	}
}

func typesCompatible(declared, actual string) bool {
	if declared == actual {
		return true
	}
	// "integer" is a refinement of "number"; a schema declaring "number"
	// accepts an integer-valued instance.
	if declared == "number" && actual == "integer" {
		return true
	}
	return false
}

// inferType infers the JSON Schema primitive type name of a decoded value.
func inferType(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		if v == float64(int64(v)) {
			return "integer"
		}
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

// shallowCopySchema returns a shallow field-by-field copy of s, used as the
// resolver's mutable accumulator so merges never touch the caller's schema.
func shallowCopySchema(s *Schema) *Schema {
	if s == nil {
		return &Schema{}
	}
	c := *s
	c.compiledPatterns = nil
	c.compiledStringPattern = nil
	return &c
}
