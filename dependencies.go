package jsonschema

import "sort"

// Dependency collector (C4, §4.4). Given a sub-schema and its instance
// location, returns the set of absolute instance paths whose value
// participates in any conditional branch's predicate. Grounded on the
// traversal shape of the teacher's conditional.go (same if/then/else
// recursion) generalized to walk allOf/anyOf/oneOf arms and
// dependentSchemas/dependentRequired without evaluating anything — this is
// pure schema-shape analysis, independent of the current instance value.

// collectDependencies returns the absolute instance paths this schema's
// conditional constructs read from, rooted at instanceLocation. It does not
// descend into child `properties`/`items`/etc. — those form separate nodes
// with their own collectors.
func collectDependencies(schema *Schema, instanceLocation string) map[string]bool {
	deps := map[string]bool{}
	if schema == nil || schema.Boolean != nil {
		return deps
	}
	collectDependenciesInto(schema, instanceLocation, deps)
	return deps
}

func collectDependenciesInto(schema *Schema, instanceLocation string, deps map[string]bool) {
	if schema == nil || schema.Boolean != nil {
		return
	}

	collectIfPredicate(schema.If, instanceLocation, deps)

	// Nested if inside then/else still reads from the same instanceLocation
	// (if/then/else do not introduce a new instance scope).
	if schema.Then != nil {
		collectDependenciesInto(schema.Then, instanceLocation, deps)
	}
	if schema.Else != nil {
		collectDependenciesInto(schema.Else, instanceLocation, deps)
	}

	for _, arm := range schema.AllOf {
		collectDependenciesInto(arm, instanceLocation, deps)
	}
	for _, arm := range schema.AnyOf {
		collectDependenciesInto(arm, instanceLocation, deps)
	}
	for _, arm := range schema.OneOf {
		collectDependenciesInto(arm, instanceLocation, deps)
	}

	for key := range schema.DependentSchemas {
		deps[JoinPointer(instanceLocation, key)] = true
	}
	for key := range schema.DependentRequired {
		deps[JoinPointer(instanceLocation, key)] = true
	}
}

// collectIfPredicate collects the properties referenced by an `if` clause's
// own `properties`/`const`/`required` constraints (the predicate surface
// §4.4 describes), plus recursing into any nested if/then/else composition
// within the if clause itself.
func collectIfPredicate(ifSchema *Schema, instanceLocation string, deps map[string]bool) {
	if ifSchema == nil {
		return
	}
	if ifSchema.Properties != nil {
		for key := range *ifSchema.Properties {
			deps[JoinPointer(instanceLocation, key)] = true
		}
	}
	for _, key := range ifSchema.Required {
		deps[JoinPointer(instanceLocation, key)] = true
	}
	// A predicate with further nested conditionals at the same location
	// (rare, but schema-legal) contributes its own dependencies too.
	collectDependenciesInto(ifSchema, instanceLocation, deps)
}

// dependencySet returns the sorted keys of a dependency map, for stable
// iteration order in tests and notifications.
func dependencySet(deps map[string]bool) []string {
	out := make([]string, 0, len(deps))
	for k := range deps {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
