// Package jsonschema implements a reactive runtime over a JSON Schema
// Draft 2020-12 document: given a validator, a schema, and a live value, it
// maintains a tree of field nodes that stays consistent as the value is
// mutated, resolving allOf/anyOf/oneOf/if-then-else/dependentSchemas into a
// per-node effective schema and re-validating only the paths a mutation
// actually touches.
package jsonschema
