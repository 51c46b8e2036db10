package jsonschema

import (
	"reflect"

	"github.com/go-json-experiment/json"
	"github.com/wI2L/jsondiff"
)

// Deep-equality helpers: schemasEqual is used by the reconciler (§4.6) to
// decide whether a node's originalSchema or effective schema actually
// changed, and valuesEqual by the enum union in effectivemerge.go. Grounded on
// wI2L/jsondiff's structural JSON patch diff rather than Go struct equality
// (which would be fooled by map ordering / pointer identity in the Schema
// tree). Both sides are marshaled through the same go-json-experiment codec
// the rest of the core uses (schema.go, rat.go) so Rat/ConstValue/SchemaType
// custom marshaling is honored.

// schemasEqual reports whether two schema fragments are deeply equal as
// JSON documents. Two nils are equal; a nil compared to a non-nil schema is
// unequal.
func schemasEqual(a, b *Schema) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	aBytes, errA := json.Marshal(a)
	bBytes, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	patch, err := jsondiff.CompareJSON(aBytes, bBytes)
	if err != nil {
		return false
	}
	return len(patch) == 0
}

// valuesEqual reports whether two decoded JSON values are deeply equal,
// used by unionValues (effectivemerge.go) to drop duplicate enum values.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	aBytes, errA := json.Marshal(a)
	bBytes, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	patch, err := jsondiff.CompareJSON(aBytes, bBytes)
	if err != nil {
		return reflect.DeepEqual(a, b)
	}
	return len(patch) == 0
}
