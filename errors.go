package jsonschema

import "errors"

// === Pointer Related Errors ===
var (
	// ErrInvalidPointer names a malformed JSON Pointer string. Nothing in
	// this package returns it: GetPointer, SetPointer and RemovePointer
	// report every failure with a false result.
	ErrInvalidPointer = errors.New("invalid json pointer")

	// ErrPointerSegmentNotFound names a pointer segment that cannot be
	// resolved against the instance value. Nothing in this package returns it.
	ErrPointerSegmentNotFound = errors.New("json pointer segment not found")

	// ErrPointerKindMismatch names a pointer segment that addresses an array
	// index against an object, or a property name against an array. Nothing
	// in this package returns it.
	ErrPointerKindMismatch = errors.New("json pointer segment kind mismatch")
)

// === Schema Compilation and Parsing Related Errors ===
var (
	// ErrReferenceResolution is returned when a $ref cannot be resolved.
	ErrReferenceResolution = errors.New("reference resolution failed")

	// ErrJSONPointerSegmentNotFound is returned when a $ref's JSON Pointer
	// segment is not found in the schema document.
	ErrJSONPointerSegmentNotFound = errors.New("json pointer segment not found")

	// ErrInvalidSchemaType is returned when the JSON schema document is
	// neither a boolean nor an object.
	ErrInvalidSchemaType = errors.New("invalid schema type")

	// ErrInvalidJSONSchemaType is a former name kept as an alias; both names
	// are used interchangeably across the schema parsing code.
	ErrInvalidJSONSchemaType = ErrInvalidSchemaType

	// ErrSchemaIsNil is returned when a schema reference is nil where a
	// schema was required.
	ErrSchemaIsNil = errors.New("schema is nil")

	// ErrInvalidRegexPattern names a pattern or patternProperties key that
	// fails to compile as a regular expression. Nothing in this package
	// returns it; pattern compilation returns the regexp package's error.
	ErrInvalidRegexPattern = errors.New("invalid regex pattern")
)

// === Dependency Graph Related Errors ===
var (
	// ErrCyclicDependency names a schema that depends on itself through
	// if/dependentSchemas/$ref. Nothing in this package returns it;
	// Dereference replaces a cyclic $ref with an empty schema.
	ErrCyclicDependency = errors.New("cyclic schema dependency")

	// ErrDependencyPathNotFound names a dependency on an instance location
	// that does not exist in the node tree. Nothing in this package returns it.
	ErrDependencyPathNotFound = errors.New("dependency path not found")
)

// === Reconciliation Related Errors ===
var (
	// ErrNodeNotFound names an instance location with no corresponding node
	// in the tree. Nothing in this package returns it; FindNode reports a
	// missing node with a false result.
	ErrNodeNotFound = errors.New("node not found")

	// ErrCannotAddChild names an add on a node whose effective schema does
	// not permit an additional property or item at that location. Nothing in
	// this package returns it; AddChild reports a refused add with a false
	// result.
	ErrCannotAddChild = errors.New("cannot add child at this location")

	// ErrCannotRemoveChild names a removal of a location the effective
	// schema does not let go. Nothing in this package returns it;
	// RemoveValue reports a refused removal with a false result.
	ErrCannotRemoveChild = errors.New("cannot remove value at this location")

	// ErrSchemaValueMismatch names a value that does not type-check against
	// a new schema. Nothing in this package returns it; SetSchema does not
	// check the current value against the new schema.
	ErrSchemaValueMismatch = errors.New("value does not match new schema")
)

// === Subscription Related Errors ===
var (
	// ErrWatcherNotFound names a subscription handle the index no longer
	// tracks. Nothing in this package returns it; the Unsubscribe func
	// returned by Subscribe/SubscribeAll has no result.
	ErrWatcherNotFound = errors.New("watcher not found")
)

// === Default Generation Related Errors ===
var (
	// ErrInvalidDefaultFunctionCall is returned when a schema's "default"
	// string looks like a "name(args...)" call but the argument list is
	// malformed (e.g. unbalanced parentheses).
	ErrInvalidDefaultFunctionCall = errors.New("invalid default function call")
)

// === Type Conversion Related Errors ===
var (
	// ErrUnsupportedTypeForRat is returned when a value cannot be converted
	// to a *big.Rat (Rat's backing type).
	ErrUnsupportedTypeForRat = errors.New("unsupported type for rat conversion")

	// ErrFailedToConvertToRat is returned when big.Rat parsing of a numeric
	// literal fails.
	ErrFailedToConvertToRat = errors.New("failed to convert to rat")

	// ErrNilConstValue is returned when trying to unmarshal into a nil
	// ConstValue.
	ErrNilConstValue = errors.New("cannot unmarshal into nil ConstValue")
)

// === Serialization Related Errors ===
var (
	// ErrJSONUnmarshal names a failed schema or instance JSON decode.
	// Nothing in this package returns it; decode errors are returned as the
	// codec reports them.
	ErrJSONUnmarshal = errors.New("json unmarshal failed")

	// ErrJSONMarshal names a failed schema or instance JSON encode. Nothing
	// in this package returns it.
	ErrJSONMarshal = errors.New("json marshal failed")
)
