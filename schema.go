package jsonschema

import (
	"bytes"
	"maps"
	"regexp"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// knownSchemaFields contains all known JSON Schema keywords.
// Used to filter out known fields when collecting extra/extension fields.
var knownSchemaFields = map[string]struct{}{
	"$id":         {},
	"$schema":     {},
	"$ref":        {},
	"$defs":       {},
	"definitions": {}, // Draft-7 compatibility
	"$comment":    {},

	"allOf":                 {},
	"anyOf":                 {},
	"oneOf":                 {},
	"not":                   {},
	"if":                    {},
	"then":                  {},
	"else":                  {},
	"dependentSchemas":      {},
	"prefixItems":           {},
	"items":                 {},
	"additionalItems":       {},
	"contains":              {},
	"properties":            {},
	"patternProperties":     {},
	"additionalProperties":  {},
	"propertyNames":         {},
	"unevaluatedItems":      {},
	"unevaluatedProperties": {},

	"type":              {},
	"enum":              {},
	"const":             {},
	"multipleOf":        {},
	"maximum":           {},
	"exclusiveMaximum":  {},
	"minimum":           {},
	"exclusiveMinimum":  {},
	"maxLength":         {},
	"minLength":         {},
	"pattern":           {},
	"maxItems":          {},
	"minItems":          {},
	"uniqueItems":       {},
	"maxContains":       {},
	"minContains":       {},
	"maxProperties":     {},
	"minProperties":     {},
	"required":          {},
	"dependentRequired": {},

	"format": {},

	"contentEncoding":  {},
	"contentMediaType": {},
	"contentSchema":    {},

	"title":       {},
	"description": {},
	"default":     {},
	"deprecated":  {},
	"readOnly":    {},
	"writeOnly":   {},
	"examples":    {},
}

// Schema represents the JSON Schema dialect this runtime recognizes (§6.1),
// a fixed subset of the 2020-12 draft. Unlike a validator's schema type, this
// one carries no compiler/URI-scope state: dereferencing (schemaderef.go) is
// a pure pre-pass, not a network resolution service.
type Schema struct {
	compiledPatterns      map[string]*regexp.Regexp
	compiledStringPattern *regexp.Regexp

	ID     string  `json:"$id,omitempty"`
	Schema string  `json:"$schema,omitempty"`
	Format *string `json:"format,omitempty"`

	Ref   string             `json:"$ref,omitempty"`
	Defs  map[string]*Schema `json:"$defs,omitempty"`
	Extra map[string]any     `json:"-"`

	// Boolean JSON Schemas (true/false as a whole schema).
	Boolean *bool `json:"-"`

	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
	Not   *Schema   `json:"not,omitempty"`

	If               *Schema            `json:"if,omitempty"`
	Then             *Schema            `json:"then,omitempty"`
	Else             *Schema            `json:"else,omitempty"`
	DependentSchemas map[string]*Schema `json:"dependentSchemas,omitempty"`

	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	Items       *Schema   `json:"items,omitempty"`
	Contains    *Schema   `json:"contains,omitempty"`

	Properties           *SchemaMap `json:"properties,omitempty"`
	PatternProperties    *SchemaMap `json:"patternProperties,omitempty"`
	AdditionalProperties *Schema    `json:"additionalProperties,omitempty"`
	PropertyNames        *Schema    `json:"propertyNames,omitempty"`

	Type  SchemaType  `json:"type,omitempty"`
	Enum  []any       `json:"enum,omitempty"`
	Const *ConstValue `json:"const,omitempty"`

	MultipleOf       *Rat `json:"multipleOf,omitempty"`
	Maximum          *Rat `json:"maximum,omitempty"`
	ExclusiveMaximum *Rat `json:"exclusiveMaximum,omitempty"`
	Minimum          *Rat `json:"minimum,omitempty"`
	ExclusiveMinimum *Rat `json:"exclusiveMinimum,omitempty"`

	MaxLength *float64 `json:"maxLength,omitempty"`
	MinLength *float64 `json:"minLength,omitempty"`
	Pattern   *string  `json:"pattern,omitempty"`

	MaxItems    *float64 `json:"maxItems,omitempty"`
	MinItems    *float64 `json:"minItems,omitempty"`
	UniqueItems *bool    `json:"uniqueItems,omitempty"`
	MaxContains *float64 `json:"maxContains,omitempty"`
	MinContains *float64 `json:"minContains,omitempty"`

	UnevaluatedItems *Schema `json:"unevaluatedItems,omitempty"`

	MaxProperties     *float64            `json:"maxProperties,omitempty"`
	MinProperties     *float64            `json:"minProperties,omitempty"`
	Required          []string            `json:"required,omitempty"`
	DependentRequired map[string][]string `json:"dependentRequired,omitempty"`

	UnevaluatedProperties *Schema `json:"unevaluatedProperties,omitempty"`

	ContentEncoding  *string `json:"contentEncoding,omitempty"`
	ContentMediaType *string `json:"contentMediaType,omitempty"`
	ContentSchema    *Schema `json:"contentSchema,omitempty"`

	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Default     any     `json:"default,omitempty"`
	Deprecated  *bool   `json:"deprecated,omitempty"`
	ReadOnly    *bool   `json:"readOnly,omitempty"`
	WriteOnly   *bool   `json:"writeOnly,omitempty"`
	Examples    []any   `json:"examples,omitempty"`
}

// newSchema parses JSON schema bytes into a Schema, without dereferencing.
func newSchema(jsonSchema []byte) (*Schema, error) {
	schema := &Schema{}
	if err := json.Unmarshal(jsonSchema, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// compilePattern validates that a regex pattern is valid Go RE2 syntax.
func compilePattern(pattern string) error {
	if pattern == "" {
		return nil
	}
	_, err := regexp.Compile(pattern)
	return err
}

// patternRegexp returns (and memoizes) the compiled regex for s.Pattern.
func (s *Schema) patternRegexp() (*regexp.Regexp, error) {
	if s.Pattern == nil {
		return nil, nil
	}
	if s.compiledStringPattern != nil {
		return s.compiledStringPattern, nil
	}
	re, err := regexp.Compile(*s.Pattern)
	if err != nil {
		return nil, err
	}
	s.compiledStringPattern = re
	return re, nil
}

// patternPropertyRegexp returns (and memoizes) the compiled regex for one
// patternProperties key.
func (s *Schema) patternPropertyRegexp(pattern string) (*regexp.Regexp, error) {
	if s.compiledPatterns == nil {
		s.compiledPatterns = make(map[string]*regexp.Regexp)
	}
	if re, ok := s.compiledPatterns[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	s.compiledPatterns[pattern] = re
	return re, nil
}

// MarshalJSON implements json.Marshaler. It handles boolean schemas and the
// const field manually, and merges Extra keys back in with deterministic key
// ordering, mirroring the teacher's approach to the same problem.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s.Boolean != nil {
		return json.Marshal(s.Boolean, json.Deterministic(true))
	}

	type Alias Schema
	alias := (*Alias)(s)

	data, err := json.Marshal(alias, json.Deterministic(true))
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	if s.Const != nil {
		result["const"] = s.Const.Value
	}

	maps.Copy(result, s.Extra)

	return json.Marshal(result, json.Deterministic(true))
}

// MarshalJSONTo implements json.MarshalerTo for JSON v2 with option support.
func (s *Schema) MarshalJSONTo(enc *jsontext.Encoder, opts json.Options) error {
	opts = json.JoinOptions(opts, json.Deterministic(true))

	if s.Boolean != nil {
		return json.MarshalEncode(enc, s.Boolean, opts)
	}

	data, err := s.MarshalJSON()
	if err != nil {
		return err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	return json.MarshalEncode(enc, result, opts)
}

// UnmarshalJSON implements json.Unmarshaler, including the draft-7 items[]
// tuple-array normalization (items array → PrefixItems, additionalItems →
// Items) and definitions → $defs backward compatibility (§C of SPEC_FULL).
func (s *Schema) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		s.Boolean = &b
		return nil
	}

	type Alias Schema
	aux := &struct {
		Items           jsontext.Value `json:"items,omitempty"`
		AdditionalItems *Schema        `json:"additionalItems,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(aux.Items) > 0 {
		trimmed := bytes.TrimSpace(aux.Items)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(aux.Items, &s.PrefixItems); err != nil {
				return err
			}
			if aux.AdditionalItems != nil {
				s.Items = aux.AdditionalItems
			}
		} else {
			if err := json.Unmarshal(aux.Items, &s.Items); err != nil {
				return err
			}
		}
	}

	var raw map[string]jsontext.Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if defsData, ok := raw["definitions"]; ok && s.Defs == nil {
		var defs map[string]*Schema
		if err := json.Unmarshal(defsData, &defs); err != nil {
			return err
		}
		s.Defs = defs
	}

	if constData, ok := raw["const"]; ok {
		if s.Const == nil {
			s.Const = &ConstValue{}
		}
		if err := s.Const.UnmarshalJSON(constData); err != nil {
			return err
		}
	}

	return s.collectExtraFields(data)
}

func (s *Schema) collectExtraFields(raw []byte) error {
	var allFields map[string]any
	if err := json.Unmarshal(raw, &allFields); err != nil {
		return err
	}
	for key := range knownSchemaFields {
		delete(allFields, key)
	}
	if len(allFields) > 0 {
		s.Extra = allFields
	}
	return nil
}

// SchemaMap is a map of string keys to *Schema values, used for properties
// and patternProperties.
type SchemaMap map[string]*Schema

func (sm SchemaMap) MarshalJSON() ([]byte, error) {
	m := make(map[string]*Schema)
	maps.Copy(m, sm)
	return json.Marshal(m, json.Deterministic(true))
}

func (sm *SchemaMap) MarshalJSONTo(enc *jsontext.Encoder, opts json.Options) error {
	opts = json.JoinOptions(opts, json.Deterministic(true))
	if sm == nil {
		return json.MarshalEncode(enc, nil, opts)
	}
	m := make(map[string]*Schema)
	maps.Copy(m, *sm)
	return json.MarshalEncode(enc, m, opts)
}

func (sm *SchemaMap) UnmarshalJSON(data []byte) error {
	m := make(map[string]*Schema)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*sm = SchemaMap(m)
	return nil
}

// SchemaType holds one or more JSON Schema primitive type names.
type SchemaType []string

func (st SchemaType) MarshalJSON() ([]byte, error) {
	if len(st) == 1 {
		return json.Marshal(st[0])
	}
	return json.Marshal([]string(st))
}

func (st *SchemaType) UnmarshalJSON(data []byte) error {
	var singleType string
	if err := json.Unmarshal(data, &singleType); err == nil {
		*st = SchemaType{singleType}
		return nil
	}

	var multiType []string
	if err := json.Unmarshal(data, &multiType); err == nil {
		*st = SchemaType(multiType)
		return nil
	}

	return ErrInvalidJSONSchemaType
}

// First returns the first declared type, or "" if none is declared. Per
// §6.1, when type is an array the first element wins for resolution (§4.5
// step 7 falls back to value-kind inference only when type is absent).
func (st SchemaType) First() string {
	if len(st) == 0 {
		return ""
	}
	return st[0]
}

// ConstValue represents a JSON Schema "const" keyword value, distinguishing
// "not declared" from "declared as null".
type ConstValue struct {
	Value any
	IsSet bool
}

func (cv *ConstValue) UnmarshalJSON(data []byte) error {
	if cv == nil {
		return ErrNilConstValue
	}
	cv.IsSet = true
	if string(data) == "null" {
		cv.Value = nil
		return nil
	}
	return json.Unmarshal(data, &cv.Value)
}

func (cv ConstValue) MarshalJSON() ([]byte, error) {
	if cv.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(cv.Value)
}
