package jsonschema

// Fluent schema-construction DSL for building schemas as Go literals
// instead of JSON strings. Grounded on the teacher's constructor.go; the compiler-scope
// wiring (initializeSchema) is dropped since this runtime's Schema carries
// no URI/anchor state to initialize.

// Property represents a Schema property definition.
type Property struct {
	Name   string
	Schema *Schema
}

// Prop creates a property definition.
func Prop(name string, schema *Schema) Property {
	return Property{Name: name, Schema: schema}
}

// Object creates an object Schema with properties and keywords.
func Object(items ...interface{}) *Schema {
	schema := &Schema{Type: SchemaType{"object"}}

	var properties []Property
	var keywords []Keyword

	for _, item := range items {
		switch v := item.(type) {
		case Property:
			properties = append(properties, v)
		case Keyword:
			keywords = append(keywords, v)
		}
	}

	if len(properties) > 0 {
		props := make(SchemaMap)
		for _, prop := range properties {
			props[prop.Name] = prop.Schema
		}
		schema.Properties = &props
	}

	for _, keyword := range keywords {
		keyword(schema)
	}

	return schema
}

// String creates a string Schema with validation keywords.
func String(keywords ...Keyword) *Schema {
	schema := &Schema{Type: SchemaType{"string"}}
	for _, keyword := range keywords {
		keyword(schema)
	}
	return schema
}

// Integer creates an integer Schema with validation keywords.
func Integer(keywords ...Keyword) *Schema {
	schema := &Schema{Type: SchemaType{"integer"}}
	for _, keyword := range keywords {
		keyword(schema)
	}
	return schema
}

// Number creates a number Schema with validation keywords.
func Number(keywords ...Keyword) *Schema {
	schema := &Schema{Type: SchemaType{"number"}}
	for _, keyword := range keywords {
		keyword(schema)
	}
	return schema
}

// Boolean creates a boolean Schema.
func Boolean(keywords ...Keyword) *Schema {
	schema := &Schema{Type: SchemaType{"boolean"}}
	for _, keyword := range keywords {
		keyword(schema)
	}
	return schema
}

// Null creates a null Schema.
func Null(keywords ...Keyword) *Schema {
	schema := &Schema{Type: SchemaType{"null"}}
	for _, keyword := range keywords {
		keyword(schema)
	}
	return schema
}

// Array creates an array Schema with validation keywords.
func Array(keywords ...Keyword) *Schema {
	schema := &Schema{Type: SchemaType{"array"}}
	for _, keyword := range keywords {
		keyword(schema)
	}
	return schema
}

// Any creates a Schema without type restriction.
func Any(keywords ...Keyword) *Schema {
	schema := &Schema{}
	for _, keyword := range keywords {
		keyword(schema)
	}
	return schema
}

// ConstSchema creates a const Schema.
func ConstSchema(value interface{}) *Schema {
	return &Schema{Const: &ConstValue{Value: value, IsSet: true}}
}

// EnumSchema creates an enum Schema.
func EnumSchema(values ...interface{}) *Schema {
	return &Schema{Enum: values}
}

// OneOfSchema creates a oneOf combination Schema.
func OneOfSchema(schemas ...*Schema) *Schema {
	return &Schema{OneOf: schemas}
}

// AnyOfSchema creates an anyOf combination Schema.
func AnyOfSchema(schemas ...*Schema) *Schema {
	return &Schema{AnyOf: schemas}
}

// AllOfSchema creates an allOf combination Schema.
func AllOfSchema(schemas ...*Schema) *Schema {
	return &Schema{AllOf: schemas}
}

// NotSchema creates a not combination Schema.
func NotSchema(schema *Schema) *Schema {
	return &Schema{Not: schema}
}

// If creates a conditional Schema with if/then/else keywords.
func If(condition *Schema) *ConditionalSchema {
	return &ConditionalSchema{condition: condition}
}

// ConditionalSchema represents a conditional schema under construction.
type ConditionalSchema struct {
	condition *Schema
	then      *Schema
	otherwise *Schema
}

// Then sets the then clause of a conditional schema.
func (cs *ConditionalSchema) Then(then *Schema) *ConditionalSchema {
	cs.then = then
	return cs
}

// Else sets the else clause and finalizes the conditional schema.
func (cs *ConditionalSchema) Else(otherwise *Schema) *Schema {
	cs.otherwise = otherwise
	return cs.ToSchema()
}

// ToSchema converts a conditional schema under construction to a Schema.
func (cs *ConditionalSchema) ToSchema() *Schema {
	return &Schema{
		If:   cs.condition,
		Then: cs.then,
		Else: cs.otherwise,
	}
}

// RefSchema creates a reference Schema using the $ref keyword.
func RefSchema(ref string) *Schema {
	return &Schema{Ref: ref}
}
