package jsonschema

// stubValidator is a minimal, self-contained Validator used across this
// package's tests: just enough of draft 2020-12 (type/required/enum/const/
// minLength/maxLength/minimum/maximum) to exercise the reconciler and
// resolver without pulling in a real third-party validator dependency into
// test-only code.
type stubValidator struct{}

func (stubValidator) Validate(req ValidationRequest) ValidationResult {
	errs := validateAgainst(req.Schema, req.Instance, req.InstanceLocation)
	if len(errs) == 0 {
		return ValidationResult{Valid: true}
	}
	return ValidationResult{Valid: false, Errors: errs}
}

func validateAgainst(schema *Schema, value any, loc string) []ValidationError {
	if schema == nil {
		return nil
	}
	if schema.Boolean != nil {
		if !*schema.Boolean {
			return []ValidationError{{Error: "schema is false", InstanceLocation: loc}}
		}
		return nil
	}

	var errs []ValidationError

	if declared := schema.Type.First(); declared != "" && value != nil {
		actual := inferType(value)
		if !typesCompatible(declared, actual) {
			errs = append(errs, ValidationError{
				Error: "must be " + declared, Code: "type",
				Params: map[string]any{"type": declared}, InstanceLocation: loc,
			})
		}
	}

	if len(schema.Enum) > 0 {
		found := false
		for _, e := range schema.Enum {
			if e == value {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, ValidationError{Error: "must be one of enum", Code: "enum", InstanceLocation: loc})
		}
	}

	if schema.Const != nil && schema.Const.IsSet {
		if value != schema.Const.Value {
			errs = append(errs, ValidationError{Error: "must equal const", Code: "const", InstanceLocation: loc})
		}
	}

	if obj, ok := value.(map[string]any); ok {
		for _, req := range schema.Required {
			if _, present := obj[req]; !present {
				errs = append(errs, ValidationError{
					Error: "missing required property " + req, Code: "required",
					Params: map[string]any{"field": req}, InstanceLocation: loc,
				})
			}
		}
		if schema.MinProperties != nil && float64(len(obj)) < *schema.MinProperties {
			errs = append(errs, ValidationError{Error: "too few properties", Code: "minProperties", InstanceLocation: loc})
		}
		if schema.MaxProperties != nil && float64(len(obj)) > *schema.MaxProperties {
			errs = append(errs, ValidationError{Error: "too many properties", Code: "maxProperties", InstanceLocation: loc})
		}
		if schema.Properties != nil {
			for key, propSchema := range *schema.Properties {
				childValue, present := obj[key]
				if !present {
					continue
				}
				errs = append(errs, validateAgainst(propSchema, childValue, JoinPointer(loc, key))...)
			}
		}
	}

	if arr, ok := value.([]any); ok {
		if schema.MinItems != nil && float64(len(arr)) < *schema.MinItems {
			errs = append(errs, ValidationError{Error: "too few items", Code: "minItems", InstanceLocation: loc})
		}
		if schema.MaxItems != nil && float64(len(arr)) > *schema.MaxItems {
			errs = append(errs, ValidationError{Error: "too many items", Code: "maxItems", InstanceLocation: loc})
		}
	}

	if s, ok := value.(string); ok {
		if schema.MinLength != nil && float64(len(s)) < *schema.MinLength {
			errs = append(errs, ValidationError{Error: "too short", Code: "minLength", InstanceLocation: loc})
		}
		if schema.MaxLength != nil && float64(len(s)) > *schema.MaxLength {
			errs = append(errs, ValidationError{Error: "too long", Code: "maxLength", InstanceLocation: loc})
		}
	}

	if n, ok := asFloat(value); ok {
		if schema.Minimum != nil {
			if min, ok := ratToFloat(schema.Minimum); ok && n < min {
				errs = append(errs, ValidationError{Error: "below minimum", Code: "minimum", InstanceLocation: loc})
			}
		}
		if schema.Maximum != nil {
			if max, ok := ratToFloat(schema.Maximum); ok && n > max {
				errs = append(errs, ValidationError{Error: "above maximum", Code: "maximum", InstanceLocation: loc})
			}
		}
	}

	return errs
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func ratToFloat(r *Rat) (float64, bool) {
	if r == nil || r.Rat == nil {
		return 0, false
	}
	f, _ := r.Rat.Float64()
	return f, true
}

func mustCompile(t testingT, jsonSchema string) *Schema {
	t.Helper()
	schema, err := newSchema([]byte(jsonSchema))
	if err != nil {
		t.Fatalf("newSchema: %v", err)
	}
	deref, err := Dereference(schema)
	if err != nil {
		t.Fatalf("Dereference: %v", err)
	}
	return deref
}

// testingT is the minimal subset of *testing.T mustCompile needs, so this
// file stays importable without dragging "testing" into non-test builds
// (it is itself a _test.go file, but keeping the surface narrow mirrors the
// teacher's habit of small test-helper interfaces).
type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}
