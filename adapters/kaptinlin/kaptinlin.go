// Package kaptinlin adapts github.com/kaptinlin/jsonschema as a
// jsonschema.Validator, the natural "same author, companion reactive layer
// on top of the existing validator" pairing (SPEC_FULL Domain Stack).
package kaptinlin

import (
	"sync"

	upstream "github.com/kaptinlin/jsonschema"
	reactive "github.com/kaptinlin/reactive-jsonschema"
)

// Adapter wraps an upstream Compiler, compiling (and caching) each distinct
// schema fragment the runtime asks it to validate against. Schemas are
// re-marshaled through reactive.Schema.MarshalJSON, since the upstream
// compiler only accepts raw JSON bytes.
type Adapter struct {
	compiler *upstream.Compiler

	mu     sync.Mutex
	cached map[*reactive.Schema]*upstream.Schema
}

// New constructs an Adapter around a fresh upstream compiler.
func New() *Adapter {
	return &Adapter{
		compiler: upstream.NewCompiler(),
		cached:   map[*reactive.Schema]*upstream.Schema{},
	}
}

var _ reactive.Validator = (*Adapter)(nil)

// Validate implements reactive.Validator by compiling req.Schema through the
// upstream compiler (once per distinct *reactive.Schema pointer, per the
// teacher's own URI-keyed compile cache) and running the upstream
// validator's Validate against req.Instance.
func (a *Adapter) Validate(req reactive.ValidationRequest) reactive.ValidationResult {
	compiled, err := a.compile(req.Schema)
	if err != nil {
		return reactive.ValidationResult{Valid: false, Error: err.Error()}
	}

	result := compiled.Validate(req.Instance)
	if result.IsValid() {
		return reactive.ValidationResult{Valid: true}
	}

	errs := make([]reactive.ValidationError, 0, len(result.Errors))
	for field, evalErr := range result.Errors {
		errs = append(errs, reactive.ValidationError{
			Error:            evalErr.Error(),
			Code:             evalErr.Code,
			Params:           evalErr.Params,
			InstanceLocation: joinInstanceLocation(req.InstanceLocation, field),
			KeywordLocation:  req.KeywordLocation,
		})
	}
	return reactive.ValidationResult{Valid: false, Errors: errs}
}

func (a *Adapter) compile(schema *reactive.Schema) (*upstream.Schema, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.cached[schema]; ok {
		return s, nil
	}

	raw, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	compiled, err := a.compiler.Compile(raw)
	if err != nil {
		return nil, err
	}
	a.cached[schema] = compiled
	return compiled, nil
}

func joinInstanceLocation(base, field string) string {
	if field == "" {
		return base
	}
	return base + "/" + field
}
