// Package santhosh adapts github.com/santhosh-tekuri/jsonschema/v5 as a
// jsonschema.Validator, proving the runtime's validator boundary (§6.3) is
// genuinely swappable for a validator from a different author entirely
// (pulled from chanced-openapi's dependency graph, SPEC_FULL Domain Stack).
package santhosh

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	upstream "github.com/santhosh-tekuri/jsonschema/v5"

	reactive "github.com/kaptinlin/reactive-jsonschema"
)

// Adapter compiles each distinct schema fragment into the upstream
// compiler's resource registry on first use, keyed by the fragment's
// content hash so identical schemas are compiled only once.
type Adapter struct {
	mu       sync.Mutex
	compiler *upstream.Compiler
	cached   map[string]*upstream.Schema
}

// New constructs an Adapter around a fresh upstream compiler.
func New() *Adapter {
	return &Adapter{
		compiler: upstream.NewCompiler(),
		cached:   map[string]*upstream.Schema{},
	}
}

var _ reactive.Validator = (*Adapter)(nil)

// Validate implements reactive.Validator.
func (a *Adapter) Validate(req reactive.ValidationRequest) reactive.ValidationResult {
	compiled, err := a.compile(req.Schema)
	if err != nil {
		return reactive.ValidationResult{Valid: false, Error: err.Error()}
	}

	if err := compiled.Validate(req.Instance); err != nil {
		if ve, ok := err.(*upstream.ValidationError); ok {
			return reactive.ValidationResult{
				Valid:  false,
				Errors: flatten(ve, req.InstanceLocation),
			}
		}
		return reactive.ValidationResult{Valid: false, Error: err.Error()}
	}
	return reactive.ValidationResult{Valid: true}
}

func (a *Adapter) compile(schema *reactive.Schema) (*upstream.Schema, error) {
	raw, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(raw)
	key := hex.EncodeToString(sum[:])

	a.mu.Lock()
	defer a.mu.Unlock()

	if s, ok := a.cached[key]; ok {
		return s, nil
	}

	uri := "mem://" + key
	if err := a.compiler.AddResource(uri, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	compiled, err := a.compiler.Compile(uri)
	if err != nil {
		return nil, err
	}
	a.cached[key] = compiled
	return compiled, nil
}

// flatten walks a santhosh ValidationError's Causes tree into the flat
// []ValidationError shape the runtime expects, prefixing each cause's
// instance location onto the request's own (§6.3: the adapter owns the
// translation between validator-specific and runtime error shapes).
func flatten(ve *upstream.ValidationError, base string) []reactive.ValidationError {
	if len(ve.Causes) == 0 {
		return []reactive.ValidationError{{
			Error:            ve.Message,
			InstanceLocation: base + ve.InstanceLocation,
			KeywordLocation:  ve.KeywordLocation,
		}}
	}
	var out []reactive.ValidationError
	for _, cause := range ve.Causes {
		out = append(out, flatten(cause, base)...)
	}
	return out
}
