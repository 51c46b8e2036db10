package jsonschema

import "github.com/kaptinlin/go-i18n"

// Validator is the external collaborator (§6.3): the runtime treats
// validation as an opaque, pure, side-effect-free function. Two concrete
// adapters around real third-party validators live under adapters/ —
// adapters/kaptinlin wraps github.com/kaptinlin/jsonschema and
// adapters/santhosh wraps github.com/santhosh-tekuri/jsonschema/v5 — proving
// the boundary is genuinely swappable.
type Validator interface {
	Validate(req ValidationRequest) ValidationResult
}

// ValidationRequest is the input to a single validation call.
type ValidationRequest struct {
	Schema           *Schema
	Instance         any
	InstanceLocation string
	KeywordLocation  string
}

// ValidationResult is the validator's verdict for one request.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
	Error  string
}

// ValidationError describes one failed constraint. Code and Params, when
// set, identify a locales/*.json message key and its substitution
// variables, exactly as the teacher's result.go EvaluationError does for
// EvaluationResult; adapters that can't supply a Code still populate Error
// with a plain message.
type ValidationError struct {
	Error            string
	Code             string
	Params           map[string]any
	InstanceLocation string
	KeywordLocation  string
}

// Localize returns the message localized via localizer when Code is set,
// falling back to the plain Error string otherwise.
func (e *ValidationError) Localize(localizer *i18n.Localizer) string {
	if e.Code != "" && localizer != nil {
		return localizer.Get(e.Code, i18n.Vars(e.Params))
	}
	return e.Error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(req ValidationRequest) ValidationResult

func (f ValidatorFunc) Validate(req ValidationRequest) ValidationResult {
	return f(req)
}
