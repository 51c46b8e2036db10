package jsonschema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Default generator (C3, §4.3). Pure: given a schema fragment and an
// optional existing value, produces a default value under one of three
// strategies. Dynamic function-string defaults (e.g. "now()") are resolved
// via the RegisterDefaultFunc hook below, a purely additive supplement
// inert unless a schema's "default" is written in functionName(args) form
// (SPEC_FULL §C).

// FunctionCall is a parsed "name(args...)" default-value string.
type FunctionCall struct {
	Name string
	Args []any
}

// parseFunctionCall parses input as a "name(args...)" call. A nil
// *FunctionCall with a nil error means input is not in call form at all
// (an ordinary literal default); a non-nil error means it looks like a call
// but its argument list is malformed.
func parseFunctionCall(input string) (*FunctionCall, error) {
	if len(input) < 3 || !strings.HasSuffix(input, ")") {
		return nil, nil
	}

	parenIndex := strings.IndexByte(input, '(')
	if parenIndex <= 0 {
		return nil, nil
	}

	name := strings.TrimSpace(input[:parenIndex])
	argsStr := strings.TrimSpace(input[parenIndex+1 : len(input)-1])

	if strings.Count(argsStr, "(") != strings.Count(argsStr, ")") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDefaultFunctionCall, input)
	}

	var args []any
	if argsStr != "" {
		args = parseArgs(argsStr)
	}

	return &FunctionCall{Name: name, Args: args}, nil
}

// parseArgs splits a call's argument string on "," and converts each part
// to an int64, float64, or string, in that preference order.
func parseArgs(argsStr string) []any {
	parts := strings.Split(argsStr, ",")
	args := make([]any, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if i, err := strconv.ParseInt(part, 10, 64); err == nil {
			args = append(args, i)
			continue
		}

		if f, err := strconv.ParseFloat(part, 64); err == nil {
			args = append(args, f)
			continue
		}

		args = append(args, part)
	}

	return args
}

// DefaultNowFunc generates the current timestamp, formatted per args[0] (a
// time.Format layout string) or time.RFC3339 if no argument is given.
// Callers register it under "now" by default (newDefaultFuncRegistry); it
// is otherwise an ordinary DefaultFunc.
func DefaultNowFunc(args ...any) (any, error) {
	format := time.RFC3339
	if len(args) > 0 {
		if f, ok := args[0].(string); ok {
			format = f
		}
	}
	return time.Now().Format(format), nil
}

// DefaultStrategy controls how aggressively defaults are synthesized.
type DefaultStrategy string

const (
	// StrategyExplicit recurses only into required properties / prefixItems
	// positions; a visited leaf with no const/default still synthesizes its
	// typed zero value (§8 S4/S6), but an object/array with nothing to
	// recurse into is left absent rather than force-materialized empty.
	StrategyExplicit DefaultStrategy = "explicit"
	// StrategyAlways additionally recurses into every declared property,
	// required or not, and force-materializes an otherwise-empty
	// object/array container (rather than leaving it absent).
	StrategyAlways DefaultStrategy = "always"
	// StrategyNever never synthesizes a value: a missing value stays absent,
	// and an existing object/array is returned with its missing keys or
	// positions left unfilled.
	StrategyNever DefaultStrategy = "never"
)

// DefaultFunc is a dynamically-registered default-value generator, invoked
// when a schema's `default` is the literal string "name(args...)".
type DefaultFunc func(args ...any) (any, error)

// defaultFuncRegistry holds RegisterDefaultFunc registrations, mirroring the
// teacher's Compiler-scoped registry but scoped to one Runtime: NewRuntime
// creates a fresh registry for each runtime (§SPEC_FULL D).
type defaultFuncRegistry struct {
	funcs map[string]DefaultFunc
}

func newDefaultFuncRegistry() *defaultFuncRegistry {
	return &defaultFuncRegistry{funcs: map[string]DefaultFunc{
		"now": DefaultNowFunc,
	}}
}

// RegisterDefaultFunc registers a named dynamic default function on r.
func (r *defaultFuncRegistry) RegisterDefaultFunc(name string, fn DefaultFunc) {
	if r.funcs == nil {
		r.funcs = map[string]DefaultFunc{}
	}
	r.funcs[name] = fn
}

func (r *defaultFuncRegistry) resolve(raw string) (any, bool, error) {
	call, err := parseFunctionCall(raw)
	if err != nil {
		return nil, true, err
	}
	if call == nil {
		return nil, false, nil
	}
	fn, ok := r.funcs[call.Name]
	if !ok {
		return nil, false, nil
	}
	v, err := fn(call.Args...)
	if err != nil {
		return nil, true, err
	}
	return v, true, nil
}

// resolveDefaultValue returns schema.Default, resolving a function-call
// string form through registry if applicable.
func resolveDefaultValue(schema *Schema, registry *defaultFuncRegistry) any {
	if schema.Default == nil {
		return nil
	}
	if s, ok := schema.Default.(string); ok && registry != nil {
		if v, matched, err := registry.resolve(s); matched && err == nil {
			return v
		}
	}
	return schema.Default
}

// computeDefault implements §4.3: produce a default value for schema under
// strategy, optionally merging into an existing value.
func computeDefault(schema *Schema, existing any, strategy DefaultStrategy, registry *defaultFuncRegistry) any {
	if schema == nil || schema.Boolean != nil {
		return existing
	}

	if existing != nil {
		return mergeDefaultsInto(schema, existing, strategy, registry)
	}

	if strategy == StrategyNever {
		return nil
	}

	if schema.Const != nil && schema.Const.IsSet {
		return schema.Const.Value
	}
	if schema.Default != nil {
		return resolveDefaultValue(schema, registry)
	}

	typ := schema.Type.First()

	switch typ {
	case "object":
		obj := map[string]any{}
		if schema.Properties != nil {
			required := map[string]bool{}
			for _, r := range schema.Required {
				required[r] = true
			}
			for name, propSchema := range *schema.Properties {
				if strategy == StrategyExplicit && !required[name] {
					continue
				}
				if v := computeDefault(propSchema, nil, strategy, registry); v != nil {
					obj[name] = v
				}
			}
		}
		if len(obj) == 0 {
			if strategy == StrategyAlways {
				return obj
			}
			return nil
		}
		return obj
	case "array":
		var arr []any
		for _, item := range schema.PrefixItems {
			v := computeDefault(item, nil, strategy, registry)
			arr = append(arr, v)
		}
		if len(arr) == 0 {
			if strategy == StrategyAlways {
				return []any{}
			}
			return nil
		}
		return arr
	case "string":
		return ""
	case "number", "integer":
		return 0.0
	case "boolean":
		return false
	case "null":
		return nil
	}

	return nil
}

// mergeDefaultsInto fills missing keys/positions of an existing value
// without overwriting present ones; the caller's value always wins on type
// mismatch (§4.3).
func mergeDefaultsInto(schema *Schema, existing any, strategy DefaultStrategy, registry *defaultFuncRegistry) any {
	switch v := existing.(type) {
	case map[string]any:
		if schema.Properties == nil {
			return v
		}
		required := map[string]bool{}
		for _, r := range schema.Required {
			required[r] = true
		}
		for name, propSchema := range *schema.Properties {
			if _, present := v[name]; present {
				continue
			}
			if strategy == StrategyExplicit && !required[name] {
				continue
			}
			if d := computeDefault(propSchema, nil, strategy, registry); d != nil {
				v[name] = d
			}
		}
		return v
	case []any:
		for i, item := range schema.PrefixItems {
			if i >= len(v) {
				if d := computeDefault(item, nil, strategy, registry); d != nil {
					v = append(v, d)
				}
			}
		}
		return v
	default:
		return v
	}
}
