package jsonschema

import (
	"github.com/go-json-experiment/json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Raw-JSON convenience layer, layered on top of the in-memory pointer
// utilities (C1) rather than replacing them: every mutation the runtime
// performs internally still goes through GetPointer/SetPointer against the
// decoded `any` tree. This file exists for callers holding a raw JSON
// document (a request body, a file on disk) who want to read or write one
// value at a pointer without a full unmarshal/remarshal round trip.

// GetValueJSON reads the raw JSON document at ptr and decodes it into v.
// path uses RFC 6901 syntax; it is translated to gjson's dotted path
// internally.
func GetValueJSON(document []byte, ptr string, v any) bool {
	res := gjson.GetBytes(document, pointerToGJSONPath(ptr))
	if !res.Exists() {
		return false
	}
	return json.Unmarshal([]byte(res.Raw), v) == nil
}

// SetValueJSON writes v, marshaled to JSON, at ptr within document and
// returns the updated document. The original document is left untouched.
func SetValueJSON(document []byte, ptr string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(document, pointerToGJSONPath(ptr), raw)
}

// GetValueJSON reads path from rt's current instance value re-encoded as
// JSON, decoding the touched value (not the whole instance) into v.
func (rt *Runtime) GetValueJSON(path string, v any) bool {
	value, ok := rt.GetValue(path)
	if !ok {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// SetValueJSON decodes raw JSON bytes and writes the result at path via
// SetValue, reconciling the affected subtree exactly as SetValue does.
func (rt *Runtime) SetValueJSON(path string, raw []byte) bool {
	var v any
	if json.Unmarshal(raw, &v) != nil {
		return false
	}
	return rt.SetValue(path, v)
}

// pointerToGJSONPath converts an RFC 6901 pointer to gjson/sjson's
// dot-separated path syntax.
func pointerToGJSONPath(ptr string) string {
	tokens := ParsePointer(ptr)
	if len(tokens) == 0 {
		return "@this"
	}
	path := ""
	for i, t := range tokens {
		if i > 0 {
			path += "."
		}
		path += gjsonEscapeToken(t)
	}
	return path
}

func gjsonEscapeToken(token string) string {
	out := make([]byte, 0, len(token))
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c == '.' || c == '*' || c == '?' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
