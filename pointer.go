package jsonschema

import (
	"strconv"
	"strings"
)

// Pointer utilities (C1). Pure functions over decoded `any` trees (maps with
// string keys, slices, scalars) per RFC 6901. This operates on in-memory Go
// values, not raw JSON bytes — the raw-bytes variant lives in rawjson.go on
// top of gjson/sjson and is a convenience layered over these, not a
// replacement for them.

// ParsePointer splits a JSON Pointer into its unescaped tokens. The empty
// string and "#" both denote the root and parse to an empty token slice.
func ParsePointer(ptr string) []string {
	if ptr == "" || ptr == "#" {
		return nil
	}
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	rawTokens := strings.Split(ptr, "/")
	tokens := make([]string, len(rawTokens))
	for i, t := range rawTokens {
		tokens[i] = unescapeToken(t)
	}
	return tokens
}

// JoinPointer appends a single (unescaped) token to a pointer.
func JoinPointer(ptr string, token string) string {
	return ptr + "/" + escapeToken(token)
}

// FormatPointer builds a pointer string from a sequence of unescaped tokens.
func FormatPointer(tokens ...string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(escapeToken(t))
	}
	return b.String()
}

func escapeToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return token
}

func unescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

// NormalizePointer normalizes "#" to the empty string, leaving any other
// pointer untouched. Used at every external API boundary (§4.8 / §6.2).
func NormalizePointer(ptr string) string {
	if ptr == "#" {
		return ""
	}
	return ptr
}

// ParentPointer returns the pointer to ptr's containing value, and the last
// token (the key/index within that parent). The root's parent is itself
// ("", "").
func ParentPointer(ptr string) (parent string, lastToken string) {
	tokens := ParsePointer(ptr)
	if len(tokens) == 0 {
		return "", ""
	}
	return FormatPointer(tokens[:len(tokens)-1]...), tokens[len(tokens)-1]
}

// isIndexToken reports whether tok looks like an array index.
func isIndexToken(tok string) bool {
	if tok == "" {
		return false
	}
	_, err := strconv.Atoi(tok)
	return err == nil
}

// GetPointer reads the value at ptr within instance. Returns (nil, false) if
// the path does not resolve.
func GetPointer(instance any, ptr string) (any, bool) {
	tokens := ParsePointer(ptr)
	cur := instance
	for _, tok := range tokens {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[tok]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// SetPointer writes value at ptr within *instance, creating intermediate
// containers as needed. The kind of intermediate container created at each
// level is determined by the *next* token: a numeric token creates an array,
// any other token creates an object (§4.1). Returns false if an existing
// intermediate value is present and of the wrong kind.
func SetPointer(instance *any, ptr string, value any) bool {
	tokens := ParsePointer(ptr)
	if len(tokens) == 0 {
		*instance = value
		return true
	}
	newRoot, ok := setAt(*instance, tokens, value)
	if !ok {
		return false
	}
	*instance = newRoot
	return true
}

// setAt recursively writes value at the path described by tokens within
// container, returning the (possibly new, possibly same) container.
func setAt(container any, tokens []string, value any) (any, bool) {
	tok := tokens[0]
	rest := tokens[1:]

	if isIndexToken(tok) {
		arr, ok := container.([]any)
		if !ok {
			if container == nil {
				arr = []any{}
			} else {
				return nil, false
			}
		}
		idx, _ := strconv.Atoi(tok)
		if idx < 0 {
			return nil, false
		}
		for idx >= len(arr) {
			arr = append(arr, nil)
		}
		if len(rest) == 0 {
			arr[idx] = value
			return arr, true
		}
		child, ok := setAt(arr[idx], rest, value)
		if !ok {
			return nil, false
		}
		arr[idx] = child
		return arr, true
	}

	obj, ok := container.(map[string]any)
	if !ok {
		if container == nil {
			obj = map[string]any{}
		} else {
			return nil, false
		}
	}
	if len(rest) == 0 {
		obj[tok] = value
		return obj, true
	}
	child, ok := setAt(obj[tok], rest, value)
	if !ok {
		return nil, false
	}
	obj[tok] = child
	return obj, true
}

// RemovePointer deletes the value at ptr within *instance. For an array
// element this splices the slice (shifting subsequent indices down); for an
// object property it deletes the key. Returns false if ptr is the root or
// does not resolve.
func RemovePointer(instance *any, ptr string) bool {
	tokens := ParsePointer(ptr)
	if len(tokens) == 0 {
		return false
	}
	parentPtr := FormatPointer(tokens[:len(tokens)-1]...)
	last := tokens[len(tokens)-1]

	parent, ok := GetPointer(*instance, parentPtr)
	if !ok {
		return false
	}

	switch v := parent.(type) {
	case map[string]any:
		if _, present := v[last]; !present {
			return false
		}
		delete(v, last)
		return true
	case []any:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(v) {
			return false
		}
		newSlice := append(append([]any{}, v[:idx]...), v[idx+1:]...)
		return SetPointer(instance, parentPtr, newSlice)
	default:
		return false
	}
}
