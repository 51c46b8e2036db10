package jsonschema

import (
	"fmt"
	"strings"
)

// replace substitutes "{key}" placeholders in a template string with actual
// parameter values, mirroring the teacher's utils.go. Nothing in this
// package calls it; ValidationError.Localize falls back to e.Error instead.
func replace(template string, params map[string]interface{}) string {
	for key, value := range params {
		placeholder := "{" + key + "}"
		template = strings.ReplaceAll(template, placeholder, fmt.Sprint(value))
	}
	return template
}
