package jsonschema

import (
	"testing"

	"github.com/kaptinlin/go-i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetI18n_LoadsEmbeddedLocales(t *testing.T) {
	bundle, err := GetI18n()
	require.NoError(t, err)
	require.NotNil(t, bundle)

	en := bundle.NewLocalizer("en")
	msg := en.Get("type", i18n.Vars(map[string]any{"field": "value", "type": "string"}))
	assert.Contains(t, msg, "string")
}

func TestValidationError_LocalizeUsesCode(t *testing.T) {
	bundle, err := GetI18n()
	require.NoError(t, err)
	localizer := bundle.NewLocalizer("en")

	verr := &ValidationError{
		Error:  "must be string",
		Code:   "type",
		Params: map[string]any{"field": "value", "type": "string"},
	}
	assert.Contains(t, verr.Localize(localizer), "string")
}

func TestValidationError_LocalizeFallsBackWithoutCode(t *testing.T) {
	verr := &ValidationError{Error: "plain message"}
	assert.Equal(t, "plain message", verr.Localize(nil))
}
