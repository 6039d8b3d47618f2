// Package validation wraps go-playground/validator with English
// translations so request handlers get human-readable messages.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates request payloads against their struct tags.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator with English field-error translations. Field names
// in messages come from the json tag, not the Go field name.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	translator, ok := uni.GetTranslator("en")
	if !ok {
		return nil, errors.New("failed to get english translator")
	}

	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	return &Validator{validate: validate, translator: translator}, nil
}

// Struct validates v and returns a single translated message describing the
// first failure, or "" when v is valid.
func (v *Validator) Struct(value any) string {
	err := v.validate.Struct(value)
	if err == nil {
		return ""
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return fieldErrors[0].Translate(v.translator)
	}

	return "invalid request body"
}
