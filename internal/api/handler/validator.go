package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tagMessages renders a failed tag. The first verb is the field name, the
// second the tag parameter when the template uses one.
var tagMessages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email",
	"url":      "%s must be a valid URL",
	"numeric":  "%s must contain only digits",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be at least %s",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
	"len":      "%s must be exactly %s",
	"oneof":    "%s must be one of: %s",
	"ne":       "%s must not be %s",
}

// stringSuffix is appended to length rules on string fields.
var stringSuffix = map[string]string{
	"min": " characters long",
	"max": " characters long",
	"len": " characters long",
}

type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns the request validator for echo.Echo.Validator. Field
// names in messages follow the json tags.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate joins every failed rule of i into one message.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, len(ve))
	for n, fe := range ve {
		msgs[n] = describe(fe)
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	tmpl, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed validation (%s)", fe.Field(), fe.Tag())
	}
	if fe.Kind() == reflect.String {
		tmpl += stringSuffix[fe.Tag()]
	} else if fe.Tag() == "len" {
		tmpl = "%s must have exactly %s items"
	}
	if strings.Count(tmpl, "%s") == 1 {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
}
