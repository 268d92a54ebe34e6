package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator.
// Field names in errors follow the binding tag (form, query, param, json)
// so they match what the caller sent.
type CustomValidator struct {
	v *validator.Validate
}

// New creates a validator with the call-assistant rules registered
func New() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(bindingName)
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("phone", validPhone)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// Fields flattens validation errors into field -> failed rule.
// Returns nil when err is not a validation error.
func Fields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fe.Param())
		}
		out[fe.Field()] = rule
	}
	return out
}

func bindingName(f reflect.StructField) string {
	for _, tag := range []string{"form", "query", "param", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// validPhone accepts anything carrying at least one digit; Normalize does the rest
func validPhone(fl validator.FieldLevel) bool {
	return strings.ContainsAny(fl.Field().String(), "0123456789")
}
