package services

import (
	"errors"
	"reflect"
	"strings"
	"topup/internal/types"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks request against its `validate` tags. Any violation is
// reported as a validation error carrying message, which is the text the
// caller shows for that request.
func Validate(request any, message string) error {
	err := validate.Struct(request)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return types.Internal("invalid validation target", err)
	}
	return types.Validation(message)
}

// FailedFields lists the json names of the fields request fails on.
func FailedFields(request any) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(validate.Struct(request), &fieldErrs) {
		return nil
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
