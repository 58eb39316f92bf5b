package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs struct validation and reports the first failure as a
// Validation error with a readable message.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Validation("Invalid input")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return Validation(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return Validation(fmt.Sprintf("%s must be a valid email address", fe.Field()))
	case "min":
		return Validation(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "max":
		return Validation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	case "alphanumunicode", "excludesall":
		return Validation(fmt.Sprintf("%s contains invalid characters", fe.Field()))
	}
	return Validation(fmt.Sprintf("%s is invalid", fe.Field()))
}
