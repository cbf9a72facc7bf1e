package model

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
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Passwords may not contain the word "password" in any case.
	_ = v.RegisterValidation("nopassword", func(fl validator.FieldLevel) bool {
		return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
	})

	return v
}

// validateStruct runs tag validation and converts the first failure into a
// validation error naming the offending field.
func validateStruct(s any) error {
	return translate("", validate.Struct(s))
}

// validateVar validates a single value against tag rules on behalf of field.
func validateVar(field string, value any, tag string) error {
	return translate(field, validate.Var(value, tag))
}

func translate(field string, err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewInternalError("failed to validate input", err)
	}

	fe := verrs[0]
	name := field
	if name == "" {
		name = fe.Field()
	}

	return NewValidationError(fmt.Sprintf("%s %s", name, ruleMessage(fe)))
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte":
		return "must be a positive number"
	case "nopassword":
		return `cannot contain "password"`
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}
