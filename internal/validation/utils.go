package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/books-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Validate returns nil, CustomValidationErrors, validator.ValidationErrors,
// or a domain error the caller is expected to map itself.
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of validation issues that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	parts := make([]string, 0, len(c))
	for _, v := range c {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind(payload) fills path params, query params (GET) and the JSON body.
//  2. payload.Validate() applies the payload rules.
//
// Binding failures and field violations become a 422 *errs.HTTPError.
// Any other error from Validate is returned untouched.
//
// payload must be a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(err)
	}

	if err := payload.Validate(); err != nil {
		if msg, fieldErrors := extractValidationError(err); fieldErrors != nil {
			return errs.NewUnprocessableEntityError(msg, fieldErrors)
		}
		return err
	}

	return nil
}

// bindError converts echo's binder errors without parsing their text.
func bindError(err error) *errs.HTTPError {
	var bindingErr *echo.BindingError
	if errors.As(err, &bindingErr) {
		return errs.NewUnprocessableEntityError("Invalid request", []errs.FieldError{{
			Field: bindingErr.Field,
			Error: fmt.Sprintf("%v", bindingErr.Message),
		}})
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return errs.NewUnprocessableEntityError(fmt.Sprintf("Invalid request: %v", echoErr.Message), nil)
	}

	return errs.NewUnprocessableEntityError("Invalid request", nil)
}

// extractValidationError converts known violation types into field errors.
// It returns nil field errors for anything it does not recognize.
func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, v := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: v.Field,
				Error: v.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", nil
	}

	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		var msg string

		switch fe.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// min/max mean length for strings, value for numbers.
			if fe.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", fe.Param())
			}

		case "max":
			if fe.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fe.Param())
			}

		case "gte":
			msg = fmt.Sprintf("must be greater than or equal to %s", fe.Param())

		case "lte":
			msg = fmt.Sprintf("must be less than or equal to %s", fe.Param())

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fe.Param())

		default:
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, fe.Tag(), fe.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, fe.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
