package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const validationFailed = "Validation failed."

// FromBinding converts a gin binding error. Validator failures keep the
// per-field detail; anything else (bad JSON, wrong types) is a plain 400.
func FromBinding(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return New(http.StatusBadRequest, "Invalid request body.", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return &Error{
		Status:  http.StatusBadRequest,
		Message: validationFailed,
		Fields:  fields,
		Err:     err,
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required."
	case "email":
		return field + " must be a valid email address."
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters long.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters long.", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", field, fe.Param())
	case "url":
		return field + " must be a valid URL."
	case "jwt":
		return "Invalid " + field + "."
	case "isbn10":
		return field + " must be a valid ISBN-10 number."
	case "isbn13":
		return field + " must be a valid ISBN-13 number."
	case "iso8601":
		return field + " must be a valid date."
	default:
		return fmt.Sprintf("%s failed the %s check.", field, fe.Tag())
	}
}
