package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names so messages match what clients sent.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate performs validation on a struct. Failures come back as a
// *ValidationError for the first offending field.
func Validate(s interface{}) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return fieldError(errs[0])
	}
	return err
}

func fieldError(e validator.FieldError) *ValidationError {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return NewValidationError(field, "is required")
	case "oneof":
		return NewValidationError(field, "must be one of [%s]", e.Param())
	case "min", "gte":
		if e.Kind() == reflect.Slice || e.Kind() == reflect.String {
			return NewValidationError(field, "must have at least %s entries", e.Param())
		}
		return NewValidationError(field, "must be at least %s", e.Param())
	case "max", "lte":
		if e.Kind() == reflect.Slice || e.Kind() == reflect.String {
			return NewValidationError(field, "must have at most %s entries", e.Param())
		}
		return NewValidationError(field, "must be at most %s", e.Param())
	case "gt":
		return NewValidationError(field, "must be greater than %s", e.Param())
	case "email":
		return NewValidationError(field, "must be a valid email address")
	case "datetime":
		return NewValidationError(field, "must match the format %s", e.Param())
	default:
		return NewValidationError(field, "failed the %q check", e.Tag())
	}
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			ValidationFailed(c, fieldError(verrs[0]))
			return false
		}
		BadRequest(c, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}
	if err := Validate(obj); err != nil {
		ValidationFailed(c, err)
		return false
	}
	return true
}
