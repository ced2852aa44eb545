package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/diarkit/diarkit/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}

// fieldName prefers the command line flag, then the mapstructure key.
func fieldName(fld reflect.StructField) string {
	if name := fld.Tag.Get("flag"); name != "" {
		return name
	}
	name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
	if name == "-" || name == "" {
		return toSnakeCase(fld.Name)
	}
	return name
}

// siblingName returns the display name of the field that a cross-field tag
// such as gtefield refers to, or the raw parameter when it cannot be found.
func siblingName(s any, e validator.FieldError) string {
	// StructNamespace is "Type.Outer.Field"; walk to the struct holding Field.
	path := strings.Split(e.StructNamespace(), ".")
	if len(path) < 2 {
		return e.Param()
	}
	t := reflect.TypeOf(s)
	for _, name := range path[1 : len(path)-1] {
		t = structType(t)
		if t == nil {
			return e.Param()
		}
		fld, ok := t.FieldByName(name)
		if !ok {
			return e.Param()
		}
		t = fld.Type
	}
	if t = structType(t); t != nil {
		if fld, ok := t.FieldByName(e.Param()); ok {
			return fieldName(fld)
		}
	}
	return e.Param()
}

func structType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// Validate validates a struct using struct tags.
// Uses tags like `validate:"required,gte=1"`.
func Validate(s any) error {
	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))

	for _, e := range validationErrors {
		fieldName := e.Field()
		message := formatValidationError(e, siblingName(s, e))
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fieldName,
			Message: message,
		})
		messages = append(messages, fieldName+": "+message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": fieldErrors,
	}

	return appErr
}

// formatValidationError creates a human-readable error message.
// sibling names the other field of a cross-field tag.
func formatValidationError(e validator.FieldError, sibling string) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gtefield":
		return "must not be lower than " + sibling
	case "oneof":
		return "must be one of: " + e.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
