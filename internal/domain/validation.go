package domain

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors is the structured result of validating an entity.
// An empty list means the entity is valid.
type ValidationErrors []ValidationError

// Error joins all field messages.
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for i := range v {
		parts = append(parts, v[i].Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Has reports whether any error was recorded for field.
func (v ValidationErrors) Has(field string) bool {
	return len(v.For(field)) > 0
}

// For returns the messages recorded for field, in order.
func (v ValidationErrors) For(field string) []string {
	var msgs []string
	for _, e := range v {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Merge returns the concatenation of v and other.
func (v ValidationErrors) Merge(other ValidationErrors) ValidationErrors {
	if len(other) == 0 {
		return v
	}
	out := make(ValidationErrors, 0, len(v)+len(other))
	out = append(out, v...)
	return append(out, other...)
}

// validate is shared by all entities; validator.Validate is safe for
// concurrent use once configured.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name so messages line up with the inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// required only rejects the zero value; whitespace-only text is empty too.
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		// ALLOW-PANIC: static registration, only fails on programmer error
		panic(err)
	}

	// PostgreSQL rejects byte sequences that are not UTF-8.
	if err := v.RegisterValidation("utf8", func(fl validator.FieldLevel) bool {
		return utf8.ValidString(fl.Field().String())
	}); err != nil {
		// ALLOW-PANIC: static registration, only fails on programmer error
		panic(err)
	}

	return v
}

// validateStruct runs the struct tags of s and converts the result into
// ValidationErrors. Only the first failing rule per field is reported.
func validateStruct(s any) ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}

	var out ValidationErrors
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), tagMessage(fe))
	}
	return out
}

// tagMessage maps a validator rule to a user facing message.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "utf8":
		return fmt.Sprintf("%s contains invalid characters", fe.Field())
	case "min", "max":
		if bounds, ok := lengthBounds[fe.StructField()]; ok {
			return fmt.Sprintf("%s must be between %d and %d characters",
				fe.Field(), bounds[0], bounds[1])
		}
		if fe.Tag() == "min" {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// lengthBounds lets min and max violations share one message.
var lengthBounds = map[string][2]int{
	"Description": {DescriptionMinLength, DescriptionMaxLength},
}
