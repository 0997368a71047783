package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/sumire/bugtracker/internal/domain"
)

// AppValidator wraps go-playground/validator for echo.
type AppValidator struct {
	validator *validator.Validate
}

// NewAppValidator creates a new AppValidator. Reported field names follow the json tags.
func NewAppValidator() *AppValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return &AppValidator{validator: v}
}

// Check runs the bug rules against a candidate and returns the first failure per field.
// The result is empty when the candidate is valid.
func (v *AppValidator) Check(in domain.BugInput) domain.FieldErrors {
	fe, _ := v.check(in)
	return fe
}

// Validate implements echo.Validator. Rule failures are returned as domain.FieldErrors.
func (v *AppValidator) Validate(i any) error {
	fe, err := v.check(i)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !fe.Valid() {
		return fe
	}
	return nil
}

func (v *AppValidator) check(i any) (domain.FieldErrors, error) {
	fe := domain.FieldErrors{}

	err := v.validator.Struct(i)
	if err == nil {
		return fe, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fe, err
	}
	for _, e := range validationErrors {
		if _, seen := fe[e.Field()]; !seen {
			fe[e.Field()] = fieldMessage(e)
		}
	}
	return fe, nil
}

func fieldMessage(e validator.FieldError) string {
	label := strings.ToUpper(e.Field()[:1]) + e.Field()[1:]

	switch e.Tag() {
	case "notblank", "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", label, e.Param())
	case "oneof":
		return fmt.Sprintf("Invalid %s value", e.Field())
	default:
		return fmt.Sprintf("%s failed on '%s' validation", label, e.Tag())
	}
}
