package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

// envPrefixPattern accepts names every supported shell can use as a variable prefix.
var envPrefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RegisterCustomValidators registers tool-specific validation rules.
// Must be called before validating ToolConfig.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("language_tag", validateLanguageTag); err != nil {
		return fmt.Errorf("failed to register language_tag validator: %w", err)
	}
	if err := v.RegisterValidation("env_prefix", validateEnvPrefix); err != nil {
		return fmt.Errorf("failed to register env_prefix validator: %w", err)
	}
	return nil
}

// validateLanguageTag validates a BCP 47 language tag.
func validateLanguageTag(fl validator.FieldLevel) bool {
	_, err := language.Parse(fl.Field().String())
	return err == nil
}

// validateEnvPrefix validates an environment variable name prefix.
func validateEnvPrefix(fl validator.FieldLevel) bool {
	return envPrefixPattern.MatchString(fl.Field().String())
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCustomValidators(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate validates the ToolConfig using struct tags.
// Returns an error if validation fails, with actionable error messages.
func (c *ToolConfig) Validate() error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// Validate checks that every present branch of the options tree is complete.
func (o *RootOptions) Validate() error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	if err := v.Struct(o); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "language_tag":
		return fmt.Sprintf("%s must be a BCP 47 language tag", field)
	case "env_prefix":
		return fmt.Sprintf("%s must contain only letters, digits and '_' and not start with a digit", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
