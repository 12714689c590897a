// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/innwise/fieldvault/internal/errors"
)

var (
	// slugRegex matches URL-safe identifiers such as tenant and record IDs.
	slugRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
	// sortCodeRegex matches a UK sort code, with or without separators.
	sortCodeRegex = regexp.MustCompile(`^\d{2}-?\d{2}-?\d{2}$`)
	// accountNumberRegex matches a UK bank account number.
	accountNumberRegex = regexp.MustCompile(`^\d{8}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Slug validates that a string is a URL-safe identifier: it must start with
// a letter or digit and may contain dots, underscores and hyphens after that.
var Slug = validation.NewStringRuleWithError(
	func(s string) bool {
		return slugRegex.MatchString(s)
	},
	validation.NewError("validation_slug", "must contain only letters, digits, dots, underscores and hyphens"),
)

// SortCode validates a six-digit UK sort code, with or without hyphens
// ("123456" and "12-34-56" are both accepted).
var SortCode = validation.NewStringRuleWithError(
	func(s string) bool {
		return sortCodeRegex.MatchString(s)
	},
	validation.NewError("validation_sort_code", "must be a six-digit sort code"),
)

// AccountNumber validates an eight-digit UK bank account number.
var AccountNumber = validation.NewStringRuleWithError(
	func(s string) bool {
		return accountNumberRegex.MatchString(s)
	},
	validation.NewError("validation_account_number", "must be an eight-digit account number"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
