// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/rentaldesk/searchsync/internal/errors"
)

// indexNameRegex accepts names both search backends allow for an index or collection.
var indexNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,127}$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// IndexName validates an index or collection name: lowercase letters, digits,
// '_' and '-', not starting with a separator.
var IndexName = validation.NewStringRuleWithError(
	func(s string) bool {
		return indexNameRegex.MatchString(s)
	},
	validation.NewError("validation_index_name", "must be lowercase letters, digits, '_' or '-'"),
)

// PositiveID validates that an int64 id is greater than zero.
var PositiveID = validation.By(func(value interface{}) error {
	id, ok := value.(int64)
	if !ok {
		return validation.NewError("validation_id_type", "must be an integer id")
	}
	if id <= 0 {
		return validation.NewError("validation_id_positive", "must be a positive id")
	}
	return nil
})

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
