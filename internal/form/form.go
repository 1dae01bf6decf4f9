// ABOUTME: Field-scoped validation errors rendered inline next to form inputs
// ABOUTME: Returned by local checks that block a submission before any backend call

package form

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidationError is a client-side validation failure for one field. An
// empty Field means the message applies to the whole form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid returns a ValidationError.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidation extracts a ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Blank reports whether any of the values is empty after trimming spaces.
func Blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Shorter reports whether s has fewer than n characters.
func Shorter(s string, n int) bool {
	return utf8.RuneCountInString(s) < n
}
