// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted anywhere.
const MinPasswordLength = 8

// PasswordValidator validates passwords against various criteria
type PasswordValidator struct {
	MinLength           int
	RequireDigit        bool
	RejectNumeric       bool
	CheckUserSimilarity bool
}

// DefaultPasswordValidator returns the validator used for every password change.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		MinLength:           MinPasswordLength,
		RejectNumeric:       true,
		CheckUserSimilarity: false,
	}
}

// ValidationError represents a single password validation error
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// PasswordValidationError wraps multiple validation errors
type PasswordValidationError struct {
	Errors []ValidationError
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return e.Errors[0].Message
}

// Messages returns all error messages
func (e *PasswordValidationError) Messages() []string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Message
	}
	return messages
}

// Has reports whether the error contains the given code.
func (e *PasswordValidationError) Has(code string) bool {
	for _, err := range e.Errors {
		if err.Code == code {
			return true
		}
	}
	return false
}

// ValidationResult holds all validation errors
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Err returns the result as an error, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &PasswordValidationError{Errors: r.Errors}
}

// Validate checks a password against all configured validators
func (v *PasswordValidator) Validate(password string, userAttributes ...string) ValidationResult {
	var errors []ValidationError

	if utf8.RuneCountInString(password) < v.MinLength {
		errors = append(errors, ValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("Password must be at least %d characters long.", v.MinLength),
		})
	}

	if v.RequireDigit && !strings.ContainsFunc(password, unicode.IsDigit) {
		errors = append(errors, ValidationError{
			Code:    "no_digit",
			Message: "Password must contain at least one digit.",
		})
	}

	if v.RejectNumeric && isEntirelyNumeric(password) {
		errors = append(errors, ValidationError{
			Code:    "entirely_numeric",
			Message: "Password cannot be entirely numeric.",
		})
	}

	if v.CheckUserSimilarity && isSimilarToUserAttributes(password, userAttributes) {
		errors = append(errors, ValidationError{
			Code:    "too_similar",
			Message: "Password is too similar to your personal information.",
		})
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// ValidateConfirmed validates password and checks that confirm matches it.
func (v *PasswordValidator) ValidateConfirmed(password, confirm string, userAttributes ...string) ValidationResult {
	result := v.Validate(password, userAttributes...)
	if password != confirm {
		result.Errors = append(result.Errors, ValidationError{
			Code:    "mismatch",
			Message: "Passwords do not match.",
		})
		result.Valid = false
	}
	return result
}

// GetHelpTexts returns help texts for password requirements
func (v *PasswordValidator) GetHelpTexts() []string {
	texts := []string{fmt.Sprintf("At least %d characters", v.MinLength)}
	if v.RequireDigit {
		texts = append(texts, "At least one digit")
	}
	if v.RejectNumeric {
		texts = append(texts, "Cannot be entirely numeric")
	}
	if v.CheckUserSimilarity {
		texts = append(texts, "Not too similar to your personal information")
	}
	return texts
}

func isEntirelyNumeric(password string) bool {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(password) > 0
}

func isSimilarToUserAttributes(password string, attributes []string) bool {
	passwordLower := strings.ToLower(password)

	for _, attr := range attributes {
		if attr == "" {
			continue
		}
		attrLower := strings.ToLower(attr)
		if local, _, ok := strings.Cut(attrLower, "@"); ok {
			attrLower = local
		}

		if strings.Contains(passwordLower, attrLower) || strings.Contains(attrLower, passwordLower) {
			return true
		}
	}

	return false
}
