// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9_@.\-]+$`)
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9\-]+$`)
)

// Field length bounds, in characters.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	PasswordMinLength = 8
	PasswordMaxLength = 50
	EmailMinLength    = 1
	EmailMaxLength    = 100
	StatusMinLength   = 1
	StatusMaxLength   = 10
)

// Required trims value and fails when nothing is left.
func Required(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	return trimmed, nil
}

// Length checks that value has between min and max characters.
func Length(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		return fmt.Errorf("%s must be at least %d characters long", field, min)
	}
	if n > max {
		return fmt.Errorf("%s must not exceed %d characters", field, max)
	}
	return nil
}

// ValidateUsername checks length and the identifier charset.
func ValidateUsername(username string) error {
	if err := Length("username", username, UsernameMinLength, UsernameMaxLength); err != nil {
		return err
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, and the characters _ @ . -")
	}
	return nil
}

// ValidatePassword checks password length only; strength is left to the user.
func ValidatePassword(password string) error {
	return Length("password", password, PasswordMinLength, PasswordMaxLength)
}

// ValidateEmail checks length and basic structure.
func ValidateEmail(email string) error {
	if err := Length("email", email, EmailMinLength, EmailMaxLength); err != nil {
		return err
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email must be a valid email address")
	}
	return nil
}

// ValidateIdentifier checks an opaque path identifier such as a request id.
func ValidateIdentifier(id string) error {
	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("invalid identifier %q", id)
	}
	return nil
}
