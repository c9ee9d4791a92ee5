// Package validation holds the form rules checked before any collaborator
// call. Both the backend services and the client controller use them, so a
// form rejected locally is rejected with the same message by the server.
//
// Every rule returns nil or an *apperror.AppError of kind ErrValidation.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/sakif/symvora/internal/apperror"
)

// MinPasswordLength is the shortest password accepted at sign-up and on
// change, counted in characters.
const MinPasswordLength = 6

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

// MaxNameLength bounds the display name.
const MaxNameLength = 100

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidEmail is a loose check: the address
// must contain an "@" and a ".".
func ValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// NormalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Symptoms rejects blank symptom text.
func Symptoms(text string) error {
	if IsBlank(text) {
		return apperror.ValidationFailed("symptoms", "Please enter your symptoms first.")
	}
	return nil
}

// SignUp checks the sign-up form. confirm is the repeated password.
func SignUp(name, email, password, confirm string) error {
	if IsBlank(name) || IsBlank(email) || IsBlank(password) || IsBlank(confirm) {
		return apperror.ValidationFailed("", "Please fill all fields")
	}
	if !ValidEmail(email) {
		return apperror.ValidationFailed("email", "Enter a valid email")
	}
	if err := Name(name); err != nil {
		return err
	}
	if err := Password(password); err != nil {
		return err
	}
	if password != confirm {
		return apperror.ValidationFailed("confirmPassword", "Passwords do not match")
	}
	return nil
}

// Login checks the login form.
func Login(email, password string) error {
	if IsBlank(email) || IsBlank(password) {
		return apperror.ValidationFailed("", "Please enter email and password")
	}
	if !ValidEmail(email) {
		return apperror.ValidationFailed("email", "Enter a valid email")
	}
	return nil
}

// Name checks a display name.
func Name(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.ValidationFailed("name", "Name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return apperror.ValidationFailed("name", "Name is too long")
	}
	return nil
}

// Password checks length bounds only: at least MinPasswordLength
// characters and at most MaxPasswordBytes bytes.
func Password(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperror.ValidationFailed("password", "Password must be at least 6 characters")
	}
	if len(password) > MaxPasswordBytes {
		return apperror.ValidationFailed("password", "Password must be 72 bytes or fewer")
	}
	return nil
}

// PasswordChange checks the settings form for a new password.
func PasswordChange(current, next, confirm string) error {
	if current == "" {
		return apperror.ValidationFailed("currentPassword", "Enter your current password")
	}
	if utf8.RuneCountInString(next) < MinPasswordLength {
		return apperror.ValidationFailed("newPassword", "New password must be at least 6 characters")
	}
	if len(next) > MaxPasswordBytes {
		return apperror.ValidationFailed("newPassword", "Password must be 72 bytes or fewer")
	}
	if next != confirm {
		return apperror.ValidationFailed("confirmPassword", "Passwords do not match")
	}
	return nil
}
