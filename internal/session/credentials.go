package session

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/boss/internal/errors"
)

// MinPasswordLength is the shortest password the login form accepts
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// Credentials are what an operator types into the login form
type Credentials struct {
	Email    string
	Password string
}

// Validate checks the form input before anything is sent
func (c Credentials) Validate() error {
	if !emailPattern.MatchString(strings.TrimSpace(c.Email)) {
		return errors.NewValidationError(errors.ErrCodeInvalidEmail, "please enter a valid email address")
	}
	if len(c.Password) < MinPasswordLength {
		return errors.NewValidationError(errors.ErrCodePasswordTooShort, "password must be at least 6 characters")
	}
	return nil
}

// ValidateEmail is the email half of Validate, for per-field form validation
func ValidateEmail(email string) error {
	return Credentials{Email: email, Password: strings.Repeat("x", MinPasswordLength)}.Validate()
}

// ValidatePassword is the password half of Validate
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.NewValidationError(errors.ErrCodePasswordTooShort, "password must be at least 6 characters")
	}
	return nil
}

// IsInvalidCredentials reports whether err is the token endpoint rejecting
// the login, as opposed to any other login failure
func IsInvalidCredentials(err error) bool {
	return errors.HasCode(err, errors.ErrCodeInvalidCredentials)
}
