// Package form validates user input before it reaches the network.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MinUsernameLength = 3
)

var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidConstraints = errors.New("invalid JSON in constraints field")
)

// ValidationError is a field-level rejection shown next to the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Registration is the sign-up form.
type Registration struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
	FullName        string
}

// Validate applies the checks in the order the form reports them: password
// length, confirmation, then username length. Only the first failure is
// returned. Lengths count characters, not bytes.
func (r Registration) Validate() error {
	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)}
	}
	if r.Password != r.ConfirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "Passwords do not match"}
	}
	if utf8.RuneCountInString(r.Username) < MinUsernameLength {
		return &ValidationError{Field: "username", Message: fmt.Sprintf("Username must be at least %d characters", MinUsernameLength)}
	}
	return nil
}

// FullNamePtr returns nil for a blank full name so it is left out of the
// request.
func (r Registration) FullNamePtr() *string {
	if strings.TrimSpace(r.FullName) == "" {
		return nil
	}
	return &r.FullName
}

// ParseID parses a positive numeric id taken from a route or argument.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
