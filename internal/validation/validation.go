package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateEmail checks that an email address is plausibly deliverable
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > 254 {
		return errors.New("email is too long")
	}
	if !emailRegexp.MatchString(email) {
		return errors.New("email is not valid")
	}
	return nil
}

// ValidateUsername checks the display name used on the score board
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) < 3 || len(username) > 32 {
		return errors.New("username must be between 3 and 32 characters")
	}
	if !usernameRegexp.MatchString(username) {
		return errors.New("username may only contain letters, digits, hyphens and underscores")
	}
	return nil
}

// ValidatePassword enforces the minimum password policy
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return errors.New("password is too long")
	}
	return nil
}

// ValidateLocation checks a board position. The classic board numbers
// locations 1 through 199.
func ValidateLocation(location int) error {
	if location < 1 || location > 199 {
		return fmt.Errorf("location %d is not on the board", location)
	}
	return nil
}
