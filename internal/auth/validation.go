package auth

import (
	"regexp"

	"github.com/khanghh/ltcms/params"
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateUsername enforces the login username format. All checks run before
// any storage or timing-sensitive code.
func ValidateUsername(username string) error {
	if username == "" {
		return &ValidationError{Msg: "Username cannot be empty"}
	}
	if len(username) > params.UsernameMaxLength {
		return &ValidationError{Msg: "Username too long"}
	}
	if !usernameRegex.MatchString(username) {
		return &ValidationError{Msg: "Username contains invalid characters"}
	}
	return nil
}

// ValidatePassword enforces the password policy: 12-128 characters mixing at
// least 3 of the 4 character classes. The upper bound keeps bcrypt cost
// predictable.
func ValidatePassword(password string) error {
	if len(password) < params.PasswordMinLength {
		return &ValidationError{Msg: "Password must be at least 12 characters long"}
	}
	if len(password) > params.PasswordMaxLength {
		return &ValidationError{Msg: "Password too long"}
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	classes := 0
	for _, present := range []bool{lower, upper, digit, symbol} {
		if present {
			classes++
		}
	}
	if classes < 3 {
		return &ValidationError{Msg: "Password must mix at least 3 of: lowercase, uppercase, digits, symbols"}
	}
	return nil
}
