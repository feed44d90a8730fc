package utils

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	errPasswordTooShort   = errors.New("password must contain at least 8 characters")
	errPasswordNumeric    = errors.New("password cannot be entirely numeric")
	errPasswordInUsername = errors.New("password is too similar to the username")
)

// ValidatePassword applies the account password policy.
func ValidatePassword(password, username string) error {
	if len([]rune(password)) < minPasswordLength {
		return errPasswordTooShort
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return errPasswordNumeric
	}
	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		return errPasswordInUsername
	}
	return nil
}

// HashPassword returns the bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares the bcrypt hashed password with its possible plaintext equivalent.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
