// Package credential hashes, verifies and validates passwords, and resolves login strings.
package credential

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
	"tinbr-service/internal/normalize"
)

const (
	PasswordMinLength = 8
	// Cost matches the 10 rounds of hashes already stored.
	Cost = bcrypt.DefaultCost
)

// ValidateStrength reports whether password has at least 8 characters with a
// lowercase letter, an uppercase letter, a digit and a non-alphanumeric character.
func ValidateStrength(password string) bool {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case !unicode.IsLetter(ch):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

// Hash returns a salted bcrypt hash; every call uses a fresh salt.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Validation(model.FieldPassword, "a senha deve ter no máximo 72 bytes")
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares password against hash using bcrypt's constant-time compare.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsHash reports whether s already looks like a bcrypt hash.
func IsHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// Login is the user lookup derived from a login string.
type Login struct {
	Field string
	Value string
}

// ResolveLogin treats logins containing '@' as emails and anything else as a document number.
func ResolveLogin(login string) (Login, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return Login{Field: model.FieldEmail, Value: normalize.Email(login)}, nil
	}

	digits := normalize.Digits(login)
	if digits == "" {
		return Login{}, apperror.InvalidCredentials()
	}
	return Login{Field: model.FieldDocument, Value: digits}, nil
}
