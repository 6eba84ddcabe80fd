package utils

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost. bcrypt is the slow
// adaptive hash reserved for passwords; stored tokens use HashToken instead.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidatePasswordStrength enforces the registration password rule: at least
// 8 characters with an uppercase letter, a lowercase letter and a digit. It
// runs before any persistence so a weak password never reaches the store.
func ValidatePasswordStrength(plain string) error {
	if len(plain) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	var upper, lower, digit bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !lower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digit {
		return fmt.Errorf("password must contain at least one digit")
	}
	return nil
}
