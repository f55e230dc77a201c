package utils

import (
	"strings"
	"unicode"
)

// IsValidEmail checks if the email string contains an "@" symbol.
func IsValidEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".")
}

// IsValidSuds checks that a distress rating is on the 0-100 scale.
func IsValidSuds(suds int) bool {
	return suds >= 0 && suds <= 100
}

// IsComplexPassword checks if the password meets the complexity requirements.
func IsComplexPassword(password string) bool {
	var (
		hasMinLen  = len(password) >= 8
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasMinLen && hasUpper && hasLower && hasNumber && hasSpecial
}
