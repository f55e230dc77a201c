package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"io"
)

// GenerateSecureToken creates a random URL-safe token of the given byte
// length, used for per-session CSRF tokens.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// TokensMatch compares a submitted token against the stored one in constant
// time. An empty submission never matches.
func TokensMatch(submitted, stored string) bool {
	if submitted == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}
