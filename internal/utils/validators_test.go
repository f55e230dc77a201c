package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.False(t, IsValidEmail("userexample.com"))
	assert.False(t, IsValidEmail("user@examplecom"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidSuds(t *testing.T) {
	assert.True(t, IsValidSuds(0))
	assert.True(t, IsValidSuds(100))
	assert.False(t, IsValidSuds(-1))
	assert.False(t, IsValidSuds(101))
}

func TestIsComplexPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"meets all requirements", "Passw0rd!", true},
		{"too short", "Pw0rd!", false},
		{"no uppercase", "passw0rd!", false},
		{"no lowercase", "PASSW0RD!", false},
		{"no digit", "Password!", false},
		{"no special", "Passw0rdd", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplexPassword(tt.password))
		})
	}
}
