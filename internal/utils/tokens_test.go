package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken(32)
	require.NoError(t, err)
	b, err := GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestTokensMatch(t *testing.T) {
	token, err := GenerateSecureToken(32)
	require.NoError(t, err)

	assert.True(t, TokensMatch(token, token))
	assert.False(t, TokensMatch(token, token+"x"))
	assert.False(t, TokensMatch("", token))
	assert.False(t, TokensMatch(token, ""))
}
