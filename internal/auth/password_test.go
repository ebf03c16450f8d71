package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("abcdefg1"))
	assert.ErrorIs(t, ValidatePassword("short1"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword("onlyletters"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword("12345678"), ErrWeakPassword)
}

func TestValidatePasswordLength(t *testing.T) {
	assert.NoError(t, ValidatePassword(strings.Repeat("a", 71)+"1"))

	long := strings.Repeat("a", 79) + "1"
	assert.ErrorIs(t, ValidatePassword(long), ErrPasswordTooLong)
	_, err := HashPassword(long)
	assert.Error(t, err)
}
