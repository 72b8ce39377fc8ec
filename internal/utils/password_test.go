package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ng!pass", false},
		{"valid with brackets", "Aa1[aaaa", false},
		{"too short", "Aa1!aaa", true},
		{"no upper case", "weak1!pass", true},
		{"no lower case", "WEAK1!PASS", true},
		{"no digit", "Weakness!", true},
		{"no symbol", "Weakness1", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!pass", hash)

	assert.True(t, CheckPassword(hash, "Str0ng!pass"))
	assert.False(t, CheckPassword(hash, "Wr0ng!pass"))
	assert.False(t, CheckPassword("not-a-hash", "Str0ng!pass"))
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	h1, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	h2, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "bcrypt salts should differ")
}
