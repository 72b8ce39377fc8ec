package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantE164    string
		wantErr     bool
	}{
		{
			name:     "bare local number",
			input:    "01712345678",
			wantE164: "+8801712345678",
		},
		{
			name:     "e164 number",
			input:    "+8801912345678",
			wantE164: "+8801912345678",
		},
		{
			name:     "country code without plus",
			input:    "8801512345678",
			wantE164: "+8801512345678",
		},
		{
			name:    "too short",
			input:   "0171234",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "letters",
			input:   "01712abc678",
			wantErr: true,
		},
		{
			name:    "vanity letters with country code",
			input:   "+880171CALLME",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePhoneNumber(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantE164, got.E164)
			assert.Equal(t, "880", got.CountryCode)
		})
	}
}

func TestValidateBDMobile(t *testing.T) {
	valid := []string{
		"01312345678",
		"01412345678",
		"01512345678",
		"01612345678",
		"01712345678",
		"01812345678",
		"01912345678",
	}
	for _, num := range valid {
		assert.NoError(t, ValidateBDMobile(num), "expected %s to be valid", num)
	}

	invalid := []string{
		"01112345678", // operator prefix 1 not allocated
		"01212345678",
		"0171234567",   // too short
		"017123456789", // too long
		"21712345678",  // does not start with 0
		"",
	}
	for _, num := range invalid {
		assert.Error(t, ValidateBDMobile(num), "expected %s to be invalid", num)
	}
}

func TestNormalizePhoneForStorage(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+8801712345678", "01712345678"},
		{"8801712345678", "01712345678"},
		{"01712345678", "01712345678"},
		{" 01712345678 ", "01712345678"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhoneForStorage(tt.input))
	}
}
