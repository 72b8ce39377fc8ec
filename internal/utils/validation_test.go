package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateIDNumber(t *testing.T) {
	valid := []string{
		"1234567890",        // 10 digit smart NID
		"1234567890123",     // 13 digit NID
		"12345678901234",    // 14 digit birth certificate
		"123456789012345",   // 15 digit birth certificate
		"12345678901234567", // 17 digit NID
	}
	for _, id := range valid {
		assert.NoError(t, ValidateIDNumber(id), "expected %s to be valid", id)
	}

	invalid := []string{
		"",
		"123456789",         // 9 digits
		"123456789012",      // 12 digits
		"1234567890123456",  // 16 digits
		"123456789012345678",
		"12345abc90",
		"1234567890 ",
	}
	for _, id := range invalid {
		assert.Error(t, ValidateIDNumber(id), "expected %s to be invalid", id)
	}
}

func TestValidateOTPCode(t *testing.T) {
	assert.NoError(t, ValidateOTPCode("123456"))
	assert.NoError(t, ValidateOTPCode("000000"))

	assert.Error(t, ValidateOTPCode("12345"))
	assert.Error(t, ValidateOTPCode("1234567"))
	assert.Error(t, ValidateOTPCode("12a456"))
	assert.Error(t, ValidateOTPCode(""))
}
