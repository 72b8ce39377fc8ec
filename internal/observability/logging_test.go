package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskNID(t *testing.T) {
	assert.Equal(t, "123********23", MaskNID("1234567890123"))
	assert.Equal(t, "123*****90", MaskNID("1234567890"))
	assert.Equal(t, "*****", MaskNID("12345"))
	assert.Equal(t, "", MaskNID(""))
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "017******78", MaskPhone("01712345678"))
	assert.Equal(t, "****", MaskPhone("0171"))
}

func TestMaskSensitiveData(t *testing.T) {
	data := map[string]interface{}{
		"nid_number":    "1234567890123",
		"mobile_number": "01712345678",
		"gender":        "male",
	}

	masked := MaskSensitiveData(data)

	assert.Equal(t, "********", masked["nid_number"])
	assert.Equal(t, "********", masked["mobile_number"])
	assert.Equal(t, "male", masked["gender"])
}

func TestLogger_NotNil(t *testing.T) {
	assert.NotNil(t, Logger())
}
