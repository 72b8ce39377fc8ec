package observability

import (
	"strings"

	"github.com/thikana-bd/app-thikana/internal/logging"
)

// Logger returns the global safe logger instance
func Logger() *logging.SafeLogger {
	return logging.Logger
}

// MaskNID masks a national id or birth certificate number for logging
func MaskNID(nid string) string {
	if len(nid) < 6 {
		return strings.Repeat("*", len(nid))
	}
	return nid[:3] + strings.Repeat("*", len(nid)-5) + nid[len(nid)-2:]
}

// MaskPhone masks a mobile number for logging
func MaskPhone(phone string) string {
	if len(phone) < 5 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + strings.Repeat("*", len(phone)-5) + phone[len(phone)-2:]
}

// MaskSensitiveData masks sensitive data in a map
func MaskSensitiveData(data map[string]interface{}) map[string]interface{} {
	sensitiveFields := []string{"nid_number", "birth_certificate_number", "mobile_number", "father_name", "mother_name"}
	masked := make(map[string]interface{})

	for k, v := range data {
		if contains(sensitiveFields, k) {
			masked[k] = "********"
		} else {
			masked[k] = v
		}
	}

	return masked
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
