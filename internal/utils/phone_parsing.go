package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// bdMobileRegex matches local-format Bangladeshi mobile numbers
// (operator prefixes 013-019).
var bdMobileRegex = regexp.MustCompile(`^01[3-9]\d{8}$`)

// PhoneComponents represents the parsed components of a phone number
type PhoneComponents struct {
	CountryCode string `json:"country_code"`
	National    string `json:"national"`
	E164        string `json:"e164"`
}

// ParsePhoneNumber parses a phone number string and returns its
// components. Bare local numbers are assumed to be Bangladeshi.
func ParsePhoneNumber(phoneString string) (*PhoneComponents, error) {
	cleanPhone := strings.TrimSpace(phoneString)

	// Letters would otherwise survive as vanity digits in the parser.
	if !digitsOnlyRegex.MatchString(strings.TrimPrefix(cleanPhone, "+")) {
		return nil, fmt.Errorf("phone number must contain only digits")
	}

	if !strings.HasPrefix(cleanPhone, "+") {
		if strings.HasPrefix(cleanPhone, "880") {
			cleanPhone = "+" + cleanPhone
		} else {
			cleanPhone = "+880" + strings.TrimPrefix(cleanPhone, "0")
		}
	}

	num, err := phonenumbers.Parse(cleanPhone, "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return nil, fmt.Errorf("invalid phone number: %s", phoneString)
	}

	return &PhoneComponents{
		CountryCode: fmt.Sprintf("%d", num.GetCountryCode()),
		National:    phonenumbers.GetNationalSignificantNumber(num),
		E164:        phonenumbers.Format(num, phonenumbers.E164),
	}, nil
}

// ValidateBDMobile validates a local-format Bangladeshi mobile number
// (01XXXXXXXXX) and confirms it parses as a real number.
func ValidateBDMobile(phone string) error {
	if !bdMobileRegex.MatchString(phone) {
		return fmt.Errorf("invalid mobile number format: expected 01XXXXXXXXX")
	}
	if _, err := ParsePhoneNumber(phone); err != nil {
		return err
	}
	return nil
}

// NormalizePhoneForStorage returns the canonical local form used as the
// OTP and account key.
func NormalizePhoneForStorage(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "+880")
	phone = strings.TrimPrefix(phone, "880")
	if !strings.HasPrefix(phone, "0") {
		phone = "0" + phone
	}
	return phone
}
