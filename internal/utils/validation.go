package utils

import (
	"fmt"
	"regexp"
)

var digitsOnlyRegex = regexp.MustCompile(`^\d+$`)

// validIDLengths are the accepted lengths for national id (10/13/17
// digits) and birth certificate (14/15 digits) numbers.
var validIDLengths = map[int]bool{10: true, 13: true, 14: true, 15: true, 17: true}

// ValidateIDNumber validates a national id or birth certificate number.
func ValidateIDNumber(idNumber string) error {
	if !digitsOnlyRegex.MatchString(idNumber) {
		return fmt.Errorf("id number must contain only digits")
	}
	if !validIDLengths[len(idNumber)] {
		return fmt.Errorf("id number must be 10, 13, 14, 15 or 17 digits")
	}
	return nil
}

// ValidateOTPCode checks the submitted code shape before hitting the
// store.
func ValidateOTPCode(code string) error {
	if len(code) != 6 || !digitsOnlyRegex.MatchString(code) {
		return fmt.Errorf("verification code must be 6 digits")
	}
	return nil
}
