package models

import "time"

// IdentityRecord is the canonical personal data resolved from a national
// id or birth certificate number by the identity registry.
type IdentityRecord struct {
	NIDNumber              string    `json:"nid_number"`
	BirthCertificateNumber string    `json:"birth_certificate_number,omitempty"`
	FullNameBN             string    `json:"full_name_bn"`
	FullNameEN             string    `json:"full_name_en,omitempty"`
	FatherNameBN           string    `json:"father_name_bn,omitempty"`
	MotherNameBN           string    `json:"mother_name_bn,omitempty"`
	DateOfBirth            time.Time `json:"date_of_birth"`
	Gender                 string    `json:"gender,omitempty"`
	MobileNumber           string    `json:"mobile_number"`
	Email                  string    `json:"email,omitempty"`
	PermanentAddress       string    `json:"permanent_address,omitempty"`
}

// PoliceClearance is the result of a police record check for an NID.
type PoliceClearance struct {
	NIDNumber     string `json:"nid_number"`
	Valid         bool   `json:"valid"`
	Message       string `json:"message"`
	DangerLevel   string `json:"danger_level"`
	PoliceStation string `json:"police_station,omitempty"`
	LastVerified  string `json:"last_verified,omitempty"`
}

// Danger level constants
const (
	DangerLevelLow  = "low"
	DangerLevelHigh = "high"
)
