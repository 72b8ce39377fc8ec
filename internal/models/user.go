package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered tenant account. Accounts are created once,
// during flow finalization, from a resolved identity record.
type User struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NIDNumber              string             `bson:"nid_number" json:"nid_number"`
	BirthCertificateNumber string             `bson:"birth_certificate_number,omitempty" json:"birth_certificate_number,omitempty"`
	FullNameBN             string             `bson:"full_name_bn" json:"full_name_bn"`
	FullNameEN             string             `bson:"full_name_en,omitempty" json:"full_name_en,omitempty"`
	FatherNameBN           string             `bson:"father_name_bn,omitempty" json:"father_name_bn,omitempty"`
	MotherNameBN           string             `bson:"mother_name_bn,omitempty" json:"mother_name_bn,omitempty"`
	DateOfBirth            time.Time          `bson:"date_of_birth" json:"date_of_birth"`
	Gender                 string             `bson:"gender,omitempty" json:"gender,omitempty"`
	MobileNumber           string             `bson:"mobile_number" json:"mobile_number"`
	Email                  string             `bson:"email,omitempty" json:"email,omitempty"`
	PermanentAddress       string             `bson:"permanent_address,omitempty" json:"permanent_address,omitempty"`
	PasswordHash           string             `bson:"password_hash,omitempty" json:"-"`
	Role                   string             `bson:"role" json:"role"`
	VerificationStatus     string             `bson:"verification_status" json:"verification_status"`
	CompletionScore        int                `bson:"completion_score" json:"completion_score"`
	LastLoginAt            *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt              time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updated_at"`
}

// Verification status constants
const (
	VerificationStatusPending  = "pending"
	VerificationStatusVerified = "verified"
	VerificationStatusRejected = "rejected"
)

// Role constants
const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"
)
