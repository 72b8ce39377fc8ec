package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmergencyContact is a contact person reachable in emergencies.
type EmergencyContact struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name         string             `bson:"name" json:"name" binding:"required"`
	Relation     string             `bson:"relation" json:"relation" binding:"required"`
	MobileNumber string             `bson:"mobile_number" json:"mobile_number" binding:"required"`
	Address      string             `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// FamilyMember is a household member living with the tenant.
type FamilyMember struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name          string             `bson:"name" json:"name" binding:"required"`
	Relation      string             `bson:"relation" json:"relation" binding:"required"`
	NIDNumber     string             `bson:"nid_number,omitempty" json:"nid_number,omitempty"`
	DateOfBirth   *time.Time         `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Occupation    string             `bson:"occupation,omitempty" json:"occupation,omitempty"`
	NIDVerified   bool               `bson:"nid_verified" json:"nid_verified"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// HouseWorker is a domestic worker employed at the residence; workers
// with an NID get a police clearance check at registration time.
type HouseWorker struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name              string             `bson:"name" json:"name" binding:"required"`
	NIDNumber         string             `bson:"nid_number,omitempty" json:"nid_number,omitempty"`
	MobileNumber      string             `bson:"mobile_number,omitempty" json:"mobile_number,omitempty"`
	WorkType          string             `bson:"work_type,omitempty" json:"work_type,omitempty"`
	PoliceClearance   bool               `bson:"police_clearance" json:"police_clearance"`
	ClearanceMessage  string             `bson:"clearance_message,omitempty" json:"clearance_message,omitempty"`
	DangerFlag        bool               `bson:"danger_flag" json:"danger_flag"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}

// Residence is the tenant's current residence. One per account.
type Residence struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	HouseNumber  string             `bson:"house_number" json:"house_number" binding:"required"`
	Street       string             `bson:"street,omitempty" json:"street,omitempty"`
	Area         string             `bson:"area" json:"area" binding:"required"`
	Thana        string             `bson:"thana,omitempty" json:"thana,omitempty"`
	District     string             `bson:"district" json:"district" binding:"required"`
	MoveInDate   *time.Time         `bson:"move_in_date,omitempty" json:"move_in_date,omitempty"`
	MonthlyRent  int                `bson:"monthly_rent,omitempty" json:"monthly_rent,omitempty"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Landlord is the tenant's current landlord. One per account.
type Landlord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name             string             `bson:"name" json:"name" binding:"required"`
	NIDNumber        string             `bson:"nid_number,omitempty" json:"nid_number,omitempty"`
	MobileNumber     string             `bson:"mobile_number" json:"mobile_number" binding:"required"`
	Address          string             `bson:"address,omitempty" json:"address,omitempty"`
	Verified         bool               `bson:"verified" json:"verified"`
	VerificationDate *time.Time         `bson:"verification_date,omitempty" json:"verification_date,omitempty"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// PreviousLandlord is a prior tenancy reference. Accounts can declare
// any number of them; entries with an NID are checked against the
// identity registry.
type PreviousLandlord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name          string             `bson:"name" json:"name" binding:"required"`
	MobileNumber  string             `bson:"mobile_number" json:"mobile_number" binding:"required"`
	Address       string             `bson:"address" json:"address" binding:"required"`
	NIDNumber     string             `bson:"nid_number,omitempty" json:"nid_number,omitempty"`
	LeavingReason string             `bson:"leaving_reason" json:"leaving_reason" binding:"required"`
	StayDuration  string             `bson:"stay_duration,omitempty" json:"stay_duration,omitempty"`
	NIDVerified   bool               `bson:"nid_verified" json:"nid_verified"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// DocumentAttachment is document metadata only; file storage itself is
// out of scope.
type DocumentAttachment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	DocumentType string             `bson:"document_type" json:"document_type" binding:"required"`
	FileName     string             `bson:"file_name" json:"file_name" binding:"required"`
	FileSize     int64              `bson:"file_size,omitempty" json:"file_size,omitempty"`
	MimeType     string             `bson:"mime_type,omitempty" json:"mime_type,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

// Document type constants counted by the completion score
const (
	DocumentTypeNID         = "NID"
	DocumentTypePhoto       = "Photo"
	DocumentTypeAgreement   = "Agreement"
	DocumentTypeUtilityBill = "UtilityBill"
)

// Notification is a message for a landlord about a tenant's profile.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	MessageBN   string             `bson:"message_bn" json:"message_bn"`
	MessageEN   string             `bson:"message_en,omitempty" json:"message_en,omitempty"`
	Type        string             `bson:"type" json:"type"`
	Important   bool               `bson:"important" json:"important"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
