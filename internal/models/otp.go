package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPRecord represents a one-time code issued for a mobile number.
// Records are never deleted; superseded and consumed codes are flipped
// to used and kept for audit.
type OTPRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MobileNumber string             `bson:"mobile_number" json:"mobile_number"`
	Code         string             `bson:"code" json:"code"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt    time.Time          `bson:"expires_at" json:"expires_at"`
	Used         bool               `bson:"used" json:"used"`
}

// OTPCodeLength is the fixed length of issued codes
const OTPCodeLength = 6

// Active reports whether the record can still be consumed at the given
// instant.
func (r *OTPRecord) Active(now time.Time) bool {
	return !r.Used && r.ExpiresAt.After(now)
}
