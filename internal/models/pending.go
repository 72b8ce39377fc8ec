package models

import "time"

// FlowStage is the stage of an in-progress registration/login flow.
type FlowStage string

const (
	StageIdentityResolved FlowStage = "identity_resolved"
	StageOtpSent          FlowStage = "otp_sent"
	StageOtpVerified      FlowStage = "otp_verified"
	StageFinalized        FlowStage = "finalized"
)

// PendingRegistration is the ephemeral state of one in-flight
// registration or login flow. It lives server-side under an opaque flow
// id that the client echoes back, and expires with its own TTL; it is
// never written to the permanent store.
type PendingRegistration struct {
	FlowID       string          `json:"flow_id"`
	MobileNumber string          `json:"mobile_number"`
	IDNumber     string          `json:"id_number,omitempty"`
	Identity     *IdentityRecord `json:"identity,omitempty"`
	IsNewAccount bool            `json:"is_new_account"`
	Stage        FlowStage       `json:"stage"`
	CreatedAt    time.Time       `json:"created_at"`
}
