package models

// RegisterRequest starts a registration flow.
type RegisterRequest struct {
	IDNumber     string `json:"id_number" binding:"required"`
	MobileNumber string `json:"mobile_number" binding:"required"`
}

// LoginRequest starts a login flow for an existing account.
type LoginRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required"`
}

// VerifyOTPRequest submits the code the user received.
type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required"`
}

// FinalizeRequest completes a verified flow. Password is optional on the
// registration path; pure-OTP accounts carry no credential.
type FinalizeRequest struct {
	Password string `json:"password,omitempty"`
}

// FlowResponse describes the state of a registration/login flow.
type FlowResponse struct {
	FlowID       string `json:"flow_id"`
	Stage        string `json:"stage"`
	MobileNumber string `json:"mobile_number"`
	IsNewAccount bool   `json:"is_new_account"`
	// DemoOTP carries the issued code back to the caller only when the
	// non-production demo mode flag is enabled.
	DemoOTP string `json:"demo_otp,omitempty"`
}

// ResendWaitResponse reports how long the caller must wait before
// requesting another code.
type ResendWaitResponse struct {
	WaitSeconds int `json:"wait_seconds"`
}

// TokenResponse carries the issued session token and the bound account.
type TokenResponse struct {
	Token   string `json:"token"`
	Account *User  `json:"account"`
}
