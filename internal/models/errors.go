package models

import (
	"errors"
	"fmt"
)

// Domain rejection and failure errors for the registration flow
var (
	ErrIdentityNotFound     = errors.New("identity not found")
	ErrIdentityMismatch     = errors.New("mobile number does not match identity record")
	ErrInvalidOrExpiredOTP  = errors.New("invalid or expired verification code")
	ErrWeakCredential       = errors.New("password does not meet the strength policy")
	ErrFlowNotFound         = errors.New("registration flow not found or expired")
	ErrInvalidFlowStage     = errors.New("operation not allowed in the current flow stage")
	ErrAccountNotFound      = errors.New("account not found")
	ErrPersistenceFailure   = errors.New("persistence failure")
	ErrDispatchFailed       = errors.New("failed to dispatch verification code")
	ErrInvalidMobileNumber  = errors.New("invalid mobile number")
	ErrInvalidIDNumber      = errors.New("invalid national id or birth certificate number")
	ErrProfileIncomplete    = errors.New("profile completion below required threshold")
)

// RateLimitedError reports an OTP issuance rejected by the resend
// cooldown, carrying the seconds the caller has to wait.
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfterSeconds)
}

// AsRateLimited unwraps err into a RateLimitedError if it is one.
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
