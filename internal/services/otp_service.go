package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"github.com/thikana-bd/app-thikana/internal/utils"
	"go.uber.org/zap"
)

// OTPService issues and verifies one-time codes. A new issuance
// supersedes all still-active codes for the same number, and each code
// verifies at most once.
type OTPService struct {
	store      OTPStore
	dispatcher SMSDispatcher
	expiry     time.Duration
	cooldown   time.Duration
	logger     *logging.SafeLogger
	now        func() time.Time
}

// NewOTPService creates an OTP service
func NewOTPService(store OTPStore, dispatcher SMSDispatcher, expiry, cooldown time.Duration, logger *logging.SafeLogger) *OTPService {
	return &OTPService{
		store:      store,
		dispatcher: dispatcher,
		expiry:     expiry,
		cooldown:   cooldown,
		logger:     logger,
		now:        time.Now,
	}
}

// Issue generates, stores and dispatches a fresh code for the mobile
// number. Returns a RateLimitedError while the resend cooldown from the
// previous issuance is still running. Dispatch failure does not void
// the stored code; the caller may retry delivery after the cooldown.
func (s *OTPService) Issue(ctx context.Context, mobileNumber string) (string, error) {
	now := s.now()

	last, err := s.store.LastIssuedAt(ctx, mobileNumber)
	if err != nil {
		return "", fmt.Errorf("failed to check issuance history: %w", err)
	}
	if !last.IsZero() {
		elapsed := now.Sub(last)
		if elapsed < s.cooldown {
			wait := int((s.cooldown - elapsed + time.Second - 1) / time.Second)
			observability.OTPIssued.WithLabelValues("rate_limited").Inc()
			return "", &models.RateLimitedError{RetryAfterSeconds: wait}
		}
	}

	superseded, err := s.store.SupersedeActive(ctx, mobileNumber)
	if err != nil {
		return "", fmt.Errorf("failed to supersede previous codes: %w", err)
	}
	if superseded > 0 {
		s.logger.Debug("superseded previous codes",
			zap.String("mobile_number", observability.MaskPhone(mobileNumber)),
			zap.Int64("count", superseded))
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	rec := &models.OTPRecord{
		MobileNumber: mobileNumber,
		Code:         code,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.expiry),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrActiveCodeExists) {
			// A concurrent issuance for the same number landed between
			// our supersede and insert; its code is the usable one
			observability.OTPIssued.WithLabelValues("rate_limited").Inc()
			wait := int((s.cooldown + time.Second - 1) / time.Second)
			return "", &models.RateLimitedError{RetryAfterSeconds: wait}
		}
		observability.OTPIssued.WithLabelValues("error").Inc()
		return "", err
	}
	observability.OTPIssued.WithLabelValues("issued").Inc()

	message := fmt.Sprintf("Your Thikana verification code is %s. It expires in %d minutes.",
		code, int(s.expiry.Minutes()))
	if err := s.dispatcher.Send(ctx, mobileNumber, message); err != nil {
		// The code stays valid; the client can verify if delivery
		// succeeded elsewhere or re-request after the cooldown
		if errors.Is(err, models.ErrDispatchFailed) {
			observability.OTPDispatchFailures.Inc()
		}
		s.logger.Error("failed to dispatch verification code",
			zap.String("mobile_number", observability.MaskPhone(mobileNumber)),
			zap.Error(err))
	}

	s.logger.Info("verification code issued",
		zap.String("mobile_number", observability.MaskPhone(mobileNumber)),
		zap.Time("expires_at", rec.ExpiresAt))
	return code, nil
}

// Verify consumes the newest active code matching the submission.
// Returns models.ErrInvalidOrExpiredOTP for wrong, expired or already
// used codes.
func (s *OTPService) Verify(ctx context.Context, mobileNumber, code string) error {
	if err := utils.ValidateOTPCode(code); err != nil {
		observability.OTPVerifications.WithLabelValues("malformed").Inc()
		return models.ErrInvalidOrExpiredOTP
	}

	if _, err := s.store.Consume(ctx, mobileNumber, code, s.now()); err != nil {
		if err == models.ErrInvalidOrExpiredOTP {
			observability.OTPVerifications.WithLabelValues("rejected").Inc()
			s.logger.Warn("verification code rejected",
				zap.String("mobile_number", observability.MaskPhone(mobileNumber)))
			return err
		}
		observability.OTPVerifications.WithLabelValues("error").Inc()
		return err
	}

	observability.OTPVerifications.WithLabelValues("verified").Inc()
	return nil
}

// ResendWaitSeconds reports how long the caller must still wait before
// a new code can be issued. Zero means a resend is allowed now.
func (s *OTPService) ResendWaitSeconds(ctx context.Context, mobileNumber string) (int, error) {
	last, err := s.store.LastIssuedAt(ctx, mobileNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to check issuance history: %w", err)
	}
	if last.IsZero() {
		return 0, nil
	}
	remaining := s.cooldown - s.now().Sub(last)
	if remaining <= 0 {
		return 0, nil
	}
	return int((remaining + time.Second - 1) / time.Second), nil
}

// generateCode draws a uniformly random 6 digit code
func generateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
