package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"github.com/thikana-bd/app-thikana/internal/token"
	"github.com/thikana-bd/app-thikana/internal/utils"
	"go.uber.org/zap"
)

// RegistrationService orchestrates the staged registration and login
// flows. Flow state lives in the pending store until finalization; only
// Finalize touches the permanent account store, and no token is ever
// issued without a persisted account behind it.
type RegistrationService struct {
	registry         IdentityRegistry
	users            UserStore
	pending          PendingStore
	otp              *OTPService
	tokens           *token.Issuer
	strictCrossCheck bool
	passwordPolicy   bool
	logger           *logging.SafeLogger
}

// NewRegistrationService creates the flow orchestrator. passwordPolicy
// controls whether passwords set at finalize must pass the strength
// rule; mobile possession via OTP is the primary factor either way.
func NewRegistrationService(
	registry IdentityRegistry,
	users UserStore,
	pending PendingStore,
	otp *OTPService,
	tokens *token.Issuer,
	strictCrossCheck bool,
	passwordPolicy bool,
	logger *logging.SafeLogger,
) *RegistrationService {
	return &RegistrationService{
		registry:         registry,
		users:            users,
		pending:          pending,
		otp:              otp,
		tokens:           tokens,
		strictCrossCheck: strictCrossCheck,
		passwordPolicy:   passwordPolicy,
		logger:           logger,
	}
}

// BeginRegistration resolves the claimed identity and opens a flow. If
// an account already exists for the id number the flow continues as a
// login against the registered mobile number instead of creating a
// duplicate.
func (s *RegistrationService) BeginRegistration(ctx context.Context, idNumber, mobileNumber string) (*models.PendingRegistration, error) {
	if err := utils.ValidateIDNumber(idNumber); err != nil {
		return nil, models.ErrInvalidIDNumber
	}
	if err := utils.ValidateBDMobile(utils.NormalizePhoneForStorage(mobileNumber)); err != nil {
		return nil, models.ErrInvalidMobileNumber
	}
	mobile := utils.NormalizePhoneForStorage(mobileNumber)

	identity, err := s.registry.Resolve(ctx, idNumber)
	if err != nil {
		if errors.Is(err, models.ErrIdentityNotFound) {
			observability.RegistrationFlows.WithLabelValues("identity_not_found").Inc()
			return nil, models.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}

	match, err := s.registry.CrossCheck(ctx, idNumber, mobile)
	if err != nil {
		return nil, fmt.Errorf("identity cross-check failed: %w", err)
	}
	if !match {
		if s.strictCrossCheck {
			observability.RegistrationFlows.WithLabelValues("cross_check_rejected").Inc()
			return nil, models.ErrIdentityMismatch
		}
		// Advisory only: the OTP round still proves possession of the
		// submitted number
		observability.RegistrationFlows.WithLabelValues("cross_check_warning").Inc()
		s.logger.Warn("mobile number differs from registry record",
			zap.String("nid_number", observability.MaskNID(identity.NIDNumber)),
			zap.String("mobile_number", observability.MaskPhone(mobile)))
	}

	// Login flows look accounts up by NID, so the flow always carries
	// the resolved NID rather than the submitted number (which may be a
	// birth certificate number)
	flowIDNumber := identity.NIDNumber

	isNew := true
	if existing, err := s.users.FindByNID(ctx, identity.NIDNumber); err == nil {
		// Already registered: continue as a login bound to the mobile
		// number on file, not the one just submitted
		isNew = false
		mobile = existing.MobileNumber
	} else if !errors.Is(err, models.ErrAccountNotFound) {
		return nil, err
	}

	flow := &models.PendingRegistration{
		FlowID:       uuid.NewString(),
		MobileNumber: mobile,
		IDNumber:     flowIDNumber,
		Identity:     identity,
		IsNewAccount: isNew,
		Stage:        models.StageIdentityResolved,
		CreatedAt:    time.Now(),
	}
	if err := s.pending.Save(ctx, flow); err != nil {
		return nil, err
	}

	observability.RegistrationFlows.WithLabelValues("registration_started").Inc()
	s.logger.Info("registration flow opened",
		zap.String("flow_id", flow.FlowID),
		zap.Bool("is_new_account", isNew))
	return flow, nil
}

// BeginLogin opens a login flow for an existing account identified by
// its mobile number.
func (s *RegistrationService) BeginLogin(ctx context.Context, mobileNumber string) (*models.PendingRegistration, error) {
	mobile := utils.NormalizePhoneForStorage(mobileNumber)
	if err := utils.ValidateBDMobile(mobile); err != nil {
		return nil, models.ErrInvalidMobileNumber
	}

	account, err := s.users.FindByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}

	flow := &models.PendingRegistration{
		FlowID:       uuid.NewString(),
		MobileNumber: account.MobileNumber,
		IDNumber:     account.NIDNumber,
		IsNewAccount: false,
		Stage:        models.StageIdentityResolved,
		CreatedAt:    time.Now(),
	}
	if err := s.pending.Save(ctx, flow); err != nil {
		return nil, err
	}

	observability.RegistrationFlows.WithLabelValues("login_started").Inc()
	s.logger.Info("login flow opened", zap.String("flow_id", flow.FlowID))
	return flow, nil
}

// RequestOTP issues a code for the flow's mobile number. Allowed on a
// freshly opened flow and as a resend while one is already out; the
// issuance cooldown applies either way. The issued code is returned so
// the handler can echo it in demo mode.
func (s *RegistrationService) RequestOTP(ctx context.Context, flowID string) (string, error) {
	flow, err := s.pending.Get(ctx, flowID)
	if err != nil {
		return "", err
	}
	if flow.Stage != models.StageIdentityResolved && flow.Stage != models.StageOtpSent {
		return "", models.ErrInvalidFlowStage
	}

	code, err := s.otp.Issue(ctx, flow.MobileNumber)
	if err != nil {
		return "", err
	}

	if flow.Stage != models.StageOtpSent {
		flow.Stage = models.StageOtpSent
		if err := s.pending.Save(ctx, flow); err != nil {
			return "", err
		}
	}
	return code, nil
}

// SubmitOTP verifies the code and advances the flow
func (s *RegistrationService) SubmitOTP(ctx context.Context, flowID, code string) (*models.PendingRegistration, error) {
	flow, err := s.pending.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if flow.Stage != models.StageOtpSent {
		return nil, models.ErrInvalidFlowStage
	}

	if err := s.otp.Verify(ctx, flow.MobileNumber, code); err != nil {
		return nil, err
	}

	flow.Stage = models.StageOtpVerified
	if err := s.pending.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// Finalize completes a verified flow: creates the account on the
// registration path, stamps the login on the login path, and issues the
// session token. The flow is discarded afterwards.
func (s *RegistrationService) Finalize(ctx context.Context, flowID, password string) (*models.TokenResponse, error) {
	flow, err := s.pending.Get(ctx, flowID)
	if err != nil {
		return nil, err
	}
	if flow.Stage != models.StageOtpVerified {
		return nil, models.ErrInvalidFlowStage
	}

	var account *models.User
	if flow.IsNewAccount {
		account, err = s.createAccount(ctx, flow, password)
	} else {
		account, err = s.loginAccount(ctx, flow)
	}
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(account.ID.Hex(), account.MobileNumber, account.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.pending.Delete(ctx, flowID); err != nil {
		// The flow will expire on its own; the finalization already
		// succeeded
		s.logger.Warn("failed to delete finalized flow",
			zap.String("flow_id", flowID), zap.Error(err))
	}

	path := "login"
	if flow.IsNewAccount {
		path = "register"
	}
	observability.TokensIssued.WithLabelValues(path).Inc()
	observability.RegistrationFlows.WithLabelValues("finalized").Inc()

	return &models.TokenResponse{Token: signed, Account: account}, nil
}

func (s *RegistrationService) createAccount(ctx context.Context, flow *models.PendingRegistration, password string) (*models.User, error) {
	var passwordHash string
	if password != "" {
		if s.passwordPolicy {
			if err := utils.ValidatePasswordStrength(password); err != nil {
				return nil, models.ErrWeakCredential
			}
		}
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = hash
	}

	identity := flow.Identity
	user := &models.User{
		NIDNumber:              identity.NIDNumber,
		BirthCertificateNumber: identity.BirthCertificateNumber,
		FullNameBN:             identity.FullNameBN,
		FullNameEN:             identity.FullNameEN,
		FatherNameBN:           identity.FatherNameBN,
		MotherNameBN:           identity.MotherNameBN,
		DateOfBirth:            identity.DateOfBirth,
		Gender:                 identity.Gender,
		MobileNumber:           flow.MobileNumber,
		Email:                  identity.Email,
		PermanentAddress:       identity.PermanentAddress,
		PasswordHash:           passwordHash,
		Role:                   models.RoleTenant,
		VerificationStatus:     models.VerificationStatusPending,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			// Another finalize for the same identity won the race; hand
			// back the account it created
			existing, ferr := s.users.FindByNID(ctx, identity.NIDNumber)
			if ferr != nil {
				return nil, ferr
			}
			return existing, nil
		}
		return nil, err
	}

	s.logger.Info("account created",
		zap.String("account_id", user.ID.Hex()),
		zap.String("nid_number", observability.MaskNID(user.NIDNumber)))
	return user, nil
}

func (s *RegistrationService) loginAccount(ctx context.Context, flow *models.PendingRegistration) (*models.User, error) {
	account, err := s.users.FindByNID(ctx, flow.IDNumber)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			// Login flows opened by mobile number carry the NID from the
			// account itself, so this only happens if the account was
			// deleted mid-flow
			return nil, models.ErrAccountNotFound
		}
		return nil, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, account.ID.Hex(), now); err != nil {
		s.logger.Warn("failed to stamp last login",
			zap.String("account_id", account.ID.Hex()), zap.Error(err))
	} else {
		account.LastLoginAt = &now
	}
	return account, nil
}

// Flow returns the current state of a pending flow
func (s *RegistrationService) Flow(ctx context.Context, flowID string) (*models.PendingRegistration, error) {
	return s.pending.Get(ctx, flowID)
}

// Cancel abandons a flow
func (s *RegistrationService) Cancel(ctx context.Context, flowID string) error {
	if _, err := s.pending.Get(ctx, flowID); err != nil {
		return err
	}
	if err := s.pending.Delete(ctx, flowID); err != nil {
		return err
	}
	observability.RegistrationFlows.WithLabelValues("cancelled").Inc()
	return nil
}
