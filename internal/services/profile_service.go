package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// completionFactCount is the number of profile facts the score is
// computed over: 5 basic fields, 6 section flags, 4 document types.
const completionFactCount = 15

// CompletionThreshold is the score required for verification-gated
// actions (summary download, landlord notification).
const CompletionThreshold = 90

// ProfileService manages the tenant profile sections and keeps the
// account's completion score current after every write.
type ProfileService struct {
	store      ProfileStore
	users      UserStore
	registry   IdentityRegistry
	dispatcher SMSDispatcher
	logger     *logging.SafeLogger
}

// NewProfileService creates a profile service
func NewProfileService(store ProfileStore, users UserStore, registry IdentityRegistry, dispatcher SMSDispatcher, logger *logging.SafeLogger) *ProfileService {
	return &ProfileService{
		store:      store,
		users:      users,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// AddEmergencyContact stores a contact and refreshes the score
func (s *ProfileService) AddEmergencyContact(ctx context.Context, userID primitive.ObjectID, c *models.EmergencyContact) error {
	c.UserID = userID
	if err := s.store.AddEmergencyContact(ctx, c); err != nil {
		return err
	}
	return s.refreshScore(ctx, userID)
}

// ListEmergencyContacts lists the account's emergency contacts
func (s *ProfileService) ListEmergencyContacts(ctx context.Context, userID primitive.ObjectID) ([]models.EmergencyContact, error) {
	return s.store.ListEmergencyContacts(ctx, userID)
}

// AddFamilyMember stores a household member. Members declared with an
// NID are checked against the identity registry and flagged verified
// when the record resolves.
func (s *ProfileService) AddFamilyMember(ctx context.Context, userID primitive.ObjectID, m *models.FamilyMember) error {
	m.UserID = userID
	if m.NIDNumber != "" {
		if _, err := s.registry.Resolve(ctx, m.NIDNumber); err == nil {
			m.NIDVerified = true
		} else if !errors.Is(err, models.ErrIdentityNotFound) {
			return err
		}
	}
	if err := s.store.AddFamilyMember(ctx, m); err != nil {
		return err
	}
	return s.refreshScore(ctx, userID)
}

// ListFamilyMembers lists the account's household members
func (s *ProfileService) ListFamilyMembers(ctx context.Context, userID primitive.ObjectID) ([]models.FamilyMember, error) {
	return s.store.ListFamilyMembers(ctx, userID)
}

// AddHouseWorker stores a domestic worker. Workers declared with an NID
// go through the police clearance registry; an adverse record flags the
// entry but does not block the write.
func (s *ProfileService) AddHouseWorker(ctx context.Context, userID primitive.ObjectID, w *models.HouseWorker) error {
	w.UserID = userID
	if w.NIDNumber != "" {
		clearance, err := s.registry.PoliceClearance(ctx, w.NIDNumber)
		if err != nil {
			return err
		}
		w.PoliceClearance = clearance.Valid
		w.ClearanceMessage = clearance.Message
		w.DangerFlag = clearance.DangerLevel == models.DangerLevelHigh
		if w.DangerFlag {
			s.logger.Warn("house worker flagged by clearance registry",
				zap.String("user_id", userID.Hex()),
				zap.String("nid_number", observability.MaskNID(w.NIDNumber)))
		}
	}
	if err := s.store.AddHouseWorker(ctx, w); err != nil {
		return err
	}
	return s.refreshScore(ctx, userID)
}

// ListHouseWorkers lists the account's house workers
func (s *ProfileService) ListHouseWorkers(ctx context.Context, userID primitive.ObjectID) ([]models.HouseWorker, error) {
	return s.store.ListHouseWorkers(ctx, userID)
}

// SaveResidence upserts the residence section
func (s *ProfileService) SaveResidence(ctx context.Context, userID primitive.ObjectID, r *models.Residence) error {
	r.UserID = userID
	if err := s.store.SaveResidence(ctx, r); err != nil {
		return err
	}
	if err := s.refreshScore(ctx, userID); err != nil {
		return err
	}
	s.notifyLandlordIfComplete(ctx, userID)
	return nil
}

// GetResidence returns the residence section
func (s *ProfileService) GetResidence(ctx context.Context, userID primitive.ObjectID) (*models.Residence, error) {
	return s.store.GetResidence(ctx, userID)
}

// SaveLandlord upserts the landlord section. Landlords declared with an
// NID are verified against the identity registry.
func (s *ProfileService) SaveLandlord(ctx context.Context, userID primitive.ObjectID, l *models.Landlord) error {
	l.UserID = userID
	if l.NIDNumber != "" {
		if _, err := s.registry.Resolve(ctx, l.NIDNumber); err == nil {
			now := time.Now()
			l.Verified = true
			l.VerificationDate = &now
		} else if !errors.Is(err, models.ErrIdentityNotFound) {
			return err
		}
	}
	if err := s.store.SaveLandlord(ctx, l); err != nil {
		return err
	}
	if err := s.refreshScore(ctx, userID); err != nil {
		return err
	}
	s.notifyLandlordIfComplete(ctx, userID)
	return nil
}

// GetLandlord returns the landlord section
func (s *ProfileService) GetLandlord(ctx context.Context, userID primitive.ObjectID) (*models.Landlord, error) {
	return s.store.GetLandlord(ctx, userID)
}

// AddPreviousLandlord records a prior tenancy reference. References
// declared with an NID are checked against the identity registry; they
// do not feed the completion score.
func (s *ProfileService) AddPreviousLandlord(ctx context.Context, userID primitive.ObjectID, p *models.PreviousLandlord) error {
	p.UserID = userID
	if p.NIDNumber != "" {
		if _, err := s.registry.Resolve(ctx, p.NIDNumber); err == nil {
			p.NIDVerified = true
		} else if !errors.Is(err, models.ErrIdentityNotFound) {
			return err
		}
	}
	return s.store.AddPreviousLandlord(ctx, p)
}

// ListPreviousLandlords lists the account's prior tenancy references
func (s *ProfileService) ListPreviousLandlords(ctx context.Context, userID primitive.ObjectID) ([]models.PreviousLandlord, error) {
	return s.store.ListPreviousLandlords(ctx, userID)
}

// AddDocument stores document metadata and refreshes the score
func (s *ProfileService) AddDocument(ctx context.Context, userID primitive.ObjectID, d *models.DocumentAttachment) error {
	d.UserID = userID
	if err := s.store.AddDocument(ctx, d); err != nil {
		return err
	}
	return s.refreshScore(ctx, userID)
}

// ListDocuments lists the account's document metadata
func (s *ProfileService) ListDocuments(ctx context.Context, userID primitive.ObjectID) ([]models.DocumentAttachment, error) {
	return s.store.ListDocuments(ctx, userID)
}

// CompletionScore recomputes the profile completion percentage:
// completed facts * 100 / 15, integer division.
func (s *ProfileService) CompletionScore(ctx context.Context, userID primitive.ObjectID) (int, error) {
	account, err := s.users.FindByID(ctx, userID.Hex())
	if err != nil {
		return 0, err
	}

	completed := 0

	// Basic identity fields
	for _, present := range []bool{
		account.MobileNumber != "",
		account.FullNameEN != "",
		account.Email != "",
		account.PermanentAddress != "",
		account.Gender != "",
	} {
		if present {
			completed++
		}
	}

	// Section presence
	if contacts, err := s.store.ListEmergencyContacts(ctx, userID); err == nil && len(contacts) > 0 {
		completed++
	}
	if family, err := s.store.ListFamilyMembers(ctx, userID); err == nil && len(family) > 0 {
		completed++
	}
	if workers, err := s.store.ListHouseWorkers(ctx, userID); err == nil && len(workers) > 0 {
		completed++
	}
	if _, err := s.store.GetResidence(ctx, userID); err == nil {
		completed++
	}
	if _, err := s.store.GetLandlord(ctx, userID); err == nil {
		completed++
	}
	if account.PasswordHash != "" {
		completed++
	}

	// Required document types
	docs, err := s.store.ListDocuments(ctx, userID)
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(docs))
	for _, d := range docs {
		present[d.DocumentType] = true
	}
	for _, dt := range []string{
		models.DocumentTypeNID,
		models.DocumentTypePhoto,
		models.DocumentTypeAgreement,
		models.DocumentTypeUtilityBill,
	} {
		if present[dt] {
			completed++
		}
	}

	return completed * 100 / completionFactCount, nil
}

// refreshScore recomputes and persists the score, flipping the account
// to verified once it crosses the threshold
func (s *ProfileService) refreshScore(ctx context.Context, userID primitive.ObjectID) error {
	score, err := s.CompletionScore(ctx, userID)
	if err != nil {
		return err
	}
	status := ""
	if score >= CompletionThreshold {
		status = models.VerificationStatusVerified
	}
	return s.users.UpdateCompletionScore(ctx, userID.Hex(), score, status)
}

// notifyLandlordIfComplete writes a notification and pings the landlord
// once the profile crosses the threshold. Fire and forget: failures are
// logged, never surfaced to the profile write.
func (s *ProfileService) notifyLandlordIfComplete(ctx context.Context, userID primitive.ObjectID) {
	account, err := s.users.FindByID(ctx, userID.Hex())
	if err != nil || account.CompletionScore < CompletionThreshold {
		return
	}
	landlord, err := s.store.GetLandlord(ctx, userID)
	if err != nil {
		return
	}

	name := account.FullNameEN
	if name == "" {
		name = account.FullNameBN
	}
	notification := &models.Notification{
		UserID:    userID,
		MessageBN: fmt.Sprintf("ভাড়াটিয়া %s এর প্রোফাইল যাচাই সম্পন্ন হয়েছে।", account.FullNameBN),
		MessageEN: fmt.Sprintf("Tenant %s has completed profile verification.", name),
		Type:      "landlord_verification",
		Important: true,
	}
	if err := s.store.AddNotification(ctx, notification); err != nil {
		s.logger.Error("failed to write landlord notification",
			zap.String("user_id", userID.Hex()), zap.Error(err))
		return
	}

	if landlord.MobileNumber != "" {
		if err := s.dispatcher.Send(ctx, landlord.MobileNumber, notification.MessageEN); err != nil {
			s.logger.Warn("failed to ping landlord",
				zap.String("user_id", userID.Hex()), zap.Error(err))
		}
	}
}

// VerificationSummary renders the plain-text verification certificate.
// Requires a completion score at or above the threshold.
func (s *ProfileService) VerificationSummary(ctx context.Context, userID primitive.ObjectID) (string, error) {
	account, err := s.users.FindByID(ctx, userID.Hex())
	if err != nil {
		return "", err
	}
	if account.CompletionScore < CompletionThreshold {
		return "", models.ErrProfileIncomplete
	}

	var b strings.Builder
	b.WriteString("THIKANA TENANT VERIFICATION SUMMARY\n")
	b.WriteString("===================================\n\n")
	fmt.Fprintf(&b, "Name:                %s\n", account.FullNameEN)
	fmt.Fprintf(&b, "Name (Bangla):       %s\n", account.FullNameBN)
	fmt.Fprintf(&b, "NID:                 %s\n", observability.MaskNID(account.NIDNumber))
	fmt.Fprintf(&b, "Mobile:              %s\n", account.MobileNumber)
	fmt.Fprintf(&b, "Verification status: %s\n", account.VerificationStatus)
	fmt.Fprintf(&b, "Completion score:    %d%%\n", account.CompletionScore)

	if residence, err := s.store.GetResidence(ctx, userID); err == nil {
		fmt.Fprintf(&b, "\nResidence: %s, %s, %s\n",
			residence.HouseNumber, residence.Area, residence.District)
	}
	if landlord, err := s.store.GetLandlord(ctx, userID); err == nil {
		verified := "no"
		if landlord.Verified {
			verified = "yes"
		}
		fmt.Fprintf(&b, "Landlord: %s (identity verified: %s)\n", landlord.Name, verified)
	}
	if docs, err := s.store.ListDocuments(ctx, userID); err == nil {
		types := make([]string, 0, len(docs))
		seen := make(map[string]bool)
		for _, d := range docs {
			if !seen[d.DocumentType] {
				seen[d.DocumentType] = true
				types = append(types, d.DocumentType)
			}
		}
		fmt.Fprintf(&b, "Documents on file: %s\n", strings.Join(types, ", "))
	}

	fmt.Fprintf(&b, "\nGenerated: %s\n", time.Now().Format(time.RFC1123))
	return b.String(), nil
}
