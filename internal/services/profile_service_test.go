package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type profileHarness struct {
	svc        *ProfileService
	store      *MemoryProfileStore
	users      *MemoryUserStore
	dispatcher *LogSMSDispatcher
	account    *models.User
}

func newProfileHarness(t *testing.T) *profileHarness {
	t.Helper()

	registry, err := NewMockRegistry()
	require.NoError(t, err)
	registry.latency = 0

	users := NewMemoryUserStore()
	account := &models.User{
		NIDNumber:          seededNID,
		FullNameBN:         "মোহাম্মদ রহিম উদ্দিন",
		FullNameEN:         "Mohammad Rahim Uddin",
		MobileNumber:       seededMobile,
		Email:              "rahim.uddin@example.com",
		PermanentAddress:   "House 12, Road 5, Dhanmondi, Dhaka",
		Gender:             "male",
		PasswordHash:       "$2a$10$fakehashfortests",
		Role:               models.RoleTenant,
		VerificationStatus: models.VerificationStatusPending,
	}
	require.NoError(t, users.Create(context.Background(), account))

	store := NewMemoryProfileStore()
	dispatcher := NewLogSMSDispatcher(logging.Logger)
	svc := NewProfileService(store, users, registry, dispatcher, logging.Logger)

	return &profileHarness{svc: svc, store: store, users: users, dispatcher: dispatcher, account: account}
}

func (h *profileHarness) score(t *testing.T) int {
	t.Helper()
	score, err := h.svc.CompletionScore(context.Background(), h.account.ID)
	require.NoError(t, err)
	return score
}

// completeProfile fills every section and document type
func (h *profileHarness) completeProfile(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	uid := h.account.ID

	require.NoError(t, h.svc.AddEmergencyContact(ctx, uid, &models.EmergencyContact{
		Name: "Karim Mia", Relation: "brother", MobileNumber: "01811223344",
	}))
	require.NoError(t, h.svc.AddFamilyMember(ctx, uid, &models.FamilyMember{
		Name: "Amina Begum", Relation: "spouse",
	}))
	require.NoError(t, h.svc.AddHouseWorker(ctx, uid, &models.HouseWorker{
		Name: "Rina Akter", WorkType: "cleaning",
	}))
	for _, dt := range []string{
		models.DocumentTypeNID,
		models.DocumentTypePhoto,
		models.DocumentTypeAgreement,
		models.DocumentTypeUtilityBill,
	} {
		require.NoError(t, h.svc.AddDocument(ctx, uid, &models.DocumentAttachment{
			DocumentType: dt, FileName: dt + ".jpg",
		}))
	}
	require.NoError(t, h.svc.SaveResidence(ctx, uid, &models.Residence{
		HouseNumber: "12", Area: "Dhanmondi", District: "Dhaka",
	}))
	require.NoError(t, h.svc.SaveLandlord(ctx, uid, &models.Landlord{
		Name: "Fatema Khatun", NIDNumber: "9876543210", MobileNumber: "01898765432",
	}))
}

func TestCompletionScoreProgression(t *testing.T) {
	h := newProfileHarness(t)
	ctx := context.Background()
	uid := h.account.ID

	// 5 basic fields + password credential present
	assert.Equal(t, 6*100/15, h.score(t))

	require.NoError(t, h.svc.AddEmergencyContact(ctx, uid, &models.EmergencyContact{
		Name: "Karim Mia", Relation: "brother", MobileNumber: "01811223344",
	}))
	assert.Equal(t, 7*100/15, h.score(t))

	require.NoError(t, h.svc.AddDocument(ctx, uid, &models.DocumentAttachment{
		DocumentType: models.DocumentTypeNID, FileName: "nid.jpg",
	}))
	assert.Equal(t, 8*100/15, h.score(t))

	// A second document of the same type does not score again
	require.NoError(t, h.svc.AddDocument(ctx, uid, &models.DocumentAttachment{
		DocumentType: models.DocumentTypeNID, FileName: "nid-back.jpg",
	}))
	assert.Equal(t, 8*100/15, h.score(t))

	h.completeProfile(t)
	assert.Equal(t, 100, h.score(t))

	// The persisted account tracks the score and flips to verified
	account, err := h.users.FindByID(ctx, uid.Hex())
	require.NoError(t, err)
	assert.Equal(t, 100, account.CompletionScore)
	assert.Equal(t, models.VerificationStatusVerified, account.VerificationStatus)
}

func TestFamilyMemberNIDVerification(t *testing.T) {
	h := newProfileHarness(t)
	ctx := context.Background()
	uid := h.account.ID

	known := &models.FamilyMember{Name: "Fatema Khatun", Relation: "sister", NIDNumber: "9876543210"}
	require.NoError(t, h.svc.AddFamilyMember(ctx, uid, known))
	assert.True(t, known.NIDVerified)

	unknown := &models.FamilyMember{Name: "Unknown Person", Relation: "cousin", NIDNumber: "1111111111"}
	require.NoError(t, h.svc.AddFamilyMember(ctx, uid, unknown))
	assert.False(t, unknown.NIDVerified)
}

func TestPreviousLandlordReferences(t *testing.T) {
	h := newProfileHarness(t)
	ctx := context.Background()
	uid := h.account.ID

	before := h.score(t)

	known := &models.PreviousLandlord{
		Name: "Abdul Karim", MobileNumber: "01711998877",
		Address: "House 3, Road 2, Mirpur, Dhaka", NIDNumber: "9876543210",
		LeavingReason: "family moved closer to work", StayDuration: "2 years",
	}
	require.NoError(t, h.svc.AddPreviousLandlord(ctx, uid, known))
	assert.True(t, known.NIDVerified)

	unknown := &models.PreviousLandlord{
		Name: "Jashim Uddin", MobileNumber: "01822334455",
		Address: "Flat B4, Uttara, Dhaka", NIDNumber: "1111111111",
		LeavingReason: "lease ended",
	}
	require.NoError(t, h.svc.AddPreviousLandlord(ctx, uid, unknown))
	assert.False(t, unknown.NIDVerified)

	refs, err := h.svc.ListPreviousLandlords(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
	for _, ref := range refs {
		assert.Equal(t, uid, ref.UserID)
	}

	// References are background checks, not completion facts
	assert.Equal(t, before, h.score(t))
}

func TestHouseWorkerPoliceClearance(t *testing.T) {
	h := newProfileHarness(t)
	ctx := context.Background()
	uid := h.account.ID

	flagged := &models.HouseWorker{Name: "Selim Mia", NIDNumber: "6666777788899"}
	require.NoError(t, h.svc.AddHouseWorker(ctx, uid, flagged))
	assert.False(t, flagged.PoliceClearance)
	assert.True(t, flagged.DangerFlag)
	assert.NotEmpty(t, flagged.ClearanceMessage)

	// Unknown to the clearance registry defaults to clear
	clear := &models.HouseWorker{Name: "Rina Akter", NIDNumber: "9876543210"}
	require.NoError(t, h.svc.AddHouseWorker(ctx, uid, clear))
	assert.True(t, clear.PoliceClearance)
	assert.False(t, clear.DangerFlag)
}

func TestLandlordIdentityVerification(t *testing.T) {
	h := newProfileHarness(t)
	ctx := context.Background()
	uid := h.account.ID

	landlord := &models.Landlord{Name: "Fatema Khatun", NIDNumber: "9876543210", MobileNumber: "01898765432"}
	require.NoError(t, h.svc.SaveLandlord(ctx, uid, landlord))

	saved, err := h.svc.GetLandlord(ctx, uid)
	require.NoError(t, err)
	assert.True(t, saved.Verified)
	assert.NotNil(t, saved.VerificationDate)
}

func TestLandlordNotifiedWhenProfileComplete(t *testing.T) {
	h := newProfileHarness(t)
	ctx := context.Background()

	h.completeProfile(t)
	require.Equal(t, 100, h.score(t))

	notifications, err := h.store.ListNotifications(ctx, h.account.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notifications)
	assert.Equal(t, "landlord_verification", notifications[0].Type)

	// The landlord got pinged on their registered number
	var pinged bool
	for _, msg := range h.dispatcher.Sent() {
		if msg.MobileNumber == "01898765432" {
			pinged = true
		}
	}
	assert.True(t, pinged, "expected an SMS to the landlord")
}

func TestVerificationSummaryGatedOnCompletion(t *testing.T) {
	h := newProfileHarness(t)
	ctx := context.Background()

	_, err := h.svc.VerificationSummary(ctx, h.account.ID)
	require.ErrorIs(t, err, models.ErrProfileIncomplete)

	h.completeProfile(t)

	summary, err := h.svc.VerificationSummary(ctx, h.account.ID)
	require.NoError(t, err)
	assert.Contains(t, summary, "Mohammad Rahim Uddin")
	assert.Contains(t, summary, "123********23")
	assert.NotContains(t, summary, seededNID, "summary must not leak the full NID")
	assert.Contains(t, summary, "Dhanmondi")
}

func TestSummaryForUnknownAccount(t *testing.T) {
	h := newProfileHarness(t)

	_, err := h.svc.VerificationSummary(context.Background(), primitive.NewObjectID())
	require.ErrorIs(t, err, models.ErrAccountNotFound)
}
