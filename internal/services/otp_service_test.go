package services

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
)

const testMobile = "01712345678"

var codePattern = regexp.MustCompile(`^\d{6}$`)

// testClock lets tests move time forward without sleeping
type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestOTPService() (*OTPService, *LogSMSDispatcher, *testClock) {
	dispatcher := NewLogSMSDispatcher(logging.Logger)
	svc := NewOTPService(NewMemoryOTPStore(), dispatcher, 5*time.Minute, 60*time.Second, logging.Logger)
	clock := &testClock{current: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	return svc, dispatcher, clock
}

func TestIssueAndVerify(t *testing.T) {
	svc, dispatcher, _ := newTestOTPService()
	ctx := context.Background()

	code, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)
	assert.Regexp(t, codePattern, code)
	require.Len(t, dispatcher.Sent(), 1)
	assert.Contains(t, dispatcher.Sent()[0].Message, code)

	require.NoError(t, svc.Verify(ctx, testMobile, code))
}

func TestVerifyIsSingleUse(t *testing.T) {
	svc, _, _ := newTestOTPService()
	ctx := context.Background()

	code, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, testMobile, code))
	err = svc.Verify(ctx, testMobile, code)
	require.ErrorIs(t, err, models.ErrInvalidOrExpiredOTP)
}

func TestIssueCooldown(t *testing.T) {
	svc, _, clock := newTestOTPService()
	ctx := context.Background()

	_, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	clock.advance(10 * time.Second)
	_, err = svc.Issue(ctx, testMobile)
	rl, ok := models.AsRateLimited(err)
	require.True(t, ok, "expected a rate limited error, got %v", err)
	assert.Equal(t, 50, rl.RetryAfterSeconds)

	wait, err := svc.ResendWaitSeconds(ctx, testMobile)
	require.NoError(t, err)
	assert.Equal(t, 50, wait)

	clock.advance(51 * time.Second)
	_, err = svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	wait, err = svc.ResendWaitSeconds(ctx, testMobile)
	require.NoError(t, err)
	assert.Equal(t, 60, wait)
}

func TestCooldownDoesNotBlockOtherNumbers(t *testing.T) {
	svc, _, _ := newTestOTPService()
	ctx := context.Background()

	_, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	_, err = svc.Issue(ctx, "01898765432")
	require.NoError(t, err)
}

func TestIssueSupersedesPreviousCodes(t *testing.T) {
	svc, _, clock := newTestOTPService()
	ctx := context.Background()

	first, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	clock.advance(61 * time.Second)
	second, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	if first != second {
		err = svc.Verify(ctx, testMobile, first)
		require.ErrorIs(t, err, models.ErrInvalidOrExpiredOTP, "superseded code must not verify")
	}
	require.NoError(t, svc.Verify(ctx, testMobile, second))
}

func TestVerifyExpiredCode(t *testing.T) {
	svc, _, clock := newTestOTPService()
	ctx := context.Background()

	code, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	clock.advance(5*time.Minute + time.Second)
	err = svc.Verify(ctx, testMobile, code)
	require.ErrorIs(t, err, models.ErrInvalidOrExpiredOTP)
}

func TestVerifyWrongCode(t *testing.T) {
	svc, _, _ := newTestOTPService()
	ctx := context.Background()

	code, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = svc.Verify(ctx, testMobile, wrong)
	require.ErrorIs(t, err, models.ErrInvalidOrExpiredOTP)

	// The right code still works afterwards
	require.NoError(t, svc.Verify(ctx, testMobile, code))
}

func TestVerifyMalformedCode(t *testing.T) {
	svc, _, _ := newTestOTPService()
	ctx := context.Background()

	err := svc.Verify(ctx, testMobile, "12ab56")
	require.ErrorIs(t, err, models.ErrInvalidOrExpiredOTP)
	err = svc.Verify(ctx, testMobile, "12345")
	require.ErrorIs(t, err, models.ErrInvalidOrExpiredOTP)
}

// failingDispatcher always fails delivery
type failingDispatcher struct{}

func (failingDispatcher) Send(ctx context.Context, mobileNumber, message string) error {
	return fmt.Errorf("%w: gateway down", models.ErrDispatchFailed)
}

func TestDispatchFailureKeepsCodeValid(t *testing.T) {
	svc := NewOTPService(NewMemoryOTPStore(), failingDispatcher{}, 5*time.Minute, 60*time.Second, logging.Logger)
	ctx := context.Background()

	code, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err, "dispatch failure must not fail issuance")
	require.NoError(t, svc.Verify(ctx, testMobile, code))
}

func TestStoreKeepsSingleActiveCodePerNumber(t *testing.T) {
	store := NewMemoryOTPStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := &models.OTPRecord{
		MobileNumber: testMobile,
		Code:         "111111",
		CreatedAt:    now,
		ExpiresAt:    now.Add(5 * time.Minute),
	}
	require.NoError(t, store.Insert(ctx, first))

	second := &models.OTPRecord{
		MobileNumber: testMobile,
		Code:         "222222",
		CreatedAt:    now,
		ExpiresAt:    now.Add(5 * time.Minute),
	}
	require.ErrorIs(t, store.Insert(ctx, second), ErrActiveCodeExists)

	// Superseding clears the slot
	count, err := store.SupersedeActive(ctx, testMobile)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.NoError(t, store.Insert(ctx, second))
}

// skipSupersedeStore simulates a concurrent issuance landing between
// the supersede and insert steps: supersession sees nothing and the
// insert collides with the other issuance's code.
type skipSupersedeStore struct {
	*MemoryOTPStore
}

func (s *skipSupersedeStore) SupersedeActive(ctx context.Context, mobileNumber string) (int64, error) {
	return 0, nil
}

func TestConcurrentIssueLeavesOneUsableCode(t *testing.T) {
	store := NewMemoryOTPStore()
	svc := NewOTPService(&skipSupersedeStore{store}, NewLogSMSDispatcher(logging.Logger), 5*time.Minute, 60*time.Second, logging.Logger)
	clock := &testClock{current: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	ctx := context.Background()

	// The other issuance's code is already in place, cooldown elapsed
	racerCode := "654321"
	require.NoError(t, store.Insert(ctx, &models.OTPRecord{
		MobileNumber: testMobile,
		Code:         racerCode,
		CreatedAt:    clock.now().Add(-2 * time.Minute),
		ExpiresAt:    clock.now().Add(3 * time.Minute),
	}))

	_, err := svc.Issue(ctx, testMobile)
	rl, ok := models.AsRateLimited(err)
	require.True(t, ok, "losing the issuance race must read as rate limited, got %v", err)
	assert.Positive(t, rl.RetryAfterSeconds)

	// The code that landed first is still the one that verifies
	require.NoError(t, svc.Verify(ctx, testMobile, racerCode))
}

func TestExpiredUnusedCodeDoesNotBlockReissue(t *testing.T) {
	svc, _, clock := newTestOTPService()
	ctx := context.Background()

	stale, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)

	clock.advance(6 * time.Minute)
	code, err := svc.Issue(ctx, testMobile)
	require.NoError(t, err)
	require.NoError(t, svc.Verify(ctx, testMobile, code))

	if stale != code {
		err = svc.Verify(ctx, testMobile, stale)
		require.ErrorIs(t, err, models.ErrInvalidOrExpiredOTP)
	}
}
