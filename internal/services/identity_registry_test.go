package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thikana-bd/app-thikana/internal/models"
)

func newTestRegistry(t *testing.T) *MockRegistry {
	t.Helper()
	registry, err := NewMockRegistry()
	require.NoError(t, err)
	registry.latency = 0
	return registry
}

func TestMockRegistryResolve(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	rec, err := registry.Resolve(ctx, seededNID)
	require.NoError(t, err)
	assert.Equal(t, "Mohammad Rahim Uddin", rec.FullNameEN)
	assert.Equal(t, seededMobile, rec.MobileNumber)

	// The same identity resolves by birth certificate number
	byBirthCert, err := registry.Resolve(ctx, "19900101123456789")
	require.NoError(t, err)
	assert.Equal(t, rec.NIDNumber, byBirthCert.NIDNumber)

	_, err = registry.Resolve(ctx, "0000000000")
	require.ErrorIs(t, err, models.ErrIdentityNotFound)
}

func TestMockRegistryResolveReturnsCopy(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	rec, err := registry.Resolve(ctx, seededNID)
	require.NoError(t, err)
	rec.MobileNumber = "tampered"

	again, err := registry.Resolve(ctx, seededNID)
	require.NoError(t, err)
	assert.Equal(t, seededMobile, again.MobileNumber)
}

func TestMockRegistryCrossCheck(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	match, err := registry.CrossCheck(ctx, seededNID, seededMobile)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = registry.CrossCheck(ctx, seededNID, "01911112222")
	require.NoError(t, err)
	assert.False(t, match)

	// No mobile on file cannot contradict the claim
	match, err = registry.CrossCheck(ctx, "5555444433322", "01911112222")
	require.NoError(t, err)
	assert.True(t, match)

	_, err = registry.CrossCheck(ctx, "0000000000", seededMobile)
	require.ErrorIs(t, err, models.ErrIdentityNotFound)
}

func TestMockRegistryPoliceClearance(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	flagged, err := registry.PoliceClearance(ctx, "6666777788899")
	require.NoError(t, err)
	assert.False(t, flagged.Valid)
	assert.Equal(t, models.DangerLevelHigh, flagged.DangerLevel)

	unknown, err := registry.PoliceClearance(ctx, "0000000000")
	require.NoError(t, err)
	assert.True(t, unknown.Valid)
	assert.Equal(t, models.DangerLevelLow, unknown.DangerLevel)
}

func TestMockRegistryHonorsCancellation(t *testing.T) {
	registry, err := NewMockRegistry()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = registry.Resolve(ctx, seededNID)
	require.ErrorIs(t, err, context.Canceled)
}
