package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()

	err := LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, AppConfig)

	assert.Equal(t, 8080, AppConfig.Port)
	assert.Equal(t, "development", AppConfig.Environment)
	assert.Equal(t, "thikana", AppConfig.MongoDatabase)
	assert.Equal(t, "users", AppConfig.UserCollection)
	assert.Equal(t, "otps", AppConfig.OTPCollection)
	assert.Equal(t, 5*time.Minute, AppConfig.OTPExpiry)
	assert.Equal(t, 60*time.Second, AppConfig.OTPResendCooldown)
	assert.Equal(t, 15*time.Minute, AppConfig.PendingFlowTTL)
	assert.Equal(t, time.Hour, AppConfig.JWTExpiry)
	assert.Equal(t, "thikana-verification", AppConfig.JWTIssuer)
	assert.Equal(t, "thikana-tenants", AppConfig.JWTAudience)
	assert.False(t, AppConfig.OTPDemoMode)
	assert.True(t, AppConfig.PasswordPolicyEnforced)
	assert.False(t, AppConfig.IdentityCrossCheckStrict)
	assert.Equal(t, "mock", AppConfig.IdentityRegistryMode)
}

func TestLoadConfig_Overrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("PORT", "9090")
	os.Setenv("OTP_EXPIRY", "90s")
	os.Setenv("OTP_RESEND_COOLDOWN", "30s")
	os.Setenv("OTP_DEMO_MODE", "true")
	os.Setenv("JWT_SECRET", "unit-test-secret")
	os.Setenv("IDENTITY_CROSSCHECK_STRICT", "true")
	defer os.Clearenv()

	err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, AppConfig.Port)
	assert.Equal(t, 90*time.Second, AppConfig.OTPExpiry)
	assert.Equal(t, 30*time.Second, AppConfig.OTPResendCooldown)
	assert.True(t, AppConfig.OTPDemoMode)
	assert.Equal(t, "unit-test-secret", AppConfig.JWTSecret)
	assert.True(t, AppConfig.IdentityCrossCheckStrict)
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	os.Clearenv()
	os.Setenv("PORT", "not-a-number")
	defer os.Clearenv()

	err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	os.Clearenv()
	os.Setenv("OTP_EXPIRY", "five minutes")
	defer os.Clearenv()

	err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("ENVIRONMENT", "production")
	defer os.Clearenv()

	err := LoadConfig()
	assert.Error(t, err)
}
