package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(expiry time.Duration) *Issuer {
	return NewIssuer("test-signing-key", "test-issuer", "test-audience", expiry)
}

func TestIssueAndValidate(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	tokenString, err := issuer.Issue("account-123", "01712345678", "tenant")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := issuer.Validate(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "account-123", claims.Subject)
	assert.Equal(t, "01712345678", claims.MobileNumber)
	assert.Equal(t, "tenant", claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "jti should be set")
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestIssueUniqueJTI(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	t1, err := issuer.Issue("account-123", "01712345678", "tenant")
	require.NoError(t, err)
	t2, err := issuer.Issue("account-123", "01712345678", "tenant")
	require.NoError(t, err)

	c1, err := issuer.Validate(t1)
	require.NoError(t, err)
	c2, err := issuer.Validate(t2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestValidateMalformedToken(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	_, err := issuer.Validate("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateExpiredToken(t *testing.T) {
	issuer := newTestIssuer(-time.Minute)

	tokenString, err := issuer.Issue("account-123", "01712345678", "tenant")
	require.NoError(t, err)

	_, err = issuer.Validate(tokenString)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateWrongKey(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	other := NewIssuer("other-signing-key", "test-issuer", "test-audience", time.Hour)

	tokenString, err := issuer.Issue("account-123", "01712345678", "tenant")
	require.NoError(t, err)

	_, err = other.Validate(tokenString)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateWrongIssuer(t *testing.T) {
	issuer := newTestIssuer(time.Hour)
	other := NewIssuer("test-signing-key", "another-issuer", "test-audience", time.Hour)

	tokenString, err := issuer.Issue("account-123", "01712345678", "tenant")
	require.NoError(t, err)

	_, err = other.Validate(tokenString)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
