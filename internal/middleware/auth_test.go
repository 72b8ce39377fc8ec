package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thikana-bd/app-thikana/internal/token"
)

func newAuthRouter(issuer *token.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/", AuthMiddleware(issuer))
	authed.GET("/me", func(c *gin.Context) {
		claims, _ := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject, "role": claims.Role})
	})
	authed.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	authed.GET("/tenant/:id", RequireSelfOrAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doGet(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	issuer := token.NewIssuer("test-secret", "iss", "aud", time.Hour)
	r := newAuthRouter(issuer)

	signed, err := issuer.Issue("account-1", "01712345678", "tenant")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(r, "/me", "Bearer "+signed).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "Bearer garbage").Code)
}

func TestAuthMiddlewareRejectsForeignToken(t *testing.T) {
	issuer := token.NewIssuer("test-secret", "iss", "aud", time.Hour)
	other := token.NewIssuer("other-secret", "iss", "aud", time.Hour)
	r := newAuthRouter(issuer)

	signed, err := other.Issue("account-1", "01712345678", "tenant")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/me", "Bearer "+signed).Code)
}

func TestRequireRole(t *testing.T) {
	issuer := token.NewIssuer("test-secret", "iss", "aud", time.Hour)
	r := newAuthRouter(issuer)

	tenant, err := issuer.Issue("account-1", "01712345678", "tenant")
	require.NoError(t, err)
	admin, err := issuer.Issue("account-2", "01898765432", "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doGet(r, "/admin", "Bearer "+tenant).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/admin", "Bearer "+admin).Code)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	issuer := token.NewIssuer("test-secret", "iss", "aud", time.Hour)
	r := newAuthRouter(issuer)

	tenant, err := issuer.Issue("account-1", "01712345678", "tenant")
	require.NoError(t, err)
	admin, err := issuer.Issue("account-2", "01898765432", "admin")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doGet(r, "/tenant/account-1", "Bearer "+tenant).Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "/tenant/account-9", "Bearer "+tenant).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/tenant/account-9", "Bearer "+admin).Code)
}
