package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thikana-bd/app-thikana/internal/models"
)

func performDomainError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondDomainError(c, err)
	return w
}

func TestRespondDomainErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid mobile", models.ErrInvalidMobileNumber, http.StatusBadRequest},
		{"weak credential", models.ErrWeakCredential, http.StatusBadRequest},
		{"flow not found", models.ErrFlowNotFound, http.StatusNotFound},
		{"identity mismatch", models.ErrIdentityMismatch, http.StatusConflict},
		{"persistence failure", fmt.Errorf("%w: create account: timeout", models.ErrPersistenceFailure), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performDomainError(tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

// Storage errors carry connection details that must never reach clients
func TestRespondDomainErrorHidesStorageDetail(t *testing.T) {
	w := performDomainError(fmt.Errorf("%w: create account: connection reset by 10.0.0.5", models.ErrPersistenceFailure))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error)
}

func TestRespondDomainErrorRateLimited(t *testing.T) {
	w := performDomainError(&models.RateLimitedError{RetryAfterSeconds: 42})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "42", w.Header().Get("Retry-After"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 42, body.RetryAfterSeconds)
}
