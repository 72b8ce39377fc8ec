package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
	// RetryAfterSeconds is set only on rate limited responses
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// respondDomainError maps domain errors to stable HTTP responses.
// Internal errors are logged and never echoed to the client.
func respondDomainError(c *gin.Context, err error) {
	if rl, ok := models.AsRateLimited(err); ok {
		c.Header("Retry-After", strconv.Itoa(rl.RetryAfterSeconds))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:             "too many requests, wait before retrying",
			RetryAfterSeconds: rl.RetryAfterSeconds,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrInvalidMobileNumber),
		errors.Is(err, models.ErrInvalidIDNumber):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrInvalidOrExpiredOTP),
		errors.Is(err, models.ErrWeakCredential):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrIdentityNotFound),
		errors.Is(err, models.ErrFlowNotFound),
		errors.Is(err, models.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrIdentityMismatch),
		errors.Is(err, models.ErrInvalidFlowStage),
		errors.Is(err, models.ErrProfileIncomplete):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrPersistenceFailure):
		observability.Logger().Error("storage failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	default:
		observability.Logger().Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
