package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/observability"
	"github.com/thikana-bd/app-thikana/internal/services"
	"github.com/thikana-bd/app-thikana/internal/utils"
	"go.uber.org/zap"
)

// AuthHandler serves the registration and login flow endpoints
type AuthHandler struct {
	flows    *services.RegistrationService
	otp      *services.OTPService
	demoMode bool
	logger   *logging.SafeLogger
}

// NewAuthHandler creates the auth handler. When demoMode is on, issued
// codes are echoed in responses; never enable it in production.
func NewAuthHandler(flows *services.RegistrationService, otp *services.OTPService, demoMode bool, logger *logging.SafeLogger) *AuthHandler {
	if demoMode {
		logger.Warn("OTP demo mode is enabled, issued codes are echoed to API callers")
	}
	return &AuthHandler{flows: flows, otp: otp, demoMode: demoMode, logger: logger}
}

func flowResponse(flow *models.PendingRegistration, demoOTP string) models.FlowResponse {
	return models.FlowResponse{
		FlowID:       flow.FlowID,
		Stage:        string(flow.Stage),
		MobileNumber: flow.MobileNumber,
		IsNewAccount: flow.IsNewAccount,
		DemoOTP:      demoOTP,
	}
}

// Register godoc
// @Summary Start a registration flow
// @Description Resolves the claimed identity against the national registry and opens a verification flow
// @Tags auth
// @Accept json
// @Produce json
// @Param data body models.RegisterRequest true "National id or birth certificate number, and mobile number"
// @Success 201 {object} models.FlowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Identity not found"
// @Failure 409 {object} ErrorResponse "Mobile number does not match the registry record"
// @Failure 500 {object} ErrorResponse
// @Router /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	flow, err := h.flows.BeginRegistration(c.Request.Context(), req.IDNumber, req.MobileNumber)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, flowResponse(flow, ""))
}

// Login godoc
// @Summary Start a login flow
// @Description Opens a verification flow for an existing account
// @Tags auth
// @Accept json
// @Produce json
// @Param data body models.LoginRequest true "Mobile number of the account"
// @Success 201 {object} models.FlowResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	flow, err := h.flows.BeginLogin(c.Request.Context(), req.MobileNumber)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, flowResponse(flow, ""))
}

// RequestOTP godoc
// @Summary Request or resend the verification code
// @Description Issues a fresh code for the flow's mobile number; the previous code is superseded
// @Tags auth
// @Produce json
// @Param flow_id path string true "Flow id"
// @Success 200 {object} models.FlowResponse
// @Failure 404 {object} ErrorResponse "Flow not found or expired"
// @Failure 409 {object} ErrorResponse "Flow not in a stage that allows code requests"
// @Failure 429 {object} ErrorResponse "Resend cooldown still running"
// @Failure 500 {object} ErrorResponse
// @Router /v1/auth/flow/{flow_id}/otp [post]
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	flowID := c.Param("flow_id")

	code, err := h.flows.RequestOTP(c.Request.Context(), flowID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	actx := utils.GetAuditContextFromGin(c)
	utils.LogAuthEvent(actx, utils.AuditActionOTPRequested, "", "", true, "flow "+flowID)

	flow, err := h.flows.Flow(c.Request.Context(), flowID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	demoOTP := ""
	if h.demoMode {
		h.logger.Warn("echoing verification code in demo mode",
			zap.String("flow_id", flowID))
		demoOTP = code
	}
	c.JSON(http.StatusOK, flowResponse(flow, demoOTP))
}

// OTPWait godoc
// @Summary Seconds remaining before a code can be resent
// @Tags auth
// @Produce json
// @Param flow_id path string true "Flow id"
// @Success 200 {object} models.ResendWaitResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/auth/flow/{flow_id}/otp/wait [get]
func (h *AuthHandler) OTPWait(c *gin.Context) {
	flow, err := h.flows.Flow(c.Request.Context(), c.Param("flow_id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	wait, err := h.otp.ResendWaitSeconds(c.Request.Context(), flow.MobileNumber)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ResendWaitResponse{WaitSeconds: wait})
}

// VerifyOTP godoc
// @Summary Submit the verification code
// @Description Verifies the code and advances the flow; a wrong or expired code keeps the flow waiting
// @Tags auth
// @Accept json
// @Produce json
// @Param flow_id path string true "Flow id"
// @Param data body models.VerifyOTPRequest true "The 6 digit code"
// @Success 200 {object} models.FlowResponse
// @Failure 400 {object} ErrorResponse "Invalid or expired code"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/auth/flow/{flow_id}/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actx := utils.GetAuditContextFromGin(c)
	flow, err := h.flows.SubmitOTP(c.Request.Context(), c.Param("flow_id"), req.Code)
	if err != nil {
		utils.LogAuthEvent(actx, utils.AuditActionOTPVerifyFailed, "", "", false, err.Error())
		respondDomainError(c, err)
		return
	}

	utils.LogAuthEvent(actx, utils.AuditActionOTPVerified, "", observability.MaskPhone(flow.MobileNumber), true, "")
	c.JSON(http.StatusOK, flowResponse(flow, ""))
}

// Finalize godoc
// @Summary Finalize a verified flow
// @Description Creates the account (registration) or stamps the login, and returns the session token
// @Tags auth
// @Accept json
// @Produce json
// @Param flow_id path string true "Flow id"
// @Param data body models.FinalizeRequest true "Optional password for new accounts"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} ErrorResponse "Password below the strength policy"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Flow not verified yet"
// @Failure 500 {object} ErrorResponse
// @Router /v1/auth/flow/{flow_id}/finalize [post]
func (h *AuthHandler) Finalize(c *gin.Context) {
	var req models.FinalizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	flowID := c.Param("flow_id")
	flow, err := h.flows.Flow(c.Request.Context(), flowID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	resp, err := h.flows.Finalize(c.Request.Context(), flowID, req.Password)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	actx := utils.GetAuditContextFromGin(c)
	action := utils.AuditActionLoginSuccess
	if flow.IsNewAccount {
		action = utils.AuditActionRegistration
	}
	utils.LogAuthEvent(actx, action, resp.Account.ID.Hex(),
		observability.MaskPhone(resp.Account.MobileNumber), true, "")

	c.JSON(http.StatusOK, resp)
}

// CancelFlow godoc
// @Summary Abandon a flow
// @Tags auth
// @Produce json
// @Param flow_id path string true "Flow id"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/auth/flow/{flow_id} [delete]
func (h *AuthHandler) CancelFlow(c *gin.Context) {
	flowID := c.Param("flow_id")
	if err := h.flows.Cancel(c.Request.Context(), flowID); err != nil {
		respondDomainError(c, err)
		return
	}

	actx := utils.GetAuditContextFromGin(c)
	utils.LogAuthEvent(actx, utils.AuditActionFlowCancelled, "", "", true, "flow "+flowID)
	c.JSON(http.StatusOK, SuccessResponse{Message: "flow cancelled"})
}
