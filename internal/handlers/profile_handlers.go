package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/services"
	"github.com/thikana-bd/app-thikana/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileHandler serves the tenant profile endpoints
type ProfileHandler struct {
	profiles *services.ProfileService
	users    services.UserStore
}

// NewProfileHandler creates the profile handler
func NewProfileHandler(profiles *services.ProfileService, users services.UserStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, users: users}
}

func (h *ProfileHandler) userID(c *gin.Context) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid account id"})
		return primitive.NilObjectID, false
	}
	return oid, true
}

// GetTenant godoc
// @Summary Get the tenant account and completion score
// @Tags tenant
// @Produce json
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id} [get]
func (h *ProfileHandler) GetTenant(c *gin.Context) {
	account, err := h.users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// AddEmergencyContact godoc
// @Summary Add an emergency contact
// @Tags tenant
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param data body models.EmergencyContact true "Contact"
// @Security BearerAuth
// @Success 201 {object} models.EmergencyContact
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/emergency-contacts [post]
func (h *ProfileHandler) AddEmergencyContact(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var contact models.EmergencyContact
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.profiles.AddEmergencyContact(c.Request.Context(), uid, &contact); err != nil {
		respondDomainError(c, err)
		return
	}
	h.auditProfileWrite(c, uid, "emergency_contacts")
	c.JSON(http.StatusCreated, contact)
}

// ListEmergencyContacts godoc
// @Summary List emergency contacts
// @Tags tenant
// @Produce json
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {array} models.EmergencyContact
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/emergency-contacts [get]
func (h *ProfileHandler) ListEmergencyContacts(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	contacts, err := h.profiles.ListEmergencyContacts(c.Request.Context(), uid)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// AddFamilyMember godoc
// @Summary Add a household member
// @Description Members declared with an NID are verified against the identity registry
// @Tags tenant
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param data body models.FamilyMember true "Member"
// @Security BearerAuth
// @Success 201 {object} models.FamilyMember
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/family-members [post]
func (h *ProfileHandler) AddFamilyMember(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var member models.FamilyMember
	if err := c.ShouldBindJSON(&member); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.profiles.AddFamilyMember(c.Request.Context(), uid, &member); err != nil {
		respondDomainError(c, err)
		return
	}
	h.auditProfileWrite(c, uid, "family_members")
	c.JSON(http.StatusCreated, member)
}

// ListFamilyMembers godoc
// @Summary List household members
// @Tags tenant
// @Produce json
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {array} models.FamilyMember
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/family-members [get]
func (h *ProfileHandler) ListFamilyMembers(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	members, err := h.profiles.ListFamilyMembers(c.Request.Context(), uid)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// AddHouseWorker godoc
// @Summary Add a house worker
// @Description Workers declared with an NID go through the police clearance registry
// @Tags tenant
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param data body models.HouseWorker true "Worker"
// @Security BearerAuth
// @Success 201 {object} models.HouseWorker
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/house-workers [post]
func (h *ProfileHandler) AddHouseWorker(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var worker models.HouseWorker
	if err := c.ShouldBindJSON(&worker); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.profiles.AddHouseWorker(c.Request.Context(), uid, &worker); err != nil {
		respondDomainError(c, err)
		return
	}
	h.auditProfileWrite(c, uid, "house_workers")
	c.JSON(http.StatusCreated, worker)
}

// ListHouseWorkers godoc
// @Summary List house workers
// @Tags tenant
// @Produce json
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {array} models.HouseWorker
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/house-workers [get]
func (h *ProfileHandler) ListHouseWorkers(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	workers, err := h.profiles.ListHouseWorkers(c.Request.Context(), uid)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, workers)
}

// SaveResidence godoc
// @Summary Save the current residence
// @Tags tenant
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param data body models.Residence true "Residence"
// @Security BearerAuth
// @Success 200 {object} models.Residence
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/residence [put]
func (h *ProfileHandler) SaveResidence(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var residence models.Residence
	if err := c.ShouldBindJSON(&residence); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.profiles.SaveResidence(c.Request.Context(), uid, &residence); err != nil {
		respondDomainError(c, err)
		return
	}
	h.auditProfileWrite(c, uid, "residence")
	c.JSON(http.StatusOK, residence)
}

// GetResidence godoc
// @Summary Get the current residence
// @Tags tenant
// @Produce json
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {object} models.Residence
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/residence [get]
func (h *ProfileHandler) GetResidence(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	residence, err := h.profiles.GetResidence(c.Request.Context(), uid)
	if err != nil {
		if err == services.ErrSectionNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, residence)
}

// SaveLandlord godoc
// @Summary Save the current landlord
// @Description Landlords declared with an NID are verified against the identity registry
// @Tags tenant
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param data body models.Landlord true "Landlord"
// @Security BearerAuth
// @Success 200 {object} models.Landlord
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/landlord [put]
func (h *ProfileHandler) SaveLandlord(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var landlord models.Landlord
	if err := c.ShouldBindJSON(&landlord); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.profiles.SaveLandlord(c.Request.Context(), uid, &landlord); err != nil {
		respondDomainError(c, err)
		return
	}
	h.auditProfileWrite(c, uid, "landlord")
	c.JSON(http.StatusOK, landlord)
}

// GetLandlord godoc
// @Summary Get the current landlord
// @Tags tenant
// @Produce json
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {object} models.Landlord
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/landlord [get]
func (h *ProfileHandler) GetLandlord(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	landlord, err := h.profiles.GetLandlord(c.Request.Context(), uid)
	if err != nil {
		if err == services.ErrSectionNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, landlord)
}

// AddPreviousLandlord godoc
// @Summary Add a previous landlord reference
// @Description References declared with an NID are checked against the identity registry
// @Tags tenant
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param data body models.PreviousLandlord true "Reference"
// @Security BearerAuth
// @Success 201 {object} models.PreviousLandlord
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/previous-landlords [post]
func (h *ProfileHandler) AddPreviousLandlord(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var ref models.PreviousLandlord
	if err := c.ShouldBindJSON(&ref); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.profiles.AddPreviousLandlord(c.Request.Context(), uid, &ref); err != nil {
		respondDomainError(c, err)
		return
	}
	h.auditProfileWrite(c, uid, "previous_landlords")
	c.JSON(http.StatusCreated, ref)
}

// ListPreviousLandlords godoc
// @Summary List previous landlord references
// @Tags tenant
// @Produce json
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {array} models.PreviousLandlord
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/previous-landlords [get]
func (h *ProfileHandler) ListPreviousLandlords(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	refs, err := h.profiles.ListPreviousLandlords(c.Request.Context(), uid)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, refs)
}

// AddDocument godoc
// @Summary Attach document metadata
// @Description Metadata only, file storage is out of scope
// @Tags tenant
// @Accept json
// @Produce json
// @Param id path string true "Account id"
// @Param data body models.DocumentAttachment true "Document metadata"
// @Security BearerAuth
// @Success 201 {object} models.DocumentAttachment
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/documents [post]
func (h *ProfileHandler) AddDocument(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	var doc models.DocumentAttachment
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.profiles.AddDocument(c.Request.Context(), uid, &doc); err != nil {
		respondDomainError(c, err)
		return
	}
	h.auditProfileWrite(c, uid, "documents")
	c.JSON(http.StatusCreated, doc)
}

// ListDocuments godoc
// @Summary List document metadata
// @Tags tenant
// @Produce json
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {array} models.DocumentAttachment
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/documents [get]
func (h *ProfileHandler) ListDocuments(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	docs, err := h.profiles.ListDocuments(c.Request.Context(), uid)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// VerificationSummary godoc
// @Summary Download the plain-text verification summary
// @Description Requires a completion score of at least 90
// @Tags tenant
// @Produce plain
// @Param id path string true "Account id"
// @Security BearerAuth
// @Success 200 {string} string
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Profile completion below the threshold"
// @Failure 500 {object} ErrorResponse
// @Router /v1/tenant/{id}/verification-summary [get]
func (h *ProfileHandler) VerificationSummary(c *gin.Context) {
	uid, ok := h.userID(c)
	if !ok {
		return
	}
	summary, err := h.profiles.VerificationSummary(c.Request.Context(), uid)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	actx := utils.GetAuditContextFromGin(c)
	utils.LogAuthEvent(actx, utils.AuditActionSummaryDownload, uid.Hex(), "", true, "")

	c.Header("Content-Disposition", `attachment; filename="verification-summary.txt"`)
	c.String(http.StatusOK, summary)
}

func (h *ProfileHandler) auditProfileWrite(c *gin.Context, uid primitive.ObjectID, resource string) {
	actx := utils.GetAuditContextFromGin(c)
	utils.LogProfileEvent(actx, uid.Hex(), resource, c.Request.Method+" "+c.FullPath())
}
