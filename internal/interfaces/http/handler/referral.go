package handler

import (
	appreferral "github.com/crm/backend/internal/application/referral"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReferralHandler handles referral HTTP requests
type ReferralHandler struct {
	BaseHandler
	service *appreferral.ReferralService
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(service *appreferral.ReferralService, logger *zap.Logger) *ReferralHandler {
	return &ReferralHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers referral routes
func (h *ReferralHandler) RegisterRoutes(rg *gin.RouterGroup) {
	programs := rg.Group("/programs/:id/referrals")
	{
		programs.POST("", h.Add)
		programs.POST("/import", h.Import)
	}

	referrals := rg.Group("/referrals")
	{
		referrals.PUT("/:id/status", h.UpdateStatus)
		referrals.DELETE("/:id", h.Delete)
	}
}

// Add records a single referral against a program
func (h *ReferralHandler) Add(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	programID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid program ID")
		return
	}

	var req appreferral.AddReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ref, err := h.service.Add(c.Request.Context(), actor, programID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, ref)
}

// Import ingests a bulk of referrals, pasted free text or structured rows
func (h *ReferralHandler) Import(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	programID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid program ID")
		return
	}

	var req appreferral.ImportReferralsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Import(c.Request.Context(), actor, programID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateStatus moves a referral to a new status
func (h *ReferralHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid referral ID")
		return
	}

	var req appreferral.UpdateReferralStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ref, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, ref)
}

// Delete removes a referral that has not yet spawned funnel records
func (h *ReferralHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid referral ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
