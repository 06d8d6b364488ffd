package handler

import (
	appreferral "github.com/crm/backend/internal/application/referral"
	"github.com/crm/backend/internal/domain/referral"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProgramHandler handles referral program HTTP requests
type ProgramHandler struct {
	BaseHandler
	service *appreferral.ProgramService
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(service *appreferral.ProgramService, logger *zap.Logger) *ProgramHandler {
	return &ProgramHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers program routes
func (h *ProgramHandler) RegisterRoutes(rg *gin.RouterGroup) {
	programs := rg.Group("/programs")
	{
		programs.GET("", h.ListByOwner)
		programs.POST("", h.Create)
		programs.GET("/:id", h.Get)
		programs.PUT("/:id/state", h.UpdateState)
	}
}

// Create opens a referral program
func (h *ProgramHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req appreferral.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	program, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, program)
}

// Get returns a program with its referrals, status recomputed from live counts
func (h *ProgramHandler) Get(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid program ID")
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, detail)
}

// ListByOwner returns the programs attached to a contact or client
func (h *ProgramHandler) ListByOwner(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	ownerType := referral.OwnerType(c.Query("owner_type"))
	if ownerType != referral.OwnerContact && ownerType != referral.OwnerClient {
		h.BadRequest(c, "owner_type must be contact or client")
		return
	}
	ownerID, err := uuid.Parse(c.Query("owner_id"))
	if err != nil {
		h.BadRequest(c, "Invalid owner_id")
		return
	}

	programs, err := h.service.ListByOwner(c.Request.Context(), ownerType, ownerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, programs)
}

// UpdateState patches a program's reward and notification state
func (h *ProgramHandler) UpdateState(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid program ID")
		return
	}

	var req appreferral.UpdateProgramStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	program, err := h.service.UpdateState(c.Request.Context(), id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, program)
}
