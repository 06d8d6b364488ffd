package handler

import (
	appfunnel "github.com/crm/backend/internal/application/funnel"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactHandler handles contact HTTP requests
type ContactHandler struct {
	BaseHandler
	service *appfunnel.ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service *appfunnel.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers contact routes
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contacts := rg.Group("/contacts")
	{
		contacts.POST("", h.Create)
		contacts.GET("/:id", h.Get)
		contacts.PUT("/:id/qualification", h.UpdateQualification)
		contacts.DELETE("/:id", h.Delete)
	}
}

// Create registers a new contact
func (h *ContactHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req appfunnel.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	contact, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, contact)
}

// Get returns a single contact
func (h *ContactHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	contact, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, contact)
}

// UpdateQualification updates a contact's qualification fields
func (h *ContactHandler) UpdateQualification(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	var req appfunnel.UpdateQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	contact, err := h.service.UpdateQualification(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, contact)
}

// Delete removes a contact
func (h *ContactHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
