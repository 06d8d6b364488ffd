package handler

import (
	appfunnel "github.com/crm/backend/internal/application/funnel"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpportunityHandler handles opportunity HTTP requests
type OpportunityHandler struct {
	BaseHandler
	service *appfunnel.OpportunityService
}

// NewOpportunityHandler creates a new opportunity handler
func NewOpportunityHandler(service *appfunnel.OpportunityService, logger *zap.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterRoutes registers opportunity routes
func (h *OpportunityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	opportunities := rg.Group("/opportunities")
	{
		opportunities.GET("", h.List)
		opportunities.POST("", h.Create)
		opportunities.GET("/:id", h.Get)
		opportunities.PUT("/:id/stage", h.TransitionStage)
		opportunities.PUT("/:id/closure", h.SetClosure)
		opportunities.POST("/:id/promote", h.Promote)
		opportunities.PUT("/:id/reassign", h.Reassign)
		opportunities.DELETE("/:id", h.Delete)
	}
}

// List returns opportunities visible to the actor
func (h *OpportunityHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var filter appfunnel.OpportunityListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	opportunities, total, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, opportunities, dto.NewMeta(total, page, pageSize))
}

// Create opens a new opportunity
func (h *OpportunityHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req appfunnel.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	opportunity, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, opportunity)
}

// Get returns a single opportunity
func (h *OpportunityHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	opportunity, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, opportunity)
}

// TransitionStage moves an opportunity to a new stage
func (h *OpportunityHandler) TransitionStage(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	var req appfunnel.TransitionStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	opportunity, err := h.service.TransitionStage(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, opportunity)
}

// SetClosure writes an opportunity's closure sub-state
func (h *OpportunityHandler) SetClosure(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	var req appfunnel.SetClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	opportunity, err := h.service.SetClosureState(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, opportunity)
}

// Promote converts a won opportunity's prospect into a client
func (h *OpportunityHandler) Promote(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	clientID, err := h.service.PromoteToClient(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"client_id": clientID})
}

// Reassign moves an opportunity to another seller
func (h *OpportunityHandler) Reassign(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	var req appfunnel.ReassignOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	opportunity, err := h.service.Reassign(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, opportunity)
}

// Delete removes an opportunity
func (h *OpportunityHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
