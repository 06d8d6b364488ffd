package handler

import (
	"errors"
	"net/http"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides shared response helpers for HTTP handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler with the given logger
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// Success sends a 200 response with data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.SuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with data and pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, meta *dto.Meta) {
	c.JSON(http.StatusOK, dto.SuccessResponseWithMeta(data, meta))
}

// Created sends a 201 response with data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.SuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse(dto.CodeBadRequest, message))
}

// Error maps a domain error to its HTTP response. Conflict errors carry the
// existing record so clients can offer a merge instead of a blind retry.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	var conflict *shared.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, dto.ConflictResponse(conflict.Code, conflict.Message, conflict.Existing))
		return
	}

	code := shared.ErrorCode(err)
	if code == "" {
		if h.logger != nil {
			h.logger.Error("unhandled error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse(dto.CodeInternal, "Internal server error"))
		return
	}

	c.JSON(dto.GetHTTPStatus(code), dto.ErrorResponse(code, err.Error()))
}

// actor returns the authenticated actor, sending a 401 when absent
func (h *BaseHandler) actor(c *gin.Context) (identity.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse(dto.CodeUnauthorized, "Authentication required"))
	}
	return actor, ok
}
