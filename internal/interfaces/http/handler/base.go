package handler

import (
	"net/http"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/campus/backend/internal/infrastructure/logger"
	"github.com/campus/backend/internal/interfaces/http/dto"
	"github.com/campus/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID assigned by the logging middleware
func getRequestID(c *gin.Context) string {
	if id := logger.GetRequestID(c.Request.Context()); id != "" {
		return id
	}
	return c.GetHeader(logger.RequestIDHeader)
}

// requestScope returns the tenant and actor resolved by middleware.
// A missing value means the route was registered without them.
func requestScope(c *gin.Context) (tenancy.TenantContext, uuid.UUID, bool) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		return tenancy.TenantContext{}, uuid.Nil, false
	}
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		return tenancy.TenantContext{}, uuid.Nil, false
	}
	return tc, actorID, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 validation response for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, field, message string) {
	h.HandleError(c, shared.NewValidationError(field, message))
}

// HandleError converts an error to an HTTP response. Server errors are
// logged with their cause, which never reaches the response body.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status, resp := dto.FromError(err, getRequestID(c))
	_ = c.Error(err)
	if dto.IsServerError(resp.Error.Code) {
		logger.FromContext(c.Request.Context()).Error("Request failed",
			zap.String("code", resp.Error.Code),
			zap.String("step", resp.Error.Step),
			zap.Error(err),
		)
	}
	c.JSON(status, resp)
}
