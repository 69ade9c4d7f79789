package handler

import (
	"context"
	"net/http"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/infrastructure/logger"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/erp/receivables/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, middleware.GetRequestID(c)))
}

// HandleError maps err onto the taxonomy status and body. Internal errors
// are logged here since their message never reaches the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status, info := dto.ErrorFromDomain(err)
	info.RequestID = middleware.GetRequestID(c)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, dto.Response{Success: false, Error: info})
}

// actor returns the authenticated caller or answers 401.
func (h *BaseHandler) actor(c *gin.Context) (appreceivable.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return appreceivable.Actor{}, false
	}
	return actor, true
}

// sellerScope tags the request context with the seller so every log line of
// the call carries seller_tax_code. Empty codes leave ctx as is.
func (h *BaseHandler) sellerScope(c *gin.Context, sellerTaxCode string) context.Context {
	ctx := c.Request.Context()
	if sellerTaxCode == "" {
		return ctx
	}
	ctx, _ = logger.WithSellerTaxCode(ctx, logger.FromContext(ctx), sellerTaxCode)
	c.Request = c.Request.WithContext(ctx)
	return ctx
}

// bindJSON binds the body into req or answers 400 with validation details.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be empty.
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return h.bindJSON(c, req)
}

// bindQuery binds query parameters into req or answers 400.
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathID parses the :id path parameter or answers 400.
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

// converted answers with err when a request failed conversion.
func (h *BaseHandler) converted(c *gin.Context, err error) bool {
	if err != nil {
		h.HandleError(c, err)
		return false
	}
	return true
}
