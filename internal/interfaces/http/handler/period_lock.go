package handler

import (
	"context"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PeriodLockService administers accounting period locks
type PeriodLockService interface {
	Lock(ctx context.Context, actor appreceivable.Actor, sellerTaxCode, periodKey, reason string) (*appreceivable.PeriodLockResponse, error)
	Unlock(ctx context.Context, actor appreceivable.Actor, lockID uuid.UUID) error
	List(ctx context.Context) ([]appreceivable.PeriodLockResponse, error)
}

// PeriodLockHandler handles period lock administration
type PeriodLockHandler struct {
	BaseHandler
	locks PeriodLockService
}

// NewPeriodLockHandler creates a new PeriodLockHandler
func NewPeriodLockHandler(locks PeriodLockService) *PeriodLockHandler {
	return &PeriodLockHandler{locks: locks}
}

// List godoc
// @ID           listPeriodLocks
// @Summary      List period locks
// @Tags         period-locks
// @Produce      json
// @Success      200 {object} APIResponse[[]appreceivable.PeriodLockResponse]
// @Security     BearerAuth
// @Router       /receivables/period-locks [get]
func (h *PeriodLockHandler) List(c *gin.Context) {
	locks, err := h.locks.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, locks)
}

// Lock godoc
// @ID           lockPeriod
// @Summary      Lock a month
// @Description  Without seller_tax_code the month is locked for every seller. Admin only.
// @Tags         period-locks
// @Accept       json
// @Produce      json
// @Param        request body dto.LockPeriodRequest true "Lock"
// @Success      201 {object} APIResponse[appreceivable.PeriodLockResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/period-locks [post]
func (h *PeriodLockHandler) Lock(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.LockPeriodRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lock, err := h.locks.Lock(h.sellerScope(c, req.SellerTaxCode), actor, req.SellerTaxCode, req.PeriodKey, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, lock)
}

// Unlock godoc
// @ID           unlockPeriod
// @Summary      Remove a period lock
// @Tags         period-locks
// @Param        id path string true "Lock ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/period-locks/{id} [delete]
func (h *PeriodLockHandler) Unlock(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.locks.Unlock(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
