package handler

import (
	"context"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BalanceService reads customers and repairs their projected balance
type BalanceService interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*appreceivable.CustomerResponse, error)
	Recompute(ctx context.Context, actor appreceivable.Actor, customerID uuid.UUID) (*appreceivable.RecomputeBalanceResult, error)
}

// CustomerHandler handles customer balance endpoints
type CustomerHandler struct {
	BaseHandler
	balances BalanceService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(balances BalanceService) *CustomerHandler {
	return &CustomerHandler{balances: balances}
}

// GetByID godoc
// @ID           getCustomer
// @Summary      Get a customer with its current balance
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[appreceivable.CustomerResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	customer, err := h.balances.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// RecomputeBalance godoc
// @ID           recomputeCustomerBalance
// @Summary      Rebuild a customer's balance from its open documents
// @Description  Admin only. The result reports the drift that was corrected.
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[appreceivable.RecomputeBalanceResult]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/customers/{id}/recompute-balance [post]
func (h *CustomerHandler) RecomputeBalance(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	result, err := h.balances.Recompute(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
