package handler

import (
	"context"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceiptService is the receipt lifecycle as seen by the HTTP layer
type ReceiptService interface {
	Create(ctx context.Context, actor appreceivable.Actor, input appreceivable.CreateReceiptInput) (*appreceivable.ReceiptResponse, error)
	Preview(ctx context.Context, input appreceivable.PreviewInput) (*appreceivable.PreviewResult, error)
	Approve(ctx context.Context, actor appreceivable.Actor, input appreceivable.ApproveReceiptInput) (*appreceivable.ApproveReceiptResult, error)
	ApproveBulk(ctx context.Context, actor appreceivable.Actor, input appreceivable.BulkApproveInput) (*appreceivable.BulkApproveResult, error)
	Void(ctx context.Context, actor appreceivable.Actor, input appreceivable.VoidReceiptInput) (*appreceivable.VoidReceiptResult, error)
	Unvoid(ctx context.Context, actor appreceivable.Actor, input appreceivable.UnvoidReceiptInput) (*appreceivable.ReceiptResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*appreceivable.ReceiptResponse, error)
	List(ctx context.Context, filter receivable.ReceiptFilter) ([]appreceivable.ReceiptResponse, int64, error)
	ListAllocations(ctx context.Context, receiptID uuid.UUID) ([]appreceivable.AllocationResponse, error)
	ListOpenItems(ctx context.Context, sellerTaxCode, customerTaxCode string, priority receivable.AllocationPriority) ([]receivable.OpenItem, error)
}

// ReceiptHandler handles receipt-related API endpoints
type ReceiptHandler struct {
	BaseHandler
	receipts ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receipts ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Create godoc
// @ID           createReceipt
// @Summary      Create a draft receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateReceiptRequest true "Receipt"
// @Success      201 {object} APIResponse[appreceivable.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      423 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CreateReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	input, err := req.ToInput()
	if !h.converted(c, err) {
		return
	}

	receipt, err := h.receipts.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// List godoc
// @ID           listReceipts
// @Summary      List receipts
// @Tags         receipts
// @Produce      json
// @Param        seller_tax_code query string false "Seller tax code"
// @Param        customer_tax_code query string false "Customer tax code"
// @Param        status query string false "DRAFT, APPROVED or VOID"
// @Param        allocation_status query string false "Allocation status"
// @Param        from_date query string false "Receipt date lower bound (YYYY-MM-DD)"
// @Param        to_date query string false "Receipt date upper bound (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]appreceivable.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	query := dto.ListReceiptsQuery{ListRequest: dto.DefaultListRequest()}
	if !h.bindQuery(c, &query) {
		return
	}
	filter, err := query.ToFilter()
	if !h.converted(c, err) {
		return
	}

	receipts, total, err := h.receipts.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, receipts, total, query.Page, query.PageSize)
}

// Get godoc
// @ID           getReceipt
// @Summary      Get a receipt
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Success      200 {object} APIResponse[appreceivable.ReceiptResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts/{id} [get]
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	receipt, err := h.receipts.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// ListAllocations godoc
// @ID           listReceiptAllocations
// @Summary      List the allocation rows of a receipt
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Success      200 {object} APIResponse[[]appreceivable.AllocationResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts/{id}/allocations [get]
func (h *ReceiptHandler) ListAllocations(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	allocations, err := h.receipts.ListAllocations(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, allocations)
}

// Preview godoc
// @ID           previewReceiptAllocation
// @Summary      Dry-run an allocation
// @Description  Computes the allocation plan without writing anything
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        request body dto.PreviewRequest true "Preview"
// @Success      200 {object} APIResponse[appreceivable.PreviewResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts/preview [post]
func (h *ReceiptHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	input, err := req.ToInput()
	if !h.converted(c, err) {
		return
	}

	result, err := h.receipts.Preview(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Approve godoc
// @ID           approveReceipt
// @Summary      Approve a draft receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Param        request body dto.ApproveReceiptRequest true "Approval"
// @Success      200 {object} APIResponse[appreceivable.ApproveReceiptResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      423 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts/{id}/approve [post]
func (h *ReceiptHandler) Approve(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.ApproveReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	input, err := req.ToInput(id)
	if !h.converted(c, err) {
		return
	}

	result, err := h.receipts.Approve(c.Request.Context(), actor, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ApproveBulk godoc
// @ID           approveReceiptsBulk
// @Summary      Approve several receipts
// @Description  Each receipt is approved in its own transaction. Honours Idempotency-Key.
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body dto.BulkApproveRequest true "Receipts"
// @Success      200 {object} APIResponse[appreceivable.BulkApproveResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts/approve-bulk [post]
func (h *ReceiptHandler) ApproveBulk(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.BulkApproveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	input, err := req.ToInput()
	if !h.converted(c, err) {
		return
	}

	result, err := h.receipts.ApproveBulk(c.Request.Context(), actor, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Void godoc
// @ID           voidReceipt
// @Summary      Void a receipt and reverse its allocations
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Param        request body dto.VoidRequest true "Void"
// @Success      200 {object} APIResponse[appreceivable.VoidReceiptResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      423 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts/{id}/void [post]
func (h *ReceiptHandler) Void(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.VoidRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.receipts.Void(c.Request.Context(), actor, req.ToReceiptInput(id))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Unvoid godoc
// @ID           unvoidReceipt
// @Summary      Restore a voided receipt to draft
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Param        request body dto.UnvoidRequest true "Unvoid"
// @Success      200 {object} APIResponse[appreceivable.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/receipts/{id}/unvoid [post]
func (h *ReceiptHandler) Unvoid(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.UnvoidRequest
	if !h.bindJSON(c, &req) {
		return
	}

	receipt, err := h.receipts.Unvoid(c.Request.Context(), actor, req.ToReceiptInput(id))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// OpenItems godoc
// @ID           listOpenItems
// @Summary      List the open debt documents of a customer
// @Tags         receipts
// @Produce      json
// @Param        seller_tax_code query string true "Seller tax code"
// @Param        customer_tax_code query string true "Customer tax code"
// @Param        priority query string false "ISSUE_DATE or DUE_DATE"
// @Success      200 {object} APIResponse[[]receivable.OpenItem]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/open-items [get]
func (h *ReceiptHandler) OpenItems(c *gin.Context) {
	var query dto.OpenItemsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	items, err := h.receipts.ListOpenItems(h.sellerScope(c, query.SellerTaxCode), query.SellerTaxCode, query.CustomerTaxCode,
		receivable.AllocationPriority(query.Priority))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
