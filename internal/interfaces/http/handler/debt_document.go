package handler

import (
	"context"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DebtDocumentService is the invoice and advance lifecycle as seen by the HTTP layer
type DebtDocumentService interface {
	Create(ctx context.Context, actor appreceivable.Actor, input appreceivable.CreateDebtDocumentInput) (*appreceivable.CreateDebtDocumentResult, error)
	Import(ctx context.Context, actor appreceivable.Actor, inputs []appreceivable.CreateDebtDocumentInput) (*appreceivable.ImportResult, error)
	Void(ctx context.Context, actor appreceivable.Actor, input appreceivable.VoidDebtDocumentInput) (*appreceivable.VoidDebtDocumentResult, error)
	Unvoid(ctx context.Context, actor appreceivable.Actor, input appreceivable.UnvoidDebtDocumentInput) (*appreceivable.CreateDebtDocumentResult, error)
	Get(ctx context.Context, docType receivable.DocumentType, id uuid.UUID) (*appreceivable.DebtDocumentResponse, error)
}

// DebtDocumentHandler handles invoice and advance endpoints. One handler
// serves both document types; the route decides which.
type DebtDocumentHandler struct {
	BaseHandler
	documents DebtDocumentService
}

// NewDebtDocumentHandler creates a new DebtDocumentHandler
func NewDebtDocumentHandler(documents DebtDocumentService) *DebtDocumentHandler {
	return &DebtDocumentHandler{documents: documents}
}

// DocumentTypeFromPath maps a collection segment ("invoices", "advances")
// onto its document type.
func DocumentTypeFromPath(segment string) (receivable.DocumentType, bool) {
	switch segment {
	case "invoices":
		return receivable.DocumentTypeInvoice, true
	case "advances":
		return receivable.DocumentTypeAdvance, true
	default:
		return "", false
	}
}

// Create godoc
// @ID           createDebtDocument
// @Summary      Create an invoice or an advance
// @Description  Open surplus on the customer's approved receipts is paid into the new document
// @Tags         debt-documents
// @Accept       json
// @Produce      json
// @Param        type path string true "invoices or advances"
// @Param        request body dto.CreateDebtDocumentRequest true "Document"
// @Success      201 {object} APIResponse[appreceivable.CreateDebtDocumentResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      423 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/{type} [post]
func (h *DebtDocumentHandler) Create(docType receivable.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := h.actor(c)
		if !ok {
			return
		}
		var req dto.CreateDebtDocumentRequest
		if !h.bindJSON(c, &req) {
			return
		}
		input, err := req.ToInput(docType)
		if !h.converted(c, err) {
			return
		}

		result, err := h.documents.Create(c.Request.Context(), actor, input)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Created(c, result)
	}
}

// Get godoc
// @ID           getDebtDocument
// @Summary      Get an invoice or an advance
// @Tags         debt-documents
// @Produce      json
// @Param        type path string true "invoices or advances"
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[appreceivable.DebtDocumentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/{type}/{id} [get]
func (h *DebtDocumentHandler) Get(docType receivable.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.pathID(c)
		if !ok {
			return
		}
		doc, err := h.documents.Get(c.Request.Context(), docType, id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, doc)
	}
}

// Void godoc
// @ID           voidDebtDocument
// @Summary      Void an invoice or an advance
// @Description  Reverses every allocation into the document; the paying receipts regain surplus
// @Tags         debt-documents
// @Accept       json
// @Produce      json
// @Param        type path string true "invoices or advances"
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body dto.VoidRequest true "Void"
// @Success      200 {object} APIResponse[appreceivable.VoidDebtDocumentResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      423 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/{type}/{id}/void [post]
func (h *DebtDocumentHandler) Void(docType receivable.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
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

		result, err := h.documents.Void(c.Request.Context(), actor, req.ToDocumentInput(docType, id))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	}
}

// Unvoid godoc
// @ID           unvoidDebtDocument
// @Summary      Restore a voided invoice or advance
// @Tags         debt-documents
// @Accept       json
// @Produce      json
// @Param        type path string true "invoices or advances"
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body dto.UnvoidRequest true "Unvoid"
// @Success      200 {object} APIResponse[appreceivable.CreateDebtDocumentResult]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/{type}/{id}/unvoid [post]
func (h *DebtDocumentHandler) Unvoid(docType receivable.DocumentType) gin.HandlerFunc {
	return func(c *gin.Context) {
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

		result, err := h.documents.Unvoid(c.Request.Context(), actor, req.ToDocumentInput(docType, id))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	}
}

// Import godoc
// @ID           importDebtDocuments
// @Summary      Commit a batch of already parsed invoices and advances
// @Description  Every document is created in its own transaction; failures are reported per item
// @Tags         debt-documents
// @Accept       json
// @Produce      json
// @Param        request body dto.ImportDebtDocumentsRequest true "Documents"
// @Success      200 {object} APIResponse[appreceivable.ImportResult]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /receivables/debt-documents/import [post]
func (h *DebtDocumentHandler) Import(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.ImportDebtDocumentsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inputs, err := req.ToInputs()
	if !h.converted(c, err) {
		return
	}

	result, err := h.documents.Import(c.Request.Context(), actor, inputs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
