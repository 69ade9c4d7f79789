package handler

import (
	"net/http"
	"testing"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newDebtDocumentRouter(svc *MockDebtDocumentService, actor *appreceivable.Actor) *gin.Engine {
	h := NewDebtDocumentHandler(svc)
	router := newTestRouter(actor)
	for _, segment := range []string{"invoices", "advances"} {
		docType, _ := DocumentTypeFromPath(segment)
		router.POST("/"+segment, h.Create(docType))
		router.GET("/"+segment+"/:id", h.Get(docType))
		router.POST("/"+segment+"/:id/void", h.Void(docType))
		router.POST("/"+segment+"/:id/unvoid", h.Unvoid(docType))
	}
	router.POST("/debt-documents/import", h.Import)
	return router
}

func documentBody(number string) map[string]any {
	return map[string]any{
		"seller_tax_code":   "0101234567",
		"customer_tax_code": "0309876543",
		"document_number":   number,
		"total_amount":      "500000",
		"issue_date":        "2024-03-01",
	}
}

func TestDocumentTypeFromPath(t *testing.T) {
	docType, ok := DocumentTypeFromPath("invoices")
	assert.True(t, ok)
	assert.Equal(t, receivable.DocumentTypeInvoice, docType)

	docType, ok = DocumentTypeFromPath("advances")
	assert.True(t, ok)
	assert.Equal(t, receivable.DocumentTypeAdvance, docType)

	_, ok = DocumentTypeFromPath("receipts")
	assert.False(t, ok)
}

func TestDebtDocumentHandler_Create(t *testing.T) {
	t.Run("route decides the type", func(t *testing.T) {
		svc := new(MockDebtDocumentService)
		svc.On("Create", mock.Anything, testActor, mock.MatchedBy(func(in appreceivable.CreateDebtDocumentInput) bool {
			return in.Type == receivable.DocumentTypeAdvance && in.DocumentNumber == "ADV-1" &&
				in.TotalAmount.Equal(decimal.NewFromInt(500000))
		})).Return(&appreceivable.CreateDebtDocumentResult{
			Document:      appreceivable.DebtDocumentResponse{Type: "ADVANCE", DocumentNumber: "ADV-1"},
			AutoAllocated: decimal.NewFromInt(500000),
		}, nil)

		body := documentBody("ADV-1")
		body["type"] = "INVOICE"
		w := doJSON(newDebtDocumentRouter(svc, &testActor), http.MethodPost, "/advances", body)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "500000", dataMap(t, w)["auto_allocated"])
		svc.AssertExpectations(t)
	})

	t.Run("zero total", func(t *testing.T) {
		svc := new(MockDebtDocumentService)
		body := documentBody("INV-1")
		body["total_amount"] = "0"

		w := doJSON(newDebtDocumentRouter(svc, &testActor), http.MethodPost, "/invoices", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("locked issue month", func(t *testing.T) {
		svc := new(MockDebtDocumentService)
		svc.On("Create", mock.Anything, testActor, mock.Anything).Return(nil, shared.ErrPeriodLocked)

		w := doJSON(newDebtDocumentRouter(svc, &testActor), http.MethodPost, "/invoices", documentBody("INV-1"))

		assert.Equal(t, http.StatusLocked, w.Code)
	})
}

func TestDebtDocumentHandler_VoidUnvoidGet(t *testing.T) {
	docID := uuid.New()
	svc := new(MockDebtDocumentService)
	svc.On("Void", mock.Anything, testActor, appreceivable.VoidDebtDocumentInput{
		Type: receivable.DocumentTypeInvoice, DocumentID: docID, Version: 2, Reason: "issued twice",
	}).Return(&appreceivable.VoidDebtDocumentResult{ReversedAllocations: 1, ReversedAmount: decimal.NewFromInt(100)}, nil)
	svc.On("Unvoid", mock.Anything, testActor, appreceivable.UnvoidDebtDocumentInput{
		Type: receivable.DocumentTypeInvoice, DocumentID: docID, Version: 4,
	}).Return(&appreceivable.CreateDebtDocumentResult{}, nil)
	svc.On("Get", mock.Anything, receivable.DocumentTypeAdvance, docID).Return(nil, shared.ErrNotFound)
	router := newDebtDocumentRouter(svc, &testActor)

	w := doJSON(router, http.MethodPost, "/invoices/"+docID.String()+"/void", map[string]any{"version": 2, "reason": "issued twice"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "100", dataMap(t, w)["reversed_amount"])

	w = doJSON(router, http.MethodPost, "/invoices/"+docID.String()+"/unvoid", map[string]any{"version": 4})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/advances/"+docID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestDebtDocumentHandler_Import(t *testing.T) {
	t.Run("per item results", func(t *testing.T) {
		svc := new(MockDebtDocumentService)
		svc.On("Import", mock.Anything, testActor, mock.MatchedBy(func(in []appreceivable.CreateDebtDocumentInput) bool {
			return len(in) == 2 && in[0].Type == receivable.DocumentTypeInvoice && in[1].Type == receivable.DocumentTypeAdvance
		})).Return(&appreceivable.ImportResult{Total: 2, Created: 1, Failed: 1}, nil)

		inv := documentBody("INV-9")
		inv["type"] = "INVOICE"
		adv := documentBody("ADV-9")
		adv["type"] = "ADVANCE"
		w := doJSON(newDebtDocumentRouter(svc, &testActor), http.MethodPost, "/debt-documents/import",
			map[string]any{"documents": []any{inv, adv}})

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.EqualValues(t, 1, dataMap(t, w)["failed"])
		svc.AssertExpectations(t)
	})

	t.Run("items need a type", func(t *testing.T) {
		svc := new(MockDebtDocumentService)
		w := doJSON(newDebtDocumentRouter(svc, &testActor), http.MethodPost, "/debt-documents/import",
			map[string]any{"documents": []any{documentBody("INV-9")}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION", decodeResponse(t, w).Error.Code)
		svc.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything)
	})
}
