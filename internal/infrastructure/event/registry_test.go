package event

import (
	"testing"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_GetHandlers(t *testing.T) {
	r := NewHandlerRegistry()
	receipts := newTestHandler()
	documents := newTestHandler()
	audit := newTestHandler()
	r.Register(receipts, receivable.EventTypeReceiptApproved, receivable.EventTypeReceiptVoided)
	r.Register(documents, receivable.EventTypeDebtDocumentCreated)
	r.Register(audit)

	tests := []struct {
		eventType string
		want      []shared.EventHandler
	}{
		{receivable.EventTypeReceiptApproved, []shared.EventHandler{receipts, audit}},
		{receivable.EventTypeReceiptVoided, []shared.EventHandler{receipts, audit}},
		{receivable.EventTypeDebtDocumentCreated, []shared.EventHandler{documents, audit}},
		{receivable.EventTypeAllocationsSuggested, []shared.EventHandler{audit}},
	}
	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.want, r.GetHandlers(tt.eventType))
		})
	}
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	first := newTestHandler()
	second := newTestHandler()
	audit := newTestHandler()
	r.Register(first, receivable.EventTypeReceiptApproved)
	r.Register(second, receivable.EventTypeReceiptApproved)
	r.Register(audit)

	r.Unregister(first)
	assert.Equal(t, []shared.EventHandler{second, audit}, r.GetHandlers(receivable.EventTypeReceiptApproved))

	r.Unregister(audit)
	r.Unregister(second)
	assert.Empty(t, r.GetHandlers(receivable.EventTypeReceiptApproved))
	assert.Empty(t, r.GetAllHandlers())
}

func TestHandlerRegistry_GetAllHandlers_Deduplicates(t *testing.T) {
	r := NewHandlerRegistry()
	receipts := newTestHandler()
	documents := newTestHandler()
	r.Register(receipts, receivable.EventTypeReceiptApproved, receivable.EventTypeReceiptVoided, receivable.EventTypeReceiptUnvoided)
	r.Register(documents, receivable.EventTypeDebtDocumentCreated)
	r.Register(receipts)

	assert.ElementsMatch(t, []shared.EventHandler{receipts, documents}, r.GetAllHandlers())
}
