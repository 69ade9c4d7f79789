package event

import (
	"github.com/erp/receivables/internal/domain/receivable"
)

// RegisterAllEvents registers the receivable event types with the serializer.
// The outbox processor can only deliver types registered here.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(receivable.EventTypeReceiptApproved, &receivable.ReceiptApprovedEvent{})
	serializer.Register(receivable.EventTypeReceiptVoided, &receivable.ReceiptVoidedEvent{})
	serializer.Register(receivable.EventTypeReceiptUnvoided, &receivable.ReceiptUnvoidedEvent{})

	serializer.Register(receivable.EventTypeDebtDocumentCreated, &receivable.DebtDocumentCreatedEvent{})
	serializer.Register(receivable.EventTypeDebtDocumentVoided, &receivable.DebtDocumentVoidedEvent{})
	serializer.Register(receivable.EventTypeDebtDocumentUnvoided, &receivable.DebtDocumentUnvoidedEvent{})

	serializer.Register(receivable.EventTypeAllocationsSuggested, &receivable.AllocationsSuggestedEvent{})
}
