package receivable

import (
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type names used in events and audit entries
const (
	AggregateTypeReceipt      = "Receipt"
	AggregateTypeDebtDocument = "DebtDocument"
)

// Event types
const (
	EventTypeReceiptApproved      = "ReceiptApproved"
	EventTypeReceiptVoided        = "ReceiptVoided"
	EventTypeReceiptUnvoided      = "ReceiptUnvoided"
	EventTypeDebtDocumentCreated  = "DebtDocumentCreated"
	EventTypeDebtDocumentVoided   = "DebtDocumentVoided"
	EventTypeDebtDocumentUnvoided = "DebtDocumentUnvoided"
	EventTypeAllocationsSuggested = "AllocationsSuggested"
)

// ReceiptApprovedEvent is raised when a receipt's allocations are committed
type ReceiptApprovedEvent struct {
	shared.BaseDomainEvent
	ReceiptID       uuid.UUID        `json:"receipt_id"`
	ReceiptNumber   string           `json:"receipt_number"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	Amount          decimal.Decimal  `json:"amount"`
	AllocatedAmount decimal.Decimal  `json:"allocated_amount"`
	Unallocated     decimal.Decimal  `json:"unallocated_amount"`
	Lines           []AllocationLine `json:"lines"`
}

// NewReceiptApprovedEvent creates a ReceiptApprovedEvent
func NewReceiptApprovedEvent(r *Receipt, plan AllocationPlan) *ReceiptApprovedEvent {
	return &ReceiptApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptApproved, AggregateTypeReceipt, r.ID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		CustomerID:      r.CustomerID,
		Amount:          r.Amount,
		AllocatedAmount: plan.Allocated,
		Unallocated:     r.UnallocatedAmount,
		Lines:           plan.Lines,
	}
}

// ReceiptVoidedEvent is raised when a receipt is voided
type ReceiptVoidedEvent struct {
	shared.BaseDomainEvent
	ReceiptID      uuid.UUID       `json:"receipt_id"`
	ReceiptNumber  string          `json:"receipt_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	ReversedAmount decimal.Decimal `json:"reversed_amount"`
	Reason         string          `json:"reason"`
}

// NewReceiptVoidedEvent creates a ReceiptVoidedEvent
func NewReceiptVoidedEvent(r *Receipt, reversed decimal.Decimal) *ReceiptVoidedEvent {
	return &ReceiptVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptVoided, AggregateTypeReceipt, r.ID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		CustomerID:      r.CustomerID,
		ReversedAmount:  reversed,
		Reason:          r.VoidReason,
	}
}

// ReceiptUnvoidedEvent is raised when a void receipt returns to draft
type ReceiptUnvoidedEvent struct {
	shared.BaseDomainEvent
	ReceiptID        uuid.UUID        `json:"receipt_id"`
	ReceiptNumber    string           `json:"receipt_number"`
	AllocationStatus AllocationStatus `json:"allocation_status"`
}

// NewReceiptUnvoidedEvent creates a ReceiptUnvoidedEvent
func NewReceiptUnvoidedEvent(r *Receipt) *ReceiptUnvoidedEvent {
	return &ReceiptUnvoidedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeReceiptUnvoided, AggregateTypeReceipt, r.ID),
		ReceiptID:        r.ID,
		ReceiptNumber:    r.ReceiptNumber,
		AllocationStatus: r.AllocationStatus,
	}
}

// DebtDocumentCreatedEvent is raised when an invoice or advance is committed,
// after surplus receipts were applied to it
type DebtDocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentType    DocumentType    `json:"document_type"`
	DocumentID      uuid.UUID       `json:"document_id"`
	DocumentNumber  string          `json:"document_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AutoAllocated   decimal.Decimal `json:"auto_allocated"`
	ReceiptsTouched int             `json:"receipts_touched"`
}

// NewDebtDocumentCreatedEvent creates a DebtDocumentCreatedEvent
func NewDebtDocumentCreatedEvent(d *DebtDocument, plan AllocationPlan) *DebtDocumentCreatedEvent {
	return &DebtDocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtDocumentCreated, AggregateTypeDebtDocument, d.ID),
		DocumentType:    d.Type,
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
		CustomerID:      d.CustomerID,
		TotalAmount:     d.TotalAmount,
		AutoAllocated:   plan.Allocated,
		ReceiptsTouched: len(plan.Lines),
	}
}

// DebtDocumentVoidedEvent is raised when an invoice or advance is voided
type DebtDocumentVoidedEvent struct {
	shared.BaseDomainEvent
	DocumentType   DocumentType    `json:"document_type"`
	DocumentID     uuid.UUID       `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	ReversedAmount decimal.Decimal `json:"reversed_amount"`
	Reason         string          `json:"reason"`
}

// NewDebtDocumentVoidedEvent creates a DebtDocumentVoidedEvent
func NewDebtDocumentVoidedEvent(d *DebtDocument, reversed decimal.Decimal) *DebtDocumentVoidedEvent {
	return &DebtDocumentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtDocumentVoided, AggregateTypeDebtDocument, d.ID),
		DocumentType:    d.Type,
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
		ReversedAmount:  reversed,
		Reason:          d.VoidReason,
	}
}

// DebtDocumentUnvoidedEvent is raised when a void document is restored
type DebtDocumentUnvoidedEvent struct {
	shared.BaseDomainEvent
	DocumentType   DocumentType `json:"document_type"`
	DocumentID     uuid.UUID    `json:"document_id"`
	DocumentNumber string       `json:"document_number"`
}

// NewDebtDocumentUnvoidedEvent creates a DebtDocumentUnvoidedEvent
func NewDebtDocumentUnvoidedEvent(d *DebtDocument) *DebtDocumentUnvoidedEvent {
	return &DebtDocumentUnvoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtDocumentUnvoided, AggregateTypeDebtDocument, d.ID),
		DocumentType:    d.Type,
		DocumentID:      d.ID,
		DocumentNumber:  d.DocumentNumber,
	}
}

// AllocationsSuggestedEvent is raised when the scanner proposes targets for a receipt
type AllocationsSuggestedEvent struct {
	shared.BaseDomainEvent
	ReceiptID uuid.UUID        `json:"receipt_id"`
	Targets   TargetSelections `json:"targets"`
}

// NewAllocationsSuggestedEvent creates an AllocationsSuggestedEvent
func NewAllocationsSuggestedEvent(r *Receipt) *AllocationsSuggestedEvent {
	return &AllocationsSuggestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationsSuggested, AggregateTypeReceipt, r.ID),
		ReceiptID:       r.ID,
		Targets:         r.AllocationTargets,
	}
}
