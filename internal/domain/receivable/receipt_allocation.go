package receivable

import (
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptAllocation links part of a receipt to one invoice or advance.
// Rows are immutable: written by an allocation run, deleted only by a void.
type ReceiptAllocation struct {
	ID         uuid.UUID
	ReceiptID  uuid.UUID
	TargetType DocumentType
	InvoiceID  *uuid.UUID
	AdvanceID  *uuid.UUID
	Amount     decimal.Decimal
	CreatedAt  time.Time
	CreatedBy  *uuid.UUID
}

// NewReceiptAllocation creates an allocation row for exactly one target
func NewReceiptAllocation(receiptID uuid.UUID, ref TargetRef, amount decimal.Decimal, createdBy *uuid.UUID) (*ReceiptAllocation, error) {
	if receiptID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt ID cannot be empty")
	}
	if ref.ID == uuid.Nil || !ref.Type.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidTarget, "Allocation target must be an invoice or an advance")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Allocation amount must be positive")
	}

	alloc := &ReceiptAllocation{
		ID:         uuid.New(),
		ReceiptID:  receiptID,
		TargetType: ref.Type,
		Amount:     amount,
		CreatedAt:  time.Now(),
		CreatedBy:  createdBy,
	}
	targetID := ref.ID
	if ref.Type == DocumentTypeInvoice {
		alloc.InvoiceID = &targetID
	} else {
		alloc.AdvanceID = &targetID
	}
	return alloc, nil
}

// Target returns the document the allocation points at
func (a *ReceiptAllocation) Target() TargetRef {
	if a.TargetType == DocumentTypeInvoice && a.InvoiceID != nil {
		return TargetRef{Type: DocumentTypeInvoice, ID: *a.InvoiceID}
	}
	if a.AdvanceID != nil {
		return TargetRef{Type: DocumentTypeAdvance, ID: *a.AdvanceID}
	}
	return TargetRef{Type: a.TargetType}
}

// SumAllocations totals allocation amounts
func SumAllocations(allocs []ReceiptAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Amount)
	}
	return total
}

// SelectionsFromAllocations turns committed rows back into a target list
func SelectionsFromAllocations(allocs []ReceiptAllocation) TargetSelections {
	selections := make(TargetSelections, 0, len(allocs))
	for _, a := range allocs {
		ref := a.Target()
		selections = append(selections, TargetSelection{TargetType: ref.Type, TargetID: ref.ID, Amount: a.Amount})
	}
	return selections
}
