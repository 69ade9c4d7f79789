package receivable

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtDocument is an invoice or an advance. Both follow the same lifecycle:
// OPEN -> PARTIAL -> PAID as money is allocated, and VOID by reversal.
type DebtDocument struct {
	shared.BaseAggregateRoot
	Type              DocumentType
	DocumentNumber    string
	SellerTaxCode     string
	CustomerTaxCode   string
	CustomerID        uuid.UUID
	TotalAmount       decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            DocumentStatus
	PreVoidStatus     DocumentStatus
	IssueDate         time.Time
	DueDate           time.Time
	Description       string
	VoidReason        string
	DeletedAt         *time.Time
	DeletedBy         *uuid.UUID
	CreatedBy         *uuid.UUID
}

// NewDebtDocumentInput carries the fields of a document about to be committed
type NewDebtDocumentInput struct {
	Type           DocumentType
	DocumentNumber string
	Customer       *Customer
	TotalAmount    decimal.Decimal
	IssueDate      time.Time
	Description    string
	CreatedBy      *uuid.UUID
}

// NewDebtDocument creates an OPEN document whose due date follows the customer's payment terms
func NewDebtDocument(input NewDebtDocumentInput) (*DebtDocument, error) {
	if !input.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Document type must be INVOICE or ADVANCE")
	}
	number := NormalizeCode(input.DocumentNumber)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot exceed 50 characters")
	}
	if input.Customer == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if !input.TotalAmount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Total amount must be positive")
	}
	if input.IssueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date is required")
	}

	issue := TruncateDate(input.IssueDate)
	return &DebtDocument{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              input.Type,
		DocumentNumber:    number,
		SellerTaxCode:     input.Customer.SellerTaxCode,
		CustomerTaxCode:   input.Customer.TaxCode,
		CustomerID:        input.Customer.ID,
		TotalAmount:       input.TotalAmount,
		OutstandingAmount: input.TotalAmount,
		Status:            DocumentStatusOpen,
		IssueDate:         issue,
		DueDate:           input.Customer.DueDateFor(issue),
		Description:       strings.TrimSpace(input.Description),
		CreatedBy:         input.CreatedBy,
	}, nil
}

// Party returns the seller and customer pair the document belongs to
func (d *DebtDocument) Party() PartyKey {
	return PartyKey{SellerTaxCode: d.SellerTaxCode, CustomerTaxCode: d.CustomerTaxCode}
}

// Ref returns the allocation target reference of the document
func (d *DebtDocument) Ref() TargetRef {
	return TargetRef{Type: d.Type, ID: d.ID}
}

// PaidAmount is the sum currently allocated to the document
func (d *DebtDocument) PaidAmount() decimal.Decimal {
	return d.TotalAmount.Sub(d.OutstandingAmount)
}

// ApplyAllocation reduces the outstanding amount by an allocation from a receipt
func (d *DebtDocument) ApplyAllocation(amount decimal.Decimal) error {
	if err := d.settle(amount); err != nil {
		return err
	}
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Settle reduces the outstanding amount without counting a new mutation.
// It is meant for a document that is being created or restored in the same
// operation, whose version has already been set for that operation.
func (d *DebtDocument) Settle(amount decimal.Decimal) error {
	return d.settle(amount)
}

func (d *DebtDocument) settle(amount decimal.Decimal) error {
	if !d.Status.IsOpen() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot allocate to %s %s in %s status", d.Type, d.DocumentNumber, d.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Allocation amount must be positive")
	}
	if amount.GreaterThan(d.OutstandingAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Allocation %s exceeds outstanding %s on %s", amount.String(), d.OutstandingAmount.String(), d.DocumentNumber))
	}
	d.OutstandingAmount = d.OutstandingAmount.Sub(amount)
	d.refreshStatus()
	return nil
}

// ReverseAllocation gives an allocated amount back to the document
func (d *DebtDocument) ReverseAllocation(amount decimal.Decimal) error {
	if d.Status == DocumentStatusVoid {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot reverse an allocation on a void document")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidAmount, "Reversal amount must be positive")
	}
	restored := d.OutstandingAmount.Add(amount)
	if restored.GreaterThan(d.TotalAmount) {
		return shared.NewDomainError("EXCEEDS_TOTAL",
			fmt.Sprintf("Reversal %s would push outstanding above total on %s", amount.String(), d.DocumentNumber))
	}
	d.OutstandingAmount = restored
	d.refreshStatus()
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Void takes the document out of circulation. Allocations pointing at it must
// already be reversed, so outstanding is back to the full total afterwards.
// It returns the outstanding amount the document carried before voiding.
func (d *DebtDocument) Void(reason string, actor uuid.UUID, reversed decimal.Decimal) (decimal.Decimal, error) {
	if d.Status == DocumentStatusVoid {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("%s %s is already void", d.Type, d.DocumentNumber))
	}
	if strings.TrimSpace(reason) == "" {
		return decimal.Zero, shared.NewDomainError(shared.CodeReasonRequired, "Void reason is required")
	}
	if !d.PaidAmount().Equal(reversed) {
		return decimal.Zero, shared.NewDomainError("ALLOCATION_MISMATCH",
			fmt.Sprintf("Reversed %s but %s is allocated to %s", reversed.String(), d.PaidAmount().String(), d.DocumentNumber))
	}

	outstandingBefore := d.OutstandingAmount
	now := time.Now()
	d.PreVoidStatus = d.Status
	d.OutstandingAmount = d.TotalAmount
	d.Status = DocumentStatusVoid
	d.VoidReason = strings.TrimSpace(reason)
	d.DeletedAt = &now
	d.DeletedBy = &actor
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDebtDocumentVoidedEvent(d, reversed))
	return outstandingBefore, nil
}

// Unvoid puts a void document back in circulation with nothing allocated
func (d *DebtDocument) Unvoid() error {
	if d.Status != DocumentStatusVoid {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot unvoid %s %s in %s status", d.Type, d.DocumentNumber, d.Status))
	}
	d.OutstandingAmount = d.TotalAmount
	d.Status = DocumentStatusOpen
	d.PreVoidStatus = ""
	d.VoidReason = ""
	d.DeletedAt = nil
	d.DeletedBy = nil
	d.Touch()
	d.IncrementVersion()

	d.AddDomainEvent(NewDebtDocumentUnvoidedEvent(d))
	return nil
}

// refreshStatus keeps status consistent with the outstanding amount
func (d *DebtDocument) refreshStatus() {
	switch {
	case d.OutstandingAmount.IsZero():
		d.Status = DocumentStatusPaid
	case d.OutstandingAmount.LessThan(d.TotalAmount):
		d.Status = DocumentStatusPartial
	default:
		d.Status = DocumentStatusOpen
	}
}
