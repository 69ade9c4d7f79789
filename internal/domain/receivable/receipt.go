package receivable

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt is money received from a customer.
//
// Lifecycle: DRAFT -> APPROVED -> VOID -> DRAFT. Approval commits the
// allocations; void reverses them; unvoid brings the receipt back as a draft.
type Receipt struct {
	shared.BaseAggregateRoot
	ReceiptNumber      string
	SellerTaxCode      string
	CustomerTaxCode    string
	CustomerID         uuid.UUID
	ReceiptDate        time.Time
	Amount             decimal.Decimal
	UnallocatedAmount  decimal.Decimal
	AllocationMode     AllocationMode
	AllocationPriority AllocationPriority
	AllocationStatus   AllocationStatus
	AllocationTargets  TargetSelections
	Status             ReceiptStatus
	Description        string
	ApprovedAt         *time.Time
	ApprovedBy         *uuid.UUID
	SuggestedAt        *time.Time
	VoidReason         string
	DeletedAt          *time.Time
	DeletedBy          *uuid.UUID
	CreatedBy          *uuid.UUID
}

// NewReceiptInput carries the fields of a receipt being recorded
type NewReceiptInput struct {
	ReceiptNumber string
	Customer      *Customer
	ReceiptDate   time.Time
	Amount        decimal.Decimal
	Mode          AllocationMode
	Priority      AllocationPriority
	Description   string
	CreatedBy     *uuid.UUID
}

// NewReceipt creates an UNALLOCATED draft
func NewReceipt(input NewReceiptInput) (*Receipt, error) {
	number := NormalizeCode(input.ReceiptNumber)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot exceed 50 characters")
	}
	if input.Customer == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if !input.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Amount must be positive")
	}
	if input.ReceiptDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_RECEIPT_DATE", "Receipt date is required")
	}
	mode := input.Mode
	if mode == "" {
		mode = AllocationModeFIFO
	}
	if !mode.IsValid() {
		return nil, shared.NewDomainError("INVALID_ALLOCATION_MODE", "Allocation mode must be MANUAL or FIFO")
	}
	priority := input.Priority
	if priority == "" {
		priority = PriorityIssueDate
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError("INVALID_ALLOCATION_PRIORITY", "Allocation priority must be ISSUE_DATE or DUE_DATE")
	}

	return &Receipt{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ReceiptNumber:      number,
		SellerTaxCode:      input.Customer.SellerTaxCode,
		CustomerTaxCode:    input.Customer.TaxCode,
		CustomerID:         input.Customer.ID,
		ReceiptDate:        TruncateDate(input.ReceiptDate),
		Amount:             input.Amount,
		UnallocatedAmount:  input.Amount,
		AllocationMode:     mode,
		AllocationPriority: priority,
		AllocationStatus:   AllocationStatusUnallocated,
		AllocationTargets:  TargetSelections{},
		Status:             ReceiptStatusDraft,
		Description:        strings.TrimSpace(input.Description),
		CreatedBy:          input.CreatedBy,
	}, nil
}

// Party returns the seller and customer pair the receipt belongs to
func (r *Receipt) Party() PartyKey {
	return PartyKey{SellerTaxCode: r.SellerTaxCode, CustomerTaxCode: r.CustomerTaxCode}
}

// AllocatedAmount is the part of the receipt linked to debt documents
func (r *Receipt) AllocatedAmount() decimal.Decimal {
	return r.Amount.Sub(r.UnallocatedAmount)
}

// Select records caller-chosen targets on a draft. The unallocated amount
// becomes the leftover of a dry run; nothing is committed.
// It is used while the draft is built, so the version is left alone.
func (r *Receipt) Select(targets TargetSelections, preview AllocationPlan) error {
	if r.Status != ReceiptStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot select targets on a receipt in %s status", r.Status))
	}
	if len(targets) == 0 {
		return nil
	}
	r.AllocationTargets = targets
	r.AllocationStatus = AllocationStatusSelected
	r.AllocationMode = AllocationModeManual
	r.UnallocatedAmount = r.Amount.Sub(preview.Allocated)
	return nil
}

// Suggest stores a proposed target list produced by the batch scanner
func (r *Receipt) Suggest(targets TargetSelections, preview AllocationPlan, at time.Time) error {
	if !r.CanBeSuggested() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot suggest targets for a receipt in %s/%s", r.Status, r.AllocationStatus))
	}
	if len(targets) == 0 {
		return shared.NewDomainError(shared.CodeInvalidTarget, "A suggestion needs at least one target")
	}
	r.AllocationTargets = targets
	r.AllocationStatus = AllocationStatusSuggested
	r.UnallocatedAmount = r.Amount.Sub(preview.Allocated)
	r.SuggestedAt = &at
	r.UpdatedAt = at
	r.IncrementVersion()
	return nil
}

// CanBeSuggested reports whether the scanner may propose targets for the receipt.
// Caller-selected drafts are left alone.
func (r *Receipt) CanBeSuggested() bool {
	return r.Status == ReceiptStatusDraft &&
		(r.AllocationStatus == AllocationStatusUnallocated || r.AllocationStatus == AllocationStatusSuggested)
}

// StoredSelection returns the serialized target list that approval should use, if any
func (r *Receipt) StoredSelection() TargetSelections {
	if r.AllocationStatus == AllocationStatusSelected || r.AllocationStatus == AllocationStatusSuggested {
		return r.AllocationTargets
	}
	return nil
}

// CanApprove checks the state precondition of approval
func (r *Receipt) CanApprove() error {
	if r.Status != ReceiptStatusDraft {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot approve receipt %s in %s status", r.ReceiptNumber, r.Status))
	}
	return nil
}

// Approve commits an allocation plan. The plan's lines must already have been
// applied to the targets by the caller.
func (r *Receipt) Approve(plan AllocationPlan, targets TargetSelections, approvedBy uuid.UUID) error {
	if err := r.CanApprove(); err != nil {
		return err
	}
	if plan.Allocated.GreaterThan(r.Amount) {
		return shared.NewDomainError("EXCEEDS_AMOUNT", "Allocated total exceeds the receipt amount")
	}

	now := time.Now()
	// a suggestion is replaced by whatever was actually paid, even nothing
	if len(targets) > 0 || r.AllocationStatus == AllocationStatusSuggested {
		r.AllocationTargets = targets
	}
	r.UnallocatedAmount = r.Amount.Sub(plan.Allocated)
	r.AllocationStatus = allocationStatusFor(r.Amount, r.UnallocatedAmount)
	r.Status = ReceiptStatusApproved
	r.ApprovedAt = &now
	r.ApprovedBy = &approvedBy
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReceiptApprovedEvent(r, plan))
	return nil
}

// ApplySourceAllocation draws amount from an approved receipt's unallocated
// balance into a debt document created after the receipt.
func (r *Receipt) ApplySourceAllocation(amount decimal.Decimal) error {
	if r.Status != ReceiptStatusApproved {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Receipt %s is not approved", r.ReceiptNumber))
	}
	if !amount.IsPositive() || amount.GreaterThan(r.UnallocatedAmount) {
		return shared.NewDomainError(shared.CodeInvalidAmount,
			fmt.Sprintf("Cannot draw %s from receipt %s with %s unallocated", amount.String(), r.ReceiptNumber, r.UnallocatedAmount.String()))
	}
	r.UnallocatedAmount = r.UnallocatedAmount.Sub(amount)
	r.AllocationStatus = allocationStatusFor(r.Amount, r.UnallocatedAmount)
	r.Touch()
	r.IncrementVersion()
	return nil
}

// ReverseSourceAllocation returns amount to the receipt because the document it paid was voided
func (r *Receipt) ReverseSourceAllocation(amount decimal.Decimal) error {
	if r.Status != ReceiptStatusApproved {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Receipt %s is not approved", r.ReceiptNumber))
	}
	restored := r.UnallocatedAmount.Add(amount)
	if !amount.IsPositive() || restored.GreaterThan(r.Amount) {
		return shared.NewDomainError(shared.CodeInvalidAmount,
			fmt.Sprintf("Cannot return %s to receipt %s", amount.String(), r.ReceiptNumber))
	}
	r.UnallocatedAmount = restored
	r.AllocationStatus = allocationStatusFor(r.Amount, r.UnallocatedAmount)
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Void takes an approved receipt out of circulation. Its allocations must already be
// reversed by the caller; reversed is their total and restoreHint lists them,
// so that unvoid can offer the same selection again.
func (r *Receipt) Void(reason string, actor uuid.UUID, reversed decimal.Decimal, restoreHint TargetSelections) error {
	if r.Status != ReceiptStatusApproved {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot void receipt %s in %s status", r.ReceiptNumber, r.Status))
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError(shared.CodeReasonRequired, "Void reason is required")
	}
	if !r.AllocatedAmount().Equal(reversed) {
		return shared.NewDomainError("ALLOCATION_MISMATCH",
			fmt.Sprintf("Reversed %s but %s is allocated from receipt %s", reversed.String(), r.AllocatedAmount().String(), r.ReceiptNumber))
	}

	now := time.Now()
	r.UnallocatedAmount = r.Amount
	if len(restoreHint) > 0 {
		r.AllocationTargets = restoreHint
	}
	r.Status = ReceiptStatusVoid
	r.AllocationStatus = AllocationStatusVoid
	r.VoidReason = strings.TrimSpace(reason)
	r.DeletedAt = &now
	r.DeletedBy = &actor
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReceiptVoidedEvent(r, reversed))
	return nil
}

// Unvoid brings a void receipt back as a draft. A stored target list
// restores the SELECTED state; the amount is fully unallocated again.
func (r *Receipt) Unvoid() error {
	if r.Status != ReceiptStatusVoid {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot unvoid receipt %s in %s status", r.ReceiptNumber, r.Status))
	}
	if len(r.AllocationTargets) > 0 {
		r.AllocationStatus = AllocationStatusSelected
	} else {
		r.AllocationStatus = AllocationStatusUnallocated
	}
	r.UnallocatedAmount = r.Amount
	r.Status = ReceiptStatusDraft
	r.VoidReason = ""
	r.DeletedAt = nil
	r.DeletedBy = nil
	r.ApprovedAt = nil
	r.ApprovedBy = nil
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewReceiptUnvoidedEvent(r))
	return nil
}

func allocationStatusFor(amount, unallocated decimal.Decimal) AllocationStatus {
	switch {
	case unallocated.IsZero():
		return AllocationStatusAllocated
	case unallocated.Equal(amount):
		return AllocationStatusUnallocated
	default:
		return AllocationStatusPartial
	}
}
