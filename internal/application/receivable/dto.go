package receivable

import (
	"time"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateReceiptInput represents a request to record a receipt
type CreateReceiptInput struct {
	SellerTaxCode   string
	CustomerTaxCode string
	ReceiptNumber   string
	ReceiptDate     time.Time
	Amount          decimal.Decimal
	Mode            receivable.AllocationMode
	Priority        receivable.AllocationPriority
	Targets         receivable.TargetSelections
	Description     string
}

// PreviewInput represents a dry-run request. When ReceiptID is set the
// receipt's own party, amount, priority and stored selection are used and
// Targets, if given, override the stored selection.
type PreviewInput struct {
	ReceiptID       *uuid.UUID
	SellerTaxCode   string
	CustomerTaxCode string
	Amount          decimal.Decimal
	Priority        receivable.AllocationPriority
	Targets         receivable.TargetSelections
}

// ApproveReceiptInput represents a request to approve a draft receipt
type ApproveReceiptInput struct {
	ReceiptID uuid.UUID
	Version   int
	Targets   receivable.TargetSelections
	Override  *receivable.LockOverride
}

// VoidReceiptInput represents a request to void an approved receipt
type VoidReceiptInput struct {
	ReceiptID uuid.UUID
	Version   int
	Reason    string
	Override  *receivable.LockOverride
}

// UnvoidReceiptInput represents a request to bring a void receipt back as a draft
type UnvoidReceiptInput struct {
	ReceiptID uuid.UUID
	Version   int
	Override  *receivable.LockOverride
}

// BulkApproveInput approves several receipts, each in its own transaction
type BulkApproveInput struct {
	Items           []ApproveReceiptInput
	ContinueOnError bool
}

// CreateDebtDocumentInput represents a request to commit an invoice or advance
type CreateDebtDocumentInput struct {
	Type            receivable.DocumentType
	SellerTaxCode   string
	CustomerTaxCode string
	DocumentNumber  string
	TotalAmount     decimal.Decimal
	IssueDate       time.Time
	Description     string
	Override        *receivable.LockOverride
}

// VoidDebtDocumentInput represents a request to void an invoice or advance
type VoidDebtDocumentInput struct {
	Type       receivable.DocumentType
	DocumentID uuid.UUID
	Version    int
	Reason     string
	Override   *receivable.LockOverride
}

// UnvoidDebtDocumentInput represents a request to restore a void invoice or advance
type UnvoidDebtDocumentInput struct {
	Type       receivable.DocumentType
	DocumentID uuid.UUID
	Version    int
	Override   *receivable.LockOverride
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	ReceiptNumber      string                      `json:"receipt_number"`
	SellerTaxCode      string                      `json:"seller_tax_code"`
	CustomerTaxCode    string                      `json:"customer_tax_code"`
	CustomerID         uuid.UUID                   `json:"customer_id"`
	ReceiptDate        time.Time                   `json:"receipt_date"`
	Amount             decimal.Decimal             `json:"amount"`
	UnallocatedAmount  decimal.Decimal             `json:"unallocated_amount"`
	AllocationMode     string                      `json:"allocation_mode"`
	AllocationPriority string                      `json:"allocation_priority"`
	AllocationStatus   string                      `json:"allocation_status"`
	AllocationTargets  receivable.TargetSelections `json:"allocation_targets"`
	Status             string                      `json:"status"`
	Description        string                      `json:"description,omitempty"`
	ApprovedAt         *time.Time                  `json:"approved_at,omitempty"`
	ApprovedBy         *uuid.UUID                  `json:"approved_by,omitempty"`
	SuggestedAt        *time.Time                  `json:"suggested_at,omitempty"`
	VoidReason         string                      `json:"void_reason,omitempty"`
	DeletedAt          *time.Time                  `json:"deleted_at,omitempty"`
	DeletedBy          *uuid.UUID                  `json:"deleted_by,omitempty"`
	Version            int                         `json:"version"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// ToReceiptResponse converts a receipt to its response form
func ToReceiptResponse(r *receivable.Receipt) ReceiptResponse {
	targets := r.AllocationTargets
	if targets == nil {
		targets = receivable.TargetSelections{}
	}
	return ReceiptResponse{
		ID:                 r.ID,
		ReceiptNumber:      r.ReceiptNumber,
		SellerTaxCode:      r.SellerTaxCode,
		CustomerTaxCode:    r.CustomerTaxCode,
		CustomerID:         r.CustomerID,
		ReceiptDate:        r.ReceiptDate,
		Amount:             r.Amount,
		UnallocatedAmount:  r.UnallocatedAmount,
		AllocationMode:     string(r.AllocationMode),
		AllocationPriority: string(r.AllocationPriority),
		AllocationStatus:   string(r.AllocationStatus),
		AllocationTargets:  targets,
		Status:             string(r.Status),
		Description:        r.Description,
		ApprovedAt:         r.ApprovedAt,
		ApprovedBy:         r.ApprovedBy,
		SuggestedAt:        r.SuggestedAt,
		VoidReason:         r.VoidReason,
		DeletedAt:          r.DeletedAt,
		DeletedBy:          r.DeletedBy,
		Version:            r.Version,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// DebtDocumentResponse represents an invoice or advance in API responses
type DebtDocumentResponse struct {
	ID                uuid.UUID       `json:"id"`
	Type              string          `json:"type"`
	DocumentNumber    string          `json:"document_number"`
	SellerTaxCode     string          `json:"seller_tax_code"`
	CustomerTaxCode   string          `json:"customer_tax_code"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Status            string          `json:"status"`
	PreVoidStatus     string          `json:"pre_void_status,omitempty"`
	IssueDate         time.Time       `json:"issue_date"`
	DueDate           time.Time       `json:"due_date"`
	Description       string          `json:"description,omitempty"`
	VoidReason        string          `json:"void_reason,omitempty"`
	DeletedAt         *time.Time      `json:"deleted_at,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToDebtDocumentResponse converts a debt document to its response form
func ToDebtDocumentResponse(d *receivable.DebtDocument) DebtDocumentResponse {
	return DebtDocumentResponse{
		ID:                d.ID,
		Type:              string(d.Type),
		DocumentNumber:    d.DocumentNumber,
		SellerTaxCode:     d.SellerTaxCode,
		CustomerTaxCode:   d.CustomerTaxCode,
		CustomerID:        d.CustomerID,
		TotalAmount:       d.TotalAmount,
		OutstandingAmount: d.OutstandingAmount,
		Status:            string(d.Status),
		PreVoidStatus:     string(d.PreVoidStatus),
		IssueDate:         d.IssueDate,
		DueDate:           d.DueDate,
		Description:       d.Description,
		VoidReason:        d.VoidReason,
		DeletedAt:         d.DeletedAt,
		Version:           d.Version,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// AllocationResponse represents a receipt allocation row in API responses
type AllocationResponse struct {
	ID         uuid.UUID       `json:"id"`
	ReceiptID  uuid.UUID       `json:"receipt_id"`
	TargetType string          `json:"target_type"`
	TargetID   uuid.UUID       `json:"target_id"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ToAllocationResponses converts allocation rows to their response form
func ToAllocationResponses(allocs []receivable.ReceiptAllocation) []AllocationResponse {
	out := make([]AllocationResponse, 0, len(allocs))
	for _, a := range allocs {
		ref := a.Target()
		out = append(out, AllocationResponse{
			ID:         a.ID,
			ReceiptID:  a.ReceiptID,
			TargetType: string(ref.Type),
			TargetID:   ref.ID,
			Amount:     a.Amount,
			CreatedAt:  a.CreatedAt,
		})
	}
	return out
}

// PreviewResult is the outcome of a dry-run allocation
type PreviewResult struct {
	Lines             []receivable.AllocationLine `json:"lines"`
	AllocatedAmount   decimal.Decimal             `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal             `json:"unallocated_amount"`
}

func toPreviewResult(plan receivable.AllocationPlan) *PreviewResult {
	lines := plan.Lines
	if lines == nil {
		lines = []receivable.AllocationLine{}
	}
	return &PreviewResult{
		Lines:             lines,
		AllocatedAmount:   plan.Allocated,
		UnallocatedAmount: plan.Leftover,
	}
}

// ApproveReceiptResult is the outcome of an approval
type ApproveReceiptResult struct {
	Receipt         ReceiptResponse             `json:"receipt"`
	Lines           []receivable.AllocationLine `json:"lines"`
	AllocatedAmount decimal.Decimal             `json:"allocated_amount"`
}

// VoidReceiptResult is the outcome of a receipt void
type VoidReceiptResult struct {
	Receipt             ReceiptResponse `json:"receipt"`
	ReversedAmount      decimal.Decimal `json:"reversed_amount"`
	ReversedAllocations int             `json:"reversed_allocations"`
}

// BulkItemResult records what happened to one receipt of a bulk approval
type BulkItemResult struct {
	ReceiptID uuid.UUID `json:"receipt_id"`
	Success   bool      `json:"success"`
	Status    string    `json:"status,omitempty"`
	Version   int       `json:"version,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// BulkApproveResult summarizes a bulk approval
type BulkApproveResult struct {
	Total    int              `json:"total"`
	Approved int              `json:"approved"`
	Failed   int              `json:"failed"`
	Skipped  int              `json:"skipped"`
	Items    []BulkItemResult `json:"items"`
}

// CreateDebtDocumentResult is the committed document plus what surplus receipts paid into it
type CreateDebtDocumentResult struct {
	Document      DebtDocumentResponse        `json:"document"`
	AutoAllocated decimal.Decimal             `json:"auto_allocated"`
	Allocations   []receivable.AllocationLine `json:"allocations"`
}

// VoidDebtDocumentResult is the outcome of a document void
type VoidDebtDocumentResult struct {
	Document            DebtDocumentResponse `json:"document"`
	ReversedAmount      decimal.Decimal      `json:"reversed_amount"`
	ReversedAllocations int                  `json:"reversed_allocations"`
}

// ImportItemResult records what happened to one document of an import
type ImportItemResult struct {
	DocumentNumber string     `json:"document_number"`
	Success        bool       `json:"success"`
	DocumentID     *uuid.UUID `json:"document_id,omitempty"`
	ErrorCode      string     `json:"error_code,omitempty"`
	Message        string     `json:"message,omitempty"`
}

// ImportResult summarizes a batch import commit
type ImportResult struct {
	Total   int                `json:"total"`
	Created int                `json:"created"`
	Failed  int                `json:"failed"`
	Items   []ImportItemResult `json:"items"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID                uuid.UUID       `json:"id"`
	SellerTaxCode     string          `json:"seller_tax_code"`
	TaxCode           string          `json:"tax_code"`
	Name              string          `json:"name"`
	PaymentTermsDays  int             `json:"payment_terms_days"`
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	AccountantOwnerID *uuid.UUID      `json:"accountant_owner_id,omitempty"`
	Version           int             `json:"version"`
}

// ToCustomerResponse converts a customer to its response form
func ToCustomerResponse(c *receivable.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                c.ID,
		SellerTaxCode:     c.SellerTaxCode,
		TaxCode:           c.TaxCode,
		Name:              c.Name,
		PaymentTermsDays:  c.PaymentTermsDays,
		CurrentBalance:    c.CurrentBalance,
		AccountantOwnerID: c.AccountantOwnerID,
		Version:           c.Version,
	}
}

// RecomputeBalanceResult compares the stored balance with the one derived from open documents
type RecomputeBalanceResult struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Previous   decimal.Decimal `json:"previous_balance"`
	Current    decimal.Decimal `json:"current_balance"`
	Drift      decimal.Decimal `json:"drift"`
}

// PeriodLockResponse represents a period lock in API responses
type PeriodLockResponse struct {
	ID            uuid.UUID `json:"id"`
	PeriodType    string    `json:"period_type"`
	PeriodKey     string    `json:"period_key"`
	SellerTaxCode string    `json:"seller_tax_code,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	LockedAt      time.Time `json:"locked_at"`
	LockedBy      uuid.UUID `json:"locked_by"`
}

// ToPeriodLockResponse converts a period lock to its response form
func ToPeriodLockResponse(l *receivable.PeriodLock) PeriodLockResponse {
	return PeriodLockResponse{
		ID:            l.ID,
		PeriodType:    string(l.PeriodType),
		PeriodKey:     l.PeriodKey,
		SellerTaxCode: l.SellerTaxCode,
		Reason:        l.Reason,
		LockedAt:      l.LockedAt,
		LockedBy:      l.LockedBy,
	}
}

// ScanOptions narrows a suggestion scan
type ScanOptions struct {
	SellerTaxCodes []string
	Limit          int
}

// ScanResult summarizes a suggestion scan
type ScanResult struct {
	Groups          int           `json:"groups"`
	ReceiptsScanned int           `json:"receipts_scanned"`
	Suggested       int           `json:"suggested"`
	Skipped         int           `json:"skipped"`
	Duration        time.Duration `json:"duration_ns"`
}
