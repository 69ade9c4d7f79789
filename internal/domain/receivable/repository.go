package receivable

import (
	"context"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptFilter defines filtering options for receipt queries
type ReceiptFilter struct {
	shared.Filter
	SellerTaxCode    string            // Filter by seller
	CustomerTaxCode  string            // Filter by customer
	Status           *ReceiptStatus    // Filter by approval status
	AllocationStatus *AllocationStatus // Filter by allocation status
	FromDate         *time.Time        // Receipt date range start
	ToDate           *time.Time        // Receipt date range end
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByID finds a receipt by ID, including void receipts
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)

	// FindAll lists receipts with filtering and returns the total count
	FindAll(ctx context.Context, filter ReceiptFilter) ([]Receipt, int64, error)

	// FindSurplus finds approved receipts of a party that still have money
	// unallocated, ordered by receipt date then receipt number
	FindSurplus(ctx context.Context, party PartyKey) ([]*Receipt, error)

	// FindScanCandidates loads the drafts the suggestion scanner may work on in one query,
	// SELECTED ones included
	FindScanCandidates(ctx context.Context, sellerTaxCodes []string, limit int) ([]*Receipt, error)

	// Create inserts a new receipt
	Create(ctx context.Context, receipt *Receipt) error

	// SaveWithLock updates a receipt only if its stored version still equals
	// expectedVersion; otherwise it returns a CONCURRENT_MODIFICATION error
	SaveWithLock(ctx context.Context, receipt *Receipt, expectedVersion int) error

	// ExistsByNumber checks if a receipt number is taken for a seller
	ExistsByNumber(ctx context.Context, sellerTaxCode, receiptNumber string) (bool, error)
}

// DebtDocumentRepository defines the interface for invoice and advance persistence.
// Invoices and advances live in separate tables; the type selects the table.
type DebtDocumentRepository interface {
	// FindByID finds a document by type and ID, including void documents
	FindByID(ctx context.Context, docType DocumentType, id uuid.UUID) (*DebtDocument, error)

	// FindOpen finds OPEN and PARTIAL documents of both types for a party
	FindOpen(ctx context.Context, party PartyKey) ([]*DebtDocument, error)

	// FindOpenByParties finds open documents of one type for many parties in one query
	FindOpenByParties(ctx context.Context, docType DocumentType, parties []PartyKey) ([]*DebtDocument, error)

	// Create inserts a new document
	Create(ctx context.Context, doc *DebtDocument) error

	// SaveWithLock updates a document only if its stored version still equals expectedVersion
	SaveWithLock(ctx context.Context, doc *DebtDocument, expectedVersion int) error

	// ExistsByNumber checks if a document number is taken for a seller
	ExistsByNumber(ctx context.Context, docType DocumentType, sellerTaxCode, documentNumber string) (bool, error)

	// SumOpenOutstanding totals the outstanding amount of a customer's non-void documents
	SumOpenOutstanding(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

// AllocationRepository defines the interface for receipt allocation rows
type AllocationRepository interface {
	// CreateBatch inserts allocation rows
	CreateBatch(ctx context.Context, allocations []*ReceiptAllocation) error

	// FindByReceipt finds the allocations drawn from a receipt
	FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]ReceiptAllocation, error)

	// FindByTarget finds the allocations paying a document
	FindByTarget(ctx context.Context, target TargetRef) ([]ReceiptAllocation, error)

	// DeleteByIDs removes allocation rows
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByTaxCode finds a customer of a seller by tax code
	FindByTaxCode(ctx context.Context, sellerTaxCode, taxCode string) (*Customer, error)

	// Create inserts a new customer
	Create(ctx context.Context, customer *Customer) error

	// AdjustBalance atomically adds delta to the current balance
	AdjustBalance(ctx context.Context, customerID uuid.UUID, delta decimal.Decimal) error

	// SetBalance overwrites the current balance
	SetBalance(ctx context.Context, customerID uuid.UUID, balance decimal.Decimal) error
}

// PeriodLockRepository defines the interface for period lock persistence
type PeriodLockRepository interface {
	// FindActive returns the lock covering a period for a seller, or a global
	// lock for the period. It returns nil without error when nothing is locked.
	FindActive(ctx context.Context, periodType PeriodType, periodKey, sellerTaxCode string) (*PeriodLock, error)

	// FindByID finds a lock by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PeriodLock, error)

	// List returns all locks, newest period first
	List(ctx context.Context) ([]PeriodLock, error)

	// Create inserts a lock; locking the same period twice is ALREADY_EXISTS
	Create(ctx context.Context, lock *PeriodLock) error

	// Delete removes a lock
	Delete(ctx context.Context, id uuid.UUID) error
}
