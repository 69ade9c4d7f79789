package models

import (
	"time"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for a seller's customer
type CustomerModel struct {
	AggregateModel
	SellerTaxCode     string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_seller_tax_code,priority:1"`
	TaxCode           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_seller_tax_code,priority:2"`
	Name              string          `gorm:"type:varchar(200);not null"`
	PaymentTermsDays  int             `gorm:"not null;default:0"`
	CurrentBalance    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AccountantOwnerID *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *receivable.Customer {
	c := &receivable.Customer{
		SellerTaxCode:     m.SellerTaxCode,
		TaxCode:           m.TaxCode,
		Name:              m.Name,
		PaymentTermsDays:  m.PaymentTermsDays,
		CurrentBalance:    m.CurrentBalance,
		AccountantOwnerID: m.AccountantOwnerID,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *receivable.Customer) *CustomerModel {
	m := &CustomerModel{
		SellerTaxCode:     c.SellerTaxCode,
		TaxCode:           c.TaxCode,
		Name:              c.Name,
		PaymentTermsDays:  c.PaymentTermsDays,
		CurrentBalance:    c.CurrentBalance,
		AccountantOwnerID: c.AccountantOwnerID,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// DebtDocumentColumns are the columns shared by the invoices and advances tables
type DebtDocumentColumns struct {
	AggregateModel
	DocumentNumber    string                    `gorm:"type:varchar(50);not null"`
	SellerTaxCode     string                    `gorm:"type:varchar(50);not null;index"`
	CustomerTaxCode   string                    `gorm:"type:varchar(50);not null;index"`
	CustomerID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	TotalAmount       decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status            receivable.DocumentStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	PreVoidStatus     string                    `gorm:"type:varchar(20)"`
	IssueDate         time.Time                 `gorm:"type:date;not null"`
	DueDate           time.Time                 `gorm:"type:date;not null"`
	Description       string                    `gorm:"type:text"`
	VoidReason        string                    `gorm:"type:text"`
	DeletedAt         *time.Time
	DeletedBy         *uuid.UUID `gorm:"type:uuid"`
	CreatedBy         *uuid.UUID `gorm:"type:uuid"`
}

func (m *DebtDocumentColumns) toDomain(docType receivable.DocumentType) *receivable.DebtDocument {
	d := &receivable.DebtDocument{
		Type:              docType,
		DocumentNumber:    m.DocumentNumber,
		SellerTaxCode:     m.SellerTaxCode,
		CustomerTaxCode:   m.CustomerTaxCode,
		CustomerID:        m.CustomerID,
		TotalAmount:       m.TotalAmount,
		OutstandingAmount: m.OutstandingAmount,
		Status:            m.Status,
		PreVoidStatus:     receivable.DocumentStatus(m.PreVoidStatus),
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		Description:       m.Description,
		VoidReason:        m.VoidReason,
		DeletedAt:         m.DeletedAt,
		DeletedBy:         m.DeletedBy,
		CreatedBy:         m.CreatedBy,
	}
	m.PopulateAggregateRoot(&d.BaseAggregateRoot)
	return d
}

func debtDocumentColumnsFromDomain(d *receivable.DebtDocument) DebtDocumentColumns {
	c := DebtDocumentColumns{
		DocumentNumber:    d.DocumentNumber,
		SellerTaxCode:     d.SellerTaxCode,
		CustomerTaxCode:   d.CustomerTaxCode,
		CustomerID:        d.CustomerID,
		TotalAmount:       d.TotalAmount,
		OutstandingAmount: d.OutstandingAmount,
		Status:            d.Status,
		PreVoidStatus:     string(d.PreVoidStatus),
		IssueDate:         d.IssueDate,
		DueDate:           d.DueDate,
		Description:       d.Description,
		VoidReason:        d.VoidReason,
		DeletedAt:         d.DeletedAt,
		DeletedBy:         d.DeletedBy,
		CreatedBy:         d.CreatedBy,
	}
	c.FromDomainAggregateRoot(d.BaseAggregateRoot)
	return c
}

// InvoiceModel is the persistence model for an invoice
type InvoiceModel struct {
	DebtDocumentColumns
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain DebtDocument
func (m *InvoiceModel) ToDomain() *receivable.DebtDocument {
	return m.toDomain(receivable.DocumentTypeInvoice)
}

// AdvanceModel is the persistence model for a pay-on-behalf advance
type AdvanceModel struct {
	DebtDocumentColumns
}

// TableName returns the table name for GORM
func (AdvanceModel) TableName() string {
	return "advances"
}

// ToDomain converts the persistence model to a domain DebtDocument
func (m *AdvanceModel) ToDomain() *receivable.DebtDocument {
	return m.toDomain(receivable.DocumentTypeAdvance)
}

// DebtDocumentModelFromDomain returns an *InvoiceModel or *AdvanceModel for the document's type
func DebtDocumentModelFromDomain(d *receivable.DebtDocument) any {
	if d.Type == receivable.DocumentTypeAdvance {
		return &AdvanceModel{DebtDocumentColumns: debtDocumentColumnsFromDomain(d)}
	}
	return &InvoiceModel{DebtDocumentColumns: debtDocumentColumnsFromDomain(d)}
}

// ReceiptModel is the persistence model for a receipt
type ReceiptModel struct {
	AggregateModel
	ReceiptNumber      string                        `gorm:"type:varchar(50);not null"`
	SellerTaxCode      string                        `gorm:"type:varchar(50);not null;index:idx_receipt_party,priority:1"`
	CustomerTaxCode    string                        `gorm:"type:varchar(50);not null;index:idx_receipt_party,priority:2"`
	CustomerID         uuid.UUID                     `gorm:"type:uuid;not null;index"`
	ReceiptDate        time.Time                     `gorm:"type:date;not null"`
	Amount             decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	UnallocatedAmount  decimal.Decimal               `gorm:"type:decimal(18,4);not null"`
	AllocationMode     receivable.AllocationMode     `gorm:"type:varchar(20);not null;default:'FIFO'"`
	AllocationPriority receivable.AllocationPriority `gorm:"type:varchar(20);not null;default:'ISSUE_DATE'"`
	AllocationStatus   receivable.AllocationStatus   `gorm:"type:varchar(20);not null;default:'UNALLOCATED';index"`
	AllocationTargets  receivable.TargetSelections   `gorm:"type:jsonb"`
	Status             receivable.ReceiptStatus      `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Description        string                        `gorm:"type:text"`
	ApprovedAt         *time.Time
	ApprovedBy         *uuid.UUID `gorm:"type:uuid"`
	SuggestedAt        *time.Time
	VoidReason         string `gorm:"type:text"`
	DeletedAt          *time.Time
	DeletedBy          *uuid.UUID `gorm:"type:uuid"`
	CreatedBy          *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt
func (m *ReceiptModel) ToDomain() *receivable.Receipt {
	targets := m.AllocationTargets
	if targets == nil {
		targets = receivable.TargetSelections{}
	}
	r := &receivable.Receipt{
		ReceiptNumber:      m.ReceiptNumber,
		SellerTaxCode:      m.SellerTaxCode,
		CustomerTaxCode:    m.CustomerTaxCode,
		CustomerID:         m.CustomerID,
		ReceiptDate:        m.ReceiptDate,
		Amount:             m.Amount,
		UnallocatedAmount:  m.UnallocatedAmount,
		AllocationMode:     m.AllocationMode,
		AllocationPriority: m.AllocationPriority,
		AllocationStatus:   m.AllocationStatus,
		AllocationTargets:  targets,
		Status:             m.Status,
		Description:        m.Description,
		ApprovedAt:         m.ApprovedAt,
		ApprovedBy:         m.ApprovedBy,
		SuggestedAt:        m.SuggestedAt,
		VoidReason:         m.VoidReason,
		DeletedAt:          m.DeletedAt,
		DeletedBy:          m.DeletedBy,
		CreatedBy:          m.CreatedBy,
	}
	m.PopulateAggregateRoot(&r.BaseAggregateRoot)
	return r
}

// ReceiptModelFromDomain creates a persistence model from a domain Receipt
func ReceiptModelFromDomain(r *receivable.Receipt) *ReceiptModel {
	targets := r.AllocationTargets
	if targets == nil {
		targets = receivable.TargetSelections{}
	}
	m := &ReceiptModel{
		ReceiptNumber:      r.ReceiptNumber,
		SellerTaxCode:      r.SellerTaxCode,
		CustomerTaxCode:    r.CustomerTaxCode,
		CustomerID:         r.CustomerID,
		ReceiptDate:        r.ReceiptDate,
		Amount:             r.Amount,
		UnallocatedAmount:  r.UnallocatedAmount,
		AllocationMode:     r.AllocationMode,
		AllocationPriority: r.AllocationPriority,
		AllocationStatus:   r.AllocationStatus,
		AllocationTargets:  targets,
		Status:             r.Status,
		Description:        r.Description,
		ApprovedAt:         r.ApprovedAt,
		ApprovedBy:         r.ApprovedBy,
		SuggestedAt:        r.SuggestedAt,
		VoidReason:         r.VoidReason,
		DeletedAt:          r.DeletedAt,
		DeletedBy:          r.DeletedBy,
		CreatedBy:          r.CreatedBy,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// ReceiptAllocationModel is the persistence model for a receipt allocation row.
// Exactly one of InvoiceID and AdvanceID is set, matching TargetType.
type ReceiptAllocationModel struct {
	ID         uuid.UUID               `gorm:"type:uuid;primaryKey"`
	ReceiptID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	TargetType receivable.DocumentType `gorm:"type:varchar(20);not null"`
	InvoiceID  *uuid.UUID              `gorm:"type:uuid;index"`
	AdvanceID  *uuid.UUID              `gorm:"type:uuid;index"`
	Amount     decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time               `gorm:"not null"`
	CreatedBy  *uuid.UUID              `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReceiptAllocationModel) TableName() string {
	return "receipt_allocations"
}

// ToDomain converts the persistence model to a domain ReceiptAllocation
func (m *ReceiptAllocationModel) ToDomain() receivable.ReceiptAllocation {
	return receivable.ReceiptAllocation{
		ID:         m.ID,
		ReceiptID:  m.ReceiptID,
		TargetType: m.TargetType,
		InvoiceID:  m.InvoiceID,
		AdvanceID:  m.AdvanceID,
		Amount:     m.Amount,
		CreatedAt:  m.CreatedAt,
		CreatedBy:  m.CreatedBy,
	}
}

// ReceiptAllocationModelFromDomain creates a persistence model from a domain ReceiptAllocation
func ReceiptAllocationModelFromDomain(a *receivable.ReceiptAllocation) *ReceiptAllocationModel {
	return &ReceiptAllocationModel{
		ID:         a.ID,
		ReceiptID:  a.ReceiptID,
		TargetType: a.TargetType,
		InvoiceID:  a.InvoiceID,
		AdvanceID:  a.AdvanceID,
		Amount:     a.Amount,
		CreatedAt:  a.CreatedAt,
		CreatedBy:  a.CreatedBy,
	}
}

// PeriodLockModel is the persistence model for an accounting period lock.
// A global lock stores an empty seller tax code.
type PeriodLockModel struct {
	ID            uuid.UUID             `gorm:"type:uuid;primaryKey"`
	PeriodType    receivable.PeriodType `gorm:"type:varchar(20);not null;uniqueIndex:idx_period_lock_key,priority:1"`
	PeriodKey     string                `gorm:"type:varchar(20);not null;uniqueIndex:idx_period_lock_key,priority:2"`
	SellerTaxCode string                `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_period_lock_key,priority:3"`
	Reason        string                `gorm:"type:text"`
	LockedAt      time.Time             `gorm:"not null"`
	LockedBy      uuid.UUID             `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (PeriodLockModel) TableName() string {
	return "period_locks"
}

// ToDomain converts the persistence model to a domain PeriodLock
func (m *PeriodLockModel) ToDomain() *receivable.PeriodLock {
	return &receivable.PeriodLock{
		ID:            m.ID,
		PeriodType:    m.PeriodType,
		PeriodKey:     m.PeriodKey,
		SellerTaxCode: m.SellerTaxCode,
		Reason:        m.Reason,
		LockedAt:      m.LockedAt,
		LockedBy:      m.LockedBy,
	}
}

// PeriodLockModelFromDomain creates a persistence model from a domain PeriodLock
func PeriodLockModelFromDomain(l *receivable.PeriodLock) *PeriodLockModel {
	return &PeriodLockModel{
		ID:            l.ID,
		PeriodType:    l.PeriodType,
		PeriodKey:     l.PeriodKey,
		SellerTaxCode: l.SellerTaxCode,
		Reason:        l.Reason,
		LockedAt:      l.LockedAt,
		LockedBy:      l.LockedBy,
	}
}

// AuditLogModel is one audit trail entry. Before and After hold JSON snapshots.
type AuditLogModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Action     string     `gorm:"type:varchar(64);not null;index"`
	EntityType string     `gorm:"type:varchar(64);not null;index:idx_audit_entity,priority:1"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index"`
	RequestID  string     `gorm:"type:varchar(64)"`
	Before     []byte     `gorm:"type:jsonb"`
	After      []byte     `gorm:"type:jsonb"`
	CreatedAt  time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}
