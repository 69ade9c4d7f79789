package persistence

import (
	"context"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptAllocationRepository implements AllocationRepository using GORM
type GormReceiptAllocationRepository struct {
	db *gorm.DB
}

// NewGormReceiptAllocationRepository creates a new GormReceiptAllocationRepository
func NewGormReceiptAllocationRepository(db *gorm.DB) *GormReceiptAllocationRepository {
	return &GormReceiptAllocationRepository{db: db}
}

// CreateBatch inserts allocation rows in a single statement
func (r *GormReceiptAllocationRepository) CreateBatch(ctx context.Context, allocations []*receivable.ReceiptAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	rows := make([]*models.ReceiptAllocationModel, len(allocations))
	for i, a := range allocations {
		rows[i] = models.ReceiptAllocationModelFromDomain(a)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByReceipt finds the allocations drawn from a receipt, oldest first
func (r *GormReceiptAllocationRepository) FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]receivable.ReceiptAllocation, error) {
	var rows []models.ReceiptAllocationModel
	if err := r.db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAllocations(rows), nil
}

// FindByTarget finds the allocations paying an invoice or an advance
func (r *GormReceiptAllocationRepository) FindByTarget(ctx context.Context, target receivable.TargetRef) ([]receivable.ReceiptAllocation, error) {
	column := "invoice_id"
	switch target.Type {
	case receivable.DocumentTypeInvoice:
	case receivable.DocumentTypeAdvance:
		column = "advance_id"
	default:
		return nil, unknownDocumentType(target.Type)
	}

	var rows []models.ReceiptAllocationModel
	if err := r.db.WithContext(ctx).
		Where(column+" = ?", target.ID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAllocations(rows), nil
}

// DeleteByIDs removes allocation rows
func (r *GormReceiptAllocationRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.ReceiptAllocationModel{}).Error
}

func toAllocations(rows []models.ReceiptAllocationModel) []receivable.ReceiptAllocation {
	allocations := make([]receivable.ReceiptAllocation, len(rows))
	for i := range rows {
		allocations[i] = rows[i].ToDomain()
	}
	return allocations
}

// Ensure GormReceiptAllocationRepository implements AllocationRepository
var _ receivable.AllocationRepository = (*GormReceiptAllocationRepository)(nil)
