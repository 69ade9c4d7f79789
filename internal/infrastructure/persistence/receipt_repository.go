package persistence

import (
	"context"
	"errors"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by its ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*receivable.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists receipts matching the filter together with the total count
func (r *GormReceiptRepository) FindAll(ctx context.Context, filter receivable.ReceiptFilter) ([]receivable.Receipt, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReceiptModel{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ReceiptModel{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, ReceiptSortFields, "receipt_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).Order("receipt_number ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var receiptModels []models.ReceiptModel
	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, 0, err
	}
	receipts := make([]receivable.Receipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = *receiptModels[i].ToDomain()
	}
	return receipts, total, nil
}

// FindSurplus finds the approved receipts of a party with money left to allocate
func (r *GormReceiptRepository) FindSurplus(ctx context.Context, party receivable.PartyKey) ([]*receivable.Receipt, error) {
	var receiptModels []models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("seller_tax_code = ? AND customer_tax_code = ?", party.SellerTaxCode, party.CustomerTaxCode).
		Where("status = ?", receivable.ReceiptStatusApproved).
		Where("allocation_status IN ?", []receivable.AllocationStatus{
			receivable.AllocationStatusUnallocated,
			receivable.AllocationStatusPartial,
		}).
		Where("unallocated_amount > 0").
		Order("receipt_date ASC, receipt_number ASC").
		Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	return toReceipts(receiptModels), nil
}

// FindScanCandidates loads, in one query, the drafts the scanner may suggest
// targets for together with the SELECTED drafts holding claims on open items
func (r *GormReceiptRepository) FindScanCandidates(ctx context.Context, sellerTaxCodes []string, limit int) ([]*receivable.Receipt, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", receivable.ReceiptStatusDraft).
		Where("allocation_status IN ?", []receivable.AllocationStatus{
			receivable.AllocationStatusUnallocated,
			receivable.AllocationStatusSuggested,
			receivable.AllocationStatusSelected,
		})
	if len(sellerTaxCodes) > 0 {
		codes := make([]string, len(sellerTaxCodes))
		for i, code := range sellerTaxCodes {
			codes[i] = receivable.NormalizeCode(code)
		}
		query = query.Where("seller_tax_code IN ?", codes)
	}
	query = query.Order("seller_tax_code ASC, customer_tax_code ASC, receipt_date ASC, receipt_number ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var receiptModels []models.ReceiptModel
	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	return toReceipts(receiptModels), nil
}

// Create inserts a new receipt
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *receivable.Receipt) error {
	return r.db.WithContext(ctx).Create(models.ReceiptModelFromDomain(receipt)).Error
}

// SaveWithLock writes every column of the receipt if the stored version is
// still expectedVersion
func (r *GormReceiptRepository) SaveWithLock(ctx context.Context, receipt *receivable.Receipt, expectedVersion int) error {
	model := models.ReceiptModelFromDomain(receipt)
	result := r.db.WithContext(ctx).
		Model(&models.ReceiptModel{}).
		Where("id = ? AND version = ?", receipt.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrentModification,
			"The receipt was modified by another request, reload and retry")
	}
	return nil
}

// ExistsByNumber checks if a receipt number is already used by the seller
func (r *GormReceiptRepository) ExistsByNumber(ctx context.Context, sellerTaxCode, receiptNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReceiptModel{}).
		Where("seller_tax_code = ? AND receipt_number = ?",
			receivable.NormalizeCode(sellerTaxCode), receivable.NormalizeCode(receiptNumber)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormReceiptRepository) applyFilter(query *gorm.DB, filter receivable.ReceiptFilter) *gorm.DB {
	if filter.SellerTaxCode != "" {
		query = query.Where("seller_tax_code = ?", receivable.NormalizeCode(filter.SellerTaxCode))
	}
	if filter.CustomerTaxCode != "" {
		query = query.Where("customer_tax_code = ?", receivable.NormalizeCode(filter.CustomerTaxCode))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AllocationStatus != nil {
		query = query.Where("allocation_status = ?", *filter.AllocationStatus)
	}
	if filter.FromDate != nil {
		query = query.Where("receipt_date >= ?", receivable.TruncateDate(*filter.FromDate))
	}
	if filter.ToDate != nil {
		query = query.Where("receipt_date <= ?", receivable.TruncateDate(*filter.ToDate))
	}
	return query
}

func toReceipts(receiptModels []models.ReceiptModel) []*receivable.Receipt {
	receipts := make([]*receivable.Receipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = receiptModels[i].ToDomain()
	}
	return receipts
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ receivable.ReceiptRepository = (*GormReceiptRepository)(nil)
