package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPeriodLockRepository implements PeriodLockRepository using GORM
type GormPeriodLockRepository struct {
	db *gorm.DB
}

// NewGormPeriodLockRepository creates a new GormPeriodLockRepository
func NewGormPeriodLockRepository(db *gorm.DB) *GormPeriodLockRepository {
	return &GormPeriodLockRepository{db: db}
}

// FindActive returns the seller's own lock on the period, else a global one, else nil
func (r *GormPeriodLockRepository) FindActive(ctx context.Context, periodType receivable.PeriodType, periodKey, sellerTaxCode string) (*receivable.PeriodLock, error) {
	var model models.PeriodLockModel
	err := r.db.WithContext(ctx).
		Where("period_type = ? AND period_key = ?", periodType, periodKey).
		Where("seller_tax_code IN ?", []string{receivable.NormalizeCode(sellerTaxCode), ""}).
		Order("seller_tax_code DESC").
		Limit(1).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a period lock by its ID
func (r *GormPeriodLockRepository) FindByID(ctx context.Context, id uuid.UUID) (*receivable.PeriodLock, error) {
	var model models.PeriodLockModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// List returns every lock, newest period first
func (r *GormPeriodLockRepository) List(ctx context.Context) ([]receivable.PeriodLock, error) {
	var lockModels []models.PeriodLockModel
	if err := r.db.WithContext(ctx).
		Order("period_key DESC, seller_tax_code ASC").
		Find(&lockModels).Error; err != nil {
		return nil, err
	}
	locks := make([]receivable.PeriodLock, len(lockModels))
	for i := range lockModels {
		locks[i] = *lockModels[i].ToDomain()
	}
	return locks, nil
}

// Create inserts a lock. The same period locked twice for a seller is ALREADY_EXISTS.
func (r *GormPeriodLockRepository) Create(ctx context.Context, lock *receivable.PeriodLock) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PeriodLockModel{}).
		Where("period_type = ? AND period_key = ? AND seller_tax_code = ?",
			lock.PeriodType, lock.PeriodKey, lock.SellerTaxCode).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Period %s is already locked", lock.PeriodKey))
	}
	return r.db.WithContext(ctx).Create(models.PeriodLockModelFromDomain(lock)).Error
}

// Delete removes a lock
func (r *GormPeriodLockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PeriodLockModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPeriodLockRepository implements PeriodLockRepository
var _ receivable.PeriodLockRepository = (*GormPeriodLockRepository)(nil)
