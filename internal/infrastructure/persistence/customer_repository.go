package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var _ receivable.CustomerRepository = (*GormCustomerRepository)(nil)

// GormCustomerRepository stores customers per seller. Balances are only
// written through AdjustBalance and SetBalance so a concurrent receipt and
// invoice cannot overwrite each other.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*receivable.Customer, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByTaxCode normalizes both codes before looking the customer up
func (r *GormCustomerRepository) FindByTaxCode(ctx context.Context, sellerTaxCode, taxCode string) (*receivable.Customer, error) {
	return r.first(ctx, "seller_tax_code = ? AND tax_code = ?",
		receivable.NormalizeCode(sellerTaxCode), receivable.NormalizeCode(taxCode))
}

func (r *GormCustomerRepository) first(ctx context.Context, query string, args ...any) (*receivable.Customer, error) {
	var m models.CustomerModel
	err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, shared.ErrNotFound
	case err != nil:
		return nil, err
	}
	return m.ToDomain(), nil
}

// Create fails with ALREADY_EXISTS when the seller has the tax code on file
func (r *GormCustomerRepository) Create(ctx context.Context, customer *receivable.Customer) error {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("seller_tax_code = ? AND tax_code = ?", customer.SellerTaxCode, customer.TaxCode).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Customer %s already exists for seller %s", customer.TaxCode, customer.SellerTaxCode))
	}
	return r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error
}

// AdjustBalance adds delta in SQL, never read-modify-write
func (r *GormCustomerRepository) AdjustBalance(ctx context.Context, customerID uuid.UUID, delta decimal.Decimal) error {
	return r.setBalance(ctx, customerID, gorm.Expr("current_balance + ?", delta))
}

// SetBalance overwrites the balance, used when it is rebuilt from open documents
func (r *GormCustomerRepository) SetBalance(ctx context.Context, customerID uuid.UUID, balance decimal.Decimal) error {
	return r.setBalance(ctx, customerID, balance)
}

func (r *GormCustomerRepository) setBalance(ctx context.Context, customerID uuid.UUID, value any) error {
	res := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("id = ?", customerID).
		Updates(map[string]any{"current_balance": value, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
