package telemetry

import (
	"context"
	"sort"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReceivableSnapshotProvider aggregates seller positions straight from
// the receipts, invoices and advances tables.
type GormReceivableSnapshotProvider struct {
	db *gorm.DB
}

// NewGormReceivableSnapshotProvider creates a new GormReceivableSnapshotProvider.
func NewGormReceivableSnapshotProvider(db *gorm.DB) *GormReceivableSnapshotProvider {
	return &GormReceivableSnapshotProvider{db: db}
}

// SellerSnapshots returns one snapshot per seller with approved surplus or open documents.
func (p *GormReceivableSnapshotProvider) SellerSnapshots(ctx context.Context) ([]SellerSnapshot, error) {
	type surplusRow struct {
		SellerTaxCode string          `gorm:"column:seller_tax_code"`
		Amount        decimal.Decimal `gorm:"column:amount"`
		Receipts      int64           `gorm:"column:receipts"`
	}
	type openRow struct {
		SellerTaxCode string          `gorm:"column:seller_tax_code"`
		Amount        decimal.Decimal `gorm:"column:amount"`
	}

	var surplus []surplusRow
	if err := p.db.WithContext(ctx).
		Table("receipts").
		Select("seller_tax_code, COALESCE(SUM(unallocated_amount), 0) AS amount, COUNT(*) AS receipts").
		Where("status = ? AND unallocated_amount > 0", receivable.ReceiptStatusApproved).
		Group("seller_tax_code").
		Find(&surplus).Error; err != nil {
		return nil, err
	}

	bySeller := make(map[string]*SellerSnapshot)
	get := func(seller string) *SellerSnapshot {
		s, ok := bySeller[seller]
		if !ok {
			s = &SellerSnapshot{SellerTaxCode: seller}
			bySeller[seller] = s
		}
		return s
	}
	for _, r := range surplus {
		s := get(r.SellerTaxCode)
		s.UnallocatedAmount = r.Amount
		s.UnallocatedCount = r.Receipts
	}

	for _, table := range []string{"invoices", "advances"} {
		var open []openRow
		if err := p.db.WithContext(ctx).
			Table(table).
			Select("seller_tax_code, COALESCE(SUM(outstanding_amount), 0) AS amount").
			Where("status IN ?", []receivable.DocumentStatus{receivable.DocumentStatusOpen, receivable.DocumentStatusPartial}).
			Group("seller_tax_code").
			Find(&open).Error; err != nil {
			return nil, err
		}
		for _, r := range open {
			s := get(r.SellerTaxCode)
			s.OpenDocumentAmount = s.OpenDocumentAmount.Add(r.Amount)
		}
	}

	snapshots := make([]SellerSnapshot, 0, len(bySeller))
	for _, s := range bySeller {
		snapshots = append(snapshots, *s)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].SellerTaxCode < snapshots[j].SellerTaxCode
	})
	return snapshots, nil
}

var _ ReceivableSnapshotProvider = (*GormReceivableSnapshotProvider)(nil)
