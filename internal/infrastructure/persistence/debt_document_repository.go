package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDebtDocumentRepository implements DebtDocumentRepository using GORM.
// Invoices and advances share columns but live in their own tables.
type GormDebtDocumentRepository struct {
	db *gorm.DB
}

// NewGormDebtDocumentRepository creates a new GormDebtDocumentRepository
func NewGormDebtDocumentRepository(db *gorm.DB) *GormDebtDocumentRepository {
	return &GormDebtDocumentRepository{db: db}
}

var openDocumentStatuses = []receivable.DocumentStatus{
	receivable.DocumentStatusOpen,
	receivable.DocumentStatusPartial,
}

// FindByID finds a document by type and ID
func (r *GormDebtDocumentRepository) FindByID(ctx context.Context, docType receivable.DocumentType, id uuid.UUID) (*receivable.DebtDocument, error) {
	switch docType {
	case receivable.DocumentTypeInvoice:
		var model models.InvoiceModel
		if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
			return nil, translateNotFound(err)
		}
		return model.ToDomain(), nil
	case receivable.DocumentTypeAdvance:
		var model models.AdvanceModel
		if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
			return nil, translateNotFound(err)
		}
		return model.ToDomain(), nil
	default:
		return nil, unknownDocumentType(docType)
	}
}

// FindOpen finds the open invoices and advances of a party
func (r *GormDebtDocumentRepository) FindOpen(ctx context.Context, party receivable.PartyKey) ([]*receivable.DebtDocument, error) {
	parties := []receivable.PartyKey{party}
	invoices, err := r.FindOpenByParties(ctx, receivable.DocumentTypeInvoice, parties)
	if err != nil {
		return nil, err
	}
	advances, err := r.FindOpenByParties(ctx, receivable.DocumentTypeAdvance, parties)
	if err != nil {
		return nil, err
	}
	return append(invoices, advances...), nil
}

// FindOpenByParties finds the open documents of one type for every given party in a single query
func (r *GormDebtDocumentRepository) FindOpenByParties(ctx context.Context, docType receivable.DocumentType, parties []receivable.PartyKey) ([]*receivable.DebtDocument, error) {
	if len(parties) == 0 {
		return nil, nil
	}
	var clause strings.Builder
	clause.WriteString("(")
	args := make([]interface{}, 0, len(parties)*2)
	for i, p := range parties {
		if i > 0 {
			clause.WriteString(" OR ")
		}
		clause.WriteString("(seller_tax_code = ? AND customer_tax_code = ?)")
		args = append(args, p.SellerTaxCode, p.CustomerTaxCode)
	}
	clause.WriteString(")")
	query := r.db.WithContext(ctx).
		Where(clause.String(), args...).
		Where("status IN ?", openDocumentStatuses).
		Where("outstanding_amount > 0").
		Order("seller_tax_code ASC, customer_tax_code ASC, issue_date ASC, document_number ASC")

	switch docType {
	case receivable.DocumentTypeInvoice:
		var invoiceModels []models.InvoiceModel
		if err := query.Find(&invoiceModels).Error; err != nil {
			return nil, err
		}
		docs := make([]*receivable.DebtDocument, len(invoiceModels))
		for i := range invoiceModels {
			docs[i] = invoiceModels[i].ToDomain()
		}
		return docs, nil
	case receivable.DocumentTypeAdvance:
		var advanceModels []models.AdvanceModel
		if err := query.Find(&advanceModels).Error; err != nil {
			return nil, err
		}
		docs := make([]*receivable.DebtDocument, len(advanceModels))
		for i := range advanceModels {
			docs[i] = advanceModels[i].ToDomain()
		}
		return docs, nil
	default:
		return nil, unknownDocumentType(docType)
	}
}

// Create inserts a new document into the table for its type
func (r *GormDebtDocumentRepository) Create(ctx context.Context, doc *receivable.DebtDocument) error {
	return r.db.WithContext(ctx).Create(models.DebtDocumentModelFromDomain(doc)).Error
}

// SaveWithLock writes every column of the document if the stored version is
// still expectedVersion
func (r *GormDebtDocumentRepository) SaveWithLock(ctx context.Context, doc *receivable.DebtDocument, expectedVersion int) error {
	table, err := documentTable(doc.Type)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(table).
		Where("id = ? AND version = ?", doc.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(models.DebtDocumentModelFromDomain(doc))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrentModification,
			fmt.Sprintf("The %s was modified by another request, reload and retry", docLabel(doc.Type)))
	}
	return nil
}

// ExistsByNumber checks if a document number is already used by the seller
func (r *GormDebtDocumentRepository) ExistsByNumber(ctx context.Context, docType receivable.DocumentType, sellerTaxCode, documentNumber string) (bool, error) {
	table, err := documentTable(docType)
	if err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(table).
		Where("seller_tax_code = ? AND document_number = ?",
			receivable.NormalizeCode(sellerTaxCode), receivable.NormalizeCode(documentNumber)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumOpenOutstanding totals the outstanding amount over a customer's non-void invoices and advances
func (r *GormDebtDocumentRepository) SumOpenOutstanding(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, table := range []any{&models.InvoiceModel{}, &models.AdvanceModel{}} {
		var sum decimal.Decimal
		if err := r.db.WithContext(ctx).
			Model(table).
			Select("COALESCE(SUM(outstanding_amount), 0)").
			Where("customer_id = ? AND status <> ?", customerID, receivable.DocumentStatusVoid).
			Row().Scan(&sum); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(sum)
	}
	return total, nil
}

func documentTable(docType receivable.DocumentType) (any, error) {
	switch docType {
	case receivable.DocumentTypeInvoice:
		return &models.InvoiceModel{}, nil
	case receivable.DocumentTypeAdvance:
		return &models.AdvanceModel{}, nil
	default:
		return nil, unknownDocumentType(docType)
	}
}

func docLabel(docType receivable.DocumentType) string {
	if docType == receivable.DocumentTypeAdvance {
		return "advance"
	}
	return "invoice"
}

func unknownDocumentType(docType receivable.DocumentType) error {
	return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown document type %q", docType))
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// Ensure GormDebtDocumentRepository implements DebtDocumentRepository
var _ receivable.DebtDocumentRepository = (*GormDebtDocumentRepository)(nil)
