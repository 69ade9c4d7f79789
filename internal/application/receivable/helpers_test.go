package receivable_test

import (
	"context"
	"errors"
	"testing"
	"time"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	infraevent "github.com/erp/receivables/internal/infrastructure/event"
	"github.com/erp/receivables/internal/infrastructure/persistence"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const seller = "0101234567"

var admin = appreceivable.Actor{UserID: uuid.New(), Roles: []string{appreceivable.RoleAdmin}}

type harness struct {
	db        *gorm.DB
	scope     *persistence.GormTransactionScope
	guard     *appreceivable.PeriodLockGuard
	projector *appreceivable.BalanceProjector
	receipts  *appreceivable.ReceiptService
	documents *appreceivable.DebtDocumentService
}

// newHarness wires the services over an in-memory database. sink may wrap
// the real audit sink to inject failures.
func newHarness(t *testing.T, wrap func(appreceivable.AuditSink) appreceivable.AuditSink) *harness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	serializer := infraevent.NewEventSerializer()
	infraevent.RegisterAllEvents(serializer)
	scope := persistence.NewGormTransactionScope(db, infraevent.NewOutboxPublisher(serializer))

	var sink appreceivable.AuditSink = persistence.NewGormAuditSink(db)
	if wrap != nil {
		sink = wrap(sink)
	}
	guard := appreceivable.NewPeriodLockGuard(scope, sink, nil)
	projector := appreceivable.NewBalanceProjector(scope, sink, nil)
	return &harness{
		db:        db,
		scope:     scope,
		guard:     guard,
		projector: projector,
		receipts:  appreceivable.NewReceiptService(scope, sink, guard, projector),
		documents: appreceivable.NewDebtDocumentService(scope, sink, guard, projector),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func (h *harness) customer(t *testing.T, taxCode string, owner *uuid.UUID) *receivable.Customer {
	t.Helper()
	c, err := receivable.NewCustomer(seller, taxCode, "Customer "+taxCode, 30, owner)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCustomerRepository(h.db).Create(context.Background(), c))
	return c
}

func (h *harness) invoice(t *testing.T, c *receivable.Customer, number string, amount int64, issued time.Time) appreceivable.DebtDocumentResponse {
	t.Helper()
	return h.document(t, c, receivable.DocumentTypeInvoice, number, amount, issued)
}

func (h *harness) document(t *testing.T, c *receivable.Customer, docType receivable.DocumentType, number string, amount int64, issued time.Time) appreceivable.DebtDocumentResponse {
	t.Helper()
	res, err := h.documents.Create(context.Background(), admin, appreceivable.CreateDebtDocumentInput{
		Type:            docType,
		SellerTaxCode:   c.SellerTaxCode,
		CustomerTaxCode: c.TaxCode,
		DocumentNumber:  number,
		TotalAmount:     money(amount),
		IssueDate:       issued,
	})
	require.NoError(t, err)
	return res.Document
}

func (h *harness) draft(t *testing.T, c *receivable.Customer, number string, amount int64, date time.Time) *appreceivable.ReceiptResponse {
	t.Helper()
	r, err := h.receipts.Create(context.Background(), admin, appreceivable.CreateReceiptInput{
		SellerTaxCode:   c.SellerTaxCode,
		CustomerTaxCode: c.TaxCode,
		ReceiptNumber:   number,
		ReceiptDate:     date,
		Amount:          money(amount),
	})
	require.NoError(t, err)
	return r
}

func (h *harness) approve(t *testing.T, r *appreceivable.ReceiptResponse) *appreceivable.ApproveReceiptResult {
	t.Helper()
	res, err := h.receipts.Approve(context.Background(), admin, appreceivable.ApproveReceiptInput{
		ReceiptID: r.ID,
		Version:   r.Version,
	})
	require.NoError(t, err)
	return res
}

func (h *harness) balance(t *testing.T, c *receivable.Customer) decimal.Decimal {
	t.Helper()
	stored, err := h.projector.GetCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	return stored.CurrentBalance
}

// requireConserved checks that the projected balance equals the outstanding
// amount of the customer's documents and that every receipt splits into
// allocated plus unallocated
func (h *harness) requireConserved(t *testing.T, c *receivable.Customer) {
	t.Helper()
	ctx := context.Background()
	outstanding, err := persistence.NewGormDebtDocumentRepository(h.db).SumOpenOutstanding(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, h.balance(t, c).Equal(outstanding), "balance %s, outstanding %s", h.balance(t, c), outstanding)

	receipts, _, err := persistence.NewGormReceiptRepository(h.db).FindAll(ctx, receivable.ReceiptFilter{CustomerTaxCode: c.TaxCode})
	require.NoError(t, err)
	allocations := persistence.NewGormReceiptAllocationRepository(h.db)
	for _, r := range receipts {
		require.False(t, r.UnallocatedAmount.IsNegative(), "receipt %s", r.ReceiptNumber)
		rows, err := allocations.FindByReceipt(ctx, r.ID)
		require.NoError(t, err)
		allocated := receivable.SumAllocations(rows)
		require.True(t, r.Amount.Equal(allocated.Add(r.UnallocatedAmount)),
			"receipt %s: amount %s, allocated %s, unallocated %s", r.ReceiptNumber, r.Amount, allocated, r.UnallocatedAmount)
	}
}

func (h *harness) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	tx := h.db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	require.NoError(t, tx.Count(&n).Error)
	return n
}

func (h *harness) auditEntries(t *testing.T, action string) int64 {
	return h.count(t, &models.AuditLogModel{}, "action = ?", action)
}

var errSinkDown = errors.New("audit store unavailable")

// failingSink fails the given action and passes everything else through
type failingSink struct {
	next   appreceivable.AuditSink
	action string
}

func (s failingSink) LogAsync(ctx context.Context, action, entityType string, entityID uuid.UUID, before, after any) error {
	if action == s.action {
		return errSinkDown
	}
	return s.next.LogAsync(ctx, action, entityType, entityID, before, after)
}

func failOn(action string) func(appreceivable.AuditSink) appreceivable.AuditSink {
	return func(next appreceivable.AuditSink) appreceivable.AuditSink {
		return failingSink{next: next, action: action}
	}
}
