package persistence

import (
	"context"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"gorm.io/gorm"
)

type txContextKey struct{}

// ContextWithTx returns a context carrying tx, so that collaborators writing
// through TxFromContext join the same transaction
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, or fallback bound to ctx
func TxFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// EventWriter stores domain events in the outbox inside a given transaction
type EventWriter interface {
	PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error
}

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db     *gorm.DB
	events EventWriter
}

// NewGormTransactionScope creates a new GormTransactionScope.
// events may be nil, in which case recorded events are dropped.
func NewGormTransactionScope(db *gorm.DB, events EventWriter) *GormTransactionScope {
	return &GormTransactionScope{db: db, events: events}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos appreceivable.TransactionalRepositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := ContextWithTx(ctx, tx)
		repos := &gormTransactionalRepositories{tx: tx, events: s.events}
		if err := fn(txCtx, repos); err != nil {
			return err
		}
		return ctx.Err()
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	events EventWriter
}

// Receipts returns the receipt repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Receipts() receivable.ReceiptRepository {
	return NewGormReceiptRepository(r.tx)
}

// Documents returns the invoice and advance repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Documents() receivable.DebtDocumentRepository {
	return NewGormDebtDocumentRepository(r.tx)
}

// Allocations returns the allocation row repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Allocations() receivable.AllocationRepository {
	return NewGormReceiptAllocationRepository(r.tx)
}

// Customers returns the customer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Customers() receivable.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

// PeriodLocks returns the period lock repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PeriodLocks() receivable.PeriodLockRepository {
	return NewGormPeriodLockRepository(r.tx)
}

// Events returns the outbox writer scoped to the current transaction.
func (r *gormTransactionalRepositories) Events() appreceivable.EventRecorder {
	return txEventRecorder{tx: r.tx, writer: r.events}
}

type txEventRecorder struct {
	tx     *gorm.DB
	writer EventWriter
}

func (r txEventRecorder) Record(ctx context.Context, events ...shared.DomainEvent) error {
	if r.writer == nil || len(events) == 0 {
		return nil
	}
	return r.writer.PublishWithTx(ctx, r.tx, events...)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appreceivable.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appreceivable.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
