package receivable

import (
	"context"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
)

// TransactionScope provides transactional access to receivable repositories.
// Every lifecycle operation runs inside exactly one Execute call, so all of its
// writes commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// The context passed to fn carries the transaction, so collaborators that
	// only receive a context (such as the audit sink) join it.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(ctx context.Context, repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	Receipts() receivable.ReceiptRepository
	Documents() receivable.DebtDocumentRepository
	Allocations() receivable.AllocationRepository
	Customers() receivable.CustomerRepository
	PeriodLocks() receivable.PeriodLockRepository
	// Events returns the outbox writer bound to the transaction
	Events() EventRecorder
}

// EventRecorder stores domain events next to the state change that raised them
type EventRecorder interface {
	Record(ctx context.Context, events ...shared.DomainEvent) error
}
