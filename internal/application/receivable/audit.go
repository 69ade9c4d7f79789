package receivable

import (
	"context"
	"slices"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Audit actions written by the services
const (
	AuditActionReceiptCreated     = "RECEIPT_CREATED"
	AuditActionReceiptApproved    = "RECEIPT_APPROVED"
	AuditActionReceiptVoided      = "RECEIPT_VOIDED"
	AuditActionReceiptUnvoided    = "RECEIPT_UNVOIDED"
	AuditActionInvoiceCreated     = "INVOICE_CREATED"
	AuditActionAdvanceCreated     = "ADVANCE_CREATED"
	AuditActionDocumentVoided     = "DEBT_DOCUMENT_VOIDED"
	AuditActionDocumentUnvoided   = "DEBT_DOCUMENT_UNVOIDED"
	AuditActionPeriodLocked       = "PERIOD_LOCKED"
	AuditActionPeriodUnlocked     = "PERIOD_UNLOCKED"
	AuditActionBalanceRecomputed  = "CUSTOMER_BALANCE_RECOMPUTED"
	AuditActionPeriodLockOverride = receivable.AuditActionPeriodLockOverride
	AuditEntityCustomer           = "Customer"
	AuditEntityPeriodLock         = "PeriodLock"
	AuditEntityReceipt            = receivable.AggregateTypeReceipt
	AuditEntityDebtDocument       = receivable.AggregateTypeDebtDocument
)

// AuditSink records who changed what. An error from LogAsync is fatal to the
// surrounding transaction: the operation rolls back and reports INTERNAL.
type AuditSink interface {
	LogAsync(ctx context.Context, action, entityType string, entityID uuid.UUID, before, after any) error
}

// RoleAdmin may manage every customer
const RoleAdmin = "ADMIN"

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID uuid.UUID
	Roles  []string
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	return slices.Contains(a.Roles, RoleAdmin)
}

// Authorizer decides whether an actor may change a customer's documents
type Authorizer interface {
	CanManage(ctx context.Context, actor Actor, customer *receivable.Customer) bool
}

// OwnerAuthorizer allows admins and the customer's assigned accountant
type OwnerAuthorizer struct{}

// CanManage implements Authorizer
func (OwnerAuthorizer) CanManage(_ context.Context, actor Actor, customer *receivable.Customer) bool {
	if actor.IsAdmin() {
		return true
	}
	return customer != nil && customer.IsOwnedBy(actor.UserID)
}

func authorize(ctx context.Context, authorizer Authorizer, actor Actor, customer *receivable.Customer) error {
	if !authorizer.CanManage(ctx, actor, customer) {
		return shared.NewDomainError(string(shared.KindForbidden), "Only an admin or the customer's accountant can do this")
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return shared.NewDomainError(string(shared.KindForbidden), "Admin role required")
	}
	return nil
}

// auditor writes audit entries and turns a sink failure into an INTERNAL error
type auditor struct {
	sink   AuditSink
	logger *zap.Logger
}

func (a auditor) log(ctx context.Context, action, entityType string, entityID uuid.UUID, before, after any) error {
	if err := a.sink.LogAsync(ctx, action, entityType, entityID, before, after); err != nil {
		a.logger.Error("audit sink failed, rolling back",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.Error(err),
		)
		return shared.NewDomainError(shared.CodeAuditFailed, "Failed to write audit entry")
	}
	return nil
}
