package receivable

import (
	"context"
	"fmt"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceProjector keeps customer.currentBalance equal to the outstanding
// amount of the customer's non-void documents. Deltas are applied in the
// same transaction as the allocation or reversal they accompany.
type BalanceProjector struct {
	scope   TransactionScope
	auditor auditor
	logger  *zap.Logger
}

// NewBalanceProjector creates a new BalanceProjector
func NewBalanceProjector(scope TransactionScope, sink AuditSink, logger *zap.Logger) *BalanceProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BalanceProjector{
		scope:   scope,
		auditor: auditor{sink: sink, logger: logger},
		logger:  logger,
	}
}

// Apply atomically adds delta to the customer's balance. A zero delta is a no-op.
func (p *BalanceProjector) Apply(ctx context.Context, repos TransactionalRepositories, customerID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	if err := repos.Customers().AdjustBalance(ctx, customerID, delta); err != nil {
		return fmt.Errorf("failed to adjust customer balance: %w", err)
	}
	return nil
}

// Recompute derives the balance from open documents and stores it.
// It is the repair path for a drifted projection.
func (p *BalanceProjector) Recompute(ctx context.Context, actor Actor, customerID uuid.UUID) (*RecomputeBalanceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "recompute_balance")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, customerID.String())

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var result *RecomputeBalanceResult
	err := p.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		customer, err := repos.Customers().FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		current, err := repos.Documents().SumOpenOutstanding(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to sum outstanding: %w", err)
		}
		drift := current.Sub(customer.CurrentBalance)
		result = &RecomputeBalanceResult{
			CustomerID: customerID,
			Previous:   customer.CurrentBalance,
			Current:    current,
			Drift:      drift,
		}
		if drift.IsZero() {
			return nil
		}

		p.logger.Warn("customer balance drifted",
			zap.String("customer_id", customerID.String()),
			zap.String("stored", customer.CurrentBalance.String()),
			zap.String("derived", current.String()),
		)
		if err := repos.Customers().SetBalance(ctx, customerID, current); err != nil {
			return fmt.Errorf("failed to store recomputed balance: %w", err)
		}
		return p.auditor.log(ctx, AuditActionBalanceRecomputed, AuditEntityCustomer, customerID,
			map[string]string{"current_balance": customer.CurrentBalance.String()},
			map[string]string{"current_balance": current.String()},
		)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// GetCustomer loads a customer with its current balance
func (p *BalanceProjector) GetCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	var resp *CustomerResponse
	err := p.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		customer, err := repos.Customers().FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		r := ToCustomerResponse(customer)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, shared.ErrNotFound
	}
	return resp, nil
}
