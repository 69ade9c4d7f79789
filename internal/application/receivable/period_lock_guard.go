package receivable

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PeriodLockGuard rejects commits dated inside a locked accounting period
// unless the caller overrides the lock with a reason.
type PeriodLockGuard struct {
	scope   TransactionScope
	auditor auditor
	logger  *zap.Logger
}

// NewPeriodLockGuard creates a new PeriodLockGuard
func NewPeriodLockGuard(scope TransactionScope, sink AuditSink, logger *zap.Logger) *PeriodLockGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodLockGuard{
		scope:   scope,
		auditor: auditor{sink: sink, logger: logger},
		logger:  logger,
	}
}

// overrideAudit is what an override entry records
type overrideAudit struct {
	PeriodKey     string    `json:"period_key"`
	SellerTaxCode string    `json:"seller_tax_code"`
	LockID        uuid.UUID `json:"lock_id"`
	Reason        string    `json:"reason"`
	ActorID       uuid.UUID `json:"actor_id"`
	EntityType    string    `json:"entity_type"`
	EntityID      uuid.UUID `json:"entity_id"`
}

// Check must run inside the operation's transaction, before its first write.
// Without a lock it does nothing; a lock without override is LOCKED. Only an
// admin may override, and the override is audited in the same transaction.
func (g *PeriodLockGuard) Check(
	ctx context.Context,
	repos TransactionalRepositories,
	actor Actor,
	sellerTaxCode string,
	date time.Time,
	override *receivable.LockOverride,
	entityType string,
	entityID uuid.UUID,
) error {
	if err := override.Validate(); err != nil {
		return err
	}

	key := receivable.PeriodKeyFor(receivable.PeriodTypeMonth, date)
	lock, err := repos.PeriodLocks().FindActive(ctx, receivable.PeriodTypeMonth, key, sellerTaxCode)
	if err != nil {
		return fmt.Errorf("failed to check period lock: %w", err)
	}
	if lock == nil {
		return nil
	}
	if override == nil {
		return shared.NewDomainError(shared.CodePeriodLocked,
			fmt.Sprintf("Period %s is locked for seller %s", key, sellerTaxCode))
	}
	if err := requireAdmin(actor); err != nil {
		return err
	}

	g.logger.Info("period lock overridden",
		zap.String("period_key", key),
		zap.String("seller_tax_code", sellerTaxCode),
		zap.String("entity_type", entityType),
		zap.String("entity_id", entityID.String()),
		zap.String("actor_id", actor.UserID.String()),
	)
	return g.auditor.log(ctx, AuditActionPeriodLockOverride, AuditEntityPeriodLock, lock.ID, nil, overrideAudit{
		PeriodKey:     key,
		SellerTaxCode: sellerTaxCode,
		LockID:        lock.ID,
		Reason:        override.Reason,
		ActorID:       actor.UserID,
		EntityType:    entityType,
		EntityID:      entityID,
	})
}

// Lock closes a month for a seller, or for every seller when sellerTaxCode is empty
func (g *PeriodLockGuard) Lock(ctx context.Context, actor Actor, sellerTaxCode, periodKey, reason string) (*PeriodLockResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "lock_period")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	lock, err := receivable.NewPeriodLock(sellerTaxCode, periodKey, reason, actor.UserID)
	if err != nil {
		return nil, err
	}

	err = g.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		if err := repos.PeriodLocks().Create(ctx, lock); err != nil {
			return err
		}
		return g.auditor.log(ctx, AuditActionPeriodLocked, AuditEntityPeriodLock, lock.ID, nil, ToPeriodLockResponse(lock))
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToPeriodLockResponse(lock)
	return &resp, nil
}

// Unlock reopens a period
func (g *PeriodLockGuard) Unlock(ctx context.Context, actor Actor, lockID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "unlock_period")
	defer span.End()

	if err := requireAdmin(actor); err != nil {
		return err
	}
	err := g.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		lock, err := repos.PeriodLocks().FindByID(ctx, lockID)
		if err != nil {
			return err
		}
		if err := repos.PeriodLocks().Delete(ctx, lockID); err != nil {
			return err
		}
		return g.auditor.log(ctx, AuditActionPeriodUnlocked, AuditEntityPeriodLock, lockID, ToPeriodLockResponse(lock), nil)
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}

// List returns every period lock
func (g *PeriodLockGuard) List(ctx context.Context) ([]PeriodLockResponse, error) {
	var out []PeriodLockResponse
	err := g.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		locks, err := repos.PeriodLocks().List(ctx)
		if err != nil {
			return err
		}
		out = make([]PeriodLockResponse, 0, len(locks))
		for i := range locks {
			out = append(out, ToPeriodLockResponse(&locks[i]))
		}
		return nil
	})
	return out, err
}
