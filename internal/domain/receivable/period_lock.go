package receivable

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
)

// PeriodType is the granularity of an accounting period
type PeriodType string

const (
	PeriodTypeMonth PeriodType = "MONTH"
)

// AuditActionPeriodLockOverride tags the audit entry written when a locked period is committed into
const AuditActionPeriodLockOverride = "PERIOD_LOCK_OVERRIDE"

// PeriodLock freezes commits dated inside a period.
// An empty SellerTaxCode locks the period for every seller.
type PeriodLock struct {
	ID            uuid.UUID
	PeriodType    PeriodType
	PeriodKey     string
	SellerTaxCode string
	Reason        string
	LockedAt      time.Time
	LockedBy      uuid.UUID
}

// PeriodKeyFor returns the key of the period containing date, e.g. 2024-03
func PeriodKeyFor(periodType PeriodType, date time.Time) string {
	return date.UTC().Format("2006-01")
}

// NewPeriodLock validates and creates a lock
func NewPeriodLock(sellerTaxCode, periodKey, reason string, lockedBy uuid.UUID) (*PeriodLock, error) {
	key := strings.TrimSpace(periodKey)
	if _, err := time.Parse("2006-01", key); err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD_KEY", fmt.Sprintf("Period key %q must look like 2006-01", periodKey))
	}
	if lockedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Locking user ID is required")
	}
	return &PeriodLock{
		ID:            uuid.New(),
		PeriodType:    PeriodTypeMonth,
		PeriodKey:     key,
		SellerTaxCode: NormalizeCode(sellerTaxCode),
		Reason:        strings.TrimSpace(reason),
		LockedAt:      time.Now(),
		LockedBy:      lockedBy,
	}, nil
}

// LockOverride asks to commit into a locked period. A nil *LockOverride means no override.
type LockOverride struct {
	Reason string `json:"reason"`
}

// Validate rejects an override without a reason
func (o *LockOverride) Validate() error {
	if o == nil {
		return nil
	}
	if strings.TrimSpace(o.Reason) == "" {
		return shared.NewDomainError(shared.CodeOverrideReasonRequired, "A reason is required to override a period lock")
	}
	return nil
}
