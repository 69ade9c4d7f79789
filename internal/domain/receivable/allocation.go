package receivable

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationTarget is one candidate consumer of a payment.
// When receipts are drawn as sources against a single document, ID is the
// receipt id and Type is left empty.
type AllocationTarget struct {
	ID          uuid.UUID
	Type        DocumentType
	Number      string
	Outstanding decimal.Decimal
	// Cap bounds the line further when positive (manual amount requested by the caller)
	Cap decimal.Decimal
}

// AllocationLine is the amount assigned to one target
type AllocationLine struct {
	TargetID     uuid.UUID       `json:"target_id"`
	TargetType   DocumentType    `json:"target_type,omitempty"`
	TargetNumber string          `json:"target_number,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	// Settles is true when the line pays the target's outstanding amount in full
	Settles bool `json:"settles"`
}

// AllocationPlan is the outcome of running the allocation over an ordered target list
type AllocationPlan struct {
	Lines     []AllocationLine
	Allocated decimal.Decimal
	Leftover  decimal.Decimal
}

// FullyAllocated reports whether nothing of the amount is left over
func (p AllocationPlan) FullyAllocated() bool {
	return p.Leftover.IsZero()
}

// Allocate splits amount greedily across targets in the order given.
// Each line takes min(remaining, outstanding[, cap]); targets with nothing
// outstanding are skipped and the loop stops as soon as the amount is used up.
// It performs no I/O and returns the same plan for the same input.
func Allocate(amount decimal.Decimal, targets []AllocationTarget) AllocationPlan {
	plan := AllocationPlan{
		Lines:     make([]AllocationLine, 0, len(targets)),
		Allocated: decimal.Zero,
		Leftover:  amount,
	}
	if !amount.IsPositive() {
		return plan
	}

	remaining := amount
	for _, target := range targets {
		if remaining.IsZero() {
			break
		}
		if !target.Outstanding.IsPositive() {
			continue
		}

		allocated := decimal.Min(remaining, target.Outstanding)
		if target.Cap.IsPositive() {
			allocated = decimal.Min(allocated, target.Cap)
		}
		if !allocated.IsPositive() {
			continue
		}

		plan.Lines = append(plan.Lines, AllocationLine{
			TargetID:     target.ID,
			TargetType:   target.Type,
			TargetNumber: target.Number,
			Amount:       allocated,
			Settles:      allocated.Equal(target.Outstanding),
		})
		plan.Allocated = plan.Allocated.Add(allocated)
		remaining = remaining.Sub(allocated)
	}

	plan.Leftover = remaining
	return plan
}
