package receivable

import (
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// AllocationStrategy turns a receipt amount and the open items of its
// customer into an allocation plan
type AllocationStrategy interface {
	strategy.Strategy
	// Mode returns the allocation mode the strategy implements
	Mode() AllocationMode
	// Plan resolves targets and allocates amount across them
	Plan(amount decimal.Decimal, items []OpenItem, priority AllocationPriority, selections TargetSelections) (AllocationPlan, error)
}

// FIFOStrategy pays the oldest open items first
type FIFOStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOStrategy creates a FIFO allocation strategy
func NewFIFOStrategy() *FIFOStrategy {
	return &FIFOStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo_allocation",
			strategy.StrategyTypeAllocation,
			"Allocates to the oldest open items first by issue or due date",
		),
	}
}

// Mode returns FIFO
func (s *FIFOStrategy) Mode() AllocationMode {
	return AllocationModeFIFO
}

// Plan ignores selections and orders the open items by priority
func (s *FIFOStrategy) Plan(amount decimal.Decimal, items []OpenItem, priority AllocationPriority, _ TargetSelections) (AllocationPlan, error) {
	targets, err := ResolveTargets(items, priority, nil)
	if err != nil {
		return AllocationPlan{}, err
	}
	return Allocate(amount, targets), nil
}

// ManualStrategy pays the caller-selected items in the order given
type ManualStrategy struct {
	strategy.BaseStrategy
}

// NewManualStrategy creates a manual allocation strategy
func NewManualStrategy() *ManualStrategy {
	return &ManualStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"manual_allocation",
			strategy.StrategyTypeAllocation,
			"Allocates to caller-selected open items in the order given",
		),
	}
}

// Mode returns MANUAL
func (s *ManualStrategy) Mode() AllocationMode {
	return AllocationModeManual
}

// Plan requires at least one selection, each of which must be an open item
func (s *ManualStrategy) Plan(amount decimal.Decimal, items []OpenItem, priority AllocationPriority, selections TargetSelections) (AllocationPlan, error) {
	if len(selections) == 0 {
		return AllocationPlan{}, shared.NewDomainError(shared.CodeInvalidTarget, "Manual allocation needs at least one target")
	}
	targets, err := ResolveTargets(items, priority, selections)
	if err != nil {
		return AllocationPlan{}, err
	}
	return Allocate(amount, targets), nil
}

// SourceStrategy draws surplus receipts into a single debt document.
// Receipts act as the targets and the document outstanding as the amount.
type SourceStrategy struct {
	strategy.BaseStrategy
}

// NewSourceStrategy creates a receipt-as-source strategy
func NewSourceStrategy() *SourceStrategy {
	return &SourceStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"receipt_source",
			strategy.StrategyTypeSource,
			"Consumes unallocated receipt balances oldest first against a new debt document",
		),
	}
}

// Plan allocates the document outstanding across receipts, which must
// already be ordered by receipt date and number
func (s *SourceStrategy) Plan(doc *DebtDocument, receipts []*Receipt) AllocationPlan {
	sources := make([]AllocationTarget, 0, len(receipts))
	for _, r := range receipts {
		sources = append(sources, AllocationTarget{
			ID:          r.ID,
			Number:      r.ReceiptNumber,
			Outstanding: r.UnallocatedAmount,
		})
	}
	return Allocate(doc.OutstandingAmount, sources)
}

// StrategyFor picks the strategy for a target list: a non-empty selection
// takes precedence over priority ordering
func StrategyFor(selections TargetSelections) AllocationStrategy {
	if len(selections) > 0 {
		return NewManualStrategy()
	}
	return NewFIFOStrategy()
}
