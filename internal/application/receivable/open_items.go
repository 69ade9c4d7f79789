package receivable

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/shopspring/decimal"
)

// Metrics receives business measurements from the services
type Metrics interface {
	RecordReceiptApproved(ctx context.Context, mode string, allocated decimal.Decimal)
	RecordReversal(ctx context.Context, entityType string, amount decimal.Decimal)
	RecordAutoAllocation(ctx context.Context, documentType string, amount decimal.Decimal)
	RecordScan(ctx context.Context, suggested, skipped int, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordReceiptApproved(context.Context, string, decimal.Decimal) {}
func (noopMetrics) RecordReversal(context.Context, string, decimal.Decimal)        {}
func (noopMetrics) RecordAutoAllocation(context.Context, string, decimal.Decimal)  {}
func (noopMetrics) RecordScan(context.Context, int, int, time.Duration)            {}

// openDocuments is the open-item set of one party, indexed for commit
type openDocuments struct {
	docs  map[receivable.TargetRef]*receivable.DebtDocument
	items []receivable.OpenItem
}

func loadOpenDocuments(ctx context.Context, repos TransactionalRepositories, party receivable.PartyKey) (*openDocuments, error) {
	docs, err := repos.Documents().FindOpen(ctx, party)
	if err != nil {
		return nil, fmt.Errorf("failed to load open items: %w", err)
	}
	return indexOpenDocuments(docs), nil
}

func indexOpenDocuments(docs []*receivable.DebtDocument) *openDocuments {
	open := &openDocuments{
		docs:  make(map[receivable.TargetRef]*receivable.DebtDocument, len(docs)),
		items: make([]receivable.OpenItem, 0, len(docs)),
	}
	for _, doc := range docs {
		open.docs[doc.Ref()] = doc
		open.items = append(open.items, receivable.OpenItemFromDocument(doc))
	}
	return open
}

// commitPlan applies every line of a receipt's plan to its target document
// and returns the allocation rows to insert
func commitPlan(
	ctx context.Context,
	repos TransactionalRepositories,
	receipt *receivable.Receipt,
	open *openDocuments,
	plan receivable.AllocationPlan,
	actor Actor,
) ([]*receivable.ReceiptAllocation, error) {
	allocs := make([]*receivable.ReceiptAllocation, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		ref := receivable.TargetRef{Type: line.TargetType, ID: line.TargetID}
		doc, ok := open.docs[ref]
		if !ok {
			return nil, fmt.Errorf("planned target %s %s was not loaded", ref.Type, ref.ID)
		}
		expected := doc.Version
		if err := doc.ApplyAllocation(line.Amount); err != nil {
			return nil, err
		}
		if err := repos.Documents().SaveWithLock(ctx, doc, expected); err != nil {
			return nil, err
		}

		alloc, err := receivable.NewReceiptAllocation(receipt.ID, ref, line.Amount, &actor.UserID)
		if err != nil {
			return nil, err
		}
		allocs = append(allocs, alloc)
	}
	return allocs, nil
}

// drawSurplus consumes unallocated money of the party's approved receipts
// into doc, oldest receipt first. The document is settled in memory only;
// the caller persists it together with the returned allocation rows.
func drawSurplus(
	ctx context.Context,
	repos TransactionalRepositories,
	doc *receivable.DebtDocument,
	actor Actor,
) (receivable.AllocationPlan, []*receivable.ReceiptAllocation, error) {
	receipts, err := repos.Receipts().FindSurplus(ctx, doc.Party())
	if err != nil {
		return receivable.AllocationPlan{}, nil, fmt.Errorf("failed to load surplus receipts: %w", err)
	}
	if len(receipts) == 0 {
		return receivable.Allocate(decimal.Zero, nil), nil, nil
	}

	byID := make(map[string]*receivable.Receipt, len(receipts))
	for _, r := range receipts {
		byID[r.ID.String()] = r
	}

	plan := receivable.NewSourceStrategy().Plan(doc, receipts)
	allocs := make([]*receivable.ReceiptAllocation, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		receipt := byID[line.TargetID.String()]
		expected := receipt.Version
		if err := receipt.ApplySourceAllocation(line.Amount); err != nil {
			return receivable.AllocationPlan{}, nil, err
		}
		if err := repos.Receipts().SaveWithLock(ctx, receipt, expected); err != nil {
			return receivable.AllocationPlan{}, nil, err
		}
		if err := doc.Settle(line.Amount); err != nil {
			return receivable.AllocationPlan{}, nil, err
		}

		alloc, err := receivable.NewReceiptAllocation(receipt.ID, doc.Ref(), line.Amount, &actor.UserID)
		if err != nil {
			return receivable.AllocationPlan{}, nil, err
		}
		allocs = append(allocs, alloc)
	}
	return plan, allocs, nil
}
