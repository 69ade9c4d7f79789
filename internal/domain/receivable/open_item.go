package receivable

import (
	"fmt"
	"sort"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenItem is a debt document that can still receive money
type OpenItem struct {
	Type           DocumentType    `json:"type"`
	ID             uuid.UUID       `json:"id"`
	DocumentNumber string          `json:"document_number"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Outstanding    decimal.Decimal `json:"outstanding_amount"`
	Status         DocumentStatus  `json:"status"`
	Version        int             `json:"version"`
}

// OpenItemFromDocument projects a debt document into an open item
func OpenItemFromDocument(doc *DebtDocument) OpenItem {
	return OpenItem{
		Type:           doc.Type,
		ID:             doc.ID,
		DocumentNumber: doc.DocumentNumber,
		IssueDate:      doc.IssueDate,
		DueDate:        doc.DueDate,
		TotalAmount:    doc.TotalAmount,
		Outstanding:    doc.OutstandingAmount,
		Status:         doc.Status,
		Version:        doc.Version,
	}
}

// Ref returns the target reference of the item
func (o OpenItem) Ref() TargetRef {
	return TargetRef{Type: o.Type, ID: o.ID}
}

func (o OpenItem) priorityDate(priority AllocationPriority) time.Time {
	if priority == PriorityDueDate {
		return o.DueDate
	}
	return o.IssueDate
}

// SortOpenItems orders items oldest first by the priority date.
// Ties go to invoices before advances, then to the lower document number.
func SortOpenItems(items []OpenItem, priority AllocationPriority) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		da, db := a.priorityDate(priority), b.priorityDate(priority)
		if !da.Equal(db) {
			return da.Before(db)
		}
		if a.Type != b.Type {
			return a.Type.rank() < b.Type.rank()
		}
		if a.DocumentNumber != b.DocumentNumber {
			return a.DocumentNumber < b.DocumentNumber
		}
		return a.ID.String() < b.ID.String()
	})
}

// ResolveTargets turns open items into an ordered allocation target list.
// Without a manual selection the items are ordered by priority. A manual
// selection takes precedence: only the selected items are used, in the
// order given, and each must be one of the open items.
func ResolveTargets(items []OpenItem, priority AllocationPriority, manual []TargetSelection) ([]AllocationTarget, error) {
	if len(manual) == 0 {
		sorted := make([]OpenItem, len(items))
		copy(sorted, items)
		SortOpenItems(sorted, priority)

		targets := make([]AllocationTarget, 0, len(sorted))
		for _, item := range sorted {
			targets = append(targets, AllocationTarget{
				ID:          item.ID,
				Type:        item.Type,
				Number:      item.DocumentNumber,
				Outstanding: item.Outstanding,
			})
		}
		return targets, nil
	}

	byRef := make(map[TargetRef]OpenItem, len(items))
	for _, item := range items {
		byRef[item.Ref()] = item
	}

	seen := make(map[TargetRef]bool, len(manual))
	targets := make([]AllocationTarget, 0, len(manual))
	for _, sel := range manual {
		ref := sel.Ref()
		item, ok := byRef[ref]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeInvalidTarget,
				fmt.Sprintf("%s %s is not an open item for this customer", sel.TargetType, sel.TargetID))
		}
		if seen[ref] {
			return nil, shared.NewDomainError(shared.CodeInvalidTarget,
				fmt.Sprintf("%s %s is selected more than once", sel.TargetType, sel.TargetID))
		}
		if sel.Amount.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Selected amount cannot be negative")
		}
		seen[ref] = true
		targets = append(targets, AllocationTarget{
			ID:          item.ID,
			Type:        item.Type,
			Number:      item.DocumentNumber,
			Outstanding: item.Outstanding,
			Cap:         sel.Amount,
		})
	}
	return targets, nil
}
