// Package receivable models the money a seller is owed (invoices and
// pay-on-behalf advances), the money it received (receipts) and the
// allocations that link the two.
package receivable

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DocumentType distinguishes the two kinds of debt documents
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "INVOICE"
	DocumentTypeAdvance DocumentType = "ADVANCE"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeAdvance
}

// String returns the string representation
func (t DocumentType) String() string {
	return string(t)
}

// rank orders invoices before advances when everything else is equal
func (t DocumentType) rank() int {
	if t == DocumentTypeInvoice {
		return 0
	}
	return 1
}

// DocumentStatus is the lifecycle state of an invoice or advance
type DocumentStatus string

const (
	DocumentStatusOpen    DocumentStatus = "OPEN"
	DocumentStatusPartial DocumentStatus = "PARTIAL"
	DocumentStatusPaid    DocumentStatus = "PAID"
	DocumentStatusVoid    DocumentStatus = "VOID"
)

// IsOpen reports whether money can still be allocated to a document in this state
func (s DocumentStatus) IsOpen() bool {
	return s == DocumentStatusOpen || s == DocumentStatusPartial
}

// ReceiptStatus is the approval state of a receipt
type ReceiptStatus string

const (
	ReceiptStatusDraft    ReceiptStatus = "DRAFT"
	ReceiptStatusApproved ReceiptStatus = "APPROVED"
	ReceiptStatusVoid     ReceiptStatus = "VOID"
)

// IsValid checks if the status is valid
func (s ReceiptStatus) IsValid() bool {
	switch s {
	case ReceiptStatusDraft, ReceiptStatusApproved, ReceiptStatusVoid:
		return true
	}
	return false
}

// AllocationStatus tracks how much of a receipt is linked to debt documents
type AllocationStatus string

const (
	AllocationStatusUnallocated AllocationStatus = "UNALLOCATED"
	AllocationStatusSelected    AllocationStatus = "SELECTED"
	AllocationStatusSuggested   AllocationStatus = "SUGGESTED"
	AllocationStatusPartial     AllocationStatus = "PARTIAL"
	AllocationStatusAllocated   AllocationStatus = "ALLOCATED"
	AllocationStatusVoid        AllocationStatus = "VOID"
)

// IsValid checks if the allocation status is valid
func (s AllocationStatus) IsValid() bool {
	switch s {
	case AllocationStatusUnallocated, AllocationStatusSelected, AllocationStatusSuggested,
		AllocationStatusPartial, AllocationStatusAllocated, AllocationStatusVoid:
		return true
	}
	return false
}

// AllocationMode selects between caller-chosen targets and automatic ordering
type AllocationMode string

const (
	AllocationModeManual AllocationMode = "MANUAL"
	AllocationModeFIFO   AllocationMode = "FIFO"
)

// IsValid checks if the mode is valid
func (m AllocationMode) IsValid() bool {
	return m == AllocationModeManual || m == AllocationModeFIFO
}

// AllocationPriority is the date open items are ordered by
type AllocationPriority string

const (
	PriorityIssueDate AllocationPriority = "ISSUE_DATE"
	PriorityDueDate   AllocationPriority = "DUE_DATE"
)

// IsValid checks if the priority is valid
func (p AllocationPriority) IsValid() bool {
	return p == PriorityIssueDate || p == PriorityDueDate
}

// NormalizeCode trims and upper-cases tax codes and document numbers so that
// lookups and lexicographic ordering do not depend on how they were typed.
// A Caser carries state, so one is built per call.
func NormalizeCode(code string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(code))
}

// TruncateDate drops the clock part of t, keeping the calendar day in UTC
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PartyKey identifies a seller and customer pair
type PartyKey struct {
	SellerTaxCode   string
	CustomerTaxCode string
}

// NewPartyKey builds a normalized key
func NewPartyKey(seller, customer string) PartyKey {
	return PartyKey{SellerTaxCode: NormalizeCode(seller), CustomerTaxCode: NormalizeCode(customer)}
}
