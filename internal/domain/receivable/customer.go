package receivable

import (
	"strings"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a buyer of a seller, identified by its tax code.
// CurrentBalance is the signed running total the customer owes the seller.
type Customer struct {
	shared.BaseAggregateRoot
	SellerTaxCode     string
	TaxCode           string
	Name              string
	PaymentTermsDays  int
	CurrentBalance    decimal.Decimal
	AccountantOwnerID *uuid.UUID
}

// NewCustomer creates a customer with a zero balance
func NewCustomer(sellerTaxCode, taxCode, name string, paymentTermsDays int, owner *uuid.UUID) (*Customer, error) {
	seller := NormalizeCode(sellerTaxCode)
	code := NormalizeCode(taxCode)
	if seller == "" {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller tax code cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_TAX_CODE", "Customer tax code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if paymentTermsDays < 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerTaxCode:     seller,
		TaxCode:           code,
		Name:              strings.TrimSpace(name),
		PaymentTermsDays:  paymentTermsDays,
		CurrentBalance:    decimal.Zero,
		AccountantOwnerID: owner,
	}, nil
}

// Party returns the seller and customer pair
func (c *Customer) Party() PartyKey {
	return PartyKey{SellerTaxCode: c.SellerTaxCode, CustomerTaxCode: c.TaxCode}
}

// DueDateFor returns the due date of a document issued on issueDate
func (c *Customer) DueDateFor(issueDate time.Time) time.Time {
	return TruncateDate(issueDate).AddDate(0, 0, c.PaymentTermsDays)
}

// IsOwnedBy reports whether the user is the customer's assigned accountant
func (c *Customer) IsOwnedBy(userID uuid.UUID) bool {
	return c.AccountantOwnerID != nil && *c.AccountantOwnerID == userID
}
