package receivable_test

import (
	"context"
	"testing"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceProjector_Recompute(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.customer(t, "C1", nil)
	h.invoice(t, c, "INV-1", 300, day(2024, 1, 5))
	h.approve(t, h.draft(t, c, "R-1", 120, day(2024, 2, 1)))
	require.NoError(t, persistence.NewGormCustomerRepository(h.db).SetBalance(ctx, c.ID, money(999)))

	_, err := h.projector.Recompute(ctx, appreceivable.Actor{UserID: uuid.New()}, c.ID)
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

	res, err := h.projector.Recompute(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.True(t, res.Previous.Equal(money(999)))
	assert.True(t, res.Current.Equal(money(180)))
	assert.True(t, res.Drift.Equal(money(-819)))
	assert.True(t, h.balance(t, c).Equal(money(180)))
	assert.Equal(t, int64(1), h.auditEntries(t, appreceivable.AuditActionBalanceRecomputed))
	h.requireConserved(t, c)

	again, err := h.projector.Recompute(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.True(t, again.Drift.IsZero())
	assert.Equal(t, int64(1), h.auditEntries(t, appreceivable.AuditActionBalanceRecomputed))

	_, err = h.projector.Recompute(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBalanceProjector_GetCustomer(t *testing.T) {
	h := newHarness(t, nil)
	c := h.customer(t, "C1", nil)
	h.invoice(t, c, "INV-1", 300, day(2024, 1, 5))

	got, err := h.projector.GetCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "C1", got.TaxCode)
	assert.Equal(t, seller, got.SellerTaxCode)
	assert.True(t, got.CurrentBalance.Equal(money(300)))

	_, err = h.projector.GetCustomer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
