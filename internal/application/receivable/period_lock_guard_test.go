package receivable_test

import (
	"context"
	"testing"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodLockGuard_Override(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.customer(t, "C1", nil)
	h.invoice(t, c, "INV-1", 300, day(2024, 2, 20))
	receipt := h.draft(t, c, "R-1", 100, day(2024, 3, 5))

	lock, err := h.guard.Lock(ctx, admin, seller, "2024-03", "March closed")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", lock.PeriodKey)
	assert.Equal(t, int64(1), h.auditEntries(t, appreceivable.AuditActionPeriodLocked))

	t.Run("without override the period is locked", func(t *testing.T) {
		_, err := h.receipts.Approve(ctx, admin, appreceivable.ApproveReceiptInput{ReceiptID: receipt.ID, Version: receipt.Version})
		assert.Equal(t, shared.KindLocked, shared.KindOf(err))
	})

	t.Run("an override needs a reason", func(t *testing.T) {
		_, err := h.receipts.Approve(ctx, admin, appreceivable.ApproveReceiptInput{
			ReceiptID: receipt.ID, Version: receipt.Version, Override: &receivable.LockOverride{},
		})
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("documents dated in the period are locked too", func(t *testing.T) {
		_, err := h.documents.Create(ctx, admin, appreceivable.CreateDebtDocumentInput{
			Type: receivable.DocumentTypeInvoice, SellerTaxCode: seller, CustomerTaxCode: "C1",
			DocumentNumber: "INV-MAR", TotalAmount: money(10), IssueDate: day(2024, 3, 31),
		})
		assert.Equal(t, shared.KindLocked, shared.KindOf(err))
	})

	assert.Zero(t, h.auditEntries(t, appreceivable.AuditActionPeriodLockOverride))

	res, err := h.receipts.Approve(ctx, admin, appreceivable.ApproveReceiptInput{
		ReceiptID: receipt.ID,
		Version:   receipt.Version,
		Override:  &receivable.LockOverride{Reason: "late bank statement"},
	})
	require.NoError(t, err)
	assert.True(t, res.AllocatedAmount.Equal(money(100)))
	assert.Equal(t, int64(1), h.auditEntries(t, appreceivable.AuditActionPeriodLockOverride))
	h.requireConserved(t, c)
}

func TestPeriodLockGuard_OverrideNeedsAdmin(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	owner := uuid.New()
	accountant := appreceivable.Actor{UserID: owner}
	c := h.customer(t, "C1", &owner)
	h.invoice(t, c, "INV-1", 300, day(2024, 2, 20))
	receipt := h.draft(t, c, "R-1", 100, day(2024, 3, 5))

	_, err := h.guard.Lock(ctx, admin, seller, "2024-03", "March closed")
	require.NoError(t, err)

	_, err = h.receipts.Approve(ctx, accountant, appreceivable.ApproveReceiptInput{
		ReceiptID: receipt.ID,
		Version:   receipt.Version,
		Override:  &receivable.LockOverride{Reason: "x"},
	})
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
	assert.Zero(t, h.auditEntries(t, appreceivable.AuditActionPeriodLockOverride))

	_, err = h.documents.Create(ctx, accountant, appreceivable.CreateDebtDocumentInput{
		Type: receivable.DocumentTypeInvoice, SellerTaxCode: seller, CustomerTaxCode: "C1",
		DocumentNumber: "INV-MAR", TotalAmount: money(10), IssueDate: day(2024, 3, 31),
		Override: &receivable.LockOverride{Reason: "x"},
	})
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

	// an unlocked period needs no admin
	h.invoice(t, c, "INV-APR", 10, day(2024, 4, 2))
	h.requireConserved(t, c)
}

func TestPeriodLockGuard_GlobalLock(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.customer(t, "C1", nil)

	_, err := h.guard.Lock(ctx, admin, "", "2024-01", "year end")
	require.NoError(t, err)

	_, err = h.documents.Create(ctx, admin, appreceivable.CreateDebtDocumentInput{
		Type: receivable.DocumentTypeAdvance, SellerTaxCode: c.SellerTaxCode, CustomerTaxCode: c.TaxCode,
		DocumentNumber: "ADV-1", TotalAmount: money(10), IssueDate: day(2024, 1, 15),
	})
	assert.Equal(t, shared.KindLocked, shared.KindOf(err))

	h.document(t, c, receivable.DocumentTypeAdvance, "ADV-2", 10, day(2024, 2, 1))
}

func TestPeriodLockGuard_Administration(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c := h.customer(t, "C1", nil)
	accountant := appreceivable.Actor{UserID: uuid.New()}

	_, err := h.guard.Lock(ctx, accountant, seller, "2024-03", "")
	assert.Equal(t, shared.KindForbidden, shared.KindOf(err))

	_, err = h.guard.Lock(ctx, admin, seller, "March", "")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	lock, err := h.guard.Lock(ctx, admin, seller, "2024-03", "")
	require.NoError(t, err)
	_, err = h.guard.Lock(ctx, admin, seller, "2024-03", "again")
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	locks, err := h.guard.List(ctx)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	assert.Equal(t, lock.ID, locks[0].ID)
	assert.Equal(t, seller, locks[0].SellerTaxCode)

	assert.Equal(t, shared.KindForbidden, shared.KindOf(h.guard.Unlock(ctx, accountant, lock.ID)))
	require.NoError(t, h.guard.Unlock(ctx, admin, lock.ID))
	assert.ErrorIs(t, h.guard.Unlock(ctx, admin, lock.ID), shared.ErrNotFound)
	assert.Equal(t, int64(1), h.auditEntries(t, appreceivable.AuditActionPeriodUnlocked))

	h.invoice(t, c, "INV-MAR", 10, day(2024, 3, 10))
}
