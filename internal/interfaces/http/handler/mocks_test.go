package handler

import (
	"context"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReceiptService implements ReceiptService for testing
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Create(ctx context.Context, actor appreceivable.Actor, input appreceivable.CreateReceiptInput) (*appreceivable.ReceiptResponse, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.ReceiptResponse), args.Error(1)
}

func (m *MockReceiptService) Preview(ctx context.Context, input appreceivable.PreviewInput) (*appreceivable.PreviewResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.PreviewResult), args.Error(1)
}

func (m *MockReceiptService) Approve(ctx context.Context, actor appreceivable.Actor, input appreceivable.ApproveReceiptInput) (*appreceivable.ApproveReceiptResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.ApproveReceiptResult), args.Error(1)
}

func (m *MockReceiptService) ApproveBulk(ctx context.Context, actor appreceivable.Actor, input appreceivable.BulkApproveInput) (*appreceivable.BulkApproveResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.BulkApproveResult), args.Error(1)
}

func (m *MockReceiptService) Void(ctx context.Context, actor appreceivable.Actor, input appreceivable.VoidReceiptInput) (*appreceivable.VoidReceiptResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.VoidReceiptResult), args.Error(1)
}

func (m *MockReceiptService) Unvoid(ctx context.Context, actor appreceivable.Actor, input appreceivable.UnvoidReceiptInput) (*appreceivable.ReceiptResponse, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.ReceiptResponse), args.Error(1)
}

func (m *MockReceiptService) Get(ctx context.Context, id uuid.UUID) (*appreceivable.ReceiptResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.ReceiptResponse), args.Error(1)
}

func (m *MockReceiptService) List(ctx context.Context, filter receivable.ReceiptFilter) ([]appreceivable.ReceiptResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appreceivable.ReceiptResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockReceiptService) ListAllocations(ctx context.Context, receiptID uuid.UUID) ([]appreceivable.AllocationResponse, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appreceivable.AllocationResponse), args.Error(1)
}

func (m *MockReceiptService) ListOpenItems(ctx context.Context, sellerTaxCode, customerTaxCode string, priority receivable.AllocationPriority) ([]receivable.OpenItem, error) {
	args := m.Called(ctx, sellerTaxCode, customerTaxCode, priority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]receivable.OpenItem), args.Error(1)
}

// MockDebtDocumentService implements DebtDocumentService for testing
type MockDebtDocumentService struct {
	mock.Mock
}

func (m *MockDebtDocumentService) Create(ctx context.Context, actor appreceivable.Actor, input appreceivable.CreateDebtDocumentInput) (*appreceivable.CreateDebtDocumentResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.CreateDebtDocumentResult), args.Error(1)
}

func (m *MockDebtDocumentService) Import(ctx context.Context, actor appreceivable.Actor, inputs []appreceivable.CreateDebtDocumentInput) (*appreceivable.ImportResult, error) {
	args := m.Called(ctx, actor, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.ImportResult), args.Error(1)
}

func (m *MockDebtDocumentService) Void(ctx context.Context, actor appreceivable.Actor, input appreceivable.VoidDebtDocumentInput) (*appreceivable.VoidDebtDocumentResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.VoidDebtDocumentResult), args.Error(1)
}

func (m *MockDebtDocumentService) Unvoid(ctx context.Context, actor appreceivable.Actor, input appreceivable.UnvoidDebtDocumentInput) (*appreceivable.CreateDebtDocumentResult, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.CreateDebtDocumentResult), args.Error(1)
}

func (m *MockDebtDocumentService) Get(ctx context.Context, docType receivable.DocumentType, id uuid.UUID) (*appreceivable.DebtDocumentResponse, error) {
	args := m.Called(ctx, docType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.DebtDocumentResponse), args.Error(1)
}

// MockPeriodLockService implements PeriodLockService for testing
type MockPeriodLockService struct {
	mock.Mock
}

func (m *MockPeriodLockService) Lock(ctx context.Context, actor appreceivable.Actor, sellerTaxCode, periodKey, reason string) (*appreceivable.PeriodLockResponse, error) {
	args := m.Called(ctx, actor, sellerTaxCode, periodKey, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.PeriodLockResponse), args.Error(1)
}

func (m *MockPeriodLockService) Unlock(ctx context.Context, actor appreceivable.Actor, lockID uuid.UUID) error {
	return m.Called(ctx, actor, lockID).Error(0)
}

func (m *MockPeriodLockService) List(ctx context.Context) ([]appreceivable.PeriodLockResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appreceivable.PeriodLockResponse), args.Error(1)
}

// MockSuggestionScanner implements SuggestionScanner for testing
type MockSuggestionScanner struct {
	mock.Mock
}

func (m *MockSuggestionScanner) Scan(ctx context.Context, opts appreceivable.ScanOptions) (*appreceivable.ScanResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.ScanResult), args.Error(1)
}

// MockBalanceService implements BalanceService for testing
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetCustomer(ctx context.Context, id uuid.UUID) (*appreceivable.CustomerResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.CustomerResponse), args.Error(1)
}

func (m *MockBalanceService) Recompute(ctx context.Context, actor appreceivable.Actor, customerID uuid.UUID) (*appreceivable.RecomputeBalanceResult, error) {
	args := m.Called(ctx, actor, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appreceivable.RecomputeBalanceResult), args.Error(1)
}

// MockOutboxCounter implements OutboxCounter for testing
type MockOutboxCounter struct {
	mock.Mock
}

func (m *MockOutboxCounter) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[shared.OutboxStatus]int64), args.Error(1)
}
