package receivable

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptService handles the receipt lifecycle: draft, approval with
// allocation, void with reversal and unvoid.
type ReceiptService struct {
	scope      TransactionScope
	guard      *PeriodLockGuard
	projector  *BalanceProjector
	authorizer Authorizer
	auditor    auditor
	metrics    Metrics
	logger     *zap.Logger
}

// ReceiptServiceOption configures a ReceiptService
type ReceiptServiceOption func(*ReceiptService)

// WithReceiptLogger sets the logger
func WithReceiptLogger(logger *zap.Logger) ReceiptServiceOption {
	return func(s *ReceiptService) {
		if logger != nil {
			s.logger = logger
			s.auditor.logger = logger
		}
	}
}

// WithReceiptMetrics sets the business metrics recorder
func WithReceiptMetrics(metrics Metrics) ReceiptServiceOption {
	return func(s *ReceiptService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithReceiptAuthorizer replaces the default owner-based authorizer
func WithReceiptAuthorizer(authorizer Authorizer) ReceiptServiceOption {
	return func(s *ReceiptService) {
		if authorizer != nil {
			s.authorizer = authorizer
		}
	}
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	scope TransactionScope,
	sink AuditSink,
	guard *PeriodLockGuard,
	projector *BalanceProjector,
	opts ...ReceiptServiceOption,
) *ReceiptService {
	s := &ReceiptService{
		scope:      scope,
		guard:      guard,
		projector:  projector,
		authorizer: OwnerAuthorizer{},
		auditor:    auditor{sink: sink, logger: zap.NewNop()},
		metrics:    noopMetrics{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a draft receipt. With targets the draft is SELECTED and its
// unallocated amount reflects a dry run against the current open items.
func (s *ReceiptService) Create(ctx context.Context, actor Actor, input CreateReceiptInput) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "create")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptNumber, input.ReceiptNumber)

	var resp ReceiptResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		customer, err := repos.Customers().FindByTaxCode(ctx, input.SellerTaxCode, input.CustomerTaxCode)
		if err != nil {
			return err
		}
		if err := authorize(ctx, s.authorizer, actor, customer); err != nil {
			return err
		}

		receipt, err := receivable.NewReceipt(receivable.NewReceiptInput{
			ReceiptNumber: input.ReceiptNumber,
			Customer:      customer,
			ReceiptDate:   input.ReceiptDate,
			Amount:        input.Amount,
			Mode:          input.Mode,
			Priority:      input.Priority,
			Description:   input.Description,
			CreatedBy:     &actor.UserID,
		})
		if err != nil {
			return err
		}

		exists, err := repos.Receipts().ExistsByNumber(ctx, receipt.SellerTaxCode, receipt.ReceiptNumber)
		if err != nil {
			return fmt.Errorf("failed to check receipt number: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("Receipt %s already exists for seller %s", receipt.ReceiptNumber, receipt.SellerTaxCode))
		}

		if len(input.Targets) > 0 {
			open, err := loadOpenDocuments(ctx, repos, receipt.Party())
			if err != nil {
				return err
			}
			plan, err := receivable.NewManualStrategy().Plan(receipt.Amount, open.items, receipt.AllocationPriority, input.Targets)
			if err != nil {
				return err
			}
			if err := receipt.Select(input.Targets, plan); err != nil {
				return err
			}
		}

		if err := repos.Receipts().Create(ctx, receipt); err != nil {
			return err
		}
		resp = ToReceiptResponse(receipt)
		return s.auditor.log(ctx, AuditActionReceiptCreated, AuditEntityReceipt, receipt.ID, nil, resp)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptID, resp.ID.String())
	s.logger.Info("receipt created",
		zap.String("receipt_id", resp.ID.String()),
		zap.String("receipt_number", resp.ReceiptNumber),
		zap.String("allocation_status", resp.AllocationStatus),
	)
	return &resp, nil
}

// Preview runs the allocation without writing anything. Calling it twice on
// unchanged data returns the same plan.
func (s *ReceiptService) Preview(ctx context.Context, input PreviewInput) (*PreviewResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "preview")
	defer span.End()

	var result *PreviewResult
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.ReceivableOperationLabels(telemetry.OperationReceiptPreview, ""), func(ctx context.Context) {
		err = s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
			party := receivable.NewPartyKey(input.SellerTaxCode, input.CustomerTaxCode)
			amount := input.Amount
			priority := input.Priority
			selections := input.Targets

			if input.ReceiptID != nil {
				receipt, err := repos.Receipts().FindByID(ctx, *input.ReceiptID)
				if err != nil {
					return err
				}
				party = receipt.Party()
				amount = receipt.Amount
				priority = receipt.AllocationPriority
				if len(selections) == 0 {
					selections = receipt.StoredSelection()
				}
			} else if !amount.IsPositive() {
				return shared.NewDomainError(shared.CodeInvalidAmount, "Amount must be positive")
			}
			if priority == "" {
				priority = receivable.PriorityIssueDate
			}
			if !priority.IsValid() {
				return shared.NewDomainError(shared.CodeInvalidInput, "Allocation priority must be ISSUE_DATE or DUE_DATE")
			}

			open, err := loadOpenDocuments(ctx, repos, party)
			if err != nil {
				return err
			}
			plan, err := receivable.StrategyFor(selections).Plan(amount, open.items, priority, selections)
			if err != nil {
				return err
			}
			result = toPreviewResult(plan)
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// Approve commits a draft receipt's allocation. Targets are taken from the
// request, else from the receipt's stored selection, else FIFO over open items.
// A scanner suggestion that no longer fits the open items is dropped for FIFO.
func (s *ReceiptService) Approve(ctx context.Context, actor Actor, input ApproveReceiptInput) (*ApproveReceiptResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "approve")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptID, input.ReceiptID.String())

	if err := input.Override.Validate(); err != nil {
		return nil, err
	}
	if input.Version <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Version is required")
	}

	var result *ApproveReceiptResult
	var mode receivable.AllocationMode
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.ReceivableOperationLabels(telemetry.OperationReceiptApprove, ""), func(ctx context.Context) {
		err = s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
			receipt, customer, err := s.loadForChange(ctx, repos, actor, input.ReceiptID)
			if err != nil {
				return err
			}
			if err := receipt.CanApprove(); err != nil {
				return err
			}
			if err := receipt.CheckVersion(input.Version); err != nil {
				return err
			}
			if err := s.guard.Check(ctx, repos, actor, receipt.SellerTaxCode, receipt.ReceiptDate, input.Override, AuditEntityReceipt, receipt.ID); err != nil {
				return err
			}

			open, err := loadOpenDocuments(ctx, repos, receipt.Party())
			if err != nil {
				return err
			}
			selections := input.Targets
			if len(selections) == 0 {
				selections = receipt.StoredSelection()
			}
			strat := receivable.StrategyFor(selections)
			plan, err := strat.Plan(receipt.Amount, open.items, receipt.AllocationPriority, selections)
			if err != nil && len(input.Targets) == 0 && receipt.AllocationStatus == receivable.AllocationStatusSuggested {
				// the suggestion went stale after the scan; plan again over what is open now
				s.logger.Info("stale suggestion replaced by FIFO",
					zap.String("receipt_id", receipt.ID.String()),
					zap.Error(err),
				)
				strat = receivable.NewFIFOStrategy()
				plan, err = strat.Plan(receipt.Amount, open.items, receipt.AllocationPriority, nil)
				selections = receivable.SelectionsFromPlan(plan)
			}
			if err != nil {
				return err
			}
			mode = strat.Mode()

			allocs, err := commitPlan(ctx, repos, receipt, open, plan, actor)
			if err != nil {
				return err
			}
			if err := repos.Allocations().CreateBatch(ctx, allocs); err != nil {
				return err
			}
			if err := s.projector.Apply(ctx, repos, customer.ID, plan.Allocated.Neg()); err != nil {
				return err
			}

			expected := receipt.Version
			if err := receipt.Approve(plan, selections, actor.UserID); err != nil {
				return err
			}
			if err := repos.Receipts().SaveWithLock(ctx, receipt, expected); err != nil {
				return err
			}
			if err := repos.Events().Record(ctx, receipt.GetDomainEvents()...); err != nil {
				return err
			}
			receipt.ClearDomainEvents()

			result = &ApproveReceiptResult{
				Receipt:         ToReceiptResponse(receipt),
				Lines:           plan.Lines,
				AllocatedAmount: plan.Allocated,
			}
			return s.auditor.log(ctx, AuditActionReceiptApproved, AuditEntityReceipt, receipt.ID,
				map[string]any{"status": receivable.ReceiptStatusDraft, "version": expected},
				result,
			)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordReceiptApproved(ctx, string(mode), result.AllocatedAmount)
	telemetry.SetAttribute(span, telemetry.SpanAttrAllocatedCount, len(result.Lines))
	s.logger.Info("receipt approved",
		zap.String("receipt_id", result.Receipt.ID.String()),
		zap.String("allocation_mode", string(mode)),
		zap.Int("lines", len(result.Lines)),
		zap.String("allocated", result.AllocatedAmount.String()),
	)
	return result, nil
}

// ApproveBulk approves receipts one by one, each in its own transaction
func (s *ReceiptService) ApproveBulk(ctx context.Context, actor Actor, input BulkApproveInput) (*BulkApproveResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "approve_bulk")
	defer span.End()

	if len(input.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one receipt is required")
	}

	result := &BulkApproveResult{
		Total: len(input.Items),
		Items: make([]BulkItemResult, 0, len(input.Items)),
	}
	skipped := ""
	for _, item := range input.Items {
		if skipped == "" && ctx.Err() != nil {
			s.logger.Warn("bulk approval cancelled", zap.Int("attempted", len(result.Items)), zap.Error(ctx.Err()))
			skipped = "Not attempted after cancellation"
		}
		if skipped != "" {
			result.Skipped++
			result.Items = append(result.Items, BulkItemResult{
				ReceiptID: item.ReceiptID,
				ErrorCode: shared.CodeSkipped,
				Message:   skipped,
			})
			continue
		}

		approved, err := s.Approve(ctx, actor, item)
		if err != nil {
			result.Failed++
			result.Items = append(result.Items, BulkItemResult{
				ReceiptID: item.ReceiptID,
				ErrorCode: string(shared.KindOf(err)),
				Message:   bulkErrorMessage(err),
			})
			if !input.ContinueOnError {
				skipped = "Not attempted after an earlier failure"
			}
			continue
		}

		result.Approved++
		result.Items = append(result.Items, BulkItemResult{
			ReceiptID: item.ReceiptID,
			Success:   true,
			Status:    approved.Receipt.Status,
			Version:   approved.Receipt.Version,
		})
	}

	telemetry.SetAttributes(span, "total", result.Total, "approved", result.Approved, "failed", result.Failed)
	s.logger.Info("bulk approval finished",
		zap.Int("total", result.Total),
		zap.Int("approved", result.Approved),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Void reverses every allocation of an approved receipt
func (s *ReceiptService) Void(ctx context.Context, actor Actor, input VoidReceiptInput) (*VoidReceiptResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "void")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptID, input.ReceiptID.String())

	if err := requireReason(input.Reason); err != nil {
		return nil, err
	}
	if err := input.Override.Validate(); err != nil {
		return nil, err
	}

	var result *VoidReceiptResult
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.ReceivableOperationLabels(telemetry.OperationReceiptVoid, ""), func(ctx context.Context) {
		err = s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
			receipt, customer, err := s.loadForChange(ctx, repos, actor, input.ReceiptID)
			if err != nil {
				return err
			}
			if receipt.Status != receivable.ReceiptStatusApproved {
				return shared.NewDomainError(shared.CodeInvalidState,
					fmt.Sprintf("Cannot void receipt %s in %s status", receipt.ReceiptNumber, receipt.Status))
			}
			if err := receipt.CheckVersion(input.Version); err != nil {
				return err
			}
			if err := s.guard.Check(ctx, repos, actor, receipt.SellerTaxCode, receipt.ReceiptDate, input.Override, AuditEntityReceipt, receipt.ID); err != nil {
				return err
			}

			allocs, err := repos.Allocations().FindByReceipt(ctx, receipt.ID)
			if err != nil {
				return err
			}
			ids := make([]uuid.UUID, 0, len(allocs))
			for _, alloc := range allocs {
				ref := alloc.Target()
				doc, err := repos.Documents().FindByID(ctx, ref.Type, ref.ID)
				if err != nil {
					return fmt.Errorf("failed to load allocated %s %s: %w", ref.Type, ref.ID, err)
				}
				expected := doc.Version
				if err := doc.ReverseAllocation(alloc.Amount); err != nil {
					return err
				}
				if err := repos.Documents().SaveWithLock(ctx, doc, expected); err != nil {
					return err
				}
				ids = append(ids, alloc.ID)
			}
			if err := repos.Allocations().DeleteByIDs(ctx, ids); err != nil {
				return err
			}

			reversed := receivable.SumAllocations(allocs)
			if err := s.projector.Apply(ctx, repos, customer.ID, reversed); err != nil {
				return err
			}

			before := ToReceiptResponse(receipt)
			expected := receipt.Version
			if err := receipt.Void(input.Reason, actor.UserID, reversed, receivable.SelectionsFromAllocations(allocs)); err != nil {
				return err
			}
			if err := repos.Receipts().SaveWithLock(ctx, receipt, expected); err != nil {
				return err
			}
			if err := repos.Events().Record(ctx, receipt.GetDomainEvents()...); err != nil {
				return err
			}
			receipt.ClearDomainEvents()

			result = &VoidReceiptResult{
				Receipt:             ToReceiptResponse(receipt),
				ReversedAmount:      reversed,
				ReversedAllocations: len(allocs),
			}
			return s.auditor.log(ctx, AuditActionReceiptVoided, AuditEntityReceipt, receipt.ID, before, result)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordReversal(ctx, AuditEntityReceipt, result.ReversedAmount)
	s.logger.Info("receipt voided",
		zap.String("receipt_id", result.Receipt.ID.String()),
		zap.Int("reversed_allocations", result.ReversedAllocations),
		zap.String("reversed_amount", result.ReversedAmount.String()),
	)
	return result, nil
}

// Unvoid brings a void receipt back as a draft. It does not allocate; the
// draft has to be approved again.
func (s *ReceiptService) Unvoid(ctx context.Context, actor Actor, input UnvoidReceiptInput) (*ReceiptResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receipt", "unvoid")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrReceiptID, input.ReceiptID.String())

	if err := input.Override.Validate(); err != nil {
		return nil, err
	}

	var resp ReceiptResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		receipt, _, err := s.loadForChange(ctx, repos, actor, input.ReceiptID)
		if err != nil {
			return err
		}
		if receipt.Status != receivable.ReceiptStatusVoid {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Cannot unvoid receipt %s in %s status", receipt.ReceiptNumber, receipt.Status))
		}
		if err := receipt.CheckVersion(input.Version); err != nil {
			return err
		}
		if err := s.guard.Check(ctx, repos, actor, receipt.SellerTaxCode, receipt.ReceiptDate, input.Override, AuditEntityReceipt, receipt.ID); err != nil {
			return err
		}

		before := ToReceiptResponse(receipt)
		expected := receipt.Version
		if err := receipt.Unvoid(); err != nil {
			return err
		}
		if err := repos.Receipts().SaveWithLock(ctx, receipt, expected); err != nil {
			return err
		}
		if err := repos.Events().Record(ctx, receipt.GetDomainEvents()...); err != nil {
			return err
		}
		receipt.ClearDomainEvents()

		resp = ToReceiptResponse(receipt)
		return s.auditor.log(ctx, AuditActionReceiptUnvoided, AuditEntityReceipt, receipt.ID, before, resp)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("receipt unvoided",
		zap.String("receipt_id", resp.ID.String()),
		zap.String("allocation_status", resp.AllocationStatus),
	)
	return &resp, nil
}

// Get returns a receipt by ID
func (s *ReceiptService) Get(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	var resp ReceiptResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		receipt, err := repos.Receipts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToReceiptResponse(receipt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns a page of receipts
func (s *ReceiptService) List(ctx context.Context, filter receivable.ReceiptFilter) ([]ReceiptResponse, int64, error) {
	var out []ReceiptResponse
	var total int64
	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		receipts, count, err := repos.Receipts().FindAll(ctx, filter)
		if err != nil {
			return err
		}
		total = count
		out = make([]ReceiptResponse, 0, len(receipts))
		for i := range receipts {
			out = append(out, ToReceiptResponse(&receipts[i]))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAllocations returns the committed allocation rows of a receipt
func (s *ReceiptService) ListAllocations(ctx context.Context, receiptID uuid.UUID) ([]AllocationResponse, error) {
	var out []AllocationResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		if _, err := repos.Receipts().FindByID(ctx, receiptID); err != nil {
			return err
		}
		allocs, err := repos.Allocations().FindByReceipt(ctx, receiptID)
		if err != nil {
			return err
		}
		out = ToAllocationResponses(allocs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListOpenItems returns the open invoices and advances of a customer in allocation order
func (s *ReceiptService) ListOpenItems(ctx context.Context, sellerTaxCode, customerTaxCode string, priority receivable.AllocationPriority) ([]receivable.OpenItem, error) {
	if priority == "" {
		priority = receivable.PriorityIssueDate
	}
	if !priority.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Allocation priority must be ISSUE_DATE or DUE_DATE")
	}

	var items []receivable.OpenItem
	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		open, err := loadOpenDocuments(ctx, repos, receivable.NewPartyKey(sellerTaxCode, customerTaxCode))
		if err != nil {
			return err
		}
		items = open.items
		return nil
	})
	if err != nil {
		return nil, err
	}
	receivable.SortOpenItems(items, priority)
	return items, nil
}

// loadForChange loads a receipt and its customer and checks that the actor may change it
func (s *ReceiptService) loadForChange(ctx context.Context, repos TransactionalRepositories, actor Actor, id uuid.UUID) (*receivable.Receipt, *receivable.Customer, error) {
	receipt, err := repos.Receipts().FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	customer, err := repos.Customers().FindByID(ctx, receipt.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load customer of receipt %s: %w", receipt.ReceiptNumber, err)
	}
	if err := authorize(ctx, s.authorizer, actor, customer); err != nil {
		return nil, nil, err
	}
	return receipt, customer, nil
}

func requireReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError(shared.CodeReasonRequired, "Void reason is required")
	}
	return nil
}

// bulkErrorMessage keeps storage details out of bulk item results
func bulkErrorMessage(err error) string {
	if shared.KindOf(err) == shared.KindInternal {
		return "Internal error"
	}
	return err.Error()
}
