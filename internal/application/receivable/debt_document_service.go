package receivable

import (
	"context"
	"fmt"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DebtDocumentService commits, voids and restores invoices and advances.
// A committed document immediately absorbs the unallocated money of its
// customer's approved receipts.
type DebtDocumentService struct {
	scope      TransactionScope
	guard      *PeriodLockGuard
	projector  *BalanceProjector
	authorizer Authorizer
	auditor    auditor
	metrics    Metrics
	logger     *zap.Logger
}

// DebtDocumentServiceOption configures a DebtDocumentService
type DebtDocumentServiceOption func(*DebtDocumentService)

// WithDocumentLogger sets the logger
func WithDocumentLogger(logger *zap.Logger) DebtDocumentServiceOption {
	return func(s *DebtDocumentService) {
		if logger != nil {
			s.logger = logger
			s.auditor.logger = logger
		}
	}
}

// WithDocumentMetrics sets the business metrics recorder
func WithDocumentMetrics(metrics Metrics) DebtDocumentServiceOption {
	return func(s *DebtDocumentService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithDocumentAuthorizer replaces the default owner-based authorizer
func WithDocumentAuthorizer(authorizer Authorizer) DebtDocumentServiceOption {
	return func(s *DebtDocumentService) {
		if authorizer != nil {
			s.authorizer = authorizer
		}
	}
}

// NewDebtDocumentService creates a new DebtDocumentService
func NewDebtDocumentService(
	scope TransactionScope,
	sink AuditSink,
	guard *PeriodLockGuard,
	projector *BalanceProjector,
	opts ...DebtDocumentServiceOption,
) *DebtDocumentService {
	s := &DebtDocumentService{
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

// Create commits an invoice or advance and auto-allocates surplus receipts to it
func (s *DebtDocumentService) Create(ctx context.Context, actor Actor, input CreateDebtDocumentInput) (*CreateDebtDocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debt_document", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentType, string(input.Type),
		telemetry.SpanAttrDocumentNumber, input.DocumentNumber,
	)

	if err := input.Override.Validate(); err != nil {
		return nil, err
	}

	var result *CreateDebtDocumentResult
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.ReceivableOperationLabels(telemetry.OperationDocumentCommit, string(input.Type)), func(ctx context.Context) {
		err = s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
			r, err := s.create(ctx, repos, actor, input)
			result = r
			return err
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if result.AutoAllocated.IsPositive() {
		s.metrics.RecordAutoAllocation(ctx, result.Document.Type, result.AutoAllocated)
	}
	s.logger.Info("debt document committed",
		zap.String("document_id", result.Document.ID.String()),
		zap.String("type", result.Document.Type),
		zap.String("document_number", result.Document.DocumentNumber),
		zap.String("auto_allocated", result.AutoAllocated.String()),
	)
	return result, nil
}

func (s *DebtDocumentService) create(ctx context.Context, repos TransactionalRepositories, actor Actor, input CreateDebtDocumentInput) (*CreateDebtDocumentResult, error) {
	customer, err := repos.Customers().FindByTaxCode(ctx, input.SellerTaxCode, input.CustomerTaxCode)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.authorizer, actor, customer); err != nil {
		return nil, err
	}

	doc, err := receivable.NewDebtDocument(receivable.NewDebtDocumentInput{
		Type:           input.Type,
		DocumentNumber: input.DocumentNumber,
		Customer:       customer,
		TotalAmount:    input.TotalAmount,
		IssueDate:      input.IssueDate,
		Description:    input.Description,
		CreatedBy:      &actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	exists, err := repos.Documents().ExistsByNumber(ctx, doc.Type, doc.SellerTaxCode, doc.DocumentNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check document number: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("%s %s already exists for seller %s", doc.Type, doc.DocumentNumber, doc.SellerTaxCode))
	}
	if err := s.guard.Check(ctx, repos, actor, doc.SellerTaxCode, doc.IssueDate, input.Override, AuditEntityDebtDocument, doc.ID); err != nil {
		return nil, err
	}

	plan, allocs, err := drawSurplus(ctx, repos, doc, actor)
	if err != nil {
		return nil, err
	}
	if err := repos.Documents().Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := repos.Allocations().CreateBatch(ctx, allocs); err != nil {
		return nil, err
	}
	// +total for the new document, -allocated for what surplus receipts paid
	if err := s.projector.Apply(ctx, repos, customer.ID, doc.OutstandingAmount); err != nil {
		return nil, err
	}

	doc.AddDomainEvent(receivable.NewDebtDocumentCreatedEvent(doc, plan))
	if err := repos.Events().Record(ctx, doc.GetDomainEvents()...); err != nil {
		return nil, err
	}
	doc.ClearDomainEvents()

	lines := plan.Lines
	if lines == nil {
		lines = []receivable.AllocationLine{}
	}
	result := &CreateDebtDocumentResult{
		Document:      ToDebtDocumentResponse(doc),
		AutoAllocated: plan.Allocated,
		Allocations:   lines,
	}
	action := AuditActionInvoiceCreated
	if doc.Type == receivable.DocumentTypeAdvance {
		action = AuditActionAdvanceCreated
	}
	if err := s.auditor.log(ctx, action, AuditEntityDebtDocument, doc.ID, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Import commits already parsed documents one by one, each in its own transaction
func (s *DebtDocumentService) Import(ctx context.Context, actor Actor, inputs []CreateDebtDocumentInput) (*ImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debt_document", "import")
	defer span.End()

	if len(inputs) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one document is required")
	}

	result := &ImportResult{
		Total: len(inputs),
		Items: make([]ImportItemResult, 0, len(inputs)),
	}
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		created, err := s.Create(ctx, actor, input)
		if err != nil {
			result.Failed++
			result.Items = append(result.Items, ImportItemResult{
				DocumentNumber: input.DocumentNumber,
				ErrorCode:      string(shared.KindOf(err)),
				Message:        bulkErrorMessage(err),
			})
			continue
		}
		id := created.Document.ID
		result.Created++
		result.Items = append(result.Items, ImportItemResult{
			DocumentNumber: created.Document.DocumentNumber,
			Success:        true,
			DocumentID:     &id,
		})
	}

	telemetry.SetAttributes(span, "total", result.Total, "created", result.Created, "failed", result.Failed)
	return result, nil
}

// Void reverses every allocation pointing at the document and takes it out of the balance
func (s *DebtDocumentService) Void(ctx context.Context, actor Actor, input VoidDebtDocumentInput) (*VoidDebtDocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debt_document", "void")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentType, string(input.Type),
		telemetry.SpanAttrDocumentID, input.DocumentID.String(),
	)

	if err := requireReason(input.Reason); err != nil {
		return nil, err
	}
	if err := input.Override.Validate(); err != nil {
		return nil, err
	}

	var result *VoidDebtDocumentResult
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.ReceivableOperationLabels(telemetry.OperationDocumentVoid, string(input.Type)), func(ctx context.Context) {
		err = s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
			doc, customer, err := s.loadForChange(ctx, repos, actor, input.Type, input.DocumentID)
			if err != nil {
				return err
			}
			if doc.Status == receivable.DocumentStatusVoid {
				return shared.NewDomainError(shared.CodeInvalidState,
					fmt.Sprintf("%s %s is already void", doc.Type, doc.DocumentNumber))
			}
			if err := doc.CheckVersion(input.Version); err != nil {
				return err
			}
			if err := s.guard.Check(ctx, repos, actor, doc.SellerTaxCode, doc.IssueDate, input.Override, AuditEntityDebtDocument, doc.ID); err != nil {
				return err
			}

			allocs, err := repos.Allocations().FindByTarget(ctx, doc.Ref())
			if err != nil {
				return err
			}
			receipts := make(map[uuid.UUID]*receivable.Receipt)
			expected := make(map[uuid.UUID]int)
			ids := make([]uuid.UUID, 0, len(allocs))
			for _, alloc := range allocs {
				receipt, ok := receipts[alloc.ReceiptID]
				if !ok {
					receipt, err = repos.Receipts().FindByID(ctx, alloc.ReceiptID)
					if err != nil {
						return fmt.Errorf("failed to load allocating receipt %s: %w", alloc.ReceiptID, err)
					}
					receipts[receipt.ID] = receipt
					expected[receipt.ID] = receipt.Version
				}
				if err := receipt.ReverseSourceAllocation(alloc.Amount); err != nil {
					return err
				}
				ids = append(ids, alloc.ID)
			}
			for _, alloc := range allocs {
				receipt, ok := receipts[alloc.ReceiptID]
				if !ok {
					continue
				}
				if err := repos.Receipts().SaveWithLock(ctx, receipt, expected[receipt.ID]); err != nil {
					return err
				}
				delete(receipts, alloc.ReceiptID)
			}
			if err := repos.Allocations().DeleteByIDs(ctx, ids); err != nil {
				return err
			}

			before := ToDebtDocumentResponse(doc)
			reversed := receivable.SumAllocations(allocs)
			prevVersion := doc.Version
			outstandingBefore, err := doc.Void(input.Reason, actor.UserID, reversed)
			if err != nil {
				return err
			}
			if err := s.projector.Apply(ctx, repos, customer.ID, outstandingBefore.Neg()); err != nil {
				return err
			}
			if err := repos.Documents().SaveWithLock(ctx, doc, prevVersion); err != nil {
				return err
			}
			if err := repos.Events().Record(ctx, doc.GetDomainEvents()...); err != nil {
				return err
			}
			doc.ClearDomainEvents()

			result = &VoidDebtDocumentResult{
				Document:            ToDebtDocumentResponse(doc),
				ReversedAmount:      reversed,
				ReversedAllocations: len(allocs),
			}
			return s.auditor.log(ctx, AuditActionDocumentVoided, AuditEntityDebtDocument, doc.ID, before, result)
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordReversal(ctx, result.Document.Type, result.ReversedAmount)
	s.logger.Info("debt document voided",
		zap.String("document_id", result.Document.ID.String()),
		zap.String("type", result.Document.Type),
		zap.Int("reversed_allocations", result.ReversedAllocations),
		zap.String("reversed_amount", result.ReversedAmount.String()),
	)
	return result, nil
}

// Unvoid restores a void document with its full total outstanding and
// re-runs auto-allocation from surplus receipts
func (s *DebtDocumentService) Unvoid(ctx context.Context, actor Actor, input UnvoidDebtDocumentInput) (*CreateDebtDocumentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debt_document", "unvoid")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentType, string(input.Type),
		telemetry.SpanAttrDocumentID, input.DocumentID.String(),
	)

	if err := input.Override.Validate(); err != nil {
		return nil, err
	}

	var result *CreateDebtDocumentResult
	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		doc, customer, err := s.loadForChange(ctx, repos, actor, input.Type, input.DocumentID)
		if err != nil {
			return err
		}
		if doc.Status != receivable.DocumentStatusVoid {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Cannot unvoid %s %s in %s status", doc.Type, doc.DocumentNumber, doc.Status))
		}
		if err := doc.CheckVersion(input.Version); err != nil {
			return err
		}
		if err := s.guard.Check(ctx, repos, actor, doc.SellerTaxCode, doc.IssueDate, input.Override, AuditEntityDebtDocument, doc.ID); err != nil {
			return err
		}

		before := ToDebtDocumentResponse(doc)
		prevVersion := doc.Version
		if err := doc.Unvoid(); err != nil {
			return err
		}
		plan, allocs, err := drawSurplus(ctx, repos, doc, actor)
		if err != nil {
			return err
		}
		if err := repos.Documents().SaveWithLock(ctx, doc, prevVersion); err != nil {
			return err
		}
		if err := repos.Allocations().CreateBatch(ctx, allocs); err != nil {
			return err
		}
		if err := s.projector.Apply(ctx, repos, customer.ID, doc.OutstandingAmount); err != nil {
			return err
		}
		if err := repos.Events().Record(ctx, doc.GetDomainEvents()...); err != nil {
			return err
		}
		doc.ClearDomainEvents()

		lines := plan.Lines
		if lines == nil {
			lines = []receivable.AllocationLine{}
		}
		result = &CreateDebtDocumentResult{
			Document:      ToDebtDocumentResponse(doc),
			AutoAllocated: plan.Allocated,
			Allocations:   lines,
		}
		return s.auditor.log(ctx, AuditActionDocumentUnvoided, AuditEntityDebtDocument, doc.ID, before, result)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("debt document unvoided",
		zap.String("document_id", result.Document.ID.String()),
		zap.String("status", result.Document.Status),
		zap.String("auto_allocated", result.AutoAllocated.String()),
	)
	return result, nil
}

// Get returns an invoice or advance by ID
func (s *DebtDocumentService) Get(ctx context.Context, docType receivable.DocumentType, id uuid.UUID) (*DebtDocumentResponse, error) {
	var resp DebtDocumentResponse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		doc, err := repos.Documents().FindByID(ctx, docType, id)
		if err != nil {
			return err
		}
		resp = ToDebtDocumentResponse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *DebtDocumentService) loadForChange(
	ctx context.Context,
	repos TransactionalRepositories,
	actor Actor,
	docType receivable.DocumentType,
	id uuid.UUID,
) (*receivable.DebtDocument, *receivable.Customer, error) {
	if !docType.IsValid() {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "Document type must be INVOICE or ADVANCE")
	}
	doc, err := repos.Documents().FindByID(ctx, docType, id)
	if err != nil {
		return nil, nil, err
	}
	customer, err := repos.Customers().FindByID(ctx, doc.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load customer of %s %s: %w", doc.Type, doc.DocumentNumber, err)
	}
	if err := authorize(ctx, s.authorizer, actor, customer); err != nil {
		return nil, nil, err
	}
	return doc, customer, nil
}
