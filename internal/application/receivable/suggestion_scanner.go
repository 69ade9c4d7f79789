package receivable

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/erp/receivables/internal/domain/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	scanLockKey      = "receivables:suggestion-scan"
	defaultScanLimit = 5000
	defaultScanTTL   = 10 * time.Minute
)

// RunLocker serializes runs of a job across instances
type RunLocker interface {
	// TryLock acquires key for at most ttl. When the lock is held elsewhere
	// it returns acquired=false without error.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

// SuggestionScanner proposes allocation targets for draft receipts in bulk.
// It reads everything it needs in three queries, plans in memory, and
// writes only suggestion metadata guarded by the receipt version.
type SuggestionScanner struct {
	scope   TransactionScope
	locker  RunLocker
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
	limit   int
	lockTTL time.Duration
}

// SuggestionScannerOption configures a SuggestionScanner
type SuggestionScannerOption func(*SuggestionScanner)

// WithScannerLogger sets the logger
func WithScannerLogger(logger *zap.Logger) SuggestionScannerOption {
	return func(s *SuggestionScanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScannerMetrics sets the business metrics recorder
func WithScannerMetrics(metrics Metrics) SuggestionScannerOption {
	return func(s *SuggestionScanner) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithScannerClock overrides the time source used for suggestedAt
func WithScannerClock(now func() time.Time) SuggestionScannerOption {
	return func(s *SuggestionScanner) {
		if now != nil {
			s.now = now
		}
	}
}

// WithScannerLimit sets the default number of receipts a run considers
func WithScannerLimit(limit int) SuggestionScannerOption {
	return func(s *SuggestionScanner) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithScannerLockTTL sets how long a run may hold the run lock
func WithScannerLockTTL(ttl time.Duration) SuggestionScannerOption {
	return func(s *SuggestionScanner) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// NewSuggestionScanner creates a new SuggestionScanner
func NewSuggestionScanner(scope TransactionScope, locker RunLocker, opts ...SuggestionScannerOption) *SuggestionScanner {
	s := &SuggestionScanner{
		scope:   scope,
		locker:  locker,
		metrics: noopMetrics{},
		logger:  zap.NewNop(),
		now:     time.Now,
		limit:   defaultScanLimit,
		lockTTL: defaultScanTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// scanGroup is the working set of one (seller, customer) pair
type scanGroup struct {
	receipts []*receivable.Receipt
	selected []*receivable.Receipt
	items    []receivable.OpenItem
}

// Scan runs one suggestion pass. A run already in progress anywhere yields SCAN_IN_PROGRESS.
func (s *SuggestionScanner) Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "suggestion_scanner", "scan")
	defer span.End()

	release, acquired, err := s.locker.TryLock(ctx, scanLockKey, s.lockTTL)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	if !acquired {
		return nil, shared.ErrScanInProgress
	}
	defer release()

	limit := opts.Limit
	if limit <= 0 {
		limit = s.limit
	}

	started := s.now()
	var result *ScanResult
	telemetry.WithProfilingLabels(ctx, telemetry.ReceivableOperationLabels(telemetry.OperationSuggestionScan, ""), func(ctx context.Context) {
		result, err = s.scan(ctx, opts.SellerTaxCodes, limit)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result.Duration = s.now().Sub(started)

	s.metrics.RecordScan(ctx, result.Suggested, result.Skipped, result.Duration)
	telemetry.SetAttributes(span,
		"groups", result.Groups,
		"receipts_scanned", result.ReceiptsScanned,
		"suggested", result.Suggested,
		"skipped", result.Skipped,
	)
	s.logger.Info("suggestion scan finished",
		zap.Int("groups", result.Groups),
		zap.Int("receipts_scanned", result.ReceiptsScanned),
		zap.Int("suggested", result.Suggested),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (s *SuggestionScanner) scan(ctx context.Context, sellers []string, limit int) (*ScanResult, error) {
	groups, order, scanned, err := s.load(ctx, sellers, limit)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{Groups: len(groups), ReceiptsScanned: scanned}
	for _, party := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		group := groups[party]
		s.reserve(group)
		for _, receipt := range group.receipts {
			plan, err := receivable.NewFIFOStrategy().Plan(receipt.Amount, group.items, receipt.AllocationPriority, nil)
			if err != nil {
				return nil, err
			}
			consume(group.items, plan)

			selections := receivable.SelectionsFromPlan(plan)
			if len(selections) == 0 || sameSuggestion(receipt, selections) {
				result.Skipped++
				continue
			}
			if err := s.suggest(ctx, receipt, selections, plan); err != nil {
				s.logger.Warn("suggestion skipped",
					zap.String("receipt_id", receipt.ID.String()),
					zap.String("kind", string(shared.KindOf(err))),
					zap.Error(err),
				)
				result.Skipped++
				continue
			}
			result.Suggested++
		}
	}
	return result, nil
}

// reserve takes what the SELECTED drafts of a group would pay off the open
// items before any suggestion is planned
func (s *SuggestionScanner) reserve(group *scanGroup) {
	for _, receipt := range group.selected {
		selections := receipt.StoredSelection()
		plan, err := receivable.StrategyFor(selections).Plan(receipt.Amount, group.items, receipt.AllocationPriority, selections)
		if err != nil {
			s.logger.Debug("selected draft no longer fits the open items",
				zap.String("receipt_id", receipt.ID.String()),
				zap.Error(err),
			)
			continue
		}
		consume(group.items, plan)
	}
}

// load performs the three reads of a run: drafts, then the open invoices and
// the open advances of every party with a draft to suggest for. SELECTED
// drafts come with the first read and only reserve open amounts.
func (s *SuggestionScanner) load(ctx context.Context, sellers []string, limit int) (map[receivable.PartyKey]*scanGroup, []receivable.PartyKey, int, error) {
	groups := make(map[receivable.PartyKey]*scanGroup)
	var order []receivable.PartyKey
	scanned := 0

	err := s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		receipts, err := repos.Receipts().FindScanCandidates(ctx, sellers, limit)
		if err != nil {
			return fmt.Errorf("failed to load scan candidates: %w", err)
		}
		var selected []*receivable.Receipt
		for _, r := range receipts {
			if r.AllocationStatus == receivable.AllocationStatusSelected {
				selected = append(selected, r)
				continue
			}
			party := r.Party()
			group, ok := groups[party]
			if !ok {
				group = &scanGroup{}
				groups[party] = group
				order = append(order, party)
			}
			group.receipts = append(group.receipts, r)
			scanned++
		}
		if scanned == 0 {
			return nil
		}
		for _, r := range selected {
			if group, ok := groups[r.Party()]; ok {
				group.selected = append(group.selected, r)
			}
		}

		for _, docType := range []receivable.DocumentType{receivable.DocumentTypeInvoice, receivable.DocumentTypeAdvance} {
			docs, err := repos.Documents().FindOpenByParties(ctx, docType, order)
			if err != nil {
				return fmt.Errorf("failed to load open %s documents: %w", docType, err)
			}
			for _, doc := range docs {
				if group, ok := groups[doc.Party()]; ok {
					group.items = append(group.items, receivable.OpenItemFromDocument(doc))
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, 0, err
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].SellerTaxCode != order[j].SellerTaxCode {
			return order[i].SellerTaxCode < order[j].SellerTaxCode
		}
		return order[i].CustomerTaxCode < order[j].CustomerTaxCode
	})
	for _, group := range groups {
		sortByReceiptDate(group.receipts)
		sortByReceiptDate(group.selected)
	}
	return groups, order, scanned, nil
}

func sortByReceiptDate(receipts []*receivable.Receipt) {
	sort.SliceStable(receipts, func(i, j int) bool {
		a, b := receipts[i], receipts[j]
		if !a.ReceiptDate.Equal(b.ReceiptDate) {
			return a.ReceiptDate.Before(b.ReceiptDate)
		}
		return a.ReceiptNumber < b.ReceiptNumber
	})
}

// suggest stores one receipt's suggestion with a version check
func (s *SuggestionScanner) suggest(ctx context.Context, receipt *receivable.Receipt, selections receivable.TargetSelections, plan receivable.AllocationPlan) error {
	return s.scope.Execute(ctx, func(ctx context.Context, repos TransactionalRepositories) error {
		expected := receipt.Version
		if err := receipt.Suggest(selections, plan, s.now()); err != nil {
			return err
		}
		if err := repos.Receipts().SaveWithLock(ctx, receipt, expected); err != nil {
			return err
		}
		return repos.Events().Record(ctx, receivable.NewAllocationsSuggestedEvent(receipt))
	})
}

// consume takes a plan's amounts off the in-memory open items so later
// receipts of the same group do not claim them again
func consume(items []receivable.OpenItem, plan receivable.AllocationPlan) {
	for _, line := range plan.Lines {
		for i := range items {
			if items[i].ID == line.TargetID && items[i].Type == line.TargetType {
				items[i].Outstanding = items[i].Outstanding.Sub(line.Amount)
				break
			}
		}
	}
}

func sameSuggestion(receipt *receivable.Receipt, selections receivable.TargetSelections) bool {
	if receipt.AllocationStatus != receivable.AllocationStatusSuggested || len(receipt.AllocationTargets) != len(selections) {
		return false
	}
	for i, sel := range selections {
		cur := receipt.AllocationTargets[i]
		if cur.Ref() != sel.Ref() || !cur.Amount.Equal(sel.Amount) {
			return false
		}
	}
	return true
}
