package scheduler

import (
	"context"
	"errors"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/domain/shared"
	"github.com/erp/receivables/internal/infrastructure/event"
	"go.uber.org/zap"
)

// Job names registered with the scheduler
const (
	JobSuggestionScan = "suggestion_scan"
	JobOutboxDelivery = "outbox_delivery"
	JobOutboxCleanup  = "outbox_cleanup"
)

// SuggestionScanner runs one suggestion pass
type SuggestionScanner interface {
	Scan(ctx context.Context, opts appreceivable.ScanOptions) (*appreceivable.ScanResult, error)
}

// SuggestionScanJob runs the batch suggestion scanner
type SuggestionScanJob struct {
	scanner SuggestionScanner
	options appreceivable.ScanOptions
	logger  *zap.Logger
}

// NewSuggestionScanJob creates a new SuggestionScanJob
func NewSuggestionScanJob(scanner SuggestionScanner, options appreceivable.ScanOptions, logger *zap.Logger) *SuggestionScanJob {
	return &SuggestionScanJob{scanner: scanner, options: options, logger: logger}
}

// Execute implements JobExecutor. A run already held by another instance is
// not a failure; the job completes without retry.
func (j *SuggestionScanJob) Execute(ctx context.Context, job *Job) error {
	_, err := j.scanner.Scan(ctx, j.options)
	if errors.Is(err, shared.ErrScanInProgress) {
		j.logger.Debug("suggestion scan already running elsewhere, skipping",
			zap.String("job_id", job.ID.String()),
		)
		return nil
	}
	return err
}

// OutboxDeliverer delivers pending outbox entries
type OutboxDeliverer interface {
	ProcessBatch(ctx context.Context) (event.BatchResult, error)
	Cleanup(ctx context.Context) (int64, error)
}

// OutboxDeliveryJob drains the outbox one batch at a time
type OutboxDeliveryJob struct {
	processor OutboxDeliverer
	batchSize int
	// maxBatches bounds one run so a flood of entries cannot pin a worker
	maxBatches int
}

// NewOutboxDeliveryJob creates a new OutboxDeliveryJob
func NewOutboxDeliveryJob(processor OutboxDeliverer, batchSize int) *OutboxDeliveryJob {
	return &OutboxDeliveryJob{processor: processor, batchSize: batchSize, maxBatches: 20}
}

// Execute implements JobExecutor
func (j *OutboxDeliveryJob) Execute(ctx context.Context, _ *Job) error {
	for i := 0; i < j.maxBatches; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := j.processor.ProcessBatch(ctx)
		if err != nil {
			return err
		}
		if result.Claimed < j.batchSize {
			return nil
		}
	}
	return nil
}

// OutboxCleanupJob removes delivered outbox entries past retention
type OutboxCleanupJob struct {
	processor OutboxDeliverer
}

// NewOutboxCleanupJob creates a new OutboxCleanupJob
func NewOutboxCleanupJob(processor OutboxDeliverer) *OutboxCleanupJob {
	return &OutboxCleanupJob{processor: processor}
}

// Execute implements JobExecutor
func (j *OutboxCleanupJob) Execute(ctx context.Context, _ *Job) error {
	_, err := j.processor.Cleanup(ctx)
	return err
}
