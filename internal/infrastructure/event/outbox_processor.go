package event

import (
	"context"
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"go.uber.org/zap"
)

// OutboxProcessorConfig holds configuration for the outbox processor
type OutboxProcessorConfig struct {
	BatchSize        int
	CleanupRetention time.Duration
}

// DefaultOutboxProcessorConfig returns default configuration
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		CleanupRetention: 7 * 24 * time.Hour,
	}
}

// OutboxProcessor delivers outbox entries to the event bus. It does no
// scheduling of its own; the scheduler calls ProcessBatch and Cleanup.
type OutboxProcessor struct {
	repo       shared.OutboxRepository
	eventBus   shared.EventPublisher
	serializer *EventSerializer
	config     OutboxProcessorConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(
	repo shared.OutboxRepository,
	eventBus shared.EventPublisher,
	serializer *EventSerializer,
	config OutboxProcessorConfig,
	logger *zap.Logger,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultOutboxProcessorConfig().BatchSize
	}
	if config.CleanupRetention <= 0 {
		config.CleanupRetention = DefaultOutboxProcessorConfig().CleanupRetention
	}
	return &OutboxProcessor{
		repo:       repo,
		eventBus:   eventBus,
		serializer: serializer,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// BatchResult summarizes one delivery pass
type BatchResult struct {
	Claimed int
	Sent    int
	Failed  int
	Dead    int
}

// ProcessBatch claims one batch of deliverable entries and dispatches them
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	entries, err := p.repo.ClaimDeliverable(ctx, p.now(), p.config.BatchSize)
	if err != nil {
		return result, err
	}
	result.Claimed = len(entries)

	for _, entry := range entries {
		if err := p.deliver(ctx, entry); err != nil {
			entry.MarkFailed(err.Error())
			if entry.IsDead() {
				result.Dead++
				p.logger.Warn("event moved to dead letter queue",
					zap.String("event_id", entry.EventID.String()),
					zap.String("event_type", entry.EventType),
					zap.String("aggregate_type", entry.AggregateType),
					zap.String("aggregate_id", entry.AggregateID.String()),
					zap.Int("retry_count", entry.RetryCount),
					zap.String("last_error", entry.LastError),
				)
			} else {
				result.Failed++
			}
		} else {
			entry.MarkSent()
			result.Sent++
		}

		if err := p.repo.Update(ctx, entry); err != nil {
			p.logger.Error("failed to update outbox entry",
				zap.String("event_id", entry.EventID.String()),
				zap.String("status", string(entry.Status)),
				zap.Error(err),
			)
		}
	}

	if result.Claimed > 0 {
		p.logger.Debug("outbox batch processed",
			zap.Int("claimed", result.Claimed),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
			zap.Int("dead", result.Dead),
		)
	}
	return result, nil
}

func (p *OutboxProcessor) deliver(ctx context.Context, entry *shared.OutboxEntry) error {
	event, err := p.serializer.Deserialize(entry.EventType, entry.Payload)
	if err != nil {
		p.logger.Error("failed to deserialize event",
			zap.String("event_id", entry.EventID.String()),
			zap.String("event_type", entry.EventType),
			zap.Error(err),
		)
		return err
	}
	return p.eventBus.Publish(ctx, event)
}

// Cleanup removes delivered entries older than the retention window
func (p *OutboxProcessor) Cleanup(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteSentBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		p.logger.Info("cleaned up old outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}
