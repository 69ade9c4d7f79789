package event

import (
	"context"
	"fmt"

	"github.com/erp/receivables/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox inside the caller's transaction
type OutboxPublisher struct {
	serializer *EventSerializer
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: serializer,
	}
}

// PublishWithTx stores events in the outbox using tx, so they commit or roll
// back together with the state change that raised them
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		if !p.serializer.IsRegistered(event.EventType()) {
			return fmt.Errorf("event type %s is not registered for delivery", event.EventType())
		}
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", event.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}
