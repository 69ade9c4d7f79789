package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

// An entry moves PENDING -> PROCESSING -> SENT. A failed delivery goes to
// FAILED until its retries run out, then to DEAD.
const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusSent       OutboxStatus = "SENT"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
)

// ErrOutboxNotClaimable is returned when claiming an entry that is neither pending nor failed
var ErrOutboxNotClaimable = errors.New("outbox entry is not pending or failed")

// OutboxEntry is a serialized domain event waiting for delivery. Entries are
// saved in the transaction that changed the receipt or document, so an event
// exists exactly when its state change committed.
type OutboxEntry struct {
	ID            uuid.UUID
	EventID       uuid.UUID
	EventType     string
	AggregateID   uuid.UUID
	AggregateType string
	Payload       []byte

	Status      OutboxStatus
	RetryCount  int
	MaxRetries  int
	LastError   string
	NextRetryAt *time.Time
	ProcessedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewOutboxEntry(event DomainEvent, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:            uuid.New(),
		EventID:       event.EventID(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
		Status:        OutboxStatusPending,
		MaxRetries:    DefaultMaxRetries,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (e *OutboxEntry) IsDead() bool { return e.Status == OutboxStatusDead }

// CanRetry reports whether a failed entry has attempts left
func (e *OutboxEntry) CanRetry() bool {
	return e.Status == OutboxStatusFailed && e.RetryCount < e.MaxRetries
}

// MarkProcessing claims the entry for one delivery attempt
func (e *OutboxEntry) MarkProcessing() error {
	switch e.Status {
	case OutboxStatusPending, OutboxStatusFailed:
	default:
		return ErrOutboxNotClaimable
	}
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

func (e *OutboxEntry) MarkSent() {
	now := time.Now()
	e.Status = OutboxStatusSent
	e.ProcessedAt, e.UpdatedAt = &now, now
}

// MarkFailed records errMsg. The next attempt is due after DefaultBaseBackoff
// doubled per previous failure; the MaxRetries-th failure dead-letters the entry.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	now := time.Now()
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = now

	if e.RetryCount >= e.MaxRetries {
		e.Status, e.NextRetryAt = OutboxStatusDead, nil
		return
	}
	due := now.Add(DefaultBaseBackoff << (e.RetryCount - 1))
	e.Status, e.NextRetryAt = OutboxStatusFailed, &due
}

// OutboxRepository persists outbox entries
type OutboxRepository interface {
	Save(ctx context.Context, entries ...*OutboxEntry) error
	// ClaimDeliverable marks up to limit pending entries, plus failed entries
	// whose retry time has passed, as PROCESSING and returns them
	ClaimDeliverable(ctx context.Context, now time.Time, limit int) ([]*OutboxEntry, error)
	Update(ctx context.Context, entry *OutboxEntry) error
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
}
