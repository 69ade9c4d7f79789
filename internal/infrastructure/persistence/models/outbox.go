package models

import (
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
)

// OutboxEntryModel maps outbox_entries. Rows are written in the same
// transaction as the receipt or document change that raised the event.
type OutboxEntryModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_outbox_entries_event_id"`
	EventType     string    `gorm:"type:varchar(255);not null"`
	AggregateID   uuid.UUID `gorm:"type:uuid;not null"`
	AggregateType string    `gorm:"type:varchar(255);not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`

	// Delivery state
	Status      shared.OutboxStatus `gorm:"type:varchar(20);default:'PENDING';index:idx_outbox_status_created,priority:1"`
	RetryCount  int                 `gorm:"default:0"`
	MaxRetries  int                 `gorm:"default:5"`
	LastError   string              `gorm:"type:text"`
	NextRetryAt *time.Time          `gorm:"index:idx_outbox_next_retry"`
	ProcessedAt *time.Time

	CreatedAt time.Time `gorm:"not null;index:idx_outbox_status_created,priority:2"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OutboxEntryModel) TableName() string {
	return "outbox_entries"
}

// ToDomain converts the persistence model to a domain OutboxEntry
func (m *OutboxEntryModel) ToDomain() *shared.OutboxEntry {
	return &shared.OutboxEntry{
		ID:            m.ID,
		EventID:       m.EventID,
		EventType:     m.EventType,
		AggregateID:   m.AggregateID,
		AggregateType: m.AggregateType,
		Payload:       m.Payload,
		Status:        m.Status,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		LastError:     m.LastError,
		NextRetryAt:   m.NextRetryAt,
		ProcessedAt:   m.ProcessedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// OutboxEntryModelFromDomain converts a domain OutboxEntry for writing
func OutboxEntryModelFromDomain(e *shared.OutboxEntry) *OutboxEntryModel {
	return &OutboxEntryModel{
		ID:            e.ID,
		EventID:       e.EventID,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		Payload:       e.Payload,
		Status:        e.Status,
		RetryCount:    e.RetryCount,
		MaxRetries:    e.MaxRetries,
		LastError:     e.LastError,
		NextRetryAt:   e.NextRetryAt,
		ProcessedAt:   e.ProcessedAt,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
