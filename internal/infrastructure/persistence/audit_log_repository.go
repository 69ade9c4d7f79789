package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appreceivable "github.com/erp/receivables/internal/application/receivable"
	"github.com/erp/receivables/internal/infrastructure/logger"
	"github.com/erp/receivables/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditSink writes audit entries to audit_logs. When the context carries
// a transaction the entry is written inside it, so a failed write rolls the
// whole operation back.
type GormAuditSink struct {
	db *gorm.DB
}

// NewGormAuditSink creates a new GormAuditSink
func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

// LogAsync implements AuditSink. Despite the name the write is synchronous
// with the caller's transaction.
func (s *GormAuditSink) LogAsync(ctx context.Context, action, entityType string, entityID uuid.UUID, before, after any) error {
	beforeJSON, err := snapshot(before)
	if err != nil {
		return fmt.Errorf("failed to encode audit before state: %w", err)
	}
	afterJSON, err := snapshot(after)
	if err != nil {
		return fmt.Errorf("failed to encode audit after state: %w", err)
	}

	entry := &models.AuditLogModel{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  logger.GetRequestID(ctx),
		Before:     beforeJSON,
		After:      afterJSON,
		CreatedAt:  time.Now(),
	}
	if userID, err := uuid.Parse(logger.GetUserID(ctx)); err == nil {
		entry.ActorID = &userID
	}
	return TxFromContext(ctx, s.db).Create(entry).Error
}

// FindByEntity returns the audit trail of one entity, oldest first
func (s *GormAuditSink) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLogModel, error) {
	var entries []models.AuditLogModel
	if err := TxFromContext(ctx, s.db).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func snapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Ensure GormAuditSink implements AuditSink
var _ appreceivable.AuditSink = (*GormAuditSink)(nil)
