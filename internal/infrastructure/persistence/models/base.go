package models

import (
	"time"

	"github.com/erp/receivables/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the identity and audit columns of every table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the version column checked on every aggregate update
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot copies identity, timestamps and version from a
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.BaseModel = BaseModel{ID: a.ID, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
	m.Version = a.Version
}

// PopulateAggregateRoot is the inverse of FromDomainAggregateRoot. Pending
// domain events on a are left untouched.
func (m *AggregateModel) PopulateAggregateRoot(a *shared.BaseAggregateRoot) {
	a.BaseEntity = shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
	a.Version = m.Version
}
