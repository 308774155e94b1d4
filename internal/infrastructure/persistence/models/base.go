package models

import (
	"time"

	"github.com/campus/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// Metadata is a string map stored as JSON text
type Metadata map[string]string

// nonNilMetadata avoids persisting JSON null
func nonNilMetadata(m map[string]string) Metadata {
	if m == nil {
		return Metadata{}
	}
	return Metadata(m)
}
