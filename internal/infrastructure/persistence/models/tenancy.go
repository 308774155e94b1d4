package models

import (
	"time"

	"github.com/campus/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// InstitutionModel is the persistence model for Institution (global partition)
type InstitutionModel struct {
	BaseModel
	Name          string                    `gorm:"type:varchar(200);not null"`
	PartitionName string                    `gorm:"type:varchar(63);not null;uniqueIndex"`
	SubDomain     string                    `gorm:"type:varchar(100);uniqueIndex"`
	Type          string                    `gorm:"type:varchar(50)"`
	PlanID        *uuid.UUID                `gorm:"type:uuid"`
	Status        tenancy.InstitutionStatus `gorm:"type:varchar(20);not null"`
	Metadata      Metadata                  `gorm:"type:jsonb;serializer:json"`
	DeletedAt     *time.Time
}

// TableName returns the table name for GORM
func (InstitutionModel) TableName() string {
	return "institutions"
}

// ToDomain converts the persistence model to a domain Institution
func (m *InstitutionModel) ToDomain() *tenancy.Institution {
	return &tenancy.Institution{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		PartitionName: m.PartitionName,
		SubDomain:     m.SubDomain,
		Type:          m.Type,
		PlanID:        m.PlanID,
		Status:        m.Status,
		Metadata:      map[string]string(nonNilMetadata(m.Metadata)),
		DeletedAt:     m.DeletedAt,
	}
}

// PlanModel is the persistence model for Plan (global partition)
type PlanModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slug      string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}

// ToDomain converts the persistence model to a domain Plan without permissions
func (m *PlanModel) ToDomain() *tenancy.Plan {
	return &tenancy.Plan{
		ID:        m.ID,
		Slug:      m.Slug,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}

// PlanPermissionModel is the persistence model for a plan permission grant.
// RoleType '' grants the key to every role type.
type PlanPermissionModel struct {
	PlanID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionKey string    `gorm:"type:varchar(100);primaryKey"`
	RoleType      string    `gorm:"type:varchar(20);primaryKey"`
}

// TableName returns the table name for GORM
func (PlanPermissionModel) TableName() string {
	return "plan_permissions"
}

// ToDomain converts the persistence model to a domain PlanPermission
func (m *PlanPermissionModel) ToDomain() tenancy.PlanPermission {
	return tenancy.PlanPermission{
		PlanID:        m.PlanID,
		PermissionKey: m.PermissionKey,
		RoleType:      m.RoleType,
	}
}
